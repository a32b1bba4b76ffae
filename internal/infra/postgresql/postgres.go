package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/dxgrid/acl-notify/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxConns        = 25
	minConns        = 2
	connMaxLifetime = time.Hour
)

// NewPool opens the shared pgx connection pool and verifies
// connectivity before handing it out.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = connMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

// Row is one result row keyed by column alias, exactly as the statement
// returned it.
type Row map[string]any

// QueryExecutor runs one parameterized statement and collects every
// returned row in store order.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, args ...any) ([]Row, error)
}

// PostgresService executes opaque parameterized statements over the
// shared pool. Each call holds exactly one connection for its duration
// and releases it on every exit path; all failure modes collapse into
// domain.ErrDatabase.
type PostgresService struct {
	pool *pgxpool.Pool
}

func NewPostgresService(pool *pgxpool.Pool) (*PostgresService, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is required")
	}
	return &PostgresService{pool: pool}, nil
}

func (s *PostgresService) Execute(ctx context.Context, query string, args ...any) ([]Row, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire connection: %v", domain.ErrDatabase, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute query: %v", domain.ErrDatabase, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	collected := make([]Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read row: %v", domain.ErrDatabase, err)
		}

		row := make(Row, len(fields))
		for i, field := range fields {
			row[field.Name] = normalizeValue(values[i])
		}
		collected = append(collected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failure while collecting rows: %v", domain.ErrDatabase, err)
	}

	return collected, nil
}

// normalizeValue rewrites driver types that do not serialize cleanly.
// Postgres uuid columns scan as [16]byte; the wire contract wants the
// canonical string form.
func normalizeValue(v any) any {
	if b, ok := v.([16]byte); ok {
		return uuid.UUID(b).String()
	}
	return v
}
