package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dxgrid/acl-notify/internal/domain"
	"github.com/dxgrid/acl-notify/internal/infra/postgresql"
	"github.com/dxgrid/acl-notify/internal/observability"
	"github.com/dxgrid/acl-notify/internal/queue"
	"github.com/dxgrid/acl-notify/internal/response"
	"go.uber.org/zap"
)

const (
	failureMessage = "Notifications could not be fetched"

	notificationsEndpoint = "/v1/notifications"
)

// AuditPublisher records successful fetches on the audit trail.
// Implementations must be safe for concurrent use.
type AuditPublisher interface {
	Publish(ctx context.Context, msg queue.AuditMessage) error
}

// Service is the fetch pipeline: the caller's role picks the statement
// and perspective, the statement runs once against the pool, and every
// returned row is assembled with caller and counterpart identities.
type Service struct {
	db     postgresql.QueryExecutor
	audit  AuditPublisher
	meter  *observability.Metrics
	logger *zap.Logger
}

func NewService(
	db postgresql.QueryExecutor,
	audit AuditPublisher,
	meter *observability.Metrics,
	logger *zap.Logger,
) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("query executor is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		db:     db,
		audit:  audit,
		meter:  meter,
		logger: logger,
	}, nil
}

// GetNotifications returns the caller's pending/processed access
// requests for their resource server, or a typed failure. Zero rows is
// reported as a not-found failure naming the resource server; the
// outward status conflates "no data" with "error" on purpose, for wire
// compatibility with existing consumers.
func (s *Service) GetNotifications(ctx context.Context, caller domain.Identity) (*response.Envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	perspective := caller.Role.Perspective()
	query := queryForPerspective(perspective)

	started := time.Now()
	rows, err := s.db.Execute(ctx, query, caller.ID, caller.ResourceServerURL)
	s.meter.ObserveQueryDuration(perspective.String(), time.Since(started))
	if err != nil {
		s.logger.Error("notification query failed",
			zap.String("userId", caller.ID),
			zap.String("perspective", perspective.String()),
			zap.Error(err),
		)
		s.meter.IncFetchFailed(perspective.String(), "database_error")
		return nil, response.DatabaseError(failureMessage + ", Failure while executing query")
	}

	if len(rows) == 0 {
		s.logger.Error("no access request found for the resource server",
			zap.String("resourceServerUrl", caller.ResourceServerURL),
		)
		s.meter.IncFetchFailed(perspective.String(), "not_found")
		return nil, response.NotFound("Access request not found, for the server : " + caller.ResourceServerURL)
	}

	records := Assemble(rows, caller, perspective)
	s.meter.IncFetchSucceeded(perspective.String())
	s.publishAudit(ctx, caller, len(records))

	return &response.Envelope{
		StatusCode: http.StatusOK,
		Result: response.Result{
			Type:   response.SuccessURN,
			Title:  response.SuccessTitle,
			Result: records,
		},
	}, nil
}

// publishAudit is best effort: a broker outage never fails a fetch that
// already succeeded.
func (s *Service) publishAudit(ctx context.Context, caller domain.Identity, count int) {
	if s.audit == nil {
		return
	}

	msg := queue.AuditMessage{
		UserID:            caller.ID,
		UserRole:          caller.Role.String(),
		API:               notificationsEndpoint,
		Method:            http.MethodGet,
		ResourceServerURL: caller.ResourceServerURL,
		ResponseSize:      count,
		EpochTime:         time.Now().UTC().Unix(),
	}

	if err := s.audit.Publish(ctx, msg); err != nil {
		s.logger.Warn("failed to publish audit message",
			zap.String("userId", caller.ID),
			zap.Error(err),
		)
	}
}
