package migrations

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run opens a short-lived gorm session, applies the versioned
// migrations and closes the connection again. The serving path keeps
// its own pgx pool.
func Run(dsn string) error {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect postgres for migrations: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	defer sqlDB.Close()

	return Migrate(db)
}

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_user_table",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&userModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_table_email_id ON user_table (email_id)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&userModel{})
			},
		},
		{
			ID: "000002_create_request",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&accessRequestModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_request_user_server ON request (user_id, resource_server_url)`,
					`CREATE INDEX IF NOT EXISTS idx_request_owner_server ON request (owner_id, resource_server_url)`,
					`CREATE INDEX IF NOT EXISTS idx_request_status ON request (status)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&accessRequestModel{})
			},
		},
	})

	return m.Migrate()
}
