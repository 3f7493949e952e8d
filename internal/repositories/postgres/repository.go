package postgres

import (
	"context"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db      *gorm.DB
	session repositories.SessionRepository
	alert   repositories.AlertRepository
	user    repositories.UserRepository
}

// NewRepository wires the gorm-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:      db,
		session: NewSessionPostgreSQL(db),
		alert:   NewAlertPostgreSQL(db),
		user:    NewUserPostgreSQL(db),
	}
}

func (r *repository) Session() repositories.SessionRepository { return r.session }
func (r *repository) Alert() repositories.AlertRepository     { return r.alert }
func (r *repository) User() repositories.UserRepository       { return r.user }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the schema and the partial unique index that enforces the
// at-most-one-active-session-per-candidate invariant at the database level.
// Concurrent session starts for one candidate race on this index instead of a
// check-then-insert window.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.ProctoringSession{},
		&models.Violation{},
		&models.SessionReport{},
		&models.ProctoringAlert{},
	); err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_session_per_candidate
		 ON proctoring_sessions (candidate_id)
		 WHERE status = 'active' AND deleted_at IS NULL`,
	).Error
}
