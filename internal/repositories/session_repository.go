package repositories

import (
	"context"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"gorm.io/gorm"
)

// SessionRepository interface for proctoring session operations
type SessionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error) // Include violations, report
	Update(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession) error

	// GetByIDForUpdate loads the session row under a FOR UPDATE lock. Violation
	// appends for one session serialize on this lock.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error)

	// Active session management
	GetActiveByCandidate(ctx context.Context, tx *gorm.DB, candidateID string) (*models.ProctoringSession, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SessionStatus) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.ProctoringSession, int64, error)
	ListForReview(ctx context.Context, tx *gorm.DB) ([]*models.ProctoringSession, error)
	GetByCandidate(ctx context.Context, tx *gorm.DB, candidateID string, filters SessionFilters) ([]*models.ProctoringSession, int64, error)

	// Violation operations (append-only; updates limited to review annotation)
	AppendViolation(ctx context.Context, tx *gorm.DB, violation *models.Violation) error
	GetViolations(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.Violation, error)
	GetViolationByPosition(ctx context.Context, tx *gorm.DB, sessionID uint, position int) (*models.Violation, error)
	UpdateViolation(ctx context.Context, tx *gorm.DB, violation *models.Violation) error

	// Report operations
	CreateReport(ctx context.Context, tx *gorm.DB, report *models.SessionReport) error
	GetReport(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.SessionReport, error)
	UpdateReport(ctx context.Context, tx *gorm.DB, report *models.SessionReport) error
}
