package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"gorm.io/gorm"
)

// Repository is the aggregate access point for all persistence operations.
type Repository interface {
	Session() SessionRepository
	Alert() AlertRepository
	User() UserRepository

	// WithTransaction runs fn inside a single database transaction. The tx
	// handle must be passed down to every repository call made within fn.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	CandidateID *string               `json:"candidate_id"`
	SessionType *models.SessionType   `json:"session_type"`
	Status      *models.SessionStatus `json:"status"`
	RiskLevel   *models.RiskLevel     `json:"risk_level"`
	DateFrom    *time.Time            `json:"date_from"`
	DateTo      *time.Time            `json:"date_to"`
	Limit       int                   `json:"limit"`
	Offset      int                   `json:"offset"`
	SortBy      string                `json:"sort_by"`    // "created_at", "risk_score", "start_time"
	SortOrder   string                `json:"sort_order"` // "asc", "desc"
}

type AlertFilters struct {
	SessionID      *uint                     `json:"session_id"`
	CandidateID    *string                   `json:"candidate_id"`
	AlertType      *models.AlertType         `json:"alert_type"`
	Severity       *models.ViolationSeverity `json:"severity"`
	Acknowledged   *bool                     `json:"acknowledged"`
	RequiresAction *bool                     `json:"requires_action"`
	Limit          int                       `json:"limit"`
	Offset         int                       `json:"offset"`
}

// ===== ERROR HELPERS =====

// IsNotFoundError checks whether err is the driver's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError checks whether err is a unique constraint violation.
// The partial unique index on active sessions surfaces concurrent session
// starts through this.
func IsDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx surfaces SQLSTATE 23505 for unique violations; gorm does not always
	// translate it.
	return err != nil && strings.Contains(err.Error(), "23505")
}
