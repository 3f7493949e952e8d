package repositories

import (
	"context"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"gorm.io/gorm"
)

// AlertRepository interface for reviewer-facing proctoring alerts
type AlertRepository interface {
	Create(ctx context.Context, tx *gorm.DB, alert *models.ProctoringAlert) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringAlert, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringAlert, error)
	Update(ctx context.Context, tx *gorm.DB, alert *models.ProctoringAlert) error

	List(ctx context.Context, tx *gorm.DB, filters AlertFilters) ([]*models.ProctoringAlert, int64, error)
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.ProctoringAlert, error)
	CountUnacknowledged(ctx context.Context, tx *gorm.DB) (int64, error)
}
