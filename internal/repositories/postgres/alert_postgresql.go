package postgres

import (
	"context"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertPostgreSQL struct {
	db *gorm.DB
}

func NewAlertPostgreSQL(db *gorm.DB) repositories.AlertRepository {
	return &AlertPostgreSQL{db: db}
}

func (a *AlertPostgreSQL) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return a.db.WithContext(ctx)
}

func (a *AlertPostgreSQL) Create(ctx context.Context, tx *gorm.DB, alert *models.ProctoringAlert) error {
	return a.conn(ctx, tx).Create(alert).Error
}

func (a *AlertPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringAlert, error) {
	var alert models.ProctoringAlert
	if err := a.conn(ctx, tx).First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (a *AlertPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringAlert, error) {
	var alert models.ProctoringAlert
	if err := a.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (a *AlertPostgreSQL) Update(ctx context.Context, tx *gorm.DB, alert *models.ProctoringAlert) error {
	return a.conn(ctx, tx).Save(alert).Error
}

func (a *AlertPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AlertFilters) ([]*models.ProctoringAlert, int64, error) {
	var alerts []*models.ProctoringAlert
	var total int64

	query := a.conn(ctx, tx).Model(&models.ProctoringAlert{})

	if filters.SessionID != nil {
		query = query.Where("session_id = ?", *filters.SessionID)
	}
	if filters.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filters.CandidateID)
	}
	if filters.AlertType != nil {
		query = query.Where("alert_type = ?", *filters.AlertType)
	}
	if filters.Severity != nil {
		query = query.Where("violation_severity = ?", *filters.Severity)
	}
	if filters.Acknowledged != nil {
		query = query.Where("acknowledged = ?", *filters.Acknowledged)
	}
	if filters.RequiresAction != nil {
		query = query.Where("requires_action = ?", *filters.RequiresAction)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (a *AlertPostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.ProctoringAlert, error) {
	var alerts []*models.ProctoringAlert
	if err := a.conn(ctx, tx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (a *AlertPostgreSQL) CountUnacknowledged(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := a.conn(ctx, tx).
		Model(&models.ProctoringAlert{}).
		Where("acknowledged = false").
		Count(&count).Error
	return count, err
}
