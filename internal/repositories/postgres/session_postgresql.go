package postgres

import (
	"context"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

// conn returns the transaction handle when one is supplied, otherwise the
// shared connection.
func (s *SessionPostgreSQL) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession) error {
	return s.conn(ctx, tx).Create(session).Error
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error) {
	var session models.ProctoringSession
	if err := s.conn(ctx, tx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error) {
	var session models.ProctoringSession
	if err := s.conn(ctx, tx).
		Preload("Violations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Report").
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error) {
	var session models.ProctoringSession
	if err := s.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession) error {
	return s.conn(ctx, tx).Save(session).Error
}

func (s *SessionPostgreSQL) GetActiveByCandidate(ctx context.Context, tx *gorm.DB, candidateID string) (*models.ProctoringSession, error) {
	var session models.ProctoringSession
	if err := s.conn(ctx, tx).
		Where("candidate_id = ? AND status = ?", candidateID, models.SessionActive).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SessionStatus) error {
	return s.conn(ctx, tx).
		Model(&models.ProctoringSession{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *SessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ProctoringSession, int64, error) {
	var sessions []*models.ProctoringSession
	var total int64

	query := s.conn(ctx, tx).Model(&models.ProctoringSession{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyPaginationAndSort(query, filters)
	if err := query.Preload("Report").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (s *SessionPostgreSQL) ListForReview(ctx context.Context, tx *gorm.DB) ([]*models.ProctoringSession, error) {
	var sessions []*models.ProctoringSession
	if err := s.conn(ctx, tx).
		Joins("JOIN proctoring_session_reports r ON r.session_id = proctoring_sessions.id").
		Where("proctoring_sessions.status = ?", models.SessionCompleted).
		Where("r.integrity_status IN ?", []models.IntegrityStatus{
			models.IntegrityReviewRecommended,
			models.IntegrityHighSuspicion,
		}).
		Where("r.review_decision = ?", models.ReviewPending).
		Preload("Report").
		Order("proctoring_sessions.risk_score DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionPostgreSQL) GetByCandidate(ctx context.Context, tx *gorm.DB, candidateID string, filters repositories.SessionFilters) ([]*models.ProctoringSession, int64, error) {
	filters.CandidateID = &candidateID
	return s.List(ctx, tx, filters)
}

// ===== VIOLATIONS =====

func (s *SessionPostgreSQL) AppendViolation(ctx context.Context, tx *gorm.DB, violation *models.Violation) error {
	return s.conn(ctx, tx).Create(violation).Error
}

func (s *SessionPostgreSQL) GetViolations(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.Violation, error) {
	var violations []models.Violation
	if err := s.conn(ctx, tx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&violations).Error; err != nil {
		return nil, err
	}
	return violations, nil
}

func (s *SessionPostgreSQL) GetViolationByPosition(ctx context.Context, tx *gorm.DB, sessionID uint, position int) (*models.Violation, error) {
	var violation models.Violation
	if err := s.conn(ctx, tx).
		Where("session_id = ? AND position = ?", sessionID, position).
		First(&violation).Error; err != nil {
		return nil, err
	}
	return &violation, nil
}

func (s *SessionPostgreSQL) UpdateViolation(ctx context.Context, tx *gorm.DB, violation *models.Violation) error {
	return s.conn(ctx, tx).Save(violation).Error
}

// ===== REPORTS =====

func (s *SessionPostgreSQL) CreateReport(ctx context.Context, tx *gorm.DB, report *models.SessionReport) error {
	return s.conn(ctx, tx).Create(report).Error
}

func (s *SessionPostgreSQL) GetReport(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.SessionReport, error) {
	var report models.SessionReport
	if err := s.conn(ctx, tx).
		Where("session_id = ?", sessionID).
		First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *SessionPostgreSQL) UpdateReport(ctx context.Context, tx *gorm.DB, report *models.SessionReport) error {
	return s.conn(ctx, tx).Save(report).Error
}

// ===== QUERY HELPERS =====

func (s *SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filters.CandidateID)
	}
	if filters.SessionType != nil {
		query = query.Where("session_type = ?", *filters.SessionType)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.RiskLevel != nil {
		query = query.Where("risk_level = ?", *filters.RiskLevel)
	}
	if filters.DateFrom != nil {
		query = query.Where("start_time >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_time <= ?", *filters.DateTo)
	}
	return query
}

func (s *SessionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "risk_score", "start_time", "created_at":
	default:
		sortBy = "created_at"
	}
	sortOrder := "desc"
	if filters.SortOrder == "asc" {
		sortOrder = "asc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
