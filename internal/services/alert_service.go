package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/proctoring-service/internal/events"
	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

type AlertService interface {
	// Dispatch records an alert for a medium or high severity violation and
	// publishes it to downstream consumers. Called inside the violation
	// ingestion transaction so the alert row commits with the violation.
	Dispatch(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession, violation *models.Violation, decision PolicyDecision) (*models.ProctoringAlert, error)

	GetByID(ctx context.Context, alertID uint, userID string) (*models.ProctoringAlert, error)
	List(ctx context.Context, filters repositories.AlertFilters, userID string) ([]*models.ProctoringAlert, int64, error)
	Acknowledge(ctx context.Context, alertID uint, reviewerID string) (*models.ProctoringAlert, error)
	CountUnacknowledged(ctx context.Context, userID string) (int64, error)
}

type alertService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewAlertService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger) AlertService {
	return &alertService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("service", "alert"),
	}
}

func (s *alertService) Dispatch(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession, violation *models.Violation, decision PolicyDecision) (*models.ProctoringAlert, error) {
	alert := &models.ProctoringAlert{
		SessionID:         session.ID,
		CandidateID:       session.CandidateID,
		AlertType:         decision.AlertType,
		ViolationType:     violation.Type,
		ViolationSeverity: violation.Severity,
		ViolationPosition: violation.Position,
		Message:           alertMessage(violation, decision),
		ActionTaken:       decision.Action,
		RequiresAction:    decision.RequiresAction,
	}

	if err := s.repo.Alert().Create(ctx, tx, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.publishAlertRaised(session, violation, alert)

	s.logger.Info("Alert dispatched",
		"alert_id", alert.ID,
		"session_id", session.ID,
		"violation_type", violation.Type,
		"severity", violation.Severity,
		"action_taken", decision.Action)

	return alert, nil
}

func alertMessage(violation *models.Violation, decision PolicyDecision) string {
	msg := fmt.Sprintf("%s violation (%s severity) detected at position %d",
		violation.Type, violation.Severity, violation.Position)
	if decision.Action != models.ActionNone {
		msg = fmt.Sprintf("%s; action taken: %s", msg, decision.Action)
	}
	return msg
}

func (s *alertService) publishAlertRaised(session *models.ProctoringSession, violation *models.Violation, alert *models.ProctoringAlert) {
	if s.publisher == nil {
		return
	}

	event := &events.ProctoringEvent{
		ID:        uuid.NewString(),
		Type:      events.EventAlertRaised,
		Timestamp: time.Now().UTC(),
		Source:    "proctoring-service",
		Version:   "1.0",
		Data: events.AlertRaisedEvent{
			AlertID:        alert.ID,
			SessionID:      session.ID,
			CandidateID:    session.CandidateID,
			AlertType:      alert.AlertType,
			ViolationType:  violation.Type,
			Severity:       violation.Severity,
			ActionTaken:    alert.ActionTaken,
			RequiresAction: alert.RequiresAction,
			RiskScore:      session.RiskScore,
			RiskLevel:      session.RiskLevel,
			RaisedAt:       alert.CreatedAt,
		},
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.publisher.PublishProctoringEvent(ctx, event); err != nil {
			s.logger.LogError(err, "Failed to publish alert event",
				"alert_id", alert.ID,
				"session_id", session.ID)
		}
	}()
}

func (s *alertService) GetByID(ctx context.Context, alertID uint, userID string) (*models.ProctoringAlert, error) {
	if err := requireReviewer(ctx, s.repo, userID, "alert", "read"); err != nil {
		return nil, err
	}

	alert, err := s.repo.Alert().GetByID(ctx, nil, alertID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

func (s *alertService) List(ctx context.Context, filters repositories.AlertFilters, userID string) ([]*models.ProctoringAlert, int64, error) {
	if err := requireReviewer(ctx, s.repo, userID, "alert", "list"); err != nil {
		return nil, 0, err
	}

	alerts, total, err := s.repo.Alert().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, total, nil
}

// Acknowledge marks an alert as handled by a reviewer. Acknowledging an
// already acknowledged alert fails so two reviewers cannot both claim it.
func (s *alertService) Acknowledge(ctx context.Context, alertID uint, reviewerID string) (*models.ProctoringAlert, error) {
	if err := requireReviewer(ctx, s.repo, reviewerID, "alert", "acknowledge"); err != nil {
		return nil, err
	}

	var alert *models.ProctoringAlert
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		alert, err = s.repo.Alert().GetByIDForUpdate(ctx, tx, alertID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAlertNotFound
			}
			return fmt.Errorf("failed to get alert: %w", err)
		}

		if alert.Acknowledged {
			return ErrAlertAlreadyAcknowledged
		}

		now := time.Now().UTC()
		alert.Acknowledged = true
		alert.AcknowledgedBy = &reviewerID
		alert.AcknowledgedAt = &now

		if err := s.repo.Alert().Update(ctx, tx, alert); err != nil {
			return fmt.Errorf("failed to update alert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Alert acknowledged", "alert_id", alertID, "reviewer_id", reviewerID)
	return alert, nil
}

func (s *alertService) CountUnacknowledged(ctx context.Context, userID string) (int64, error) {
	if err := requireReviewer(ctx, s.repo, userID, "alert", "list"); err != nil {
		return 0, err
	}
	return s.repo.Alert().CountUnacknowledged(ctx, nil)
}
