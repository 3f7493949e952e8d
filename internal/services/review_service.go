package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/proctoring-service/internal/events"
	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

type SubmitReviewRequest struct {
	Decision models.ReviewDecision `json:"decision" validate:"required,review_decision"`
	Notes    string                `json:"notes" validate:"max=4000"`
}

type MarkFalsePositiveRequest struct {
	Position int `json:"position" validate:"min=0"`
}

// FalsePositiveResponse returns the rescored session state after a violation
// is excluded from scoring.
type FalsePositiveResponse struct {
	Violation *models.Violation `json:"violation"`
	RiskScore int               `json:"risk_score"`
	RiskLevel models.RiskLevel  `json:"risk_level"`
}

// ReviewService is the reviewer-facing surface: queue listing, review
// decisions, false-positive annotation, and queue export.
type ReviewService interface {
	ListForReview(ctx context.Context, reviewerID string) ([]*models.ProctoringSession, error)
	SubmitReview(ctx context.Context, sessionID uint, reviewerID string, req *SubmitReviewRequest) (*models.SessionReport, error)
	MarkFalsePositive(ctx context.Context, sessionID uint, reviewerID string, req *MarkFalsePositiveRequest) (*FalsePositiveResponse, error)
	ExportReviewQueue(ctx context.Context, reviewerID string) ([]byte, error)
}

type reviewService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *utils.Validator
	logger    utils.Logger
}

func NewReviewService(repo repositories.Repository, publisher events.EventPublisher, validator *utils.Validator, logger utils.Logger) ReviewService {
	return &reviewService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		logger:    logger.With("service", "review"),
	}
}

func (s *reviewService) ListForReview(ctx context.Context, reviewerID string) ([]*models.ProctoringSession, error) {
	if err := requireReviewer(ctx, s.repo, reviewerID, "review_queue", "list"); err != nil {
		return nil, err
	}

	sessions, err := s.repo.Session().ListForReview(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	return sessions, nil
}

// SubmitReview records the reviewer's decision on a completed session's
// report. Approve and flag move the session to under_review and are final;
// invalidate terminates the session and may also override a prior approve or
// flag while the session is still under review.
func (s *reviewService) SubmitReview(ctx context.Context, sessionID uint, reviewerID string, req *SubmitReviewRequest) (*models.SessionReport, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Decision == models.ReviewPending {
		return nil, ErrInvalidReviewDecision
	}
	if err := requireReviewer(ctx, s.repo, reviewerID, "review", "submit"); err != nil {
		return nil, err
	}

	var report *models.SessionReport
	var session *models.ProctoringSession

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		session, err = s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if session.Status != models.SessionCompleted && session.Status != models.SessionUnderReview {
			return ErrSessionNotCompleted
		}

		report, err = s.repo.Session().GetReport(ctx, tx, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrReportNotFound
			}
			return fmt.Errorf("failed to get report: %w", err)
		}
		if report.ReviewDecision != models.ReviewPending {
			// A decided session under review can still be invalidated;
			// everything else is final.
			if req.Decision != models.ReviewInvalidated || report.ReviewDecision == models.ReviewInvalidated {
				return ErrReviewAlreadyDecided
			}
		}

		now := time.Now().UTC()
		report.ReviewDecision = req.Decision
		report.ReviewedBy = &reviewerID
		report.ReviewedAt = &now
		if req.Notes != "" {
			notes := req.Notes
			report.ReviewNotes = &notes
		}

		if req.Decision == models.ReviewInvalidated {
			reason := endReasonReview
			session.Status = models.SessionTerminated
			session.EndReason = &reason
		} else {
			session.Status = models.SessionUnderReview
		}

		if err := s.repo.Session().UpdateReport(ctx, tx, report); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		if err := s.repo.Session().Update(ctx, tx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishReviewSubmitted(session, report, reviewerID)

	s.logger.Info("Review submitted",
		"session_id", sessionID,
		"reviewer_id", reviewerID,
		"decision", req.Decision)

	return report, nil
}

// MarkFalsePositive annotates one violation by position and rescores the
// session from the remaining violation set. The action already taken for the
// violation stands; only the score moves.
func (s *reviewService) MarkFalsePositive(ctx context.Context, sessionID uint, reviewerID string, req *MarkFalsePositiveRequest) (*FalsePositiveResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := requireReviewer(ctx, s.repo, reviewerID, "violation", "mark_false_positive"); err != nil {
		return nil, err
	}

	var resp *FalsePositiveResponse

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		session, err := s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}

		violation, err := s.repo.Session().GetViolationByPosition(ctx, tx, sessionID, req.Position)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrViolationNotFound
			}
			return fmt.Errorf("failed to get violation: %w", err)
		}

		if !violation.FalsePositive {
			now := time.Now().UTC()
			violation.FalsePositive = true
			violation.FlaggedBy = &reviewerID
			violation.FlaggedAt = &now
			if err := s.repo.Session().UpdateViolation(ctx, tx, violation); err != nil {
				return fmt.Errorf("failed to update violation: %w", err)
			}
		}

		violations, err := s.repo.Session().GetViolations(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load violations: %w", err)
		}
		session.RiskScore, session.RiskLevel = RecomputeRisk(violations)

		if err := s.repo.Session().Update(ctx, tx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		resp = &FalsePositiveResponse{
			Violation: violation,
			RiskScore: session.RiskScore,
			RiskLevel: session.RiskLevel,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Violation marked as false positive",
		"session_id", sessionID,
		"position", req.Position,
		"reviewer_id", reviewerID,
		"risk_score", resp.RiskScore)

	return resp, nil
}

// ExportReviewQueue renders the pending review queue as an xlsx workbook for
// offline triage.
func (s *reviewService) ExportReviewQueue(ctx context.Context, reviewerID string) ([]byte, error) {
	sessions, err := s.ListForReview(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Review Queue"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Session ID", "Candidate ID", "Session Type", "Risk Score", "Risk Level", "Integrity Status", "Total Violations", "High", "Medium", "Low", "Start Time", "End Time"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write export header: %w", err)
		}
	}

	for row, session := range sessions {
		integrity := ""
		if session.Report != nil {
			integrity = string(session.Report.IntegrityStatus)
		}
		endTime := ""
		if session.EndTime != nil {
			endTime = session.EndTime.Format(time.RFC3339)
		}
		values := []interface{}{
			session.ID,
			session.CandidateID,
			string(session.SessionType),
			session.RiskScore,
			string(session.RiskLevel),
			integrity,
			session.Stats.TotalViolations,
			session.Stats.HighViolations,
			session.Stats.MediumViolations,
			session.Stats.LowViolations,
			session.StartTime.Format(time.RFC3339),
			endTime,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Review queue exported", "reviewer_id", reviewerID, "sessions", len(sessions))
	return buf.Bytes(), nil
}

func (s *reviewService) publishReviewSubmitted(session *models.ProctoringSession, report *models.SessionReport, reviewerID string) {
	if s.publisher == nil {
		return
	}
	event := &events.ProctoringEvent{
		ID:        uuid.NewString(),
		Type:      events.EventReviewSubmitted,
		Timestamp: time.Now().UTC(),
		Source:    "proctoring-service",
		Version:   "1.0",
		Data: events.ReviewSubmittedEvent{
			SessionID:   session.ID,
			CandidateID: session.CandidateID,
			Decision:    report.ReviewDecision,
			ReviewerID:  reviewerID,
			SubmittedAt: *report.ReviewedAt,
		},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishProctoringEvent(ctx, event); err != nil {
			s.logger.LogError(err, "Failed to publish review event", "session_id", session.ID)
		}
	}()
}
