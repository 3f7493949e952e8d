package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/proctoring-service/internal/cache"
	"github.com/SAP-F-2025/proctoring-service/internal/events"
	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

const (
	sessionCacheTTL       = 5 * time.Minute
	sessionCacheKeyFormat = "proctoring:session:%d"

	endReasonCompleted  = "completed"
	endReasonSuperseded = "superseded_by_new_session"
	endReasonPolicy     = "terminated_by_policy"
	endReasonReview     = "invalidated_by_review"
)

// Request/Response DTOs

type StartSessionRequest struct {
	CandidateID string                  `json:"candidate_id" validate:"required"`
	SessionType models.SessionType      `json:"session_type" validate:"required,session_type"`
	SessionRef  string                  `json:"session_ref" validate:"required,max=255"`
	Config      models.MonitoringConfig `json:"config"`
	DeviceInfo  map[string]interface{}  `json:"device_info,omitempty"`

	// ForceNew terminates a lingering active session for the candidate instead
	// of failing the start.
	ForceNew bool `json:"force_new"`
}

type ReportViolationRequest struct {
	Type        models.ViolationType     `json:"type" validate:"required"`
	Severity    models.ViolationSeverity `json:"severity" validate:"required,violation_severity"`
	Timestamp   *time.Time               `json:"timestamp,omitempty"`
	Description string                   `json:"description" validate:"max=2000"`
	Evidence    map[string]interface{}   `json:"evidence,omitempty"`
}

// ViolationResponse carries the appended violation together with the session
// state the policy and scorer produced for it.
type ViolationResponse struct {
	Violation *models.Violation    `json:"violation"`
	Action    models.ActionTaken   `json:"action_taken"`
	RiskScore int                  `json:"risk_score"`
	RiskLevel models.RiskLevel     `json:"risk_level"`
	Status    models.SessionStatus `json:"session_status"`
	Stats     models.SessionStats  `json:"stats"`
}

type EndSessionResponse struct {
	Session *models.ProctoringSession `json:"session"`
	Report  *models.SessionReport     `json:"report"`
}

type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*models.ProctoringSession, error)
	ReportViolation(ctx context.Context, sessionID uint, userID string, req *ReportViolationRequest) (*ViolationResponse, error)
	End(ctx context.Context, sessionID uint, userID string) (*EndSessionResponse, error)
	Pause(ctx context.Context, sessionID uint, userID string) (*models.ProctoringSession, error)
	Resume(ctx context.Context, sessionID uint, userID string) (*models.ProctoringSession, error)
	GetByID(ctx context.Context, sessionID uint, userID string) (*models.ProctoringSession, error)
	GetReport(ctx context.Context, sessionID uint, userID string) (*models.SessionReport, error)
	List(ctx context.Context, filters repositories.SessionFilters, userID string) ([]*models.ProctoringSession, int64, error)
}

type sessionService struct {
	repo      repositories.Repository
	alerts    AlertService
	publisher events.EventPublisher
	cache     cache.CacheService
	validator *utils.Validator
	logger    utils.Logger
}

func NewSessionService(
	repo repositories.Repository,
	alerts AlertService,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	validator *utils.Validator,
	logger utils.Logger,
) SessionService {
	return &sessionService{
		repo:      repo,
		alerts:    alerts,
		publisher: publisher,
		cache:     cacheService,
		validator: validator,
		logger:    logger.With("service", "session"),
	}
}

// Start opens a monitoring session for a candidate. The one-active-session
// rule is enforced by a partial unique index, so concurrent starts for the
// same candidate resolve to exactly one winner.
func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*models.ProctoringSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	deviceInfo, err := toJSON(req.DeviceInfo)
	if err != nil {
		return nil, fmt.Errorf("invalid device info: %w", err)
	}

	session := &models.ProctoringSession{
		CandidateID: req.CandidateID,
		SessionType: req.SessionType,
		SessionRef:  req.SessionRef,
		Status:      models.SessionActive,
		StartTime:   time.Now().UTC(),
		RiskLevel:   models.RiskClean,
		Config:      req.Config,
		DeviceInfo:  deviceInfo,
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if req.ForceNew {
			if err := s.supersedeActive(ctx, tx, req.CandidateID); err != nil {
				return err
			}
		}
		if err := s.repo.Session().Create(ctx, tx, session); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrSessionAlreadyActive
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:   session.ID,
		CandidateID: session.CandidateID,
		SessionType: session.SessionType,
		SessionRef:  session.SessionRef,
		StartedAt:   session.StartTime,
	})

	s.logger.Info("Proctoring session started",
		"session_id", session.ID,
		"candidate_id", session.CandidateID,
		"session_type", session.SessionType)

	return session, nil
}

// supersedeActive terminates a candidate's currently active session so a new
// one can start. Locks the old row so a concurrent violation append cannot
// land after the status flip.
func (s *sessionService) supersedeActive(ctx context.Context, tx *gorm.DB, candidateID string) error {
	active, err := s.repo.Session().GetActiveByCandidate(ctx, tx, candidateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to check active session: %w", err)
	}

	old, err := s.repo.Session().GetByIDForUpdate(ctx, tx, active.ID)
	if err != nil {
		return fmt.Errorf("failed to lock superseded session: %w", err)
	}
	if old.Status != models.SessionActive && old.Status != models.SessionPaused {
		return nil
	}

	now := time.Now().UTC()
	reason := endReasonSuperseded
	old.Status = models.SessionTerminated
	old.EndTime = &now
	old.EndReason = &reason
	old.DurationSeconds = int(now.Sub(old.StartTime).Seconds())

	if err := s.repo.Session().Update(ctx, tx, old); err != nil {
		return fmt.Errorf("failed to terminate superseded session: %w", err)
	}

	s.invalidateCache(old.ID)
	s.publishEvent(events.EventSessionTerminated, events.SessionTerminatedEvent{
		SessionID:    old.ID,
		CandidateID:  old.CandidateID,
		Reason:       reason,
		RiskScore:    old.RiskScore,
		RiskLevel:    old.RiskLevel,
		TerminatedAt: now,
	})
	return nil
}

// ReportViolation appends a violation to an active session and runs the full
// ingestion pipeline: classify, count, decide, rescore, and possibly
// terminate. The session row lock serializes concurrent appends so positions
// and counters never race.
func (s *sessionService) ReportViolation(ctx context.Context, sessionID uint, userID string, req *ReportViolationRequest) (*ViolationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	category, err := Classify(req.Type)
	if err != nil {
		return nil, err
	}

	evidence, err := toJSON(req.Evidence)
	if err != nil {
		return nil, fmt.Errorf("invalid evidence: %w", err)
	}

	var resp *ViolationResponse
	var terminated bool
	var session *models.ProctoringSession

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		session, err = s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}

		if session.CandidateID != userID {
			ok, err := isReviewer(ctx, s.repo, userID)
			if err != nil {
				return err
			}
			if !ok {
				return NewPermissionError(userID, sessionID, "session", "report_violation", "not session owner")
			}
		}

		if !session.IsActive() {
			return ErrSessionNotActive
		}

		timestamp := time.Now().UTC()
		if req.Timestamp != nil {
			timestamp = req.Timestamp.UTC()
		}

		// Counters move before the policy runs; the decision table reads
		// post-append stats.
		session.Stats.TotalViolations++
		switch req.Severity {
		case models.SeverityLow:
			session.Stats.LowViolations++
		case models.SeverityMedium:
			session.Stats.MediumViolations++
			session.Stats.WarningsIssued++
		case models.SeverityHigh:
			session.Stats.HighViolations++
		}
		switch req.Type {
		case models.ViolationTabSwitch:
			session.Stats.TabSwitchCount++
		case models.ViolationFullscreenExit:
			session.Stats.FullscreenExitCount++
		}

		violation := &models.Violation{
			SessionID:   session.ID,
			Position:    session.Stats.TotalViolations - 1,
			Timestamp:   timestamp,
			Type:        req.Type,
			Category:    category,
			Severity:    req.Severity,
			Description: req.Description,
			Evidence:    evidence,
		}

		decision := DecideAction(violation, session.Stats)
		violation.ActionTaken = decision.Action

		if err := s.repo.Session().AppendViolation(ctx, tx, violation); err != nil {
			return fmt.Errorf("failed to append violation: %w", err)
		}

		violations, err := s.repo.Session().GetViolations(ctx, tx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to load violations: %w", err)
		}
		session.RiskScore, session.RiskLevel = RecomputeRisk(violations)

		if decision.Action == models.ActionTerminateSession {
			now := time.Now().UTC()
			reason := endReasonPolicy
			session.Status = models.SessionTerminated
			session.EndTime = &now
			session.EndReason = &reason
			session.DurationSeconds = int(now.Sub(session.StartTime).Seconds())
			terminated = true
		}

		if err := s.repo.Session().Update(ctx, tx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		if decision.RaiseAlert {
			if _, err := s.alerts.Dispatch(ctx, tx, session, violation, decision); err != nil {
				return err
			}
		}

		resp = &ViolationResponse{
			Violation: violation,
			Action:    decision.Action,
			RiskScore: session.RiskScore,
			RiskLevel: session.RiskLevel,
			Status:    session.Status,
			Stats:     session.Stats,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(sessionID)

	if terminated {
		s.publishEvent(events.EventSessionTerminated, events.SessionTerminatedEvent{
			SessionID:    session.ID,
			CandidateID:  session.CandidateID,
			Reason:       endReasonPolicy,
			RiskScore:    session.RiskScore,
			RiskLevel:    session.RiskLevel,
			TerminatedAt: *session.EndTime,
		})
	}

	s.logger.Info("Violation recorded",
		"session_id", sessionID,
		"position", resp.Violation.Position,
		"type", resp.Violation.Type,
		"severity", resp.Violation.Severity,
		"action_taken", resp.Action,
		"risk_score", resp.RiskScore)

	return resp, nil
}

// End completes an active or paused session, freezes the stats, and generates
// the integrity report.
func (s *sessionService) End(ctx context.Context, sessionID uint, userID string) (*EndSessionResponse, error) {
	var session *models.ProctoringSession
	var report *models.SessionReport

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		session, err = s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}

		if err := s.authorize(ctx, session, userID, "end"); err != nil {
			return err
		}

		if session.IsTerminal() {
			return ErrSessionTerminal
		}

		now := time.Now().UTC()
		reason := endReasonCompleted
		session.Status = models.SessionCompleted
		session.EndTime = &now
		session.EndReason = &reason
		session.DurationSeconds = int(now.Sub(session.StartTime).Seconds())

		session.Violations, err = s.repo.Session().GetViolations(ctx, tx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to load violations: %w", err)
		}
		session.RiskScore, session.RiskLevel = RecomputeRisk(session.Violations)

		report, err = GenerateReport(session, now)
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		if err := s.repo.Session().Update(ctx, tx, session); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		if err := s.repo.Session().CreateReport(ctx, tx, report); err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(sessionID)
	s.publishEvent(events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:       session.ID,
		CandidateID:     session.CandidateID,
		IntegrityStatus: report.IntegrityStatus,
		RiskScore:       session.RiskScore,
		RiskLevel:       session.RiskLevel,
		TotalViolations: session.Stats.TotalViolations,
		DurationSeconds: session.DurationSeconds,
		CompletedAt:     *session.EndTime,
	})

	s.logger.Info("Proctoring session completed",
		"session_id", session.ID,
		"risk_score", session.RiskScore,
		"integrity_status", report.IntegrityStatus,
		"duration_seconds", session.DurationSeconds)

	return &EndSessionResponse{Session: session, Report: report}, nil
}

func (s *sessionService) Pause(ctx context.Context, sessionID uint, userID string) (*models.ProctoringSession, error) {
	return s.transition(ctx, sessionID, userID, "pause", func(session *models.ProctoringSession) error {
		if !session.IsActive() {
			return ErrSessionNotActive
		}
		session.Status = models.SessionPaused
		return nil
	})
}

func (s *sessionService) Resume(ctx context.Context, sessionID uint, userID string) (*models.ProctoringSession, error) {
	return s.transition(ctx, sessionID, userID, "resume", func(session *models.ProctoringSession) error {
		if session.Status != models.SessionPaused {
			return ErrSessionNotPaused
		}
		session.Status = models.SessionActive
		return nil
	})
}

func (s *sessionService) transition(ctx context.Context, sessionID uint, userID, action string, apply func(*models.ProctoringSession) error) (*models.ProctoringSession, error) {
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

		if err := s.authorize(ctx, session, userID, action); err != nil {
			return err
		}
		if err := apply(session); err != nil {
			return err
		}
		return s.repo.Session().Update(ctx, tx, session)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(sessionID)
	s.logger.Info("Session status changed", "session_id", sessionID, "action", action, "status", session.Status)
	return session, nil
}

// GetByID serves reads through the cache; session state changes invalidate it.
func (s *sessionService) GetByID(ctx context.Context, sessionID uint, userID string) (*models.ProctoringSession, error) {
	key := fmt.Sprintf(sessionCacheKeyFormat, sessionID)

	if s.cache != nil {
		var cached models.ProctoringSession
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if err := s.authorize(ctx, &cached, userID, "read"); err != nil {
				return nil, err
			}
			return &cached, nil
		}
	}

	session, err := s.repo.Session().GetByIDWithDetails(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := s.authorize(ctx, session, userID, "read"); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, session, sessionCacheTTL); err != nil {
			s.logger.Warn("Failed to cache session", "session_id", sessionID, "error", err)
		}
	}
	return session, nil
}

// GetReport returns the session report, generating it on first access for
// sessions that ended without one (legacy terminations). Generation is
// guarded by the report row's primary key so it happens at most once.
func (s *sessionService) GetReport(ctx context.Context, sessionID uint, userID string) (*models.SessionReport, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if err := s.authorize(ctx, session, userID, "read_report"); err != nil {
		return nil, err
	}

	report, err := s.repo.Session().GetReport(ctx, nil, sessionID)
	if err == nil {
		return report, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if !session.IsTerminal() {
		return nil, ErrSessionNotCompleted
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}

		// Re-check under the lock; a concurrent call may have generated it.
		report, err = s.repo.Session().GetReport(ctx, tx, sessionID)
		if err == nil {
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to get report: %w", err)
		}

		locked.Violations, err = s.repo.Session().GetViolations(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load violations: %w", err)
		}

		report, err = GenerateReport(locked, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		return s.repo.Session().CreateReport(ctx, tx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters, userID string) ([]*models.ProctoringSession, int64, error) {
	reviewer, err := isReviewer(ctx, s.repo, userID)
	if err != nil {
		return nil, 0, err
	}
	if !reviewer {
		// Candidates only ever see their own sessions.
		return s.repo.Session().GetByCandidate(ctx, nil, userID, filters)
	}
	return s.repo.Session().List(ctx, nil, filters)
}

func (s *sessionService) authorize(ctx context.Context, session *models.ProctoringSession, userID, action string) error {
	ok, err := canAccessSession(ctx, s.repo, session, userID)
	if err != nil {
		return err
	}
	if !ok {
		return NewPermissionError(userID, session.ID, "session", action, "not session owner or reviewer")
	}
	return nil
}

func (s *sessionService) invalidateCache(sessionID uint) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, fmt.Sprintf(sessionCacheKeyFormat, sessionID)); err != nil {
		s.logger.Warn("Failed to invalidate session cache", "session_id", sessionID, "error", err)
	}
}

func (s *sessionService) publishEvent(eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	event := &events.ProctoringEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "proctoring-service",
		Version:   "1.0",
		Data:      data,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishProctoringEvent(ctx, event); err != nil {
			s.logger.LogError(err, "Failed to publish proctoring event", "event_type", eventType)
		}
	}()
}

func toJSON(m map[string]interface{}) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
