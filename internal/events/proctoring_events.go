package events

import (
	"time"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
)

// EventType represents the proctoring events published for downstream
// consumers (notification service, review dashboards).
type EventType string

const (
	EventAlertRaised       EventType = "proctoring.alert.raised"
	EventSessionStarted    EventType = "proctoring.session.started"
	EventSessionCompleted  EventType = "proctoring.session.completed"
	EventSessionTerminated EventType = "proctoring.session.terminated"
	EventReviewSubmitted   EventType = "proctoring.review.submitted"
)

// ProctoringEvent is the envelope for all published events.
type ProctoringEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type AlertRaisedEvent struct {
	AlertID        uint                     `json:"alert_id"`
	SessionID      uint                     `json:"session_id"`
	CandidateID    string                   `json:"candidate_id"`
	AlertType      models.AlertType         `json:"alert_type"`
	ViolationType  models.ViolationType     `json:"violation_type"`
	Severity       models.ViolationSeverity `json:"severity"`
	ActionTaken    models.ActionTaken       `json:"action_taken"`
	RequiresAction bool                     `json:"requires_action"`
	RiskScore      int                      `json:"risk_score"`
	RiskLevel      models.RiskLevel         `json:"risk_level"`
	RaisedAt       time.Time                `json:"raised_at"`
}

type SessionStartedEvent struct {
	SessionID   uint               `json:"session_id"`
	CandidateID string             `json:"candidate_id"`
	SessionType models.SessionType `json:"session_type"`
	SessionRef  string             `json:"session_ref"`
	StartedAt   time.Time          `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID       uint                   `json:"session_id"`
	CandidateID     string                 `json:"candidate_id"`
	IntegrityStatus models.IntegrityStatus `json:"integrity_status"`
	RiskScore       int                    `json:"risk_score"`
	RiskLevel       models.RiskLevel       `json:"risk_level"`
	TotalViolations int                    `json:"total_violations"`
	DurationSeconds int                    `json:"duration_seconds"`
	CompletedAt     time.Time              `json:"completed_at"`
}

type SessionTerminatedEvent struct {
	SessionID    uint             `json:"session_id"`
	CandidateID  string           `json:"candidate_id"`
	Reason       string           `json:"reason"`
	RiskScore    int              `json:"risk_score"`
	RiskLevel    models.RiskLevel `json:"risk_level"`
	TerminatedAt time.Time        `json:"terminated_at"`
}

type ReviewSubmittedEvent struct {
	SessionID   uint                  `json:"session_id"`
	CandidateID string                `json:"candidate_id"`
	Decision    models.ReviewDecision `json:"decision"`
	ReviewerID  string                `json:"reviewer_id"`
	SubmittedAt time.Time             `json:"submitted_at"`
}
