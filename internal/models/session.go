package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionType string

const (
	SessionInterview       SessionType = "interview"
	SessionAptitude        SessionType = "aptitude"
	SessionGroupDiscussion SessionType = "group_discussion"
)

type SessionStatus string

const (
	SessionActive      SessionStatus = "active"
	SessionPaused      SessionStatus = "paused"
	SessionCompleted   SessionStatus = "completed"
	SessionTerminated  SessionStatus = "terminated"
	SessionUnderReview SessionStatus = "under_review"
)

type RiskLevel string

const (
	RiskClean    RiskLevel = "clean"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// MonitoringConfig is the snapshot of monitoring toggles captured at session
// start. It never changes for the lifetime of the session.
type MonitoringConfig struct {
	CameraEnabled      bool `json:"camera_enabled" gorm:"default:true"`
	ScreenEnabled      bool `json:"screen_enabled" gorm:"default:true"`
	AudioEnabled       bool `json:"audio_enabled" gorm:"default:true"`
	FullscreenRequired bool `json:"fullscreen_required" gorm:"default:false"`
	StrictMode         bool `json:"strict_mode" gorm:"default:false"`
}

// SessionStats carries the running counters updated on every violation append.
// False positives still count here; they are excluded from the risk score only.
type SessionStats struct {
	TotalViolations     int `json:"total_violations" gorm:"default:0"`
	LowViolations       int `json:"low_violations" gorm:"default:0"`
	MediumViolations    int `json:"medium_violations" gorm:"default:0"`
	HighViolations      int `json:"high_violations" gorm:"default:0"`
	WarningsIssued      int `json:"warnings_issued" gorm:"default:0"`
	TabSwitchCount      int `json:"tab_switch_count" gorm:"default:0"`
	FullscreenExitCount int `json:"fullscreen_exit_count" gorm:"default:0"`
}

// ProctoringSession is the aggregate root: one per monitored activity attempt.
// Status transitions and violation appends go through the session service only.
type ProctoringSession struct {
	ID uint `json:"id" gorm:"primaryKey"`

	CandidateID string      `json:"candidate_id" gorm:"not null;size:255;index"`
	SessionType SessionType `json:"session_type" gorm:"not null;size:30" validate:"omitempty,session_type"`

	// SessionRef is the opaque reference to the external activity
	// (interview id, test id, discussion id).
	SessionRef string `json:"session_ref" gorm:"not null;size:255;index"`

	Status SessionStatus `json:"status" gorm:"not null;default:active;size:20;index"`

	StartTime       time.Time  `json:"start_time" gorm:"not null"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds int        `json:"duration_seconds" gorm:"default:0"`
	EndReason       *string    `json:"end_reason,omitempty" gorm:"size:100"`

	// RiskScore is always recomputed from the non-false-positive violation set,
	// never edited directly.
	RiskScore int       `json:"risk_score" gorm:"default:0"`
	RiskLevel RiskLevel `json:"risk_level" gorm:"default:clean;size:10;index"`

	Config MonitoringConfig `json:"config" gorm:"embedded;embeddedPrefix:config_"`
	Stats  SessionStats     `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`

	DeviceInfo datatypes.JSON `json:"device_info,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Violations []Violation    `json:"violations,omitempty" gorm:"foreignKey:SessionID"`
	Report     *SessionReport `json:"report,omitempty" gorm:"foreignKey:SessionID"`
	Candidate  *User          `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
}

func (ProctoringSession) TableName() string {
	return "proctoring_sessions"
}

// IsActive reports whether the session accepts violation reports.
func (s *ProctoringSession) IsActive() bool {
	return s.Status == SessionActive
}

// IsTerminal reports whether the session can no longer be ended.
func (s *ProctoringSession) IsTerminal() bool {
	return s.Status == SessionCompleted ||
		s.Status == SessionTerminated ||
		s.Status == SessionUnderReview
}
