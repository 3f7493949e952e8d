package models

import "time"

type AlertType string

const (
	AlertTypeAlert    AlertType = "alert"
	AlertTypeCritical AlertType = "critical"
)

// ProctoringAlert is the reviewer-facing record raised for every medium/high
// severity violation. It is decoupled from the session record so reviewers can
// query alerts across sessions regardless of later status changes.
type ProctoringAlert struct {
	ID uint `json:"id" gorm:"primaryKey"`

	SessionID   uint   `json:"session_id" gorm:"not null;index"`
	CandidateID string `json:"candidate_id" gorm:"not null;size:255;index"`

	AlertType AlertType `json:"alert_type" gorm:"not null;size:20;index"`

	// Copy of the triggering violation, so the alert stays meaningful even if
	// the violation is later marked a false positive.
	ViolationType     ViolationType     `json:"violation_type" gorm:"not null;size:50"`
	ViolationSeverity ViolationSeverity `json:"violation_severity" gorm:"not null;size:10"`
	ViolationPosition int               `json:"violation_position" gorm:"not null"`

	Message     string      `json:"message" gorm:"not null;type:text"`
	ActionTaken ActionTaken `json:"action_taken" gorm:"not null;size:30"`

	RequiresAction bool `json:"requires_action" gorm:"default:false;index"`

	Acknowledged   bool       `json:"acknowledged" gorm:"default:false;index"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty" gorm:"size:255"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Relations
	Session *ProctoringSession `json:"session,omitempty" gorm:"foreignKey:SessionID"`
}

func (ProctoringAlert) TableName() string {
	return "proctoring_alerts"
}
