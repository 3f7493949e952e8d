package models

import (
	"time"

	"gorm.io/datatypes"
)

type IntegrityStatus string

const (
	IntegrityClean             IntegrityStatus = "clean"
	IntegrityReviewRecommended IntegrityStatus = "review_recommended"
	IntegrityHighSuspicion     IntegrityStatus = "high_suspicion"
)

type ReviewDecision string

const (
	ReviewPending     ReviewDecision = "pending"
	ReviewApproved    ReviewDecision = "approved"
	ReviewFlagged     ReviewDecision = "flagged"
	ReviewInvalidated ReviewDecision = "invalidated"
)

// SessionReport is generated exactly once per session at session end. Review
// decisions mutate only the review fields afterwards.
type SessionReport struct {
	SessionID uint `json:"session_id" gorm:"primaryKey"`

	IntegrityStatus IntegrityStatus `json:"integrity_status" gorm:"not null;size:30;index"`
	Summary         string          `json:"summary" gorm:"not null;type:text"`

	// Recommendations is a JSON array of reviewer-facing strings accumulated
	// from the fixed rule set.
	Recommendations datatypes.JSON `json:"recommendations" gorm:"type:jsonb"`

	// CategoryCounts is a JSON object of category -> non-false-positive
	// violation count at generation time.
	CategoryCounts datatypes.JSON `json:"category_counts" gorm:"type:jsonb"`

	RiskScore int       `json:"risk_score" gorm:"not null"`
	RiskLevel RiskLevel `json:"risk_level" gorm:"not null;size:10"`

	ReviewDecision ReviewDecision `json:"review_decision" gorm:"not null;default:pending;size:20;index" validate:"omitempty,review_decision"`
	ReviewedBy     *string        `json:"reviewed_by,omitempty" gorm:"size:255"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes    *string        `json:"review_notes,omitempty" gorm:"type:text"`

	GeneratedAt time.Time `json:"generated_at" gorm:"not null"`
}

func (SessionReport) TableName() string {
	return "proctoring_session_reports"
}
