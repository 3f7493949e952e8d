package models

import (
	"time"

	"gorm.io/datatypes"
)

type ViolationType string

const (
	// Camera violations
	ViolationMultipleFaces    ViolationType = "multiple_faces"
	ViolationNoFaceDetected   ViolationType = "no_face_detected"
	ViolationFaceMismatch     ViolationType = "face_mismatch"
	ViolationSuspiciousGaze   ViolationType = "suspicious_gaze"
	ViolationHeadMovement     ViolationType = "head_movement"
	ViolationPostureShift     ViolationType = "posture_shift"
	ViolationMouthMovement    ViolationType = "mouth_movement"
	ViolationBackgroundPerson ViolationType = "background_person"
	ViolationProxySuspected   ViolationType = "proxy_suspected"

	// Screen violations
	ViolationFullscreenExit     ViolationType = "fullscreen_exit"
	ViolationTabSwitch          ViolationType = "tab_switch"
	ViolationRestrictedApp      ViolationType = "restricted_app"
	ViolationRestrictedWebsite  ViolationType = "restricted_website"
	ViolationCopyPaste          ViolationType = "copy_paste"
	ViolationScreenShare        ViolationType = "screen_share_detected"
	ViolationRemoteDesktop      ViolationType = "remote_desktop"
	ViolationVirtualMachine     ViolationType = "virtual_machine"
	ViolationOverlayDetected    ViolationType = "overlay_detected"
	ViolationSecondaryDevice    ViolationType = "secondary_device"

	// Audio violations
	ViolationBackgroundVoice ViolationType = "background_voice"
	ViolationCoaching        ViolationType = "coaching_detected"
	ViolationVoiceMismatch   ViolationType = "voice_mismatch"
	ViolationScriptedReading ViolationType = "scripted_reading"
	ViolationAnswerPlayback  ViolationType = "answer_playback"

	// Activity violations
	ViolationPhoneDetected      ViolationType = "phone_detected"
	ViolationExternalMaterial   ViolationType = "external_material"
	ViolationMutedWithMovement  ViolationType = "muted_with_movement"
	ViolationUnexplainedSilence ViolationType = "unexplained_silence"
	ViolationSpeakerMismatch    ViolationType = "speaker_mismatch"
)

type ViolationCategory string

const (
	CategoryCamera   ViolationCategory = "camera"
	CategoryScreen   ViolationCategory = "screen"
	CategoryAudio    ViolationCategory = "audio"
	CategoryActivity ViolationCategory = "activity"
)

type ViolationSeverity string

const (
	SeverityLow    ViolationSeverity = "low"
	SeverityMedium ViolationSeverity = "medium"
	SeverityHigh   ViolationSeverity = "high"
)

type ActionTaken string

const (
	ActionNone             ActionTaken = "none"
	ActionWarningIssued    ActionTaken = "warning_issued"
	ActionFlagForReview    ActionTaken = "flag_for_review"
	ActionTerminateSession ActionTaken = "terminate_session"
)

// Violation is a single reported suspicious event, embedded in its session.
// Violations are append-only: once written, only the false-positive flag and
// its review annotation may change.
type Violation struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	SessionID uint `json:"session_id" gorm:"not null;index"`

	// Position is the zero-based insertion order within the session. It is the
	// handle reviewers use to address a violation for annotation.
	Position int `json:"position" gorm:"not null;index:idx_violation_session_position,unique,composite:session_id"`

	Timestamp   time.Time         `json:"timestamp" gorm:"not null"`
	Type        ViolationType     `json:"type" gorm:"not null;size:50;index"`
	Category    ViolationCategory `json:"category" gorm:"not null;size:20;index"`
	Severity    ViolationSeverity `json:"severity" gorm:"not null;size:10;index"`
	Description string            `json:"description" gorm:"type:text"`

	// Evidence holds opaque blob references (screenshot/video/audio URLs) as
	// reported by the client sensors.
	Evidence datatypes.JSON `json:"evidence,omitempty" gorm:"type:jsonb"`

	// ActionTaken is set by the action policy at ingestion time, immutable after.
	ActionTaken ActionTaken `json:"action_taken" gorm:"not null;size:30"`

	// Review annotation
	FalsePositive bool       `json:"false_positive" gorm:"default:false"`
	FlaggedBy     *string    `json:"flagged_by,omitempty" gorm:"size:255"`
	FlaggedAt     *time.Time `json:"flagged_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Violation) TableName() string {
	return "proctoring_violations"
}
