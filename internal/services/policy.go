package services

import "github.com/SAP-F-2025/proctoring-service/internal/models"

// Escalation thresholds for the action policy.
const (
	// HighViolationTerminateCount is the number of high-severity violations at
	// which the session is terminated.
	HighViolationTerminateCount = 3

	// MediumViolationEscalateCount is the number of medium-severity violations
	// at which a warning escalates to a review flag.
	MediumViolationEscalateCount = 5
)

// PolicyDecision is the automated outcome for a newly appended violation.
type PolicyDecision struct {
	Action         models.ActionTaken
	AlertType      models.AlertType
	RequiresAction bool
	RaiseAlert     bool
}

// DecideAction evaluates the decision table for a violation given the
// session's post-append stats. The stats are the lifecycle manager's single
// source of truth: counters (including warnings issued for medium severity)
// are incremented before this runs, and the policy never re-derives them.
func DecideAction(v *models.Violation, stats models.SessionStats) PolicyDecision {
	switch v.Severity {
	case models.SeverityHigh:
		if stats.HighViolations >= HighViolationTerminateCount || v.Type == models.ViolationProxySuspected {
			return PolicyDecision{
				Action:         models.ActionTerminateSession,
				AlertType:      models.AlertTypeCritical,
				RequiresAction: true,
				RaiseAlert:     true,
			}
		}
		return PolicyDecision{
			Action:         models.ActionFlagForReview,
			AlertType:      models.AlertTypeCritical,
			RequiresAction: true,
			RaiseAlert:     true,
		}

	case models.SeverityMedium:
		if stats.MediumViolations >= MediumViolationEscalateCount {
			return PolicyDecision{
				Action:         models.ActionFlagForReview,
				AlertType:      models.AlertTypeAlert,
				RequiresAction: true,
				RaiseAlert:     true,
			}
		}
		return PolicyDecision{
			Action:         models.ActionWarningIssued,
			AlertType:      models.AlertTypeAlert,
			RequiresAction: false,
			RaiseAlert:     true,
		}

	default:
		return PolicyDecision{Action: models.ActionNone}
	}
}
