package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
)

func TestDecideAction_LowSeverity(t *testing.T) {
	v := &models.Violation{Type: models.ViolationPostureShift, Severity: models.SeverityLow}
	decision := DecideAction(v, models.SessionStats{TotalViolations: 1, LowViolations: 1})

	assert.Equal(t, models.ActionNone, decision.Action)
	assert.False(t, decision.RaiseAlert)
	assert.False(t, decision.RequiresAction)
}

func TestDecideAction_MediumIssuesWarning(t *testing.T) {
	v := &models.Violation{Type: models.ViolationTabSwitch, Severity: models.SeverityMedium}
	decision := DecideAction(v, models.SessionStats{TotalViolations: 1, MediumViolations: 1})

	assert.Equal(t, models.ActionWarningIssued, decision.Action)
	assert.Equal(t, models.AlertTypeAlert, decision.AlertType)
	assert.True(t, decision.RaiseAlert)
	assert.False(t, decision.RequiresAction)
}

func TestDecideAction_FifthMediumEscalates(t *testing.T) {
	v := &models.Violation{Type: models.ViolationTabSwitch, Severity: models.SeverityMedium}

	fourth := DecideAction(v, models.SessionStats{MediumViolations: 4})
	assert.Equal(t, models.ActionWarningIssued, fourth.Action)

	fifth := DecideAction(v, models.SessionStats{MediumViolations: 5})
	assert.Equal(t, models.ActionFlagForReview, fifth.Action)
	assert.True(t, fifth.RequiresAction)
	assert.True(t, fifth.RaiseAlert)
}

func TestDecideAction_HighFlagsForReview(t *testing.T) {
	v := &models.Violation{Type: models.ViolationPhoneDetected, Severity: models.SeverityHigh}
	decision := DecideAction(v, models.SessionStats{HighViolations: 1})

	assert.Equal(t, models.ActionFlagForReview, decision.Action)
	assert.Equal(t, models.AlertTypeCritical, decision.AlertType)
	assert.True(t, decision.RequiresAction)
	assert.True(t, decision.RaiseAlert)
}

func TestDecideAction_ThirdHighTerminates(t *testing.T) {
	v := &models.Violation{Type: models.ViolationPhoneDetected, Severity: models.SeverityHigh}

	second := DecideAction(v, models.SessionStats{HighViolations: 2})
	assert.Equal(t, models.ActionFlagForReview, second.Action)

	third := DecideAction(v, models.SessionStats{HighViolations: 3})
	assert.Equal(t, models.ActionTerminateSession, third.Action)
	assert.Equal(t, models.AlertTypeCritical, third.AlertType)
}

func TestDecideAction_ProxySuspectedTerminatesImmediately(t *testing.T) {
	v := &models.Violation{Type: models.ViolationProxySuspected, Severity: models.SeverityHigh}
	decision := DecideAction(v, models.SessionStats{HighViolations: 1})

	assert.Equal(t, models.ActionTerminateSession, decision.Action)
	assert.True(t, decision.RequiresAction)
}
