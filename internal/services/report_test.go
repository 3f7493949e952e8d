package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
)

func reportSession(violations []models.Violation) *models.ProctoringSession {
	session := &models.ProctoringSession{
		ID:         7,
		Violations: violations,
	}
	for _, v := range violations {
		session.Stats.TotalViolations++
		switch v.Severity {
		case models.SeverityLow:
			session.Stats.LowViolations++
		case models.SeverityMedium:
			session.Stats.MediumViolations++
		case models.SeverityHigh:
			session.Stats.HighViolations++
		}
		if v.Type == models.ViolationTabSwitch {
			session.Stats.TabSwitchCount++
		}
	}
	session.RiskScore, session.RiskLevel = RecomputeRisk(violations)
	return session
}

func recommendationsOf(t *testing.T, report *models.SessionReport) []string {
	t.Helper()
	var recs []string
	require.NoError(t, json.Unmarshal(report.Recommendations, &recs))
	return recs
}

func TestGenerateReport_CleanSession(t *testing.T) {
	now := time.Now().UTC()
	report, err := GenerateReport(reportSession(nil), now)
	require.NoError(t, err)

	assert.Equal(t, models.IntegrityClean, report.IntegrityStatus)
	assert.Equal(t, 0, report.RiskScore)
	assert.Equal(t, models.ReviewPending, report.ReviewDecision)
	assert.Empty(t, recommendationsOf(t, report))
	assert.Contains(t, report.Summary, "0 violation(s)")
	assert.Contains(t, report.Summary, "integrity status: clean")
	assert.Equal(t, now, report.GeneratedAt)
}

func TestGenerateReport_HighViolationMeansHighSuspicion(t *testing.T) {
	session := reportSession([]models.Violation{
		{Position: 0, Type: models.ViolationPhoneDetected, Category: models.CategoryActivity, Severity: models.SeverityHigh},
	})

	report, err := GenerateReport(session, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, models.IntegrityHighSuspicion, report.IntegrityStatus)
	assert.Contains(t, recommendationsOf(t, report), "manual review required")
}

func TestGenerateReport_MediumsRecommendReview(t *testing.T) {
	session := reportSession([]models.Violation{
		{Position: 0, Type: models.ViolationTabSwitch, Category: models.CategoryScreen, Severity: models.SeverityMedium},
		{Position: 1, Type: models.ViolationTabSwitch, Category: models.CategoryScreen, Severity: models.SeverityMedium},
	})

	report, err := GenerateReport(session, time.Now().UTC())
	require.NoError(t, err)

	// 30 points, no highs: review recommended, not high suspicion.
	assert.Equal(t, models.IntegrityReviewRecommended, report.IntegrityStatus)
}

func TestGenerateReport_TabSwitchRecommendation(t *testing.T) {
	var violations []models.Violation
	for i := 0; i < 4; i++ {
		violations = append(violations, models.Violation{
			Position: i,
			Type:     models.ViolationTabSwitch,
			Category: models.CategoryScreen,
			Severity: models.SeverityLow,
		})
	}

	report, err := GenerateReport(reportSession(violations), time.Now().UTC())
	require.NoError(t, err)

	assert.Contains(t, recommendationsOf(t, report), "verify no external resources used")
}

func TestGenerateReport_CoachingRecommendation(t *testing.T) {
	session := reportSession([]models.Violation{
		{Position: 0, Type: models.ViolationCoaching, Category: models.CategoryAudio, Severity: models.SeverityHigh},
	})

	report, err := GenerateReport(session, time.Now().UTC())
	require.NoError(t, err)

	recs := recommendationsOf(t, report)
	assert.Contains(t, recs, "review audio recordings")
	assert.Contains(t, recs, "manual review required")
}

func TestGenerateReport_FalsePositivesExcludedFromCounts(t *testing.T) {
	violations := []models.Violation{
		{Position: 0, Type: models.ViolationMultipleFaces, Category: models.CategoryCamera, Severity: models.SeverityMedium, FalsePositive: true},
		{Position: 1, Type: models.ViolationTabSwitch, Category: models.CategoryScreen, Severity: models.SeverityMedium},
	}

	report, err := GenerateReport(reportSession(violations), time.Now().UTC())
	require.NoError(t, err)

	var counts map[models.ViolationCategory]int
	require.NoError(t, json.Unmarshal(report.CategoryCounts, &counts))
	assert.Equal(t, 0, counts[models.CategoryCamera])
	assert.Equal(t, 1, counts[models.CategoryScreen])
}

func TestGenerateReport_Deterministic(t *testing.T) {
	session := reportSession([]models.Violation{
		{Position: 0, Type: models.ViolationTabSwitch, Category: models.CategoryScreen, Severity: models.SeverityMedium},
		{Position: 1, Type: models.ViolationPhoneDetected, Category: models.CategoryActivity, Severity: models.SeverityHigh},
	})
	now := time.Now().UTC()

	first, err := GenerateReport(session, now)
	require.NoError(t, err)
	second, err := GenerateReport(session, now)
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.IntegrityStatus, second.IntegrityStatus)
	assert.JSONEq(t, string(first.Recommendations), string(second.Recommendations))
	assert.JSONEq(t, string(first.CategoryCounts), string(second.CategoryCounts))
}
