package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
)

func violationsOf(severities ...models.ViolationSeverity) []models.Violation {
	out := make([]models.Violation, len(severities))
	for i, s := range severities {
		out[i] = models.Violation{Position: i, Severity: s}
	}
	return out
}

func TestSeverityWeight(t *testing.T) {
	assert.Equal(t, 5, SeverityWeight(models.SeverityLow))
	assert.Equal(t, 15, SeverityWeight(models.SeverityMedium))
	assert.Equal(t, 30, SeverityWeight(models.SeverityHigh))
}

func TestRecomputeRisk_Accumulates(t *testing.T) {
	score, level := RecomputeRisk(violationsOf(
		models.SeverityLow,
		models.SeverityMedium,
		models.SeverityMedium,
	))
	assert.Equal(t, 35, score)
	assert.Equal(t, models.RiskMedium, level)
}

func TestRecomputeRisk_EmptyIsClean(t *testing.T) {
	score, level := RecomputeRisk(nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, models.RiskClean, level)
}

func TestRecomputeRisk_CapsAtHundred(t *testing.T) {
	score, level := RecomputeRisk(violationsOf(
		models.SeverityHigh,
		models.SeverityHigh,
		models.SeverityHigh,
		models.SeverityHigh,
	))
	assert.Equal(t, 100, score)
	assert.Equal(t, models.RiskCritical, level)
}

func TestRecomputeRisk_Deterministic(t *testing.T) {
	violations := violationsOf(models.SeverityHigh, models.SeverityLow, models.SeverityMedium)
	score1, level1 := RecomputeRisk(violations)
	score2, level2 := RecomputeRisk(violations)
	assert.Equal(t, score1, score2)
	assert.Equal(t, level1, level2)
	assert.Equal(t, 50, score1)
	assert.Equal(t, models.RiskHigh, level1)
}

func TestRecomputeRisk_FalsePositiveExcluded(t *testing.T) {
	violations := violationsOf(models.SeverityHigh, models.SeverityHigh)
	before, _ := RecomputeRisk(violations)
	assert.Equal(t, 60, before)

	violations[0].FalsePositive = true
	after, level := RecomputeRisk(violations)
	assert.Equal(t, 30, after)
	assert.Equal(t, models.RiskMedium, level)
	assert.Less(t, after, before)
}

func TestRiskLevelForScore_Bands(t *testing.T) {
	assert.Equal(t, models.RiskClean, RiskLevelForScore(0))
	assert.Equal(t, models.RiskLow, RiskLevelForScore(1))
	assert.Equal(t, models.RiskLow, RiskLevelForScore(15))
	assert.Equal(t, models.RiskMedium, RiskLevelForScore(16))
	assert.Equal(t, models.RiskMedium, RiskLevelForScore(40))
	assert.Equal(t, models.RiskHigh, RiskLevelForScore(41))
	assert.Equal(t, models.RiskHigh, RiskLevelForScore(70))
	assert.Equal(t, models.RiskCritical, RiskLevelForScore(71))
	assert.Equal(t, models.RiskCritical, RiskLevelForScore(100))
}
