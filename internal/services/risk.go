package services

import "github.com/SAP-F-2025/proctoring-service/internal/models"

// Severity weights and level cutoffs are product policy: they define the risk
// taxonomy's semantics and must not be changed without product confirmation.
const (
	RiskWeightLow    = 5
	RiskWeightMedium = 15
	RiskWeightHigh   = 30

	RiskScoreCap = 100

	// Level thresholds, inclusive upper bounds on the score.
	RiskLevelLowMax    = 15
	RiskLevelMediumMax = 40
	RiskLevelHighMax   = 70
)

// SeverityWeight returns the score contribution of one violation.
func SeverityWeight(severity models.ViolationSeverity) int {
	switch severity {
	case models.SeverityHigh:
		return RiskWeightHigh
	case models.SeverityMedium:
		return RiskWeightMedium
	default:
		return RiskWeightLow
	}
}

// RiskLevelForScore maps a 0-100 score to its discrete band.
func RiskLevelForScore(score int) models.RiskLevel {
	switch {
	case score <= 0:
		return models.RiskClean
	case score <= RiskLevelLowMax:
		return models.RiskLow
	case score <= RiskLevelMediumMax:
		return models.RiskMedium
	case score <= RiskLevelHighMax:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

// RecomputeRisk derives (score, level) from the current violation set. It is
// total and idempotent: it never reads the prior score, so flagging a
// violation as a false positive and recomputing deterministically lowers the
// result. False positives are excluded here but still counted in the stats.
func RecomputeRisk(violations []models.Violation) (int, models.RiskLevel) {
	score := 0
	for _, v := range violations {
		if v.FalsePositive {
			continue
		}
		score += SeverityWeight(v.Severity)
	}
	if score > RiskScoreCap {
		score = RiskScoreCap
	}
	return score, RiskLevelForScore(score)
}
