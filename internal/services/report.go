package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
)

// Report rule thresholds.
const (
	reportHighSuspicionScore = 40
	reportReviewScore        = 15
	reportReviewMediumCount  = 2
	reportTabSwitchLimit     = 3
	reportCameraLimit        = 5
)

// GenerateReport derives the integrity report from the session's violation set
// and stats. It is deterministic: identical inputs produce an identical report
// apart from the generation timestamp.
func GenerateReport(session *models.ProctoringSession, now time.Time) (*models.SessionReport, error) {
	categoryCounts := map[models.ViolationCategory]int{}
	coachingDetected := false
	for _, v := range session.Violations {
		if v.Type == models.ViolationCoaching && !v.FalsePositive {
			coachingDetected = true
		}
		if v.FalsePositive {
			continue
		}
		categoryCounts[v.Category]++
	}

	status := models.IntegrityClean
	switch {
	case session.RiskScore > reportHighSuspicionScore || session.Stats.HighViolations > 0:
		status = models.IntegrityHighSuspicion
	case session.RiskScore > reportReviewScore || session.Stats.MediumViolations > reportReviewMediumCount:
		status = models.IntegrityReviewRecommended
	}

	var recommendations []string
	if session.Stats.HighViolations > 0 {
		recommendations = append(recommendations, "manual review required")
	}
	if session.Stats.TabSwitchCount > reportTabSwitchLimit {
		recommendations = append(recommendations, "verify no external resources used")
	}
	if categoryCounts[models.CategoryCamera] > reportCameraLimit {
		recommendations = append(recommendations, "verify candidate identity")
	}
	if coachingDetected {
		recommendations = append(recommendations, "review audio recordings")
	}
	if recommendations == nil {
		recommendations = []string{}
	}

	summary := fmt.Sprintf(
		"Session recorded %d violation(s) (%d high, %d medium, %d low) for a risk score of %d/100; integrity status: %s.",
		session.Stats.TotalViolations,
		session.Stats.HighViolations,
		session.Stats.MediumViolations,
		session.Stats.LowViolations,
		session.RiskScore,
		status,
	)

	recJSON, err := json.Marshal(recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	countsJSON, err := json.Marshal(categoryCounts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal category counts: %w", err)
	}

	return &models.SessionReport{
		SessionID:       session.ID,
		IntegrityStatus: status,
		Summary:         summary,
		Recommendations: recJSON,
		CategoryCounts:  countsJSON,
		RiskScore:       session.RiskScore,
		RiskLevel:       session.RiskLevel,
		ReviewDecision:  models.ReviewPending,
		GeneratedAt:     now,
	}, nil
}
