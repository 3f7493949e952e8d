package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/proctoring-service/internal/events"
	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
)

func TestAcknowledge_OnceOnly(t *testing.T) {
	f := newFakeRepository()
	f.addUser("reviewer-1", models.RoleReviewer)
	f.addUser("reviewer-2", models.RoleReviewer)
	svc, alerts, _ := newTestServices(f)

	session := startSession(t, svc, "cand-1")
	reportType(t, svc, session.ID, "cand-1", models.ViolationTabSwitch, models.SeverityMedium)

	stored, _, err := alerts.List(context.Background(), repositories.AlertFilters{}, "reviewer-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	alertID := stored[0].ID

	acked, err := alerts.Acknowledge(context.Background(), alertID, "reviewer-1")
	require.NoError(t, err)
	assert.True(t, acked.Acknowledged)
	require.NotNil(t, acked.AcknowledgedBy)
	assert.Equal(t, "reviewer-1", *acked.AcknowledgedBy)
	assert.NotNil(t, acked.AcknowledgedAt)

	// A second reviewer cannot claim the same alert.
	_, err = alerts.Acknowledge(context.Background(), alertID, "reviewer-2")
	assert.ErrorIs(t, err, ErrAlertAlreadyAcknowledged)
}

func TestAcknowledge_RequiresReviewer(t *testing.T) {
	f := newFakeRepository()
	f.addUser("cand-1", models.RoleCandidate)
	svc, alerts, _ := newTestServices(f)

	session := startSession(t, svc, "cand-1")
	reportType(t, svc, session.ID, "cand-1", models.ViolationPhoneDetected, models.SeverityHigh)

	_, err := alerts.Acknowledge(context.Background(), 1, "cand-1")
	assert.True(t, IsUnauthorized(err))
}

func TestAcknowledge_UnknownAlert(t *testing.T) {
	f := newFakeRepository()
	f.addUser("reviewer-1", models.RoleReviewer)
	_, alerts, _ := newTestServices(f)

	_, err := alerts.Acknowledge(context.Background(), 99, "reviewer-1")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestDispatch_PublishesAlertEvent(t *testing.T) {
	f := newFakeRepository()
	svc, _, publisher := newTestServices(f)

	session := startSession(t, svc, "cand-1")
	reportType(t, svc, session.ID, "cand-1", models.ViolationCoaching, models.SeverityHigh)

	assert.Eventually(t, func() bool {
		for _, e := range publisher.GetPublishedEvents() {
			if e.Type == events.EventAlertRaised {
				data, ok := e.Data.(events.AlertRaisedEvent)
				return ok && data.ViolationType == models.ViolationCoaching
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestCountUnacknowledged(t *testing.T) {
	f := newFakeRepository()
	f.addUser("reviewer-1", models.RoleReviewer)
	svc, alerts, _ := newTestServices(f)

	session := startSession(t, svc, "cand-1")
	reportType(t, svc, session.ID, "cand-1", models.ViolationTabSwitch, models.SeverityMedium)
	reportType(t, svc, session.ID, "cand-1", models.ViolationPhoneDetected, models.SeverityHigh)

	count, err := alerts.CountUnacknowledged(context.Background(), "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = alerts.Acknowledge(context.Background(), 1, "reviewer-1")
	require.NoError(t, err)

	count, err = alerts.CountUnacknowledged(context.Background(), "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
