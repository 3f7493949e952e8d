package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"github.com/SAP-F-2025/proctoring-service/internal/services"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

type AlertHandler struct {
	BaseHandler
	alertService services.AlertService
}

func NewAlertHandler(alertService services.AlertService, logger utils.Logger) *AlertHandler {
	return &AlertHandler{
		BaseHandler:  NewBaseHandler(logger),
		alertService: alertService,
	}
}

// ListAlerts returns alerts matching the query filters.
// @Router /proctoring/alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filters repositories.AlertFilters
	filters.Limit, filters.Offset = parsePagination(c)

	if v := c.Query("session_id"); v != "" {
		if id := parseQueryID(v); id != 0 {
			filters.SessionID = &id
		}
	}
	if v := c.Query("candidate_id"); v != "" {
		filters.CandidateID = &v
	}
	if v := c.Query("alert_type"); v != "" {
		t := models.AlertType(v)
		filters.AlertType = &t
	}
	if v := c.Query("severity"); v != "" {
		s := models.ViolationSeverity(v)
		filters.Severity = &s
	}
	if v := c.Query("acknowledged"); v != "" {
		b := v == "true"
		filters.Acknowledged = &b
	}
	if v := c.Query("requires_action"); v != "" {
		b := v == "true"
		filters.RequiresAction = &b
	}

	alerts, total, err := h.alertService.List(c.Request.Context(), filters, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: alerts, Total: total})
}

// GetAlert returns a single alert.
// @Router /proctoring/alerts/{id} [get]
func (h *AlertHandler) GetAlert(c *gin.Context) {
	alertID := parseIDParam(c, "id")
	if alertID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	alert, err := h.alertService.GetByID(c.Request.Context(), alertID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, alert)
}

// AcknowledgeAlert claims an alert for the calling reviewer.
// @Router /proctoring/alerts/{id}/acknowledge [post]
func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	alertID := parseIDParam(c, "id")
	if alertID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Acknowledging alert", "alert_id", alertID)

	alert, err := h.alertService.Acknowledge(c.Request.Context(), alertID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, alert)
}

// GetUnacknowledgedCount returns the size of the open alert backlog.
// @Router /proctoring/alerts/unacknowledged/count [get]
func (h *AlertHandler) GetUnacknowledgedCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.alertService.CountUnacknowledged(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
