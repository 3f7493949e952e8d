package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"github.com/SAP-F-2025/proctoring-service/internal/services"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *utils.Validator
}

func NewSessionHandler(sessionService services.SessionService, validator *utils.Validator, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// StartSession opens a new proctoring session for the authenticated candidate.
// @Router /proctoring/sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.CandidateID = userID

	h.LogRequest(c, "Starting proctoring session", "session_type", req.SessionType, "session_ref", req.SessionRef)

	session, err := h.sessionService.Start(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ReportViolation appends a detected violation to the session.
// @Router /proctoring/sessions/{id}/violations [post]
func (h *SessionHandler) ReportViolation(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ReportViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.sessionService.ReportViolation(c.Request.Context(), sessionID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// EndSession completes the session and returns the generated report.
// @Router /proctoring/sessions/{id}/end [post]
func (h *SessionHandler) EndSession(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Ending proctoring session", "session_id", sessionID)

	resp, err := h.sessionService.End(c.Request.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PauseSession suspends monitoring without ending the session.
// @Router /proctoring/sessions/{id}/pause [post]
func (h *SessionHandler) PauseSession(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Pause(c.Request.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ResumeSession reactivates a paused session.
// @Router /proctoring/sessions/{id}/resume [post]
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Resume(c.Request.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetSession returns the session with violations and report.
// @Router /proctoring/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetReport returns the session's integrity report.
// @Router /proctoring/sessions/{id}/report [get]
func (h *SessionHandler) GetReport(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	report, err := h.sessionService.GetReport(c.Request.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListSessions returns sessions visible to the caller, with filters.
// @Router /proctoring/sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.SessionFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		DateFrom:  parseDateQuery(c, "date_from"),
		DateTo:    parseDateQuery(c, "date_to"),
	}
	filters.Limit, filters.Offset = parsePagination(c)

	if v := c.Query("candidate_id"); v != "" {
		filters.CandidateID = &v
	}
	if v := c.Query("session_type"); v != "" {
		t := models.SessionType(v)
		filters.SessionType = &t
	}
	if v := c.Query("status"); v != "" {
		s := models.SessionStatus(v)
		filters.Status = &s
	}
	if v := c.Query("risk_level"); v != "" {
		r := models.RiskLevel(v)
		filters.RiskLevel = &r
	}

	sessions, total, err := h.sessionService.List(c.Request.Context(), filters, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: sessions, Total: total})
}
