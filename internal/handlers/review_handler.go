package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proctoring-service/internal/services"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
	validator     *utils.Validator
}

func NewReviewHandler(reviewService services.ReviewService, validator *utils.Validator, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
		validator:     validator,
	}
}

// ListReviewQueue returns completed sessions awaiting a review decision,
// highest risk first.
// @Router /proctoring/reviews [get]
func (h *ReviewHandler) ListReviewQueue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sessions, err := h.reviewService.ListForReview(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: sessions, Total: int64(len(sessions))})
}

// SubmitReview records the reviewer's decision for a session.
// @Router /proctoring/sessions/{id}/review [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting review", "session_id", sessionID, "decision", req.Decision)

	report, err := h.reviewService.SubmitReview(c.Request.Context(), sessionID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// MarkFalsePositive excludes one violation from scoring.
// @Router /proctoring/sessions/{id}/violations/{position}/false-positive [post]
func (h *ReviewHandler) MarkFalsePositive(c *gin.Context) {
	sessionID := parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	position := parsePositionParam(c)
	if position < 0 {
		return
	}

	req := &services.MarkFalsePositiveRequest{Position: position}

	h.LogRequest(c, "Marking violation as false positive", "session_id", sessionID, "position", position)

	resp, err := h.reviewService.MarkFalsePositive(c.Request.Context(), sessionID, userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportReviewQueue downloads the pending review queue as an xlsx workbook.
// @Router /proctoring/reviews/export [get]
func (h *ReviewHandler) ExportReviewQueue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	data, err := h.reviewService.ExportReviewQueue(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("review-queue-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
