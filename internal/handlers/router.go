package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/proctoring-service/internal/config"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"github.com/SAP-F-2025/proctoring-service/internal/services"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	alertHandler   *AlertHandler
	reviewHandler  *ReviewHandler

	repo   repositories.Repository
	config *config.Config
	logger utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	repo repositories.Repository,
	cfg *config.Config,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(serviceManager.Session(), validator, logger),
		alertHandler:   NewAlertHandler(serviceManager.Alert(), logger),
		reviewHandler:  NewReviewHandler(serviceManager.Review(), validator, logger),
		repo:           repo,
		config:         cfg,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.config, hm.logger))
	{
		sessions := v1.Group("/proctoring/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/violations", hm.sessionHandler.ReportViolation)
			sessions.POST("/:id/end", hm.sessionHandler.EndSession)
			sessions.POST("/:id/pause", hm.sessionHandler.PauseSession)
			sessions.POST("/:id/resume", hm.sessionHandler.ResumeSession)
			sessions.GET("/:id/report", hm.sessionHandler.GetReport)

			// Reviewer actions on a session
			sessions.POST("/:id/review", hm.reviewHandler.SubmitReview)
			sessions.POST("/:id/violations/:position/false-positive", hm.reviewHandler.MarkFalsePositive)
		}

		alerts := v1.Group("/proctoring/alerts")
		{
			alerts.GET("", hm.alertHandler.ListAlerts)
			alerts.GET("/unacknowledged/count", hm.alertHandler.GetUnacknowledgedCount)
			alerts.GET("/:id", hm.alertHandler.GetAlert)
			alerts.POST("/:id/acknowledge", hm.alertHandler.AcknowledgeAlert)
		}

		reviews := v1.Group("/proctoring/reviews")
		{
			reviews.GET("", hm.reviewHandler.ListReviewQueue)
			reviews.GET("/export", hm.reviewHandler.ExportReviewQueue)
		}
	}
}

// HealthCheck reports service and database health.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "proctoring-service",
	})
}
