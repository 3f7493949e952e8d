package services

import (
	"github.com/SAP-F-2025/proctoring-service/internal/cache"
	"github.com/SAP-F-2025/proctoring-service/internal/events"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
	"github.com/SAP-F-2025/proctoring-service/internal/utils"
)

// ServiceManager bundles the service surfaces for handler wiring.
type ServiceManager interface {
	Session() SessionService
	Alert() AlertService
	Review() ReviewService
}

type serviceManager struct {
	session SessionService
	alert   AlertService
	review  ReviewService
}

func NewServiceManager(
	repo repositories.Repository,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	validator *utils.Validator,
	logger utils.Logger,
) ServiceManager {
	alertService := NewAlertService(repo, publisher, logger)
	return &serviceManager{
		session: NewSessionService(repo, alertService, publisher, cacheService, validator, logger),
		alert:   alertService,
		review:  NewReviewService(repo, publisher, validator, logger),
	}
}

func (m *serviceManager) Session() SessionService { return m.session }
func (m *serviceManager) Alert() AlertService     { return m.alert }
func (m *serviceManager) Review() ReviewService   { return m.review }
