package service

import (
	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"
)

// ActivityService records and lists dashboard activity.
type ActivityService struct {
	activityRepo repository.ActivityLogRepository
}

// NewActivityService creates an activity service.
func NewActivityService(activityRepo repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Log appends an entry. Logging never fails the calling operation.
func (s *ActivityService) Log(actor, action string, shipmentID, driverID *uint, detail string) {
	entry := &models.ActivityLog{
		Actor:      actor,
		Action:     action,
		ShipmentID: shipmentID,
		DriverID:   driverID,
		Detail:     detail,
	}
	if err := s.activityRepo.Create(entry); err != nil {
		logger.Warnw("activity log write failed", "action", action, "error", err)
	}
}

// List pages through activity entries.
func (s *ActivityService) List(filter repository.ActivityLogListFilter) ([]models.ActivityLog, int64, error) {
	return s.activityRepo.List(filter)
}
