package repository

import (
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// ActivityLogRepository is the activity log data access interface.
type ActivityLogRepository interface {
	Create(entry *models.ActivityLog) error
	List(filter ActivityLogListFilter) ([]models.ActivityLog, int64, error)
}

// GormActivityLogRepository is the GORM implementation.
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates an activity log repository.
func NewActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends a log entry.
func (r *GormActivityLogRepository) Create(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

// List pages through log entries with the given filter.
func (r *GormActivityLogRepository) List(filter ActivityLogListFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.Model(&models.ActivityLog{})
	if actor := strings.TrimSpace(filter.Actor); actor != "" {
		query = query.Where("actor = ?", actor)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ShipmentID > 0 {
		query = query.Where("shipment_id = ?", filter.ShipmentID)
	}
	if filter.DriverID > 0 {
		query = query.Where("driver_id = ?", filter.DriverID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ActivityLog
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
