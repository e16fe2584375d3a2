package repository

import (
	"errors"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// DispatcherRepository is the dispatcher account data access interface.
type DispatcherRepository interface {
	Create(dispatcher *models.Dispatcher) error
	GetByID(id uint) (*models.Dispatcher, error)
	GetByUsername(username string) (*models.Dispatcher, error)
	GetByEmail(email string) (*models.Dispatcher, error)
	Count() (int64, error)
	Update(dispatcher *models.Dispatcher) error
}

// GormDispatcherRepository is the GORM implementation.
type GormDispatcherRepository struct {
	db *gorm.DB
}

// NewDispatcherRepository creates a dispatcher repository.
func NewDispatcherRepository(db *gorm.DB) *GormDispatcherRepository {
	return &GormDispatcherRepository{db: db}
}

// Create creates a dispatcher account.
func (r *GormDispatcherRepository) Create(dispatcher *models.Dispatcher) error {
	return r.db.Create(dispatcher).Error
}

// GetByID fetches a dispatcher by ID.
func (r *GormDispatcherRepository) GetByID(id uint) (*models.Dispatcher, error) {
	var dispatcher models.Dispatcher
	if err := r.db.First(&dispatcher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dispatcher, nil
}

// GetByUsername fetches a dispatcher by username.
func (r *GormDispatcherRepository) GetByUsername(username string) (*models.Dispatcher, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var dispatcher models.Dispatcher
	if err := r.db.Where("username = ?", username).First(&dispatcher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dispatcher, nil
}

// GetByEmail fetches a dispatcher by email, matched case-insensitively.
func (r *GormDispatcherRepository) GetByEmail(email string) (*models.Dispatcher, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var dispatcher models.Dispatcher
	if err := r.db.Where("LOWER(email) = ?", email).First(&dispatcher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dispatcher, nil
}

// Count returns the number of dispatcher accounts.
func (r *GormDispatcherRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Dispatcher{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Update saves dispatcher fields.
func (r *GormDispatcherRepository) Update(dispatcher *models.Dispatcher) error {
	return r.db.Save(dispatcher).Error
}
