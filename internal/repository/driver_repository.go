package repository

import (
	"errors"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// DriverRepository is the driver data access interface.
type DriverRepository interface {
	Create(driver *models.Driver) error
	GetByID(id uint) (*models.Driver, error)
	GetByEmail(email string) (*models.Driver, error)
	List(filter DriverListFilter) ([]models.Driver, int64, error)
	Update(driver *models.Driver) error
	Delete(id uint) error
}

// GormDriverRepository is the GORM implementation.
type GormDriverRepository struct {
	db *gorm.DB
}

// NewDriverRepository creates a driver repository.
func NewDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// Create creates a driver.
func (r *GormDriverRepository) Create(driver *models.Driver) error {
	return r.db.Create(driver).Error
}

// GetByID fetches a driver by ID.
func (r *GormDriverRepository) GetByID(id uint) (*models.Driver, error) {
	var driver models.Driver
	if err := r.db.First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

// GetByEmail fetches a driver by email, matched case-insensitively.
func (r *GormDriverRepository) GetByEmail(email string) (*models.Driver, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var driver models.Driver
	if err := r.db.Where("LOWER(email) = ?", email).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

// List pages through drivers with the given filter.
func (r *GormDriverRepository) List(filter DriverListFilter) ([]models.Driver, int64, error) {
	query := r.db.Model(&models.Driver{})
	if filter.OnlyActive {
		query = query.Where("active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var drivers []models.Driver
	if err := applyPagination(query.Order("name ASC"), filter.Page, filter.PageSize).
		Find(&drivers).Error; err != nil {
		return nil, 0, err
	}
	return drivers, total, nil
}

// Update saves driver fields.
func (r *GormDriverRepository) Update(driver *models.Driver) error {
	return r.db.Save(driver).Error
}

// Delete soft deletes a driver.
func (r *GormDriverRepository) Delete(id uint) error {
	return r.db.Delete(&models.Driver{}, id).Error
}
