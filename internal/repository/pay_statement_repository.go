package repository

import (
	"errors"

	"github.com/fleetdesk/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// PayStatementRepository is the pay statement data access interface.
type PayStatementRepository interface {
	Create(statement *models.PayStatement) error
	GetByID(id uint) (*models.PayStatement, error)
	List(filter PayStatementListFilter) ([]models.PayStatement, int64, error)
	Update(statement *models.PayStatement) error
	Delete(id uint) error
}

// GormPayStatementRepository is the GORM implementation.
type GormPayStatementRepository struct {
	db *gorm.DB
}

// NewPayStatementRepository creates a pay statement repository.
func NewPayStatementRepository(db *gorm.DB) *GormPayStatementRepository {
	return &GormPayStatementRepository{db: db}
}

// Create creates a pay statement.
func (r *GormPayStatementRepository) Create(statement *models.PayStatement) error {
	return r.db.Create(statement).Error
}

// GetByID fetches a pay statement with its driver.
func (r *GormPayStatementRepository) GetByID(id uint) (*models.PayStatement, error) {
	var statement models.PayStatement
	if err := r.db.Preload("Driver").First(&statement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &statement, nil
}

// List pages through pay statements with the given filter.
func (r *GormPayStatementRepository) List(filter PayStatementListFilter) ([]models.PayStatement, int64, error) {
	query := r.db.Model(&models.PayStatement{})
	if filter.DriverID > 0 {
		query = query.Where("driver_id = ?", filter.DriverID)
	}
	if filter.PeriodFrom != nil {
		query = query.Where("period_end >= ?", *filter.PeriodFrom)
	}
	if filter.PeriodTo != nil {
		query = query.Where("period_start <= ?", *filter.PeriodTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithDriver {
		query = query.Preload("Driver")
	}
	var statements []models.PayStatement
	if err := applyPagination(query.Order("period_start DESC, id DESC"), filter.Page, filter.PageSize).
		Find(&statements).Error; err != nil {
		return nil, 0, err
	}
	return statements, total, nil
}

// Update saves pay statement fields.
func (r *GormPayStatementRepository) Update(statement *models.PayStatement) error {
	return r.db.Save(statement).Error
}

// Delete removes a pay statement.
func (r *GormPayStatementRepository) Delete(id uint) error {
	return r.db.Delete(&models.PayStatement{}, id).Error
}
