package repository

import (
	"errors"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// BrokerRepository is the broker data access interface.
type BrokerRepository interface {
	Create(broker *models.Broker) error
	GetByID(id uint) (*models.Broker, error)
	GetByMCNumber(mc string) (*models.Broker, error)
	List(filter BrokerListFilter) ([]models.Broker, int64, error)
	Update(broker *models.Broker) error
	Delete(id uint) error
}

// GormBrokerRepository is the GORM implementation.
type GormBrokerRepository struct {
	db *gorm.DB
}

// NewBrokerRepository creates a broker repository.
func NewBrokerRepository(db *gorm.DB) *GormBrokerRepository {
	return &GormBrokerRepository{db: db}
}

// Create creates a broker.
func (r *GormBrokerRepository) Create(broker *models.Broker) error {
	return r.db.Create(broker).Error
}

// GetByID fetches a broker by ID.
func (r *GormBrokerRepository) GetByID(id uint) (*models.Broker, error) {
	var broker models.Broker
	if err := r.db.First(&broker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &broker, nil
}

// GetByMCNumber fetches a broker by its MC number.
func (r *GormBrokerRepository) GetByMCNumber(mc string) (*models.Broker, error) {
	mc = strings.TrimSpace(mc)
	if mc == "" {
		return nil, nil
	}
	var broker models.Broker
	if err := r.db.Where("mc_number = ?", mc).First(&broker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &broker, nil
}

// List pages through brokers with the given filter.
func (r *GormBrokerRepository) List(filter BrokerListFilter) ([]models.Broker, int64, error) {
	query := r.db.Model(&models.Broker{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR mc_number LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var brokers []models.Broker
	if err := applyPagination(query.Order("name ASC"), filter.Page, filter.PageSize).
		Find(&brokers).Error; err != nil {
		return nil, 0, err
	}
	return brokers, total, nil
}

// Update saves broker fields.
func (r *GormBrokerRepository) Update(broker *models.Broker) error {
	return r.db.Save(broker).Error
}

// Delete removes a broker.
func (r *GormBrokerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Broker{}, id).Error
}
