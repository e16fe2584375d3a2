package repository

import (
	"errors"

	"github.com/fleetdesk/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// DocumentRepository is the load document data access interface.
type DocumentRepository interface {
	Create(doc *models.LoadDocument) error
	GetByID(id uint) (*models.LoadDocument, error)
	List(filter DocumentListFilter) ([]models.LoadDocument, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(id uint) error
}

// GormDocumentRepository is the GORM implementation.
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a load document repository.
func NewDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create creates a document record.
func (r *GormDocumentRepository) Create(doc *models.LoadDocument) error {
	return r.db.Create(doc).Error
}

// GetByID fetches a document record.
func (r *GormDocumentRepository) GetByID(id uint) (*models.LoadDocument, error) {
	var doc models.LoadDocument
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// List pages through document records with the given filter.
func (r *GormDocumentRepository) List(filter DocumentListFilter) ([]models.LoadDocument, int64, error) {
	query := r.db.Model(&models.LoadDocument{})
	if filter.ShipmentID > 0 {
		query = query.Where("shipment_id = ?", filter.ShipmentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []models.LoadDocument
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// UpdateFields updates selected columns of a document record. Status
// transitions and their side fields go through here so partial writes stay
// in one statement.
func (r *GormDocumentRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.LoadDocument{}).Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes a document record.
func (r *GormDocumentRepository) Delete(id uint) error {
	return r.db.Delete(&models.LoadDocument{}, id).Error
}
