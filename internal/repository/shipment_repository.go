package repository

import (
	"errors"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/models"

	"gorm.io/gorm"
)

// ShipmentRepository is the shipment data access interface.
type ShipmentRepository interface {
	Create(shipment *models.Shipment, stops []models.Stop) error
	GetByID(id uint) (*models.Shipment, error)
	GetByReferenceCode(code string) (*models.Shipment, error)
	List(filter ShipmentListFilter) ([]models.Shipment, int64, error)
	ListDeliveredByDriver(driverID uint) ([]models.Shipment, error)
	CountActiveByDriver() (map[uint]int64, error)
	Update(shipment *models.Shipment) error
	UpdateStatus(id uint, status string) error
	ReplaceStops(shipmentID uint, stops []models.Stop) error
	UpsertLumper(lumper *models.LumperService) error
	GetLumper(shipmentID uint) (*models.LumperService, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository is the GORM implementation.
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository creates a shipment repository.
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

func (r *GormShipmentRepository) withRelations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Driver").
		Preload("Broker").
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("scheduled_at ASC, id ASC")
		}).
		Preload("Lumper").
		Preload("Documents")
}

// Create creates the shipment together with its stops.
func (r *GormShipmentRepository) Create(shipment *models.Shipment, stops []models.Stop) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shipment).Error; err != nil {
			return err
		}
		for i := range stops {
			stops[i].ShipmentID = shipment.ID
		}
		if len(stops) > 0 {
			if err := tx.Create(&stops).Error; err != nil {
				return err
			}
		}
		shipment.Stops = stops
		return nil
	})
}

// GetByID fetches a shipment with all relations.
func (r *GormShipmentRepository) GetByID(id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.withRelations(r.db).First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByReferenceCode fetches a shipment by its reference code.
func (r *GormShipmentRepository) GetByReferenceCode(code string) (*models.Shipment, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var shipment models.Shipment
	if err := r.withRelations(r.db).Where("reference_code = ?", code).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// List pages through shipments with the given filter.
func (r *GormShipmentRepository) List(filter ShipmentListFilter) ([]models.Shipment, int64, error) {
	query := r.db.Model(&models.Shipment{})
	if filter.DriverID > 0 {
		query = query.Where("driver_id = ?", filter.DriverID)
	}
	if filter.BrokerID > 0 {
		query = query.Where("broker_id = ?", filter.BrokerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LoadType != "" {
		query = query.Where("load_type = ?", filter.LoadType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("reference_code LIKE ? OR broker_name LIKE ?", like, like)
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

	if filter.WithRelations {
		query = r.withRelations(query)
	}
	var shipments []models.Shipment
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).
		Find(&shipments).Error; err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

// ListDeliveredByDriver returns every delivered shipment for a driver with
// stops and lumper loaded. Period filtering happens in the service, which
// needs the stop rows to locate the earliest pickup anyway.
func (r *GormShipmentRepository) ListDeliveredByDriver(driverID uint) ([]models.Shipment, error) {
	if driverID == 0 {
		return nil, nil
	}
	var shipments []models.Shipment
	err := r.db.
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("scheduled_at ASC, id ASC")
		}).
		Preload("Lumper").
		Where("driver_id = ? AND status = ?", driverID, constants.ShipmentStatusDelivered).
		Order("id ASC").
		Find(&shipments).Error
	if err != nil {
		return nil, err
	}
	return shipments, nil
}

// CountActiveByDriver returns the number of non-delivered shipments per
// assigned driver. Drivers with no active shipments are absent from the map.
func (r *GormShipmentRepository) CountActiveByDriver() (map[uint]int64, error) {
	type row struct {
		DriverID uint
		Total    int64
	}
	var rows []row
	err := r.db.Model(&models.Shipment{}).
		Select("driver_id, COUNT(*) AS total").
		Where("driver_id IS NOT NULL AND status IN ?", []string{
			constants.ShipmentStatusScheduled,
			constants.ShipmentStatusInTransit,
		}).
		Group("driver_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.DriverID] = r.Total
	}
	return counts, nil
}

// Update saves shipment fields.
func (r *GormShipmentRepository) Update(shipment *models.Shipment) error {
	return r.db.Save(shipment).Error
}

// UpdateStatus updates the shipment status only.
func (r *GormShipmentRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Shipment{}).Where("id = ?", id).
		Update("status", status).Error
}

// ReplaceStops swaps the stop set of a shipment.
func (r *GormShipmentRepository) ReplaceStops(shipmentID uint, stops []models.Stop) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shipment_id = ?", shipmentID).Delete(&models.Stop{}).Error; err != nil {
			return err
		}
		for i := range stops {
			stops[i].ID = 0
			stops[i].ShipmentID = shipmentID
		}
		if len(stops) > 0 {
			if err := tx.Create(&stops).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertLumper creates or replaces the lumper record of a shipment.
func (r *GormShipmentRepository) UpsertLumper(lumper *models.LumperService) error {
	var existing models.LumperService
	err := r.db.Where("shipment_id = ?", lumper.ShipmentID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(lumper).Error
		}
		return err
	}
	lumper.ID = existing.ID
	lumper.CreatedAt = existing.CreatedAt
	return r.db.Save(lumper).Error
}

// GetLumper fetches the lumper record of a shipment.
func (r *GormShipmentRepository) GetLumper(shipmentID uint) (*models.LumperService, error) {
	var lumper models.LumperService
	if err := r.db.Where("shipment_id = ?", shipmentID).First(&lumper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lumper, nil
}

// Delete soft deletes a shipment.
func (r *GormShipmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Shipment{}, id).Error
}
