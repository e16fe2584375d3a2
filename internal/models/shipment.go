package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment is a single dispatch job (a "load"): one or more pickups, one or
// more deliveries, an assigned driver, and a contracted rate.
type Shipment struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ReferenceCode string         `gorm:"uniqueIndex;not null" json:"reference_code"`
	DriverID      *uint          `gorm:"index" json:"driver_id,omitempty"`
	BrokerID      *uint          `gorm:"index" json:"broker_id,omitempty"`
	Rate          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"rate"`
	Status        string         `gorm:"index;not null" json:"status"`
	LoadType      string         `gorm:"type:varchar(20)" json:"load_type,omitempty"`
	TemperatureF  *int           `json:"temperature_f,omitempty"` // reefer loads only
	BrokerName    string         `gorm:"type:varchar(200)" json:"broker_name,omitempty"`
	BrokerContact string         `gorm:"type:varchar(200)" json:"broker_contact,omitempty"`
	BrokerPhone   string         `gorm:"type:varchar(40)" json:"broker_phone,omitempty"`
	BrokerEmail   string         `gorm:"type:varchar(200)" json:"broker_email,omitempty"`
	Notes         string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Driver    *Driver        `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Broker    *Broker        `gorm:"foreignKey:BrokerID" json:"broker,omitempty"`
	Stops     []Stop         `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"stops,omitempty"`
	Lumper    *LumperService `gorm:"foreignKey:ShipmentID" json:"lumper,omitempty"`
	Documents []LoadDocument `gorm:"foreignKey:ShipmentID" json:"documents,omitempty"`
}

// TableName sets the table name.
func (Shipment) TableName() string {
	return "shipments"
}

// Pickups returns the pickup stops in slice order.
func (s *Shipment) Pickups() []Stop {
	return s.stopsOfKind("pickup")
}

// Deliveries returns the delivery stops in slice order.
func (s *Shipment) Deliveries() []Stop {
	return s.stopsOfKind("delivery")
}

func (s *Shipment) stopsOfKind(kind string) []Stop {
	var stops []Stop
	for _, stop := range s.Stops {
		if stop.Kind == kind {
			stops = append(stops, stop)
		}
	}
	return stops
}
