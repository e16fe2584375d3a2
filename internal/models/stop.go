package models

import "time"

// Stop is a scheduled pickup or delivery belonging to exactly one shipment.
// Its lifecycle is tied to the parent shipment (cascade delete).
type Stop struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ShipmentID  uint      `gorm:"index;not null" json:"shipment_id"`
	Kind        string    `gorm:"index;not null" json:"kind"` // pickup / delivery
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Address     string    `gorm:"type:varchar(300)" json:"address"`
	City        string    `gorm:"type:varchar(120)" json:"city"`
	State       string    `gorm:"type:varchar(40)" json:"state"`
	Zip         string    `gorm:"type:varchar(20)" json:"zip"`
	ScheduledAt time.Time `gorm:"index;not null" json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (Stop) TableName() string {
	return "stops"
}
