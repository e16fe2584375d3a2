package models

import "time"

// ActivityLog is an append-only audit trail of dispatch actions.
type ActivityLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Actor      string    `gorm:"type:varchar(200);not null" json:"actor"`
	Action     string    `gorm:"index;type:varchar(60);not null" json:"action"`
	ShipmentID *uint     `gorm:"index" json:"shipment_id,omitempty"`
	DriverID   *uint     `gorm:"index" json:"driver_id,omitempty"`
	Detail     string    `gorm:"type:varchar(500)" json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
