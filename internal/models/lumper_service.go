package models

import "time"

// LumperService records a third-party unloading fee for a shipment, at most
// one per shipment. Driver-paid amounts feed into pay-statement reimbursements.
type LumperService struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	ShipmentID   uint      `gorm:"uniqueIndex;not null" json:"shipment_id"`
	FeeApplied   bool      `gorm:"not null;default:false" json:"fee_applied"`
	PaidBy       string    `gorm:"type:varchar(20)" json:"paid_by"` // broker / company / driver
	Amount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	DriverAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"driver_amount"`
	Reason       string    `gorm:"type:varchar(300)" json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (LumperService) TableName() string {
	return "lumper_services"
}
