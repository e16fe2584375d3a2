package models

import (
	"time"

	"gorm.io/gorm"
)

// Driver is a company driver. Deactivation is a soft delete: the record stays
// for pay-statement history. Availability is computed from assigned
// non-delivered shipments and never stored.
type Driver struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(200);not null" json:"name"`
	Phone        string         `gorm:"type:varchar(40)" json:"phone,omitempty"`
	Email        string         `gorm:"uniqueIndex;type:varchar(200)" json:"email"`
	PasswordHash string         `gorm:"type:varchar(200)" json:"-"`
	PayRate      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"pay_rate"`
	Active       bool           `gorm:"index;not null;default:true" json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Driver) TableName() string {
	return "drivers"
}
