package models

import (
	"time"

	"gorm.io/gorm"
)

// Broker is a freight broker contact book entry.
type Broker struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`
	Contact   string         `gorm:"type:varchar(200)" json:"contact,omitempty"`
	Phone     string         `gorm:"type:varchar(40)" json:"phone,omitempty"`
	Email     string         `gorm:"type:varchar(200)" json:"email,omitempty"`
	MCNumber  string         `gorm:"type:varchar(40)" json:"mc_number,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Broker) TableName() string {
	return "brokers"
}
