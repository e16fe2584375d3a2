package models

import (
	"time"

	"gorm.io/gorm"
)

// Dispatcher is a back-office account with access to the dashboard API.
type Dispatcher struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(200)" json:"email,omitempty"`
	PasswordHash string         `gorm:"type:varchar(200);not null" json:"-"`
	InvitedBy    *uint          `json:"invited_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Dispatcher) TableName() string {
	return "dispatchers"
}
