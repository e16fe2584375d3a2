package models

import "time"

// LoadDocument is a shipment paperwork record (rate confirmation, BOL, POD).
// Status is a tagged enum: the storage path is set only for uploaded rows and
// the failure reason only for failed rows, instead of overloading a URL field
// with "processing" / "failed: ..." marker strings.
type LoadDocument struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	ShipmentID       uint       `gorm:"index;not null" json:"shipment_id"`
	Filename         string     `gorm:"type:varchar(300);not null" json:"filename"`
	Status           string     `gorm:"index;not null" json:"status"` // processing / uploaded / failed
	StoragePath      string     `gorm:"type:varchar(500)" json:"storage_path,omitempty"`
	FailureReason    string     `gorm:"type:varchar(500)" json:"failure_reason,omitempty"`
	OriginalSize     int64      `json:"original_size"`
	CompressedSize   int64      `json:"compressed_size"`
	CompressionRatio Money      `gorm:"type:decimal(20,2);not null;default:0" json:"compression_ratio"`
	UploadedAt       *time.Time `json:"uploaded_at,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName sets the table name.
func (LoadDocument) TableName() string {
	return "load_documents"
}
