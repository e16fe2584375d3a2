package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDocumentRepositoryTest(t *testing.T) (*GormDocumentRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.LoadDocument{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewDocumentRepository(db), db
}

func TestDocumentStatusTransition(t *testing.T) {
	repo, _ := setupDocumentRepositoryTest(t)

	doc := &models.LoadDocument{
		ShipmentID:   9,
		Filename:     "ratecon.pdf",
		Status:       constants.DocumentStatusProcessing,
		OriginalSize: 2048,
	}
	if err := repo.Create(doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	uploadedAt := time.Now().UTC().Truncate(time.Second)
	err := repo.UpdateFields(doc.ID, map[string]interface{}{
		"status":            constants.DocumentStatusUploaded,
		"storage_path":      "load_9/1756600000_ratecon.pdf",
		"compressed_size":   1024,
		"compression_ratio": models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		"uploaded_at":       uploadedAt,
	})
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}

	got, err := repo.GetByID(doc.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != constants.DocumentStatusUploaded {
		t.Fatalf("status = %q, want uploaded", got.Status)
	}
	if got.StoragePath != "load_9/1756600000_ratecon.pdf" {
		t.Fatalf("storage path = %q", got.StoragePath)
	}
	if got.UploadedAt == nil {
		t.Fatal("uploaded_at not set")
	}
}

func TestDocumentFailureKeepsReason(t *testing.T) {
	repo, _ := setupDocumentRepositoryTest(t)

	doc := &models.LoadDocument{
		ShipmentID: 4,
		Filename:   "bol.pdf",
		Status:     constants.DocumentStatusProcessing,
	}
	if err := repo.Create(doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.UpdateFields(doc.ID, map[string]interface{}{
		"status":         constants.DocumentStatusFailed,
		"failure_reason": "compression service rejected the configured credentials",
	})
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}

	got, err := repo.GetByID(doc.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != constants.DocumentStatusFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
	if got.FailureReason == "" {
		t.Fatal("failure reason not persisted")
	}
}

func TestDocumentListByShipmentAndStatus(t *testing.T) {
	repo, _ := setupDocumentRepositoryTest(t)

	for i, status := range []string{
		constants.DocumentStatusUploaded,
		constants.DocumentStatusFailed,
		constants.DocumentStatusUploaded,
	} {
		doc := &models.LoadDocument{ShipmentID: 3, Filename: fmt.Sprintf("doc%d.pdf", i), Status: status}
		if err := repo.Create(doc); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	docs, total, err := repo.List(DocumentListFilter{Page: 1, PageSize: 10, ShipmentID: 3, Status: constants.DocumentStatusUploaded})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(docs) != 2 {
		t.Fatalf("total = %d, rows = %d, want 2/2", total, len(docs))
	}
}
