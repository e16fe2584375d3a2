package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fleetdesk/fleetdesk/internal/compress"
	"github.com/fleetdesk/fleetdesk/internal/config"
	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/queue"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/storage"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubCompressor struct {
	err    error
	output []byte
	calls  int
}

func (c *stubCompressor) Compress(ctx context.Context, filename string, data []byte) (*compress.Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := c.output
	if out == nil {
		out = data[:len(data)/2]
	}
	return &compress.Result{
		Data:           out,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(out)),
	}, nil
}

func (c *stubCompressor) SelfTest(ctx context.Context) error {
	return c.err
}

// validPDF builds a structurally valid PDF body.
func validPDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	for buf.Len() < 400 {
		buf.WriteString("% padding line for minimum size\n")
	}
	buf.WriteString("xref\n0 1\ntrailer\n<< /Size 1 >>\nstartxref\n9\n%%EOF\n")
	return buf.Bytes()
}

func setupDocumentTest(t *testing.T, compressor *stubCompressor) (*DocumentService, *storage.Store, *gorm.DB, uint) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Driver{}, &models.Broker{}, &models.Shipment{}, &models.Stop{},
		&models.LumperService{}, &models.LoadDocument{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	store, err := storage.New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("create store failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Upload.MaxSize = 25 * 1024 * 1024
	cfg.Upload.AllowedTypes = []string{"application/pdf"}
	cfg.Compression.Enabled = compressor != nil

	queueClient, err := queue.NewClient(nil) // disabled, async falls back to sync
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}

	svc := NewDocumentService(
		cfg,
		repository.NewDocumentRepository(db),
		repository.NewShipmentRepository(db),
		repository.NewActivityLogRepository(db),
		compressor,
		store,
		queueClient,
	)

	shipment := &models.Shipment{
		ReferenceCode: "RC-DOC",
		Rate:          models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
		Status:        constants.ShipmentStatusInTransit,
		LoadType:      constants.LoadTypeDryVan,
	}
	if err := db.Create(shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	return svc, store, db, shipment.ID
}

func TestValidateUploadMessages(t *testing.T) {
	svc, _, _, _ := setupDocumentTest(t, nil)

	err := svc.ValidateUpload("image/png", validPDF(t))
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Message != "Please upload a PDF file" {
		t.Fatalf("content type error = %v", err)
	}

	err = svc.ValidateUpload("application/pdf", []byte("%PDF-1.4 tiny"))
	if !errors.As(err, &vErr) || !strings.Contains(vErr.Message, "too small") {
		t.Fatalf("structural error = %v", err)
	}

	big := make([]byte, 26*1024*1024)
	err = svc.ValidateUpload("application/pdf", big)
	if !errors.As(err, &vErr) || !strings.Contains(vErr.Message, "too large") {
		t.Fatalf("size error = %v", err)
	}

	if err := svc.ValidateUpload("application/pdf; charset=binary", validPDF(t)); err != nil {
		t.Fatalf("valid upload rejected: %v", err)
	}
}

func TestProcessSyncCompressesAndUploads(t *testing.T) {
	compressor := &stubCompressor{output: []byte("compressed-bytes")}
	svc, store, _, shipmentID := setupDocumentTest(t, compressor)

	doc, err := svc.ProcessSync(context.Background(), UploadInput{
		ShipmentID:  shipmentID,
		Filename:    "ratecon.pdf",
		ContentType: "application/pdf",
		Data:        validPDF(t),
		Actor:       "dispatch",
	})
	if err != nil {
		t.Fatalf("ProcessSync failed: %v", err)
	}
	if doc.Status != constants.DocumentStatusUploaded {
		t.Fatalf("status = %q, want uploaded (reason: %s)", doc.Status, doc.FailureReason)
	}
	if !strings.HasPrefix(doc.StoragePath, fmt.Sprintf("load_%d/", shipmentID)) {
		t.Fatalf("storage path = %q", doc.StoragePath)
	}
	if doc.UploadedAt == nil {
		t.Fatal("uploaded_at not set")
	}
	if doc.CompressedSize != int64(len("compressed-bytes")) {
		t.Fatalf("compressed size = %d", doc.CompressedSize)
	}

	stored, err := store.Get(doc.StoragePath)
	if err != nil {
		t.Fatalf("stored object missing: %v", err)
	}
	if string(stored) != "compressed-bytes" {
		t.Fatalf("stored bytes = %q, want compressed output", stored)
	}
}

func TestProcessSyncStoresCompressionRatio(t *testing.T) {
	original := validPDF(t)
	// Pad to a length divisible by four so a three-quarter output gives an
	// exact percentage.
	for len(original)%4 != 0 {
		original = append(original, '\n')
	}
	compressor := &stubCompressor{output: make([]byte, len(original)/4*3)}
	svc, _, _, shipmentID := setupDocumentTest(t, compressor)

	doc, err := svc.ProcessSync(context.Background(), UploadInput{
		ShipmentID:  shipmentID,
		Filename:    "ratecon.pdf",
		ContentType: "application/pdf",
		Data:        original,
		Actor:       "dispatch",
	})
	if err != nil {
		t.Fatalf("ProcessSync failed: %v", err)
	}
	if got := doc.CompressionRatio.Decimal.StringFixed(2); got != "25.00" {
		t.Fatalf("compression ratio = %s, want 25.00", got)
	}
}

func TestProcessSyncRejectedUploadNeverCompresses(t *testing.T) {
	compressor := &stubCompressor{}
	svc, _, _, shipmentID := setupDocumentTest(t, compressor)

	_, err := svc.ProcessSync(context.Background(), UploadInput{
		ShipmentID:  shipmentID,
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Data:        []byte("just some notes"),
		Actor:       "dispatch",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if compressor.calls != 0 {
		t.Fatalf("compressor called %d times for a rejected upload", compressor.calls)
	}
}

func TestProcessSyncRecordsCompressionFailure(t *testing.T) {
	compressor := &stubCompressor{err: compress.ErrInvalidCredentials}
	svc, _, _, shipmentID := setupDocumentTest(t, compressor)

	doc, err := svc.ProcessSync(context.Background(), UploadInput{
		ShipmentID:  shipmentID,
		Filename:    "ratecon.pdf",
		ContentType: "application/pdf",
		Data:        validPDF(t),
		Actor:       "dispatch",
	})
	if err != nil {
		t.Fatalf("ProcessSync failed: %v", err)
	}
	if doc.Status != constants.DocumentStatusFailed {
		t.Fatalf("status = %q, want failed", doc.Status)
	}
	if !strings.Contains(doc.FailureReason, "credentials") {
		t.Fatalf("failure reason = %q", doc.FailureReason)
	}
}

func TestProcessSyncSkipsDisabledCompression(t *testing.T) {
	svc, store, _, shipmentID := setupDocumentTest(t, nil)
	original := validPDF(t)

	doc, err := svc.ProcessSync(context.Background(), UploadInput{
		ShipmentID:  shipmentID,
		Filename:    "bol.pdf",
		ContentType: "application/pdf",
		Data:        original,
		Actor:       "dispatch",
	})
	if err != nil {
		t.Fatalf("ProcessSync failed: %v", err)
	}
	if doc.Status != constants.DocumentStatusUploaded {
		t.Fatalf("status = %q, want uploaded", doc.Status)
	}
	if doc.CompressedSize != 0 {
		t.Fatalf("compressed size = %d, want 0 when compression is off", doc.CompressedSize)
	}

	stored, err := store.Get(doc.StoragePath)
	if err != nil {
		t.Fatalf("stored object missing: %v", err)
	}
	if !bytes.Equal(stored, original) {
		t.Fatal("original bytes not stored verbatim")
	}
}

func TestProcessStoredCleansTempBlob(t *testing.T) {
	cases := []struct {
		name       string
		compressor *stubCompressor
		wantStatus string
	}{
		{"success", &stubCompressor{}, constants.DocumentStatusUploaded},
		{"compression failure", &stubCompressor{err: compress.ErrService}, constants.DocumentStatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, db, shipmentID := setupDocumentTest(t, tc.compressor)

			doc := &models.LoadDocument{
				ShipmentID:   shipmentID,
				Filename:     "staged.pdf",
				Status:       constants.DocumentStatusProcessing,
				OriginalSize: 400,
			}
			if err := db.Create(doc).Error; err != nil {
				t.Fatalf("create document row failed: %v", err)
			}

			tempID, err := store.PutTemp(validPDF(t))
			if err != nil {
				t.Fatalf("stage blob failed: %v", err)
			}

			_ = svc.ProcessStored(context.Background(), queue.DocumentProcessPayload{
				DocumentID: doc.ID,
				ShipmentID: shipmentID,
				TempBlobID: tempID,
				Filename:   "staged.pdf",
				Actor:      "driver",
			})

			if _, err := store.GetTemp(tempID); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("temp blob survived: err = %v", err)
			}

			var got models.LoadDocument
			if err := db.First(&got, doc.ID).Error; err != nil {
				t.Fatalf("reload document failed: %v", err)
			}
			if got.Status != tc.wantStatus {
				t.Fatalf("status = %q, want %q", got.Status, tc.wantStatus)
			}
		})
	}
}

func TestProcessSyncWritesActivityLog(t *testing.T) {
	svc, _, db, shipmentID := setupDocumentTest(t, nil)

	_, err := svc.ProcessSync(context.Background(), UploadInput{
		ShipmentID:  shipmentID,
		Filename:    "pod.pdf",
		ContentType: "application/pdf",
		Data:        validPDF(t),
		Actor:       "driver",
	})
	if err != nil {
		t.Fatalf("ProcessSync failed: %v", err)
	}

	var entry models.ActivityLog
	if err := db.Where("action = ?", constants.ActivityDocumentUploaded).First(&entry).Error; err != nil {
		t.Fatalf("activity entry missing: %v", err)
	}
	if entry.Actor != "driver" {
		t.Fatalf("actor = %q", entry.Actor)
	}
	if !strings.Contains(entry.Detail, "RC-DOC") {
		t.Fatalf("detail = %q, want reference code", entry.Detail)
	}
}
