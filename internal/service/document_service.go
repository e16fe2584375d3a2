package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/compress"
	"github.com/fleetdesk/fleetdesk/internal/config"
	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/pdf"
	"github.com/fleetdesk/fleetdesk/internal/queue"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/storage"

	"github.com/shopspring/decimal"
)

// Compressor is the external compression client behind the pipeline.
type Compressor interface {
	Compress(ctx context.Context, filename string, data []byte) (*compress.Result, error)
	SelfTest(ctx context.Context) error
}

// ObjectStore is the blob storage behind the pipeline.
type ObjectStore interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
	PutTemp(data []byte) (string, error)
	GetTemp(id string) ([]byte, error)
	DeleteTemp(id string) error
}

// DocumentService runs the load document pipeline: validate, compress,
// upload, record. Compression and external failures never surface as
// panics; they end up on the document row as a failed status with a
// reason.
type DocumentService struct {
	cfg          *config.Config
	documentRepo repository.DocumentRepository
	shipmentRepo repository.ShipmentRepository
	activityRepo repository.ActivityLogRepository
	compressor   Compressor
	store        ObjectStore
	queueClient  *queue.Client
}

// NewDocumentService creates a document service. compressor may be nil when
// compression is disabled.
func NewDocumentService(
	cfg *config.Config,
	documentRepo repository.DocumentRepository,
	shipmentRepo repository.ShipmentRepository,
	activityRepo repository.ActivityLogRepository,
	compressor Compressor,
	store ObjectStore,
	queueClient *queue.Client,
) *DocumentService {
	return &DocumentService{
		cfg:          cfg,
		documentRepo: documentRepo,
		shipmentRepo: shipmentRepo,
		activityRepo: activityRepo,
		compressor:   compressor,
		store:        store,
		queueClient:  queueClient,
	}
}

// ValidationError is a rejected upload. The message is shown to the user
// as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateUpload rejects non-PDF uploads before anything touches the
// network or disk.
func (s *DocumentService) ValidateUpload(contentType string, data []byte) error {
	if !s.allowedContentType(contentType) {
		return &ValidationError{Message: "Please upload a PDF file"}
	}
	maxSize := s.cfg.Upload.MaxSize
	if maxSize > 0 && int64(len(data)) > maxSize {
		return &ValidationError{Message: fmt.Sprintf("File is too large. Maximum size is %dMB", maxSize/(1024*1024))}
	}
	if err := pdf.Validate(data); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func (s *DocumentService) allowedContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	allowed := s.cfg.Upload.AllowedTypes
	if len(allowed) == 0 {
		return contentType == "application/pdf"
	}
	for _, t := range allowed {
		if contentType == strings.ToLower(strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

// UploadInput is a validated document upload.
type UploadInput struct {
	ShipmentID  uint
	Filename    string
	ContentType string
	Data        []byte
	Actor       string
}

// ProcessSync runs the full pipeline inline and returns the finished row.
// A compression or upload failure is recorded on the row, not returned as
// an error.
func (s *DocumentService) ProcessSync(ctx context.Context, input UploadInput) (*models.LoadDocument, error) {
	doc, err := s.createRow(input)
	if err != nil {
		return nil, err
	}
	s.runPipeline(ctx, doc, input.Filename, input.Data, input.Actor)
	return s.documentRepo.GetByID(doc.ID)
}

// ProcessAsync stages the blob in temp storage, enqueues a background task
// and returns immediately with the row in processing status. Callers poll
// the document status.
func (s *DocumentService) ProcessAsync(ctx context.Context, input UploadInput) (*models.LoadDocument, error) {
	if !s.queueClient.Enabled() {
		return s.ProcessSync(ctx, input)
	}

	doc, err := s.createRow(input)
	if err != nil {
		return nil, err
	}

	tempID, err := s.store.PutTemp(input.Data)
	if err != nil {
		s.markFailed(doc.ID, "failed to stage the file for processing")
		return nil, err
	}

	err = s.queueClient.EnqueueDocumentProcess(queue.DocumentProcessPayload{
		DocumentID: doc.ID,
		ShipmentID: input.ShipmentID,
		TempBlobID: tempID,
		Filename:   input.Filename,
		Actor:      input.Actor,
	})
	if err != nil {
		// The blob must not outlive a failed enqueue.
		if delErr := s.store.DeleteTemp(tempID); delErr != nil {
			logger.Warnw("orphaned temp blob after enqueue failure", "blob", tempID, "error", delErr)
		}
		s.markFailed(doc.ID, "failed to queue the file for processing")
		return nil, err
	}
	return doc, nil
}

// ProcessStored runs the pipeline for a staged blob. The temp blob is
// deleted on every exit path, success or not.
func (s *DocumentService) ProcessStored(ctx context.Context, payload queue.DocumentProcessPayload) error {
	defer func() {
		if err := s.store.DeleteTemp(payload.TempBlobID); err != nil {
			logger.Warnw("delete temp blob failed", "blob", payload.TempBlobID, "error", err)
		}
	}()

	doc, err := s.documentRepo.GetByID(payload.DocumentID)
	if err != nil {
		return err
	}
	if doc == nil {
		logger.Warnw("document row missing for staged blob", "document_id", payload.DocumentID)
		return nil
	}

	data, err := s.store.GetTemp(payload.TempBlobID)
	if err != nil {
		s.markFailed(doc.ID, "staged file is no longer available")
		return err
	}

	s.runPipeline(ctx, doc, payload.Filename, data, payload.Actor)
	return nil
}

func (s *DocumentService) createRow(input UploadInput) (*models.LoadDocument, error) {
	shipment, err := s.shipmentRepo.GetByID(input.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrNotFound
	}
	if err := s.ValidateUpload(input.ContentType, input.Data); err != nil {
		return nil, err
	}

	doc := &models.LoadDocument{
		ShipmentID:   shipment.ID,
		Filename:     storage.SanitizeFilename(input.Filename),
		Status:       constants.DocumentStatusProcessing,
		OriginalSize: int64(len(input.Data)),
	}
	if err := s.documentRepo.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// runPipeline compresses and uploads one document, recording the outcome on
// the row.
func (s *DocumentService) runPipeline(ctx context.Context, doc *models.LoadDocument, filename string, data []byte, actor string) {
	payload := data
	compressedSize := int64(0)

	if s.compressionEnabled() {
		result, err := s.compressor.Compress(ctx, filename, data)
		if err != nil {
			logger.Warnw("document compression failed",
				"document_id", doc.ID,
				"shipment_id", doc.ShipmentID,
				"error", err,
			)
			s.markFailed(doc.ID, err.Error())
			return
		}
		payload = result.Data
		compressedSize = result.CompressedSize
	}

	key := storage.ObjectKey(doc.ShipmentID, filename, time.Now())
	if err := s.store.Put(key, payload); err != nil {
		logger.Errorw("document upload failed",
			"document_id", doc.ID,
			"shipment_id", doc.ShipmentID,
			"error", err,
		)
		s.markFailed(doc.ID, "failed to store the file")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       constants.DocumentStatusUploaded,
		"storage_path": key,
		"uploaded_at":  now,
	}
	if compressedSize > 0 {
		updates["compressed_size"] = compressedSize
		updates["compression_ratio"] = compressionRatio(int64(len(data)), compressedSize)
	}
	if err := s.documentRepo.UpdateFields(doc.ID, updates); err != nil {
		logger.Errorw("document record update failed", "document_id", doc.ID, "error", err)
		return
	}

	s.logUpload(doc, actor)
}

// compressionRatio is the size reduction percentage, two decimals.
func compressionRatio(original, compressed int64) models.Money {
	if original <= 0 {
		return models.ZeroMoney()
	}
	ratio := decimal.NewFromInt(original - compressed).
		Div(decimal.NewFromInt(original)).
		Mul(decimal.NewFromInt(100))
	return models.NewMoneyFromDecimal(ratio)
}

func (s *DocumentService) compressionEnabled() bool {
	return s.cfg.Compression.Enabled && s.compressor != nil
}

func (s *DocumentService) markFailed(docID uint, reason string) {
	err := s.documentRepo.UpdateFields(docID, map[string]interface{}{
		"status":         constants.DocumentStatusFailed,
		"failure_reason": reason,
	})
	if err != nil {
		logger.Errorw("mark document failed errored", "document_id", docID, "error", err)
	}
}

func (s *DocumentService) logUpload(doc *models.LoadDocument, actor string) {
	shipmentID := doc.ShipmentID
	entry := &models.ActivityLog{
		Actor:      actor,
		Action:     constants.ActivityDocumentUploaded,
		ShipmentID: &shipmentID,
		Detail:     fmt.Sprintf("uploaded %s", doc.Filename),
	}
	if shipment, err := s.shipmentRepo.GetByID(doc.ShipmentID); err == nil && shipment != nil {
		entry.Detail = fmt.Sprintf("uploaded %s for load %s", doc.Filename, shipment.ReferenceCode)
	}
	if err := s.activityRepo.Create(entry); err != nil {
		logger.Warnw("activity log write failed", "action", entry.Action, "error", err)
	}
}

// SelfTestCompression verifies the compression service credentials.
func (s *DocumentService) SelfTestCompression(ctx context.Context) error {
	if !s.compressionEnabled() {
		return ErrNotConfigured
	}
	return s.compressor.SelfTest(ctx)
}

// Get fetches a document row.
func (s *DocumentService) Get(id uint) (*models.LoadDocument, error) {
	doc, err := s.documentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

// List pages through document rows.
func (s *DocumentService) List(filter repository.DocumentListFilter) ([]models.LoadDocument, int64, error) {
	return s.documentRepo.List(filter)
}

// Download reads the stored bytes of an uploaded document.
func (s *DocumentService) Download(id uint) (*models.LoadDocument, []byte, error) {
	doc, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if doc.Status != constants.DocumentStatusUploaded || doc.StoragePath == "" {
		return nil, nil, ErrNotFound
	}
	data, err := s.store.Get(doc.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}
