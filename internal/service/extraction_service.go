package service

import (
	"context"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/config"
	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/extract"
	"github.com/fleetdesk/fleetdesk/internal/pdf"
)

// RateConExtractor is the AI extraction engine behind the service.
type RateConExtractor interface {
	Extract(ctx context.Context, pdfBytes []byte) (*extract.ExtractedLoad, error)
}

// ExtractionService turns rate confirmation PDFs into load drafts a
// dispatcher can review before creating the shipment.
type ExtractionService struct {
	cfg       *config.Config
	extractor RateConExtractor
}

// NewExtractionService creates an extraction service. extractor may be nil
// when extraction is disabled.
func NewExtractionService(cfg *config.Config, extractor RateConExtractor) *ExtractionService {
	return &ExtractionService{cfg: cfg, extractor: extractor}
}

// Enabled reports whether extraction is configured.
func (s *ExtractionService) Enabled() bool {
	return s.cfg.Extraction.Enabled && s.extractor != nil
}

// ExtractRateCon validates the upload and runs the extraction chain. The
// load type is normalized to the known enum; anything else defaults to
// dry van.
func (s *ExtractionService) ExtractRateCon(ctx context.Context, contentType string, data []byte) (*extract.ExtractedLoad, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/pdf") {
		return nil, &ValidationError{Message: "Please upload a PDF file"}
	}
	if err := pdf.Validate(data); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	load, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}
	load.LoadType = normalizeLoadType(load.LoadType)
	if load.LoadType != constants.LoadTypeReefer {
		load.TemperatureF = nil
	}
	return load, nil
}

func normalizeLoadType(loadType string) string {
	normalized := strings.ToLower(strings.TrimSpace(loadType))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case constants.LoadTypeReefer, "refrigerated":
		return constants.LoadTypeReefer
	case constants.LoadTypeFlatbed:
		return constants.LoadTypeFlatbed
	default:
		return constants.LoadTypeDryVan
	}
}
