package dispatch

import (
	"io"
	"net/http"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// readUploadFile pulls the multipart "file" part into memory, capped at one
// byte over the configured limit so the size check still fires.
func (h *Handler) readUploadFile(c *gin.Context) (string, string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "a file is required", nil)
		return "", "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to read upload", err)
		return "", "", nil, false
	}
	defer file.Close()

	limit := h.Config.Upload.MaxSize
	if limit <= 0 {
		limit = 25 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to read upload", err)
		return "", "", nil, false
	}
	return fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, true
}

// UploadDocument validates and processes a shipment document inline.
func (h *Handler) UploadDocument(c *gin.Context) {
	shipmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filename, contentType, data, ok := h.readUploadFile(c)
	if !ok {
		return
	}

	if err := h.DocumentService.ValidateUpload(contentType, data); err != nil {
		respondServiceError(c, err)
		return
	}

	doc, err := h.DocumentService.ProcessSync(c.Request.Context(), service.UploadInput{
		ShipmentID:  shipmentID,
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
		Actor:       "dispatcher",
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, doc)
}

// GetShipmentDocuments lists the documents of a load.
func (h *Handler) GetShipmentDocuments(c *gin.Context) {
	shipmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := shared.ParsePagination(c)

	docs, total, err := h.DocumentService.List(repository.DocumentListFilter{
		Page:       page,
		PageSize:   pageSize,
		ShipmentID: shipmentID,
		Status:     strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch documents", err)
		return
	}
	response.SuccessWithPage(c, docs, shared.BuildPagination(page, pageSize, total))
}

// GetDocument returns one document row.
func (h *Handler) GetDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.DocumentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, doc)
}

// DownloadDocument streams the stored file.
func (h *Handler) DownloadDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	doc, data, err := h.DocumentService.Download(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// TestCompressionCredentials verifies the compression service credentials
// with an auth round-trip.
func (h *Handler) TestCompressionCredentials(c *gin.Context) {
	if err := h.DocumentService.SelfTestCompression(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "compression credentials are valid", nil)
}

// ExtractRateCon runs AI extraction over an uploaded rate confirmation and
// returns the structured load fields for review.
func (h *Handler) ExtractRateCon(c *gin.Context) {
	filename, contentType, data, ok := h.readUploadFile(c)
	if !ok {
		return
	}

	extracted, err := h.ExtractionService.ExtractRateCon(c.Request.Context(), contentType, data)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	shared.RequestLog(c).Infow("ratecon_extracted",
		"filename", filename,
		"reference_code", extracted.ReferenceCode,
		"confidence", extracted.Confidence,
	)
	response.Success(c, extracted)
}

// GetActivityLog lists recent dispatch activity.
func (h *Handler) GetActivityLog(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)

	entries, total, err := h.ActivityService.List(repository.ActivityLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Actor:    strings.TrimSpace(c.Query("actor")),
		Action:   strings.TrimSpace(c.Query("action")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch activity log", err)
		return
	}
	response.SuccessWithPage(c, entries, shared.BuildPagination(page, pageSize, total))
}
