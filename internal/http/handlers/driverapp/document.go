package driverapp

import (
	"io"

	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadDocument accepts a load document from the driver app. The pipeline
// runs in the background; the client polls the returned row for status.
func (h *Handler) UploadDocument(c *gin.Context) {
	driverID, ok := getDriverID(c)
	if !ok {
		return
	}
	shipmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shipment, err := h.ShipmentService.Get(shipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if shipment.DriverID == nil || *shipment.DriverID != driverID {
		respondError(c, response.CodeNotFound, "load not found", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "a file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to read upload", err)
		return
	}
	defer file.Close()

	limit := h.Config.Upload.MaxSize
	if limit <= 0 {
		limit = 25 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to read upload", err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.DocumentService.ValidateUpload(contentType, data); err != nil {
		respondServiceError(c, err)
		return
	}

	doc, err := h.DocumentService.ProcessAsync(c.Request.Context(), service.UploadInput{
		ShipmentID:  shipmentID,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
		Actor:       "driver",
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, doc)
}

// GetDocumentStatus polls a document row the driver uploaded.
func (h *Handler) GetDocumentStatus(c *gin.Context) {
	driverID, ok := getDriverID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.DocumentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	shipment, err := h.ShipmentService.Get(doc.ShipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if shipment.DriverID == nil || *shipment.DriverID != driverID {
		respondError(c, response.CodeNotFound, "document not found", nil)
		return
	}

	response.Success(c, gin.H{
		"id":             doc.ID,
		"status":         doc.Status,
		"failure_reason": doc.FailureReason,
		"uploaded_at":    doc.UploadedAt,
	})
}
