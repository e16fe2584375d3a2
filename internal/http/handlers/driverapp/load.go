package driverapp

import (
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMyLoads lists the authenticated driver's shipments.
func (h *Handler) GetMyLoads(c *gin.Context) {
	driverID, ok := getDriverID(c)
	if !ok {
		return
	}
	page, pageSize := shared.ParsePagination(c)

	shipments, total, err := h.ShipmentService.List(repository.ShipmentListFilter{
		Page:          page,
		PageSize:      pageSize,
		DriverID:      driverID,
		Status:        strings.TrimSpace(c.Query("status")),
		WithRelations: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch loads", err)
		return
	}
	response.SuccessWithPage(c, shipments, shared.BuildPagination(page, pageSize, total))
}

// GetMyLoad returns one of the driver's shipments with stops and documents.
func (h *Handler) GetMyLoad(c *gin.Context) {
	driverID, ok := getDriverID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shipment, err := h.ShipmentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if shipment.DriverID == nil || *shipment.DriverID != driverID {
		respondError(c, response.CodeNotFound, "load not found", nil)
		return
	}
	response.Success(c, shipment)
}
