package dispatch

import (
	"strconv"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// StopRequest is one stop in a shipment payload.
type StopRequest struct {
	Kind        string    `json:"kind" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Zip         string    `json:"zip"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// ShipmentRequest is the shipment create/update payload.
type ShipmentRequest struct {
	ReferenceCode string          `json:"reference_code" binding:"required"`
	DriverID      uint            `json:"driver_id"`
	BrokerID      uint            `json:"broker_id"`
	Rate          decimal.Decimal `json:"rate" binding:"required"`
	LoadType      string          `json:"load_type"`
	TemperatureF  *int            `json:"temperature_f"`
	BrokerName    string          `json:"broker_name"`
	BrokerContact string          `json:"broker_contact"`
	BrokerPhone   string          `json:"broker_phone"`
	BrokerEmail   string          `json:"broker_email"`
	Stops         []StopRequest   `json:"stops"`
}

func (r ShipmentRequest) toInput() service.ShipmentInput {
	stops := make([]service.StopInput, 0, len(r.Stops))
	for _, stop := range r.Stops {
		stops = append(stops, service.StopInput{
			Kind:        stop.Kind,
			Name:        stop.Name,
			Address:     stop.Address,
			City:        stop.City,
			State:       stop.State,
			Zip:         stop.Zip,
			ScheduledAt: stop.ScheduledAt,
		})
	}
	return service.ShipmentInput{
		ReferenceCode: r.ReferenceCode,
		DriverID:      r.DriverID,
		BrokerID:      r.BrokerID,
		Rate:          r.Rate,
		LoadType:      r.LoadType,
		TemperatureF:  r.TemperatureF,
		BrokerName:    r.BrokerName,
		BrokerContact: r.BrokerContact,
		BrokerPhone:   r.BrokerPhone,
		BrokerEmail:   r.BrokerEmail,
		Stops:         stops,
	}
}

// CreateShipment creates a load with its stops.
func (h *Handler) CreateShipment(c *gin.Context) {
	var req ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "reference code, rate and stops are required", nil)
		return
	}

	shipment, err := h.ShipmentService.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.ActivityService.Log("dispatcher", constants.ActivityShipmentCreated,
		&shipment.ID, shipment.DriverID, shipment.ReferenceCode)
	response.Success(c, shipment)
}

// GetShipments lists loads.
func (h *Handler) GetShipments(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)

	createdFrom, err := parseDateNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_from date", nil)
		return
	}
	createdTo, err := parseDateNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_to date", nil)
		return
	}

	driverID, _ := strconv.ParseUint(c.Query("driver_id"), 10, 64)
	brokerID, _ := strconv.ParseUint(c.Query("broker_id"), 10, 64)

	shipments, total, err := h.ShipmentService.List(repository.ShipmentListFilter{
		Page:          page,
		PageSize:      pageSize,
		DriverID:      uint(driverID),
		BrokerID:      uint(brokerID),
		Status:        strings.TrimSpace(c.Query("status")),
		LoadType:      strings.TrimSpace(c.Query("load_type")),
		Search:        strings.TrimSpace(c.Query("search")),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
		WithRelations: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch shipments", err)
		return
	}
	response.SuccessWithPage(c, shipments, shared.BuildPagination(page, pageSize, total))
}

// GetShipment returns one load with stops, lumper and documents.
func (h *Handler) GetShipment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	shipment, err := h.ShipmentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// UpdateShipment replaces a load's fields and stops.
func (h *Handler) UpdateShipment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "reference code, rate and stops are required", nil)
		return
	}

	shipment, err := h.ShipmentService.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// AdvanceShipmentRequest names the target status.
type AdvanceShipmentRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdvanceShipment moves a load along scheduled, in_transit, delivered.
func (h *Handler) AdvanceShipment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdvanceShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "target status is required", nil)
		return
	}

	shipment, err := h.ShipmentService.Advance(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if shipment.Status == constants.ShipmentStatusDelivered {
		h.ActivityService.Log("dispatcher", constants.ActivityShipmentDelivered,
			&shipment.ID, shipment.DriverID, shipment.ReferenceCode)
	}
	response.Success(c, shipment)
}

// AssignDriverRequest names the driver, zero unassigns.
type AssignDriverRequest struct {
	DriverID uint `json:"driver_id"`
}

// AssignShipmentDriver reassigns a load to a driver.
func (h *Handler) AssignShipmentDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}

	shipment, err := h.ShipmentService.AssignDriver(id, req.DriverID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if shipment.DriverID != nil {
		h.ActivityService.Log("dispatcher", constants.ActivityShipmentAssigned,
			&shipment.ID, shipment.DriverID, shipment.ReferenceCode)
	}
	response.Success(c, shipment)
}

// LumperRequest is the lumper service payload.
type LumperRequest struct {
	FeeApplied   bool             `json:"fee_applied"`
	PaidBy       string           `json:"paid_by"`
	Amount       decimal.Decimal  `json:"amount"`
	DriverAmount *decimal.Decimal `json:"driver_amount"`
	Reason       string           `json:"reason"`
}

// SetShipmentLumper records the lumper service of a load. A second call
// replaces the previous record.
func (h *Handler) SetShipmentLumper(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req LumperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}

	lumper, err := h.ShipmentService.SetLumper(id, service.LumperInput{
		FeeApplied:   req.FeeApplied,
		PaidBy:       req.PaidBy,
		Amount:       req.Amount,
		DriverAmount: req.DriverAmount,
		Reason:       req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, lumper)
}

// DeleteShipment soft deletes a load.
func (h *Handler) DeleteShipment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ShipmentService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
