package dispatch

import (
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProvisionDriverRequest is the driver account creation payload.
type ProvisionDriverRequest struct {
	Name     string          `json:"name" binding:"required"`
	Phone    string          `json:"phone"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	PayRate  decimal.Decimal `json:"pay_rate" binding:"required"`
}

// UpdateDriverRequest is the driver profile patch payload.
type UpdateDriverRequest struct {
	Name    *string          `json:"name"`
	Phone   *string          `json:"phone"`
	PayRate *decimal.Decimal `json:"pay_rate"`
}

// DriverItem is a driver row with computed availability.
type DriverItem struct {
	models.Driver
	ActiveLoads int64 `json:"active_loads"`
	Available   bool  `json:"available"`
}

// CreateDriver provisions a driver account with app credentials.
func (h *Handler) CreateDriver(c *gin.Context) {
	var req ProvisionDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "name, email and a password of at least 8 characters are required", nil)
		return
	}

	driver, err := h.DriverService.Provision(service.ProvisionDriverInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		PayRate:  req.PayRate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, driver)
}

// GetDrivers lists drivers with current availability.
func (h *Handler) GetDrivers(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.DriverListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyActive: c.Query("active") == "true",
	}
	drivers, total, err := h.DriverService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch drivers", err)
		return
	}

	counts, err := h.ShipmentRepo.CountActiveByDriver()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch drivers", err)
		return
	}

	items := make([]DriverItem, 0, len(drivers))
	for _, driver := range drivers {
		active := counts[driver.ID]
		items = append(items, DriverItem{
			Driver:      driver,
			ActiveLoads: active,
			Available:   driver.Active && active == 0,
		})
	}
	response.SuccessWithPage(c, items, shared.BuildPagination(page, pageSize, total))
}

// GetDriver returns one driver.
func (h *Handler) GetDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	driver, err := h.DriverService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, driver)
}

// UpdateDriver patches driver profile fields.
func (h *Handler) UpdateDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}

	driver, err := h.DriverService.Update(c.Request.Context(), id, service.UpdateDriverInput{
		Name:    req.Name,
		Phone:   req.Phone,
		PayRate: req.PayRate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, driver)
}

// SetDriverActiveRequest toggles a driver account.
type SetDriverActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetDriverActive deactivates or reactivates a driver. Deactivation is a
// soft delete: pay-statement history stays intact.
func (h *Handler) SetDriverActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetDriverActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		respondError(c, response.CodeBadRequest, "active flag is required", nil)
		return
	}

	driver, err := h.DriverService.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, driver)
}

// ResetDriverPasswordRequest carries the new app password.
type ResetDriverPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ResetDriverPassword replaces a driver's app password.
func (h *Handler) ResetDriverPassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ResetDriverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "a password of at least 8 characters is required", nil)
		return
	}

	if err := h.DriverService.ResetPassword(c.Request.Context(), id, req.Password); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
