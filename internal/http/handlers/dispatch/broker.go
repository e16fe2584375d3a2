package dispatch

import (
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// BrokerRequest is the broker create/update payload.
type BrokerRequest struct {
	Name     string `json:"name" binding:"required"`
	Contact  string `json:"contact"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	MCNumber string `json:"mc_number"`
}

func (r BrokerRequest) toInput() service.BrokerInput {
	return service.BrokerInput{
		Name:     r.Name,
		Contact:  r.Contact,
		Phone:    r.Phone,
		Email:    r.Email,
		MCNumber: r.MCNumber,
	}
}

// CreateBroker creates a broker.
func (h *Handler) CreateBroker(c *gin.Context) {
	var req BrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "broker name is required", nil)
		return
	}

	broker, err := h.BrokerService.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, broker)
}

// GetBrokers lists brokers.
func (h *Handler) GetBrokers(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	brokers, total, err := h.BrokerService.List(repository.BrokerListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch brokers", err)
		return
	}
	response.SuccessWithPage(c, brokers, shared.BuildPagination(page, pageSize, total))
}

// GetBroker returns one broker.
func (h *Handler) GetBroker(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	broker, err := h.BrokerService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, broker)
}

// UpdateBroker updates a broker.
func (h *Handler) UpdateBroker(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "broker name is required", nil)
		return
	}

	broker, err := h.BrokerService.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, broker)
}

// DeleteBroker removes a broker.
func (h *Handler) DeleteBroker(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.BrokerService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
