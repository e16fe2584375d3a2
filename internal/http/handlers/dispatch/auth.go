package dispatch

import (
	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the dispatcher login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a dispatcher and issues a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "username and password are required", nil)
		return
	}

	dispatcher, token, expiresAt, err := h.AuthService.DispatcherLogin(req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"dispatcher": dispatcher,
	})
}

// Me returns the authenticated dispatcher.
func (h *Handler) Me(c *gin.Context) {
	dispatcherID, ok := getDispatcherID(c)
	if !ok {
		return
	}

	dispatcher, err := h.DispatcherRepo.GetByID(dispatcherID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load account", err)
		return
	}
	if dispatcher == nil {
		respondError(c, response.CodeUnauthorized, "account no longer exists", nil)
		return
	}
	response.Success(c, dispatcher)
}

// InviteDispatcherRequest is the dispatcher invitation payload.
type InviteDispatcherRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required,min=8"`
}

// InviteDispatcher creates a dashboard account on behalf of the caller.
func (h *Handler) InviteDispatcher(c *gin.Context) {
	dispatcherID, ok := getDispatcherID(c)
	if !ok {
		return
	}

	var req InviteDispatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "username and a password of at least 8 characters are required", nil)
		return
	}

	dispatcher, err := h.AuthService.InviteDispatcher(service.InviteDispatcherInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		InvitedBy: dispatcherID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, dispatcher)
}
