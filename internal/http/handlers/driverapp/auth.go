package driverapp

import (
	"github.com/fleetdesk/fleetdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the driver login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a driver and issues an app JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "email and password are required", nil)
		return
	}

	driver, token, expiresAt, err := h.AuthService.DriverLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"driver":     driver,
	})
}

// Me returns the authenticated driver's profile.
func (h *Handler) Me(c *gin.Context) {
	driverID, ok := getDriverID(c)
	if !ok {
		return
	}

	driver, err := h.DriverService.Get(driverID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, driver)
}
