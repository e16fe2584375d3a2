package driverapp

import "github.com/fleetdesk/fleetdesk/internal/provider"

// Handler serves the driver mobile-app API.
type Handler struct {
	*provider.Container
}

// New creates the driver app handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
