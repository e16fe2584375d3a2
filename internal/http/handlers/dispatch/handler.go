package dispatch

import "github.com/fleetdesk/fleetdesk/internal/provider"

// Handler serves the dispatcher dashboard API.
type Handler struct {
	*provider.Container
}

// New creates the dispatcher handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
