package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// DriverAuthState is a server-side snapshot of a driver account, cached so
// token checks do not hit the database on every request.
type DriverAuthState struct {
	DriverID  uint   `json:"driver_id"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	UpdatedAt int64  `json:"updated_at"`
}

func driverAuthStateKey(driverID uint) string {
	return fmt.Sprintf("auth:driver:%d", driverID)
}

// BuildDriverAuthState builds a snapshot from the driver model.
func BuildDriverAuthState(driver *models.Driver) *DriverAuthState {
	if driver == nil {
		return nil
	}
	return &DriverAuthState{
		DriverID:  driver.ID,
		Email:     driver.Email,
		Active:    driver.Active,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetDriverAuthState reads a driver snapshot from the cache.
func GetDriverAuthState(ctx context.Context, driverID uint) (*DriverAuthState, bool, error) {
	if driverID == 0 {
		return nil, false, nil
	}
	var state DriverAuthState
	hit, err := GetJSON(ctx, driverAuthStateKey(driverID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetDriverAuthState writes a driver snapshot.
func SetDriverAuthState(ctx context.Context, state *DriverAuthState) error {
	if state == nil || state.DriverID == 0 {
		return nil
	}
	return SetJSON(ctx, driverAuthStateKey(state.DriverID), state, authStateCacheTTL)
}

// DelDriverAuthState drops a driver snapshot, forcing the next request to
// reload from the database.
func DelDriverAuthState(ctx context.Context, driverID uint) error {
	if driverID == 0 {
		return nil
	}
	return Del(ctx, driverAuthStateKey(driverID))
}
