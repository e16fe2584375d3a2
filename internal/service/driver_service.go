package service

import (
	"context"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/cache"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"

	"github.com/shopspring/decimal"
)

// DriverService manages driver accounts and profiles.
type DriverService struct {
	auth       *AuthService
	driverRepo repository.DriverRepository
}

// NewDriverService creates a driver service.
func NewDriverService(auth *AuthService, driverRepo repository.DriverRepository) *DriverService {
	return &DriverService{auth: auth, driverRepo: driverRepo}
}

// ProvisionDriverInput is the payload for creating a driver account.
type ProvisionDriverInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
	PayRate  decimal.Decimal
}

// Provision creates a driver account with app credentials. Pay rate is the
// driver's share of the linehaul rate, 0 to 1.
func (s *DriverService) Provision(input ProvisionDriverInput) (*models.Driver, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	if input.PayRate.IsNegative() || input.PayRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidInput
	}

	existing, err := s.driverRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	driver := &models.Driver{
		Name:         name,
		Phone:        strings.TrimSpace(input.Phone),
		Email:        email,
		PasswordHash: hash,
		PayRate:      models.NewMoneyFromDecimal(input.PayRate),
		Active:       true,
	}
	if err := s.driverRepo.Create(driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// Get fetches a driver.
func (s *DriverService) Get(id uint) (*models.Driver, error) {
	driver, err := s.driverRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}
	return driver, nil
}

// List pages through drivers.
func (s *DriverService) List(filter repository.DriverListFilter) ([]models.Driver, int64, error) {
	return s.driverRepo.List(filter)
}

// UpdateDriverInput is the payload for updating a driver profile.
type UpdateDriverInput struct {
	Name    *string
	Phone   *string
	PayRate *decimal.Decimal
}

// Update applies profile changes to a driver.
func (s *DriverService) Update(ctx context.Context, id uint, input UpdateDriverInput) (*models.Driver, error) {
	driver, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		driver.Name = name
	}
	if input.Phone != nil {
		driver.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.PayRate != nil {
		rate := *input.PayRate
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, ErrInvalidInput
		}
		driver.PayRate = models.NewMoneyFromDecimal(rate)
	}

	if err := s.driverRepo.Update(driver); err != nil {
		return nil, err
	}
	_ = cache.DelDriverAuthState(ctx, driver.ID)
	return driver, nil
}

// SetActive toggles a driver account and drops its auth snapshot so the
// change takes effect on the next request.
func (s *DriverService) SetActive(ctx context.Context, id uint, active bool) (*models.Driver, error) {
	driver, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	driver.Active = active
	if err := s.driverRepo.Update(driver); err != nil {
		return nil, err
	}
	_ = cache.DelDriverAuthState(ctx, driver.ID)
	return driver, nil
}

// ResetPassword replaces a driver's password.
func (s *DriverService) ResetPassword(ctx context.Context, id uint, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	driver, err := s.Get(id)
	if err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	driver.PasswordHash = hash
	if err := s.driverRepo.Update(driver); err != nil {
		return err
	}
	_ = cache.DelDriverAuthState(ctx, driver.ID)
	return nil
}
