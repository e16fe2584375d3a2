package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/cache"
	"github.com/fleetdesk/fleetdesk/internal/config"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles dispatcher and driver authentication. Dispatchers and
// drivers sign with separate secrets so a driver token can never reach a
// dispatch endpoint.
type AuthService struct {
	cfg            *config.Config
	dispatcherRepo repository.DispatcherRepository
	driverRepo     repository.DriverRepository
}

// NewAuthService creates an auth service instance.
func NewAuthService(cfg *config.Config, dispatcherRepo repository.DispatcherRepository, driverRepo repository.DriverRepository) *AuthService {
	return &AuthService{
		cfg:            cfg,
		dispatcherRepo: dispatcherRepo,
		driverRepo:     driverRepo,
	}
}

// HashPassword hashes a password with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a password against its hash.
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// DispatcherClaims is the JWT payload for dispatcher tokens.
type DispatcherClaims struct {
	DispatcherID uint   `json:"dispatcher_id"`
	Username     string `json:"username"`
	jwt.RegisteredClaims
}

// DriverClaims is the JWT payload for driver tokens.
type DriverClaims struct {
	DriverID uint   `json:"driver_id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateDispatcherJWT issues a dispatcher token.
func (s *AuthService) GenerateDispatcherJWT(dispatcher *models.Dispatcher) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := DispatcherClaims{
		DispatcherID: dispatcher.ID,
		Username:     dispatcher.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseDispatcherJWT validates a dispatcher token.
func (s *AuthService) ParseDispatcherJWT(tokenString string) (*DispatcherClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &DispatcherClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*DispatcherClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateDriverJWT issues a driver token.
func (s *AuthService) GenerateDriverJWT(driver *models.Driver) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.DriverJWT.ExpireHours) * time.Hour)

	claims := DriverClaims{
		DriverID: driver.ID,
		Email:    driver.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.DriverJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseDriverJWT validates a driver token.
func (s *AuthService) ParseDriverJWT(tokenString string) (*DriverClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &DriverClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.DriverJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*DriverClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// DispatcherLogin authenticates a dispatcher by username and password.
func (s *AuthService) DispatcherLogin(username, password string) (*models.Dispatcher, string, time.Time, error) {
	dispatcher, err := s.dispatcherRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if dispatcher == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(dispatcher.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateDispatcherJWT(dispatcher)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return dispatcher, token, expiresAt, nil
}

// InviteDispatcherInput is the payload for inviting a new dispatcher.
type InviteDispatcherInput struct {
	Username  string
	Email     string
	Password  string
	InvitedBy uint
}

// InviteDispatcher creates a dispatcher account on behalf of an existing
// one.
func (s *AuthService) InviteDispatcher(input InviteDispatcherInput) (*models.Dispatcher, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.dispatcherRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}
	if email != "" {
		byEmail, err := s.dispatcherRepo.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if byEmail != nil {
			return nil, ErrEmailExists
		}
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	dispatcher := &models.Dispatcher{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if input.InvitedBy > 0 {
		invitedBy := input.InvitedBy
		dispatcher.InvitedBy = &invitedBy
	}
	if err := s.dispatcherRepo.Create(dispatcher); err != nil {
		return nil, err
	}
	return dispatcher, nil
}

// DriverLogin authenticates a driver by email and password. Deactivated
// drivers cannot log in.
func (s *AuthService) DriverLogin(ctx context.Context, email, password string) (*models.Driver, string, time.Time, error) {
	driver, err := s.driverRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if driver == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !driver.Active {
		return nil, "", time.Time{}, ErrAccountDisabled
	}
	if err := s.VerifyPassword(driver.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateDriverJWT(driver)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := cache.SetDriverAuthState(ctx, cache.BuildDriverAuthState(driver)); err != nil {
		return nil, "", time.Time{}, err
	}
	return driver, token, expiresAt, nil
}

// ResolveDriver loads the auth snapshot behind a driver token, falling back
// to the database on a cache miss.
func (s *AuthService) ResolveDriver(ctx context.Context, driverID uint) (*cache.DriverAuthState, error) {
	state, hit, err := cache.GetDriverAuthState(ctx, driverID)
	if err == nil && hit {
		return state, nil
	}

	driver, err := s.driverRepo.GetByID(driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}
	state = cache.BuildDriverAuthState(driver)
	_ = cache.SetDriverAuthState(ctx, state)
	return state, nil
}
