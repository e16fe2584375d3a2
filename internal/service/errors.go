package service

import "errors"

// Sentinel errors shared across services. Handlers map these to response
// codes.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailExists        = errors.New("email is already registered")
	ErrUsernameExists     = errors.New("username is already taken")
	ErrReferenceExists    = errors.New("reference code already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrDriverAssigned     = errors.New("driver has assigned shipments")
	ErrPeriodInvalid      = errors.New("period end must not be before period start")
	ErrFileTooLarge       = errors.New("file exceeds the upload size limit")
	ErrNotConfigured      = errors.New("feature is not configured")
)
