package shared

import (
	"errors"

	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog returns a logger carrying the request id.
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError writes an error envelope and logs the underlying error when
// present.
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError maps service sentinel errors onto the envelope. A
// document validation failure surfaces its message verbatim with a 400.
func RespondServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		RespondError(c, response.CodeBadRequest, validationErr.Message, nil)
	case errors.Is(err, service.ErrNotFound):
		RespondError(c, response.CodeNotFound, "resource not found", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondError(c, response.CodeUnauthorized, "invalid credentials", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		RespondError(c, response.CodeForbidden, "account is disabled", nil)
	case errors.Is(err, service.ErrEmailExists):
		RespondError(c, response.CodeBadRequest, "email is already in use", nil)
	case errors.Is(err, service.ErrUsernameExists):
		RespondError(c, response.CodeBadRequest, "username is already in use", nil)
	case errors.Is(err, service.ErrReferenceExists):
		RespondError(c, response.CodeBadRequest, "reference code is already in use", nil)
	case errors.Is(err, service.ErrInvalidInput):
		RespondError(c, response.CodeBadRequest, "invalid request", err)
	case errors.Is(err, service.ErrInvalidTransition):
		RespondError(c, response.CodeBadRequest, "illegal status transition", nil)
	case errors.Is(err, service.ErrDriverAssigned):
		RespondError(c, response.CodeBadRequest, "driver still has active loads", nil)
	case errors.Is(err, service.ErrPeriodInvalid):
		RespondError(c, response.CodeBadRequest, "invalid pay period", nil)
	case errors.Is(err, service.ErrFileTooLarge):
		RespondError(c, response.CodeBadRequest, "file is too large", nil)
	case errors.Is(err, service.ErrNotConfigured):
		RespondError(c, response.CodeInternal, "feature is not configured", nil)
	default:
		RespondError(c, response.CodeInternal, "internal error", err)
	}
}
