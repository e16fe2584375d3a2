package dispatch

import (
	"strconv"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/fleetdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	shared.RespondError(c, code, msg, err)
}

func respondServiceError(c *gin.Context, err error) {
	shared.RespondServiceError(c, err)
}

func getDispatcherID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, "dispatcher_id")
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || raw == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(raw), true
}

// parseDate accepts 2006-01-02 or RFC 3339.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseDateNullable(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
