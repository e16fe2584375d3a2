package dispatch

import (
	"strconv"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/http/handlers/shared"
	"github.com/fleetdesk/fleetdesk/internal/http/response"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateStatementRequest is the pay statement creation payload. Period dates
// accept 2006-01-02; the service widens them to full-day bounds.
type CreateStatementRequest struct {
	DriverID    uint              `json:"driver_id" binding:"required"`
	PeriodStart string            `json:"period_start" binding:"required"`
	PeriodEnd   string            `json:"period_end" binding:"required"`
	Bonus       decimal.Decimal   `json:"bonus"`
	Detention   decimal.Decimal   `json:"detention"`
	OtherAdd    decimal.Decimal   `json:"other_addition"`
	Deductions  models.Deductions `json:"deductions"`
	Notes       string            `json:"notes"`
}

// StatementResponse is a statement with its derived totals.
type StatementResponse struct {
	*models.PayStatement
	Totals service.StatementTotals `json:"totals"`
}

func (h *Handler) statementResponse(statement *models.PayStatement) StatementResponse {
	return StatementResponse{
		PayStatement: statement,
		Totals:       h.PayrollService.Totals(statement),
	}
}

// CreateStatement generates a pay statement for a driver and period.
func (h *Handler) CreateStatement(c *gin.Context) {
	var req CreateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "driver and period dates are required", nil)
		return
	}

	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid period_start date", nil)
		return
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid period_end date", nil)
		return
	}

	statement, err := h.PayrollService.CreateStatement(service.CreateStatementInput{
		DriverID:    req.DriverID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Bonus:       req.Bonus,
		Detention:   req.Detention,
		OtherAdd:    req.OtherAdd,
		Deductions:  req.Deductions,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.ActivityService.Log("dispatcher", constants.ActivityStatementCreated,
		nil, &statement.DriverID, statement.PeriodStart.Format("2006-01-02"))
	response.Success(c, h.statementResponse(statement))
}

// GetStatements lists pay statements.
func (h *Handler) GetStatements(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)

	driverID, _ := strconv.ParseUint(c.Query("driver_id"), 10, 64)
	periodFrom, err := parseDateNullable(c.Query("period_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid period_from date", nil)
		return
	}
	periodTo, err := parseDateNullable(c.Query("period_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid period_to date", nil)
		return
	}

	statements, total, err := h.PayrollService.ListStatements(repository.PayStatementListFilter{
		Page:       page,
		PageSize:   pageSize,
		DriverID:   uint(driverID),
		PeriodFrom: periodFrom,
		PeriodTo:   periodTo,
		WithDriver: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch pay statements", err)
		return
	}

	items := make([]StatementResponse, 0, len(statements))
	for i := range statements {
		items = append(items, h.statementResponse(&statements[i]))
	}
	response.SuccessWithPage(c, items, shared.BuildPagination(page, pageSize, total))
}

// GetStatement returns one pay statement with totals.
func (h *Handler) GetStatement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	statement, err := h.PayrollService.GetStatement(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, h.statementResponse(statement))
}

// DeleteStatement removes a pay statement.
func (h *Handler) DeleteStatement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PayrollService.DeleteStatement(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
