package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
)

// PayrollService builds driver pay statements from delivered shipments.
// A shipment belongs to the period whose range contains its earliest pickup
// date; delivery dates only show on the trip line.
type PayrollService struct {
	shipmentRepo  repository.ShipmentRepository
	driverRepo    repository.DriverRepository
	statementRepo repository.PayStatementRepository
}

// NewPayrollService creates a payroll service.
func NewPayrollService(
	shipmentRepo repository.ShipmentRepository,
	driverRepo repository.DriverRepository,
	statementRepo repository.PayStatementRepository,
) *PayrollService {
	return &PayrollService{
		shipmentRepo:  shipmentRepo,
		driverRepo:    driverRepo,
		statementRepo: statementRepo,
	}
}

// GrossPayResult is the outcome of a gross pay calculation. Skipped counts
// delivered shipments left out because they had no pickup or no delivery
// stop.
type GrossPayResult struct {
	GrossPay    models.Money         `json:"gross_pay"`
	DriverShare models.Money         `json:"driver_share"`
	Trips       models.TripSummaries `json:"trips"`
	Skipped     int                  `json:"skipped"`
}

// periodBounds widens a period to whole days.
func periodBounds(periodStart, periodEnd time.Time) (time.Time, time.Time) {
	return now.New(periodStart).BeginningOfDay(), now.New(periodEnd).EndOfDay()
}

func earliestStop(stops []models.Stop) *models.Stop {
	var found *models.Stop
	for i := range stops {
		if found == nil || stops[i].ScheduledAt.Before(found.ScheduledAt) {
			found = &stops[i]
		}
	}
	return found
}

func latestStop(stops []models.Stop) *models.Stop {
	var found *models.Stop
	for i := range stops {
		if found == nil || stops[i].ScheduledAt.After(found.ScheduledAt) {
			found = &stops[i]
		}
	}
	return found
}

// enumerateStops renders stops as a 1-indexed newline-joined list.
func enumerateStops(stops []models.Stop) string {
	lines := make([]string, 0, len(stops))
	for i, stop := range stops {
		lines = append(lines, fmt.Sprintf("%d. %s - %s, %s", i+1, stop.Name, stop.Address, stop.State))
	}
	return strings.Join(lines, "\n")
}

// deliveredInPeriod returns the driver's delivered shipments whose earliest
// pickup falls inside the period, plus the count of shipments skipped for
// missing pickup or delivery stops.
func (s *PayrollService) deliveredInPeriod(driverID uint, periodStart, periodEnd time.Time) ([]models.Shipment, int, error) {
	start, end := periodBounds(periodStart, periodEnd)

	delivered, err := s.shipmentRepo.ListDeliveredByDriver(driverID)
	if err != nil {
		return nil, 0, err
	}

	var inPeriod []models.Shipment
	skipped := 0
	for _, shipment := range delivered {
		pickups := shipment.Pickups()
		deliveries := shipment.Deliveries()
		if len(pickups) == 0 || len(deliveries) == 0 {
			skipped++
			continue
		}
		pickupAt := earliestStop(pickups).ScheduledAt
		if pickupAt.Before(start) || pickupAt.After(end) {
			continue
		}
		inPeriod = append(inPeriod, shipment)
	}
	return inPeriod, skipped, nil
}

// CalculateGrossPay sums the contracted rate of every delivered shipment
// in the period and itemizes each trip. The driver's percentage share is a
// separate figure and never replaces the contracted gross.
func (s *PayrollService) CalculateGrossPay(driverID uint, periodStart, periodEnd time.Time) (*GrossPayResult, error) {
	if periodEnd.Before(periodStart) {
		return nil, ErrPeriodInvalid
	}
	driver, err := s.driverRepo.GetByID(driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}

	shipments, skipped, err := s.deliveredInPeriod(driverID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	gross := decimal.Zero
	trips := make(models.TripSummaries, 0, len(shipments))
	for _, shipment := range shipments {
		pickups := shipment.Pickups()
		deliveries := shipment.Deliveries()

		amount := models.NewMoneyFromDecimal(shipment.Rate.Decimal)
		gross = gross.Add(amount.Decimal)

		trips = append(trips, models.TripSummary{
			ReferenceCode:     shipment.ReferenceCode,
			PickupDate:        earliestStop(pickups).ScheduledAt,
			PickupLocations:   enumerateStops(pickups),
			DeliveryDate:      latestStop(deliveries).ScheduledAt,
			DeliveryLocations: enumerateStops(deliveries),
			Amount:            amount,
		})
	}

	return &GrossPayResult{
		GrossPay:    models.NewMoneyFromDecimal(gross),
		DriverShare: models.NewMoneyFromDecimal(gross.Mul(driver.PayRate.Decimal)),
		Trips:       trips,
		Skipped:     skipped,
	}, nil
}

// LumperResult is the outcome of a lumper reimbursement aggregation.
type LumperResult struct {
	Total models.Money `json:"total"`
	Lines []string     `json:"lines"`
}

// AggregateLumperReimbursements sums the driver-paid lumper amounts across
// the delivered shipments of the period and renders one breakdown line per
// fee.
func (s *PayrollService) AggregateLumperReimbursements(driverID uint, periodStart, periodEnd time.Time) (*LumperResult, error) {
	if periodEnd.Before(periodStart) {
		return nil, ErrPeriodInvalid
	}

	shipments, _, err := s.deliveredInPeriod(driverID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	var lines []string
	for _, shipment := range shipments {
		lumper := shipment.Lumper
		if lumper == nil || !lumper.FeeApplied || lumper.PaidBy != constants.LumperPaidByDriver {
			continue
		}
		if !lumper.DriverAmount.Decimal.IsPositive() {
			continue
		}
		total = total.Add(lumper.DriverAmount.Decimal)
		line := fmt.Sprintf("Load #%s: $%s",
			shipment.ReferenceCode,
			lumper.DriverAmount.Decimal.StringFixed(2),
		)
		if lumper.Reason != "" {
			line += fmt.Sprintf(" (%s)", lumper.Reason)
		}
		lines = append(lines, line)
	}

	return &LumperResult{
		Total: models.NewMoneyFromDecimal(total),
		Lines: lines,
	}, nil
}

// StatementTotals are the derived totals of a statement.
type StatementTotals struct {
	TotalAdditions  models.Money `json:"total_additions"`
	TotalDeductions models.Money `json:"total_deductions"`
	NetPay          models.Money `json:"net_pay"`
}

// Totals derives the statement totals without touching storage.
func (s *PayrollService) Totals(statement *models.PayStatement) StatementTotals {
	return StatementTotals{
		TotalAdditions:  statement.TotalAdditions(),
		TotalDeductions: statement.TotalDeductions(),
		NetPay:          statement.NetPay(),
	}
}

// CreateStatementInput is the payload for generating a pay statement.
// Lumper reimbursement is always computed; the other lines come from the
// dispatcher.
type CreateStatementInput struct {
	DriverID    uint
	PeriodStart time.Time
	PeriodEnd   time.Time
	Bonus       decimal.Decimal
	Detention   decimal.Decimal
	OtherAdd    decimal.Decimal
	Deductions  models.Deductions
	Notes       string
}

const lumperNotesHeader = "Lumper reimbursements:"

// replaceLumperNotes swaps the generated lumper block inside the notes,
// leaving dispatcher-written text alone. Regenerating a statement must not
// stack duplicate blocks.
func replaceLumperNotes(notes string, lines []string) string {
	if idx := strings.Index(notes, lumperNotesHeader); idx >= 0 {
		notes = strings.TrimRight(notes[:idx], "\n")
	}
	if len(lines) == 0 {
		return notes
	}
	block := lumperNotesHeader + "\n" + strings.Join(lines, "\n")
	if notes == "" {
		return block
	}
	return notes + "\n\n" + block
}

// CreateStatement computes the gross pay, trips and lumper reimbursement
// for the period and persists the statement.
func (s *PayrollService) CreateStatement(input CreateStatementInput) (*models.PayStatement, error) {
	grossResult, err := s.CalculateGrossPay(input.DriverID, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		return nil, err
	}
	lumperResult, err := s.AggregateLumperReimbursements(input.DriverID, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		return nil, err
	}

	periodStart, periodEnd := periodBounds(input.PeriodStart, input.PeriodEnd)
	statement := &models.PayStatement{
		DriverID:    input.DriverID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GrossPay:    grossResult.GrossPay,
		Additions: models.Additions{
			Bonus:               models.NewMoneyFromDecimal(input.Bonus),
			LumperReimbursement: lumperResult.Total,
			Detention:           models.NewMoneyFromDecimal(input.Detention),
			Other:               models.NewMoneyFromDecimal(input.OtherAdd),
		},
		Deductions: input.Deductions,
		Trips:      grossResult.Trips,
		Notes:      replaceLumperNotes(strings.TrimSpace(input.Notes), lumperResult.Lines),
	}
	if err := s.statementRepo.Create(statement); err != nil {
		return nil, err
	}
	return statement, nil
}

// GetStatement fetches a pay statement.
func (s *PayrollService) GetStatement(id uint) (*models.PayStatement, error) {
	statement, err := s.statementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if statement == nil {
		return nil, ErrNotFound
	}
	return statement, nil
}

// ListStatements pages through pay statements.
func (s *PayrollService) ListStatements(filter repository.PayStatementListFilter) ([]models.PayStatement, int64, error) {
	return s.statementRepo.List(filter)
}

// DeleteStatement removes a pay statement.
func (s *PayrollService) DeleteStatement(id uint) error {
	if _, err := s.GetStatement(id); err != nil {
		return err
	}
	return s.statementRepo.Delete(id)
}
