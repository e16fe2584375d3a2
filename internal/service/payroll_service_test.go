package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPayrollTest(t *testing.T) (*PayrollService, *repository.GormShipmentRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Driver{}, &models.Broker{}, &models.Shipment{}, &models.Stop{},
		&models.LumperService{}, &models.LoadDocument{}, &models.PayStatement{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	shipmentRepo := repository.NewShipmentRepository(db)
	svc := NewPayrollService(
		shipmentRepo,
		repository.NewDriverRepository(db),
		repository.NewPayStatementRepository(db),
	)
	return svc, shipmentRepo, db
}

func payrollDriver(t *testing.T, db *gorm.DB, payRate float64) *models.Driver {
	t.Helper()
	driver := &models.Driver{
		Name:    "Pay Driver",
		Email:   uuid.NewString() + "@example.com",
		PayRate: models.NewMoneyFromDecimal(decimal.NewFromFloat(payRate)),
		Active:  true,
	}
	if err := db.Create(driver).Error; err != nil {
		t.Fatalf("create driver failed: %v", err)
	}
	return driver
}

func payrollShipment(t *testing.T, repo *repository.GormShipmentRepository, driverID uint, code string, rate int64, pickupAt time.Time, stops []models.Stop) *models.Shipment {
	t.Helper()
	if stops == nil {
		stops = []models.Stop{
			{Kind: constants.StopKindPickup, Name: "Origin DC", Address: "100 First St", State: "CA", ScheduledAt: pickupAt},
			{Kind: constants.StopKindDelivery, Name: "Dest DC", Address: "200 Second St", State: "NV", ScheduledAt: pickupAt.Add(24 * time.Hour)},
		}
	}
	shipment := &models.Shipment{
		ReferenceCode: code,
		DriverID:      &driverID,
		Rate:          models.NewMoneyFromDecimal(decimal.NewFromInt(rate)),
		Status:        constants.ShipmentStatusDelivered,
		LoadType:      constants.LoadTypeDryVan,
	}
	if err := repo.Create(shipment, stops); err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	return shipment
}

func TestCalculateGrossPayFiltersByPickupDate(t *testing.T) {
	svc, shipmentRepo, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 0.70)

	inPeriod := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)
	beforePeriod := time.Date(2026, 2, 20, 10, 0, 0, 0, time.Local)

	payrollShipment(t, shipmentRepo, driver.ID, "RC-IN", 1000, inPeriod, nil)
	payrollShipment(t, shipmentRepo, driver.ID, "RC-OUT", 9999, beforePeriod, nil)
	// Delivery inside the period but pickup outside: still excluded, the
	// pickup date decides.
	payrollShipment(t, shipmentRepo, driver.ID, "RC-EDGE", 5000, beforePeriod, []models.Stop{
		{Kind: constants.StopKindPickup, Name: "Early Origin", Address: "1 Pine St", State: "CA", ScheduledAt: beforePeriod},
		{Kind: constants.StopKindDelivery, Name: "Late Dest", Address: "2 Oak St", State: "NV", ScheduledAt: inPeriod},
	})

	periodStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	periodEnd := time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local)

	result, err := svc.CalculateGrossPay(driver.ID, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("CalculateGrossPay failed: %v", err)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(result.Trips))
	}
	if result.Trips[0].ReferenceCode != "RC-IN" {
		t.Fatalf("trip = %q, want RC-IN", result.Trips[0].ReferenceCode)
	}
	if got := result.GrossPay.Decimal.StringFixed(2); got != "1000.00" {
		t.Fatalf("gross = %s, want 1000.00", got)
	}
}

func TestCalculateGrossPayIsSumOfContractedRates(t *testing.T) {
	svc, shipmentRepo, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 0.70)

	pickupAt := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)
	payrollShipment(t, shipmentRepo, driver.ID, "RC-RATE", 2000, pickupAt, nil)

	result, err := svc.CalculateGrossPay(driver.ID,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local),
	)
	if err != nil {
		t.Fatalf("CalculateGrossPay failed: %v", err)
	}
	// Gross pay is the contracted rate, never scaled by the driver's
	// percentage. The share is reported separately.
	if got := result.GrossPay.Decimal.StringFixed(2); got != "2000.00" {
		t.Fatalf("gross = %s, want 2000.00", got)
	}
	if got := result.DriverShare.Decimal.StringFixed(2); got != "1400.00" {
		t.Fatalf("driver share = %s, want 1400.00", got)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(result.Trips))
	}
	if got := result.Trips[0].Amount.Decimal.StringFixed(2); got != "2000.00" {
		t.Fatalf("trip amount = %s, want 2000.00", got)
	}
}

func TestCalculateGrossPayIncludesPeriodBoundaries(t *testing.T) {
	svc, shipmentRepo, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 0.50)

	// Late on the last day of the period still counts: the range runs to
	// end-of-day.
	lastDayEvening := time.Date(2026, 3, 7, 22, 30, 0, 0, time.Local)
	payrollShipment(t, shipmentRepo, driver.ID, "RC-LAST", 800, lastDayEvening, nil)

	periodStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	periodEnd := time.Date(2026, 3, 7, 12, 0, 0, 0, time.Local)

	result, err := svc.CalculateGrossPay(driver.ID, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("CalculateGrossPay failed: %v", err)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(result.Trips))
	}
}

func TestCalculateGrossPaySkipsShipmentsWithoutStops(t *testing.T) {
	svc, shipmentRepo, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 0.70)

	pickupAt := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)
	payrollShipment(t, shipmentRepo, driver.ID, "RC-OK", 1000, pickupAt, nil)
	// No stops at all.
	payrollShipment(t, shipmentRepo, driver.ID, "RC-EMPTY", 2000, pickupAt, []models.Stop{})
	// Pickup only, no delivery.
	payrollShipment(t, shipmentRepo, driver.ID, "RC-HALF", 3000, pickupAt, []models.Stop{
		{Kind: constants.StopKindPickup, Name: "Origin", Address: "1 Elm St", State: "CA", ScheduledAt: pickupAt},
	})

	result, err := svc.CalculateGrossPay(driver.ID,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local),
	)
	if err != nil {
		t.Fatalf("CalculateGrossPay failed: %v", err)
	}
	if result.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", result.Skipped)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(result.Trips))
	}
	if got := result.GrossPay.Decimal.StringFixed(2); got != "1000.00" {
		t.Fatalf("gross = %s, want 1000.00", got)
	}
}

func TestCalculateGrossPayTripLineFormat(t *testing.T) {
	svc, shipmentRepo, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 1.00)

	first := time.Date(2026, 3, 2, 6, 0, 0, 0, time.Local)
	second := time.Date(2026, 3, 2, 14, 0, 0, 0, time.Local)
	payrollShipment(t, shipmentRepo, driver.ID, "RC-MULTI", 1200, first, []models.Stop{
		{Kind: constants.StopKindPickup, Name: "Shipper A", Address: "10 Dock Rd", State: "CA", ScheduledAt: first},
		{Kind: constants.StopKindPickup, Name: "Shipper B", Address: "20 Port Ave", State: "CA", ScheduledAt: second},
		{Kind: constants.StopKindDelivery, Name: "Receiver", Address: "30 Bay Blvd", State: "WA", ScheduledAt: first.Add(48 * time.Hour)},
	})

	result, err := svc.CalculateGrossPay(driver.ID,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local),
	)
	if err != nil {
		t.Fatalf("CalculateGrossPay failed: %v", err)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(result.Trips))
	}
	trip := result.Trips[0]
	wantPickups := "1. Shipper A - 10 Dock Rd, CA\n2. Shipper B - 20 Port Ave, CA"
	if trip.PickupLocations != wantPickups {
		t.Fatalf("pickup locations = %q, want %q", trip.PickupLocations, wantPickups)
	}
	if !trip.PickupDate.Equal(first) {
		t.Fatalf("pickup date = %v, want earliest %v", trip.PickupDate, first)
	}
	if trip.DeliveryLocations != "1. Receiver - 30 Bay Blvd, WA" {
		t.Fatalf("delivery locations = %q", trip.DeliveryLocations)
	}
}

func withLumper(t *testing.T, repo *repository.GormShipmentRepository, shipmentID uint, paidBy string, driverAmount int64, reason string) {
	t.Helper()
	err := repo.UpsertLumper(&models.LumperService{
		ShipmentID:   shipmentID,
		FeeApplied:   true,
		PaidBy:       paidBy,
		Amount:       models.NewMoneyFromInt(driverAmount),
		DriverAmount: models.NewMoneyFromInt(driverAmount),
		Reason:       reason,
	})
	if err != nil {
		t.Fatalf("upsert lumper failed: %v", err)
	}
}

func TestAggregateLumperReimbursements(t *testing.T) {
	svc, shipmentRepo, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 0.70)

	pickupAt := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)
	s1 := payrollShipment(t, shipmentRepo, driver.ID, "RC-L1", 1000, pickupAt, nil)
	s2 := payrollShipment(t, shipmentRepo, driver.ID, "RC-L2", 1000, pickupAt, nil)
	s3 := payrollShipment(t, shipmentRepo, driver.ID, "RC-L3", 1000, pickupAt, nil)
	s4 := payrollShipment(t, shipmentRepo, driver.ID, "RC-L4", 1000, pickupAt, nil)

	withLumper(t, shipmentRepo, s1.ID, constants.LumperPaidByDriver, 150, "unload at receiver")
	withLumper(t, shipmentRepo, s2.ID, constants.LumperPaidByBroker, 200, "broker paid")
	withLumper(t, shipmentRepo, s3.ID, constants.LumperPaidByDriver, 75, "pallet restack")
	withLumper(t, shipmentRepo, s4.ID, constants.LumperPaidByDriver, 90, "")

	result, err := svc.AggregateLumperReimbursements(driver.ID,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local),
	)
	if err != nil {
		t.Fatalf("AggregateLumperReimbursements failed: %v", err)
	}
	if got := result.Total.Decimal.StringFixed(2); got != "315.00" {
		t.Fatalf("total = %s, want 315.00", got)
	}
	if len(result.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(result.Lines))
	}
	if result.Lines[0] != "Load #RC-L1: $150.00 (unload at receiver)" {
		t.Fatalf("line = %q", result.Lines[0])
	}
	// No reason on record means no parenthetical at all.
	if result.Lines[2] != "Load #RC-L4: $90.00" {
		t.Fatalf("line = %q, want Load #RC-L4: $90.00", result.Lines[2])
	}
}

func TestTotalsAndNetPay(t *testing.T) {
	svc, _, _ := setupPayrollTest(t)

	statement := &models.PayStatement{
		GrossPay: models.NewMoneyFromInt(2000),
		Additions: models.Additions{
			Bonus:               models.NewMoneyFromInt(100),
			LumperReimbursement: models.NewMoneyFromInt(150),
		},
		Deductions: models.Deductions{
			Factoring: models.NewMoneyFromInt(60),
			Fuel:      models.NewMoneyFromInt(340),
		},
	}
	totals := svc.Totals(statement)
	if got := totals.TotalAdditions.Decimal.StringFixed(2); got != "250.00" {
		t.Fatalf("total additions = %s", got)
	}
	if got := totals.TotalDeductions.Decimal.StringFixed(2); got != "400.00" {
		t.Fatalf("total deductions = %s", got)
	}
	if got := totals.NetPay.Decimal.StringFixed(2); got != "1850.00" {
		t.Fatalf("net pay = %s", got)
	}
}

func TestCreateStatementPersistsLumperLine(t *testing.T) {
	svc, shipmentRepo, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 0.70)

	pickupAt := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)
	shipment := payrollShipment(t, shipmentRepo, driver.ID, "RC-ST", 1000, pickupAt, nil)
	withLumper(t, shipmentRepo, shipment.ID, constants.LumperPaidByDriver, 150, "unload at receiver")

	statement, err := svc.CreateStatement(CreateStatementInput{
		DriverID:    driver.ID,
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		PeriodEnd:   time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local),
		Bonus:       decimal.NewFromInt(50),
		Notes:       "great week",
	})
	if err != nil {
		t.Fatalf("CreateStatement failed: %v", err)
	}
	if got := statement.Additions.LumperReimbursement.Decimal.StringFixed(2); got != "150.00" {
		t.Fatalf("lumper addition = %s, want 150.00", got)
	}
	if len(statement.Trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(statement.Trips))
	}
	if !strings.Contains(statement.Notes, "great week") {
		t.Fatalf("dispatcher notes lost: %q", statement.Notes)
	}
	if strings.Count(statement.Notes, "Lumper reimbursements:") != 1 {
		t.Fatalf("lumper block missing or duplicated: %q", statement.Notes)
	}
}

func TestReplaceLumperNotesDoesNotStack(t *testing.T) {
	notes := replaceLumperNotes("great week", []string{"Load #A: $10.00 (x)"})
	again := replaceLumperNotes(notes, []string{"Load #B: $20.00 (y)"})

	if strings.Count(again, "Lumper reimbursements:") != 1 {
		t.Fatalf("blocks stacked: %q", again)
	}
	if strings.Contains(again, "Load #A") {
		t.Fatalf("old block survived: %q", again)
	}
	if !strings.Contains(again, "great week") || !strings.Contains(again, "Load #B") {
		t.Fatalf("replacement wrong: %q", again)
	}
}

func TestCalculateGrossPayRejectsInvertedPeriod(t *testing.T) {
	svc, _, db := setupPayrollTest(t)
	driver := payrollDriver(t, db, 0.70)

	_, err := svc.CalculateGrossPay(driver.ID,
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
	)
	if err != ErrPeriodInvalid {
		t.Fatalf("err = %v, want ErrPeriodInvalid", err)
	}
}
