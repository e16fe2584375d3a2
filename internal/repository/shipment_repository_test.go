package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupShipmentRepositoryTest(t *testing.T) (*GormShipmentRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Driver{}, &models.Broker{}, &models.Shipment{},
		&models.Stop{}, &models.LumperService{}, &models.LoadDocument{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewShipmentRepository(db), db
}

func createDriver(t *testing.T, db *gorm.DB, email string) *models.Driver {
	t.Helper()
	driver := &models.Driver{
		Name:    "Test Driver",
		Email:   email,
		PayRate: models.NewMoneyFromDecimal(decimal.NewFromFloat(0.70)),
		Active:  true,
	}
	if err := db.Create(driver).Error; err != nil {
		t.Fatalf("create driver failed: %v", err)
	}
	return driver
}

func createShipment(t *testing.T, repo *GormShipmentRepository, driverID uint, code, status string, pickupAt time.Time) *models.Shipment {
	t.Helper()
	shipment := &models.Shipment{
		ReferenceCode: code,
		DriverID:      &driverID,
		Rate:          models.NewMoneyFromDecimal(decimal.NewFromInt(1500)),
		Status:        status,
		LoadType:      constants.LoadTypeDryVan,
	}
	stops := []models.Stop{
		{Kind: constants.StopKindPickup, Name: "Origin DC", City: "Fresno", State: "CA", ScheduledAt: pickupAt},
		{Kind: constants.StopKindDelivery, Name: "Dest DC", City: "Reno", State: "NV", ScheduledAt: pickupAt.Add(24 * time.Hour)},
	}
	if err := repo.Create(shipment, stops); err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	return shipment
}

func TestShipmentCreateLoadsRelations(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	driver := createDriver(t, db, "a@example.com")
	created := createShipment(t, repo, driver.ID, "RC-1001", constants.ShipmentStatusScheduled, time.Now())

	got, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("shipment not found")
	}
	if len(got.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(got.Stops))
	}
	if got.Driver == nil || got.Driver.ID != driver.ID {
		t.Fatalf("driver not preloaded: %+v", got.Driver)
	}
}

func TestShipmentGetByReferenceCode(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	driver := createDriver(t, db, "a@example.com")
	createShipment(t, repo, driver.ID, "RC-2002", constants.ShipmentStatusScheduled, time.Now())

	got, err := repo.GetByReferenceCode("RC-2002")
	if err != nil {
		t.Fatalf("GetByReferenceCode failed: %v", err)
	}
	if got == nil {
		t.Fatal("shipment not found by reference code")
	}

	missing, err := repo.GetByReferenceCode("RC-9999")
	if err != nil {
		t.Fatalf("GetByReferenceCode failed: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown reference code")
	}
}

func TestShipmentListDeliveredByDriver(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	driver := createDriver(t, db, "a@example.com")
	other := createDriver(t, db, "b@example.com")

	pickup := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	createShipment(t, repo, driver.ID, "RC-1", constants.ShipmentStatusDelivered, pickup)
	createShipment(t, repo, driver.ID, "RC-2", constants.ShipmentStatusInTransit, pickup)
	createShipment(t, repo, other.ID, "RC-3", constants.ShipmentStatusDelivered, pickup)

	delivered, err := repo.ListDeliveredByDriver(driver.ID)
	if err != nil {
		t.Fatalf("ListDeliveredByDriver failed: %v", err)
	}
	if len(delivered) != 1 {
		t.Fatalf("delivered = %d, want 1", len(delivered))
	}
	if delivered[0].ReferenceCode != "RC-1" {
		t.Fatalf("delivered[0] = %q, want RC-1", delivered[0].ReferenceCode)
	}
	if len(delivered[0].Stops) != 2 {
		t.Fatalf("stops not preloaded, got %d", len(delivered[0].Stops))
	}
}

func TestShipmentUpsertLumperReplaces(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	driver := createDriver(t, db, "a@example.com")
	shipment := createShipment(t, repo, driver.ID, "RC-7", constants.ShipmentStatusDelivered, time.Now())

	first := &models.LumperService{
		ShipmentID:   shipment.ID,
		FeeApplied:   true,
		PaidBy:       constants.LumperPaidByDriver,
		Amount:       models.NewMoneyFromInt(150),
		DriverAmount: models.NewMoneyFromInt(150),
		Reason:       "unload at receiver",
	}
	if err := repo.UpsertLumper(first); err != nil {
		t.Fatalf("UpsertLumper failed: %v", err)
	}

	second := &models.LumperService{
		ShipmentID:   shipment.ID,
		FeeApplied:   true,
		PaidBy:       constants.LumperPaidByBroker,
		Amount:       models.NewMoneyFromInt(200),
		DriverAmount: models.ZeroMoney(),
		Reason:       "broker covered the fee",
	}
	if err := repo.UpsertLumper(second); err != nil {
		t.Fatalf("second UpsertLumper failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.LumperService{}).Where("shipment_id = ?", shipment.ID).Count(&count).Error; err != nil {
		t.Fatalf("count lumper failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("lumper rows = %d, want 1", count)
	}

	got, err := repo.GetLumper(shipment.ID)
	if err != nil {
		t.Fatalf("GetLumper failed: %v", err)
	}
	if got.PaidBy != constants.LumperPaidByBroker {
		t.Fatalf("paid_by = %q, want broker", got.PaidBy)
	}
	if got.Reason != "broker covered the fee" {
		t.Fatalf("reason = %q, not replaced", got.Reason)
	}
}

func TestShipmentReplaceStops(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	driver := createDriver(t, db, "a@example.com")
	shipment := createShipment(t, repo, driver.ID, "RC-8", constants.ShipmentStatusScheduled, time.Now())

	newStops := []models.Stop{
		{Kind: constants.StopKindPickup, Name: "New Origin", City: "Sacramento", State: "CA", ScheduledAt: time.Now()},
	}
	if err := repo.ReplaceStops(shipment.ID, newStops); err != nil {
		t.Fatalf("ReplaceStops failed: %v", err)
	}

	got, err := repo.GetByID(shipment.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Stops) != 1 || got.Stops[0].Name != "New Origin" {
		t.Fatalf("stops not replaced: %+v", got.Stops)
	}
}

func TestShipmentListFiltersByStatus(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	driver := createDriver(t, db, "a@example.com")
	createShipment(t, repo, driver.ID, "RC-10", constants.ShipmentStatusDelivered, time.Now())
	createShipment(t, repo, driver.ID, "RC-11", constants.ShipmentStatusScheduled, time.Now())

	shipments, total, err := repo.List(ShipmentListFilter{Page: 1, PageSize: 10, Status: constants.ShipmentStatusDelivered})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(shipments) != 1 {
		t.Fatalf("total = %d, rows = %d, want 1/1", total, len(shipments))
	}
}
