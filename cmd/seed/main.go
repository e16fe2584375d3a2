package main

import (
	"time"

	"github.com/fleetdesk/fleetdesk/internal/config"
	"github.com/fleetdesk/fleetdesk/internal/constants"
	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("driver123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("failed to hash seed password: %v", err)
	}

	drivers := []models.Driver{
		{
			Name:         "Marcus Webb",
			Phone:        "555-0101",
			Email:        "marcus@example.com",
			PasswordHash: string(hash),
			PayRate:      models.NewMoneyFromDecimal(decimal.RequireFromString("0.28")),
			Active:       true,
		},
		{
			Name:         "Elena Vasquez",
			Phone:        "555-0102",
			Email:        "elena@example.com",
			PasswordHash: string(hash),
			PayRate:      models.NewMoneyFromDecimal(decimal.RequireFromString("0.30")),
			Active:       true,
		},
	}
	for i := range drivers {
		var existing models.Driver
		if err := models.DB.Where("email = ?", drivers[i].Email).First(&existing).Error; err == nil {
			drivers[i] = existing
			stdLog.Printf("driver already exists: %s", existing.Email)
			continue
		}
		if err := models.DB.Create(&drivers[i]).Error; err != nil {
			stdLog.Fatalf("failed to create driver %s: %v", drivers[i].Email, err)
		}
		stdLog.Printf("created driver: %s", drivers[i].Email)
	}

	broker := models.Broker{
		Name:     "Atlas Freight Partners",
		Contact:  "Dana Cole",
		Phone:    "555-0200",
		Email:    "ops@atlasfreight.example.com",
		MCNumber: "MC-884102",
	}
	var existingBroker models.Broker
	if err := models.DB.Where("mc_number = ?", broker.MCNumber).First(&existingBroker).Error; err == nil {
		broker = existingBroker
		stdLog.Printf("broker already exists: %s", broker.MCNumber)
	} else if err := models.DB.Create(&broker).Error; err != nil {
		stdLog.Fatalf("failed to create broker: %v", err)
	} else {
		stdLog.Printf("created broker: %s", broker.MCNumber)
	}

	pickup := time.Now().AddDate(0, 0, -3)
	delivery := pickup.AddDate(0, 0, 1)
	shipment := models.Shipment{
		ReferenceCode: "FD-1001",
		DriverID:      &drivers[0].ID,
		BrokerID:      &broker.ID,
		Rate:          models.NewMoneyFromInt(2400),
		Status:        constants.ShipmentStatusDelivered,
		LoadType:      constants.LoadTypeDryVan,
		BrokerName:    broker.Name,
		BrokerContact: broker.Contact,
		BrokerPhone:   broker.Phone,
		BrokerEmail:   broker.Email,
		Stops: []models.Stop{
			{
				Kind:        constants.StopKindPickup,
				Name:        "Riverside Mills",
				Address:     "410 Dock Rd",
				City:        "Fresno",
				State:       "CA",
				Zip:         "93701",
				ScheduledAt: pickup,
			},
			{
				Kind:        constants.StopKindDelivery,
				Name:        "Summit Distribution",
				Address:     "88 Depot Ave",
				City:        "Reno",
				State:       "NV",
				Zip:         "89501",
				ScheduledAt: delivery,
			},
		},
	}
	var existingShipment models.Shipment
	if err := models.DB.Where("reference_code = ?", shipment.ReferenceCode).First(&existingShipment).Error; err == nil {
		stdLog.Printf("shipment already exists: %s", shipment.ReferenceCode)
	} else if err := models.DB.Create(&shipment).Error; err != nil {
		stdLog.Fatalf("failed to create shipment: %v", err)
	} else {
		lumper := models.LumperService{
			ShipmentID:   shipment.ID,
			FeeApplied:   true,
			PaidBy:       constants.LumperPaidByDriver,
			Amount:       models.NewMoneyFromInt(150),
			DriverAmount: models.NewMoneyFromInt(150),
			Reason:       "unloading at Summit Distribution",
		}
		if err := models.DB.Create(&lumper).Error; err != nil {
			stdLog.Fatalf("failed to create lumper record: %v", err)
		}
		stdLog.Printf("created shipment: %s", shipment.ReferenceCode)
	}

	stdLog.Printf("seed complete")
}
