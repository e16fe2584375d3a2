package provider

import (
	"time"

	"github.com/fleetdesk/fleetdesk/internal/cache"
	"github.com/fleetdesk/fleetdesk/internal/compress"
	"github.com/fleetdesk/fleetdesk/internal/config"
	"github.com/fleetdesk/fleetdesk/internal/extract"
	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/models"
	"github.com/fleetdesk/fleetdesk/internal/queue"
	"github.com/fleetdesk/fleetdesk/internal/repository"
	"github.com/fleetdesk/fleetdesk/internal/service"
	"github.com/fleetdesk/fleetdesk/internal/storage"
)

// Container is the dependency injection container.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       *storage.Store

	// Repositories
	DispatcherRepo repository.DispatcherRepository
	DriverRepo     repository.DriverRepository
	BrokerRepo     repository.BrokerRepository
	ShipmentRepo   repository.ShipmentRepository
	StatementRepo  repository.PayStatementRepository
	DocumentRepo   repository.DocumentRepository
	ActivityRepo   repository.ActivityLogRepository

	// Services
	AuthService       *service.AuthService
	DriverService     *service.DriverService
	BrokerService     *service.BrokerService
	ShipmentService   *service.ShipmentService
	PayrollService    *service.PayrollService
	DocumentService   *service.DocumentService
	ExtractionService *service.ExtractionService
	ActivityService   *service.ActivityService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}
	if queueClient == nil {
		queueClient, _ = queue.NewClient(nil)
	}

	store, err := storage.New(cfg.Storage.Dir, cfg.Storage.TempDir)
	if err != nil {
		logger.Errorw("provider_init_storage_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Store:       store,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.DispatcherRepo = repository.NewDispatcherRepository(db)
	c.DriverRepo = repository.NewDriverRepository(db)
	c.BrokerRepo = repository.NewBrokerRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.StatementRepo = repository.NewPayStatementRepository(db)
	c.DocumentRepo = repository.NewDocumentRepository(db)
	c.ActivityRepo = repository.NewActivityLogRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.AuthService = service.NewAuthService(cfg, c.DispatcherRepo, c.DriverRepo)
	c.DriverService = service.NewDriverService(c.AuthService, c.DriverRepo)
	c.BrokerService = service.NewBrokerService(c.BrokerRepo)
	c.ShipmentService = service.NewShipmentService(c.ShipmentRepo, c.DriverRepo, c.BrokerRepo)
	c.PayrollService = service.NewPayrollService(c.ShipmentRepo, c.DriverRepo, c.StatementRepo)
	c.ActivityService = service.NewActivityService(c.ActivityRepo)

	var compressor service.Compressor
	if cfg.Compression.Enabled {
		compressor = compress.NewClient(compress.Config{
			BaseURL:   cfg.Compression.BaseURL,
			PublicKey: cfg.Compression.PublicKey,
			Level:     cfg.Compression.Level,
			Timeout:   time.Duration(cfg.Compression.TimeoutMS) * time.Millisecond,
		})
	}
	c.DocumentService = service.NewDocumentService(
		cfg,
		c.DocumentRepo,
		c.ShipmentRepo,
		c.ActivityRepo,
		compressor,
		c.Store,
		c.QueueClient,
	)

	var extractor service.RateConExtractor
	if cfg.Extraction.Enabled {
		extractor = extract.New(extract.Config{
			APIKey:  cfg.Extraction.APIKey,
			Models:  cfg.Extraction.Models,
			Timeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
		})
	}
	c.ExtractionService = service.NewExtractionService(cfg, extractor)
}
