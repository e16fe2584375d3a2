package router

import (
	"fmt"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/cache"
	"github.com/fleetdesk/fleetdesk/internal/config"
	dispatchhandlers "github.com/fleetdesk/fleetdesk/internal/http/handlers/dispatch"
	driverhandlers "github.com/fleetdesk/fleetdesk/internal/http/handlers/driverapp"
	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the HTTP surface.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	dispatchHandler := dispatchhandlers.New(c)
	driverHandler := driverhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fd"
	}
	redisClient := cache.Client()
	dispatchLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:dispatch_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}
	driverLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:driver_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		dispatchAuth := api.Group("/dispatch/auth")
		{
			dispatchAuth.POST("/login",
				RateLimitMiddleware(redisClient, dispatchLoginRule, KeyByIPAndJSONField("username")),
				dispatchHandler.Login)
		}

		dispatch := api.Group("/dispatch")
		dispatch.Use(DispatcherAuthMiddleware(c.AuthService))
		{
			dispatch.GET("/me", dispatchHandler.Me)
			dispatch.POST("/dispatchers", dispatchHandler.InviteDispatcher)

			dispatch.POST("/drivers", dispatchHandler.CreateDriver)
			dispatch.GET("/drivers", dispatchHandler.GetDrivers)
			dispatch.GET("/drivers/:id", dispatchHandler.GetDriver)
			dispatch.PUT("/drivers/:id", dispatchHandler.UpdateDriver)
			dispatch.PATCH("/drivers/:id/active", dispatchHandler.SetDriverActive)
			dispatch.POST("/drivers/:id/reset-password", dispatchHandler.ResetDriverPassword)

			dispatch.POST("/brokers", dispatchHandler.CreateBroker)
			dispatch.GET("/brokers", dispatchHandler.GetBrokers)
			dispatch.GET("/brokers/:id", dispatchHandler.GetBroker)
			dispatch.PUT("/brokers/:id", dispatchHandler.UpdateBroker)
			dispatch.DELETE("/brokers/:id", dispatchHandler.DeleteBroker)

			dispatch.POST("/loads", dispatchHandler.CreateShipment)
			dispatch.GET("/loads", dispatchHandler.GetShipments)
			dispatch.GET("/loads/:id", dispatchHandler.GetShipment)
			dispatch.PUT("/loads/:id", dispatchHandler.UpdateShipment)
			dispatch.DELETE("/loads/:id", dispatchHandler.DeleteShipment)
			dispatch.POST("/loads/:id/status", dispatchHandler.AdvanceShipment)
			dispatch.PATCH("/loads/:id/driver", dispatchHandler.AssignShipmentDriver)
			dispatch.PUT("/loads/:id/lumper", dispatchHandler.SetShipmentLumper)

			dispatch.POST("/loads/:id/documents", dispatchHandler.UploadDocument)
			dispatch.GET("/loads/:id/documents", dispatchHandler.GetShipmentDocuments)
			dispatch.GET("/documents/:id", dispatchHandler.GetDocument)
			dispatch.GET("/documents/:id/download", dispatchHandler.DownloadDocument)
			dispatch.POST("/compression/self-test", dispatchHandler.TestCompressionCredentials)
			dispatch.POST("/extraction/ratecon", dispatchHandler.ExtractRateCon)

			dispatch.POST("/pay-statements", dispatchHandler.CreateStatement)
			dispatch.GET("/pay-statements", dispatchHandler.GetStatements)
			dispatch.GET("/pay-statements/:id", dispatchHandler.GetStatement)
			dispatch.DELETE("/pay-statements/:id", dispatchHandler.DeleteStatement)

			dispatch.GET("/activity", dispatchHandler.GetActivityLog)
		}

		driverAuth := api.Group("/driver/auth")
		{
			driverAuth.POST("/login",
				RateLimitMiddleware(redisClient, driverLoginRule, KeyByIPAndJSONField("email")),
				driverHandler.Login)
		}

		driver := api.Group("/driver")
		driver.Use(DriverAuthMiddleware(c.AuthService))
		{
			driver.GET("/me", driverHandler.Me)
			driver.GET("/loads", driverHandler.GetMyLoads)
			driver.GET("/loads/:id", driverHandler.GetMyLoad)
			driver.POST("/loads/:id/documents", driverHandler.UploadDocument)
			driver.GET("/documents/:id/status", driverHandler.GetDocumentStatus)
		}
	}

	return r
}
