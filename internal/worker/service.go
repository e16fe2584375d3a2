package worker

import (
	"context"
	"errors"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/config"
	"github.com/fleetdesk/fleetdesk/internal/logger"
	"github.com/fleetdesk/fleetdesk/internal/queue"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

const defaultSweepCron = "17 * * * *"

// Service is the background task runner: the asynq server plus the cron
// sweep of orphaned temp blobs.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	cron     *cron.Cron
}

// NewService creates the worker service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name is the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the queue server and the temp sweep schedule.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	s.startTempSweep()
	return s.server.Run(s.mux)
}

// Stop shuts the worker down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	if s.cron != nil {
		s.cron.Stop()
	}
	s.server.Shutdown()
	return nil
}

// startTempSweep schedules the removal of temp blobs orphaned by crashed
// or interrupted pipelines.
func (s *Service) startTempSweep() {
	if s.consumer == nil || s.consumer.Store == nil || s.consumer.Config == nil {
		return
	}
	storageCfg := s.consumer.Config.Storage

	spec := storageCfg.SweepCron
	if spec == "" {
		spec = defaultSweepCron
	}
	maxAge := time.Duration(storageCfg.TempMaxAgeHrs) * time.Hour
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(spec, func() {
		removed, err := s.consumer.Store.SweepTemp(maxAge)
		if err != nil {
			logger.Warnw("worker_temp_sweep_failed", "error", err)
			return
		}
		if removed > 0 {
			logger.Infow("worker_temp_sweep_done", "removed", removed)
		}
	})
	if err != nil {
		logger.Warnw("worker_temp_sweep_schedule_failed", "spec", spec, "error", err)
		return
	}
	s.cron.Start()
}
