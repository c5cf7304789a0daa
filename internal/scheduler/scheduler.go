package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/config"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/runner"
)

// Scheduler triggers reconciliation runs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	runner *runner.Runner
	cfg    config.SchedulerConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance in the configured timezone.
func NewScheduler(cfg config.SchedulerConfig, run *runner.Runner, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(location))

	return &Scheduler{
		cron:   c,
		runner: run,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start registers the run job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.executeRun)
	if err != nil {
		return fmt.Errorf("schedule run job %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("scheduler started",
		zap.String("schedule", s.cfg.CronSchedule),
		zap.String("timezone", s.cfg.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) executeRun() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.runner.Run(ctx); err != nil {
		if errors.Is(err, runner.ErrRunInProgress) {
			s.logger.Warn("skipping scheduled run, previous run still in progress")
			return
		}
		s.logger.Error("scheduled run failed", zap.Error(err))
	}
}
