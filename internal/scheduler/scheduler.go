package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/config"
)

const jobTimeout = 2 * time.Minute

// Jobs is the work the scheduler triggers. *reporting.Service satisfies it.
type Jobs interface {
	LowStockAlert(ctx context.Context) (int, error)
	ExportDailySales(ctx context.Context, day time.Time) (bool, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	jobs     Jobs
	cfg      config.SchedulerConfig
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. Cron expressions use the
// standard five fields and are evaluated in cfg.Timezone.
func NewScheduler(cfg config.SchedulerConfig, jobs Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load scheduler timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		jobs:     jobs,
		cfg:      cfg,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler. A disabled scheduler
// registers nothing.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("scheduler disabled")
		return nil
	}

	s.logger.Info("starting scheduler", zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.cfg.LowStockCron, s.runLowStockAlert); err != nil {
		return fmt.Errorf("schedule low stock alert %q: %w", s.cfg.LowStockCron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.SalesExportCron, s.runSalesExport); err != nil {
		return fmt.Errorf("schedule sales export %q: %w", s.cfg.SalesExportCron, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) runLowStockAlert() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	count, err := s.jobs.LowStockAlert(ctx)
	if err != nil {
		s.logger.Error("low stock alert failed", zap.Error(err))
		return
	}
	s.logger.Info("low stock alert finished", zap.Int("items", count))
}

func (s *Scheduler) runSalesExport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	// sales days are UTC calendar dates; pick the local date of the run
	now := s.now().In(s.location)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	written, err := s.jobs.ExportDailySales(ctx, day)
	if err != nil {
		s.logger.Error("sales export failed", zap.Error(err))
		return
	}
	s.logger.Info("sales export finished", zap.Time("day", day), zap.Bool("written", written))
}
