package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/mamadbah2/fleetstock/internal/config"
)

type recordingJobs struct {
	alerts int
	days   []time.Time
}

func (r *recordingJobs) LowStockAlert(context.Context) (int, error) {
	r.alerts++
	return 0, nil
}

func (r *recordingJobs) ExportDailySales(_ context.Context, day time.Time) (bool, error) {
	r.days = append(r.days, day)
	return true, nil
}

func enabledConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:         true,
		LowStockCron:    "0 7 * * *",
		SalesExportCron: "30 23 * * *",
		Timezone:        "UTC",
	}
}

func TestStartRegistersJobs(t *testing.T) {
	s, err := NewScheduler(enabledConfig(), &recordingJobs{}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if got := s.Entries(); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}
}

func TestDisabledSchedulerRegistersNothing(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	s, err := NewScheduler(cfg, &recordingJobs{}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := s.Entries(); got != 0 {
		t.Fatalf("expected no jobs, got %d", got)
	}
}

func TestInvalidCronRejected(t *testing.T) {
	cfg := enabledConfig()
	cfg.SalesExportCron = "every evening"
	s, err := NewScheduler(cfg, &recordingJobs{}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatalf("expected invalid cron expression to fail")
	}
}

func TestInvalidTimezoneRejected(t *testing.T) {
	cfg := enabledConfig()
	cfg.Timezone = "Mars/Olympus"
	if _, err := NewScheduler(cfg, &recordingJobs{}, nil); err == nil {
		t.Fatalf("expected invalid timezone to fail")
	}
}

func TestSalesExportUsesLocalDay(t *testing.T) {
	jobs := &recordingJobs{}
	s, err := NewScheduler(enabledConfig(), jobs, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC) }

	s.runSalesExport()
	s.runLowStockAlert()

	if len(jobs.days) != 1 || jobs.alerts != 1 {
		t.Fatalf("expected each job once, got days=%v alerts=%d", jobs.days, jobs.alerts)
	}
	if got := jobs.days[0].Format("2006-01-02"); got != "2026-10-14" {
		t.Fatalf("unexpected export day %s", got)
	}
}
