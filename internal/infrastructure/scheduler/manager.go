// Package scheduler runs the daily billing sweeps with gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/config"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// SweepJob processes every subscription due on a date.
type SweepJob interface {
	Execute(ctx context.Context, date time.Time) (*dto.SweepResult, error)
}

// BillingJobs groups the sweeps registered by RegisterBillingJobs.
type BillingJobs struct {
	Renew  SweepJob
	Expire SweepJob
	Remind SweepJob
}

const sweepTimeout = 30 * time.Minute

// SchedulerManager manages all scheduled jobs using gocron v2.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface
	now       func() time.Time

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// Cron expressions are evaluated in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
		now:       biztime.NowUTC,
	}, nil
}

// RegisterBillingJobs registers the renewal, expiration and reminder sweeps
// on their configured crontabs. A nil job is skipped.
func (m *SchedulerManager) RegisterBillingJobs(jobs BillingJobs, cfg config.SchedulerConfig) error {
	entries := []struct {
		name string
		cron string
		job  SweepJob
		tags []string
	}{
		{name: "billing-renew", cron: cfg.RenewCron, job: jobs.Renew, tags: []string{"billing", "renew"}},
		{name: "billing-expire", cron: cfg.ExpireCron, job: jobs.Expire, tags: []string{"billing", "expire"}},
		{name: "billing-reminder", cron: cfg.ReminderCron, job: jobs.Remind, tags: []string{"billing", "reminder"}},
	}

	for _, e := range entries {
		if e.job == nil {
			continue
		}
		name, job := e.name, e.job
		_, err := m.scheduler.NewJob(
			gocron.CronJob(e.cron, false),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
				defer cancel()
				m.runSweep(ctx, name, job)
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithTags(e.tags...),
			gocron.WithName(name),
		)
		if err != nil {
			return fmt.Errorf("failed to register %s job: %w", name, err)
		}
		m.logger.Infow("registered billing job", "name", name, "cron", e.cron)
	}
	return nil
}

func (m *SchedulerManager) runSweep(ctx context.Context, name string, job SweepJob) {
	startTime := time.Now()
	date := m.now()
	m.logger.Debugw("billing sweep started", "name", name, "date", date)

	result, err := job.Execute(ctx, date)
	if err != nil {
		// Don't log error if context was cancelled (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("billing sweep failed",
			"name", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("billing sweep completed",
		"name", name,
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration", time.Since(startTime),
	)
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
