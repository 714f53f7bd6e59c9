// Package scheduler manages the lifecycle sweeps using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"serialhub/internal/shared/logger"
)

// SweepJob is one sweep pass. Execute processes a bounded amount of work and
// returns how many items it affected.
type SweepJob interface {
	Execute(ctx context.Context) (int, error)
}

// SweepJobFunc adapts a function to SweepJob.
type SweepJobFunc func(ctx context.Context) (int, error)

func (f SweepJobFunc) Execute(ctx context.Context) (int, error) {
	return f(ctx)
}

// perRunTimeout bounds a single sweep run so a wedged store connection can
// never stall the scheduler slot forever.
const perRunTimeout = 10 * time.Minute

// Manager owns the single gocron scheduler instance for the process. Both
// sweeps run in singleton mode: a run still in flight causes the next slot to
// be rescheduled rather than overlapped.
type Manager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewManager(log logger.Interface) (*Manager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}
	return &Manager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterWarningSweep schedules the expiration warning sweep. It runs
// immediately on startup and then at the configured interval.
func (m *Manager) RegisterWarningSweep(job SweepJob, interval time.Duration) error {
	return m.register("warning-sweep", job, interval)
}

// RegisterEnforcementSweep schedules the expiry enforcement sweep. It runs
// immediately on startup and then at the configured interval, so serials
// overdue while the process was down are enforced right away.
func (m *Manager) RegisterEnforcementSweep(job SweepJob, interval time.Duration) error {
	return m.register("enforcement-sweep", job, interval)
}

func (m *Manager) register(name string, job SweepJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), perRunTimeout)
			defer cancel()
			m.run(ctx, name, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}
	m.logger.Infow("sweep registered", "job", name, "interval", interval)
	return nil
}

func (m *Manager) run(ctx context.Context, name string, job SweepJob) {
	start := time.Now()
	affected, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("sweep run failed",
			"job", name,
			"affected", affected,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	m.logger.Debugw("sweep run completed",
		"job", name,
		"affected", affected,
		"duration", time.Since(start),
	)
}

// Start launches the scheduler. Safe to call once.
func (m *Manager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Stop shuts the scheduler down, waiting for in-flight runs to finish.
func (m *Manager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false
	return m.scheduler.Shutdown()
}
