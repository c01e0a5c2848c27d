package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"podforge/internal/logging"
)

// Handler runs one job instance. The context is cancelled when the
// scheduler stops; a returned error is logged and never stops the job.
type Handler func(ctx context.Context) error

// JobConfig describes a recurring job.
type JobConfig struct {
	ID           string
	Name         string
	Trigger      Trigger
	Handler      Handler
	MaxInstances int
	Coalesce     bool
}

// JobStatus is a point-in-time snapshot of one registered job.
type JobStatus struct {
	ID        string
	Name      string
	Trigger   string
	InFlight  int
	LastRun   time.Time
	NextRun   time.Time
	Runs      uint64
	Dropped   uint64
	Coalesced uint64
}

// DropObserver is invoked from a fresh goroutine each time a trigger is
// dropped at the concurrency limit.
type DropObserver func(jobID string, inFlight int)

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithDropObserver registers a callback for dropped triggers.
func WithDropObserver(observer DropObserver) Option {
	return func(s *Scheduler) {
		s.onDrop = observer
	}
}

// Scheduler owns a set of recurring jobs and their trigger loops.
type Scheduler struct {
	logger *slog.Logger
	onDrop DropObserver

	mu      sync.Mutex
	jobs    map[string]*job
	order   []string
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type job struct {
	cfg    JobConfig
	cancel context.CancelFunc

	mu        sync.Mutex
	inFlight  int
	lastRun   time.Time
	nextRun   time.Time
	runs      uint64
	dropped   uint64
	coalesced uint64
}

// New constructs a stopped scheduler with no jobs.
func New(logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger: logging.NewComponentLogger(logger, "scheduler"),
		jobs:   make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers a recurring job. Re-registering an existing id
// replaces the previous job; if the scheduler is running, the old
// trigger loop is cancelled and a new one starts immediately.
func (s *Scheduler) AddJob(cfg JobConfig) error {
	if cfg.ID == "" {
		return errors.New("scheduler: job id required")
	}
	if cfg.Trigger == nil {
		return errors.New("scheduler: job trigger required")
	}
	if cfg.Handler == nil {
		return errors.New("scheduler: job handler required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[cfg.ID]; ok {
		if existing.cancel != nil {
			existing.cancel()
			existing.cancel = nil
		}
	} else {
		s.order = append(s.order, cfg.ID)
	}

	j := &job{cfg: cfg}
	s.jobs[cfg.ID] = j
	s.logger.Info("job registered",
		logging.String(logging.FieldJob, cfg.ID),
		logging.String("trigger", cfg.Trigger.String()),
		logging.Int("max_instances", cfg.MaxInstances),
		logging.Bool("coalesce", cfg.Coalesce),
	)
	if s.running {
		s.startLoopLocked(j)
	}
	return nil
}

// Start launches a trigger loop per registered job. Calling Start on a
// running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.running = true
	for _, id := range s.order {
		s.startLoopLocked(s.jobs[id])
	}
	s.logger.Info("scheduler started", logging.Int("jobs", len(s.jobs)))
}

// Stop cancels the trigger loops and waits for them to exit. In-flight
// handler instances are not waited on; they observe the cancelled
// context and wind down on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.runCtx = nil
	for _, j := range s.jobs {
		j.cancel = nil
	}
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// Jobs returns a snapshot of every registered job in registration order.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	statuses := make([]JobStatus, 0, len(s.order))
	for _, id := range s.order {
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		statuses = append(statuses, j.snapshot())
	}
	return statuses
}

// Running reports whether Start has been called without a matching Stop.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) startLoopLocked(j *job) {
	loopCtx, cancel := context.WithCancel(s.runCtx)
	j.cancel = cancel
	s.wg.Add(1)
	go s.runLoop(loopCtx, j)
}

func (s *Scheduler) runLoop(ctx context.Context, j *job) {
	defer s.wg.Done()

	next := j.cfg.Trigger.Next(time.Now())
	j.setNextRun(next)
	for {
		if next.IsZero() {
			s.logger.Info("job has no further fire times",
				logging.String(logging.FieldJob, j.cfg.ID),
			)
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		now := time.Now()
		fires, upcoming := elapsedFires(j.cfg.Trigger, next, now)
		s.fireBatch(ctx, j, fires, now)
		next = upcoming
		j.setNextRun(next)
	}
}

// fireBatch starts one instance per elapsed fire. A coalescing job
// collapses a backlog of missed fires into a single instance.
func (s *Scheduler) fireBatch(ctx context.Context, j *job, fires int, firedAt time.Time) {
	if fires <= 0 {
		return
	}
	if fires > 1 && j.cfg.Coalesce {
		j.addCoalesced(uint64(fires - 1))
		s.logger.Debug("coalesced missed fires",
			logging.String(logging.FieldJob, j.cfg.ID),
			logging.Int("missed", fires-1),
		)
		fires = 1
	}
	for i := 0; i < fires; i++ {
		s.startInstance(ctx, j, firedAt)
	}
}

// elapsedFires counts the fire times in (next-1, now] starting from the
// scheduled next fire, and returns the first fire time after now.
func elapsedFires(trigger Trigger, next, now time.Time) (int, time.Time) {
	fires := 0
	for !next.IsZero() && !next.After(now) {
		fires++
		next = trigger.Next(next)
	}
	return fires, next
}

func (s *Scheduler) startInstance(ctx context.Context, j *job, firedAt time.Time) {
	j.mu.Lock()
	if j.inFlight >= j.cfg.MaxInstances {
		j.dropped++
		inFlight := j.inFlight
		j.mu.Unlock()
		logging.WarnWithContext(s.logger, "job trigger dropped", "job_trigger_dropped",
			logging.String(logging.FieldJob, j.cfg.ID),
			logging.Int("in_flight", inFlight),
			logging.Int("max_instances", j.cfg.MaxInstances),
			logging.String(logging.FieldErrorHint, "raise max_instances or wait for running instances"),
			logging.String(logging.FieldImpact, "this tick is skipped, not queued"),
		)
		if s.onDrop != nil {
			go s.onDrop(j.cfg.ID, inFlight)
		}
		return
	}
	j.inFlight++
	j.lastRun = firedAt
	j.runs++
	j.mu.Unlock()

	s.logger.Debug("job instance started",
		logging.String(logging.FieldJob, j.cfg.ID),
	)
	go func() {
		defer func() {
			j.mu.Lock()
			j.inFlight--
			j.mu.Unlock()
		}()
		if err := j.cfg.Handler(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.ErrorWithContext(s.logger, "job instance failed", "job_instance_failed",
				logging.String(logging.FieldJob, j.cfg.ID),
				logging.Error(err),
			)
		}
	}()
}

func (j *job) setNextRun(next time.Time) {
	j.mu.Lock()
	j.nextRun = next
	j.mu.Unlock()
}

func (j *job) addCoalesced(n uint64) {
	j.mu.Lock()
	j.coalesced += n
	j.mu.Unlock()
}

func (j *job) snapshot() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		ID:        j.cfg.ID,
		Name:      j.cfg.Name,
		Trigger:   j.cfg.Trigger.String(),
		InFlight:  j.inFlight,
		LastRun:   j.lastRun,
		NextRun:   j.nextRun,
		Runs:      j.runs,
		Dropped:   j.dropped,
		Coalesced: j.coalesced,
	}
}
