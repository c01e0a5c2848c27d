package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"podforge/internal/config"
	"podforge/internal/deps"
	"podforge/internal/episodes"
	"podforge/internal/logging"
	"podforge/internal/notifications"
	"podforge/internal/preflight"
	"podforge/internal/scheduler"
	"podforge/internal/tasks"
	"podforge/internal/version"
	"podforge/internal/workflow"
)

// Daemon owns the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *episodes.Store
	tasks    *tasks.Manager
	workflow *workflow.Manager
	notifier notifications.Service
	logPath  string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	depsMu   sync.RWMutex
	depsSnap []deps.Status

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Version      string
	Workflow     workflow.StatusSummary
	DatabasePath string
	LockFilePath string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies. An empty logPath
// falls back to the stable log pointer under the configured log directory;
// a nil notifier falls back to the configured notification service.
func New(
	cfg *config.Config,
	store *episodes.Store,
	taskManager *tasks.Manager,
	wf *workflow.Manager,
	notifier notifications.Service,
	logger *slog.Logger,
	logPath string,
) (*Daemon, error) {
	if cfg == nil || store == nil || taskManager == nil || wf == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, task manager, workflow manager, and logger")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if strings.TrimSpace(logPath) == "" {
		logPath = filepath.Join(cfg.Paths.LogDir, "podforge.log")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "podforged.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		tasks:    taskManager,
		workflow: wf,
		notifier: notifier,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	apiSrv, err := newAPIServer(cfg, d, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock, captures the dependency snapshot, and
// launches the workflow manager and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another podforge daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.setDependencies(preflight.CheckSystemDeps(d.ctx, d.cfg))

	if err := d.workflow.Start(d.ctx); err != nil {
		d.releaseStart()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.workflow.Stop()
		d.releaseStart()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("podforge daemon started", logging.String("lock", d.lockPath))
	d.publish(d.ctx, notifications.EventDaemonStarted, notifications.Payload{"version": version.Version})
	return nil
}

func (d *Daemon) releaseStart() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("podforge daemon stopped")
	d.publish(context.Background(), notifications.EventDaemonStopped, nil)
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Generate kicks off a background generation run and returns the pending
// episode row immediately.
func (d *Daemon) Generate(ctx context.Context, topics []string, style string) (*episodes.Episode, error) {
	return d.workflow.Generate(ctx, topics, style)
}

// ListEpisodes returns library episodes filtered by optional statuses,
// most recent first.
func (d *Daemon) ListEpisodes(ctx context.Context, statuses []episodes.Status) ([]*episodes.Episode, error) {
	if d.store == nil {
		return nil, errors.New("episode store unavailable")
	}
	if len(statuses) == 0 {
		return d.store.List(ctx)
	}
	return d.store.List(ctx, statuses...)
}

// RecentEpisodes returns up to limit episodes, most recent first.
func (d *Daemon) RecentEpisodes(ctx context.Context, limit int) ([]*episodes.Episode, error) {
	if d.store == nil {
		return nil, errors.New("episode store unavailable")
	}
	return d.store.ListRecent(ctx, limit)
}

// DescribeEpisode fetches a single episode, or nil when the id is unknown.
func (d *Daemon) DescribeEpisode(ctx context.Context, id int64) (*episodes.Episode, error) {
	if d.store == nil {
		return nil, errors.New("episode store unavailable")
	}
	return d.store.GetByID(ctx, id)
}

// RemoveEpisode deletes an episode row and sweeps its audio artifact.
// Artifact removal is best effort; a leftover file only costs disk space.
func (d *Daemon) RemoveEpisode(ctx context.Context, id int64) (bool, error) {
	if d.store == nil {
		return false, errors.New("episode store unavailable")
	}
	episode, err := d.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if episode == nil {
		return false, nil
	}
	removed, err := d.store.Remove(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	if path := strings.TrimSpace(episode.AudioFilePath); path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			d.logger.Warn("failed to remove episode artifact",
				logging.Int64(logging.FieldEpisodeID, id),
				logging.String("path", path),
				logging.Error(err))
		}
	}
	return true, nil
}

// ClearFailedEpisodes removes every episode in error status.
func (d *Daemon) ClearFailedEpisodes(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("episode store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// TaskRecords returns up to limit task records, most recent first. A
// non-positive limit returns every retained record.
func (d *Daemon) TaskRecords(limit int) []tasks.Task {
	if d.tasks == nil {
		return nil
	}
	return d.tasks.List(limit)
}

// ScheduleSnapshot lists the registered scheduled jobs.
func (d *Daemon) ScheduleSnapshot() []scheduler.JobStatus {
	return d.workflow.Jobs()
}

// TestNotification sends a test event through the configured sink.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary := d.workflow.Status(ctx)
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Version:      version.Version,
		Workflow:     summary,
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Dependencies: d.dependencies(),
	}
}

func (d *Daemon) setDependencies(statuses []deps.Status) {
	d.depsMu.Lock()
	d.depsSnap = statuses
	d.depsMu.Unlock()
}

func (d *Daemon) dependencies() []deps.Status {
	d.depsMu.RLock()
	defer d.depsMu.RUnlock()
	out := make([]deps.Status, len(d.depsSnap))
	copy(out, d.depsSnap)
	return out
}

func (d *Daemon) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := d.notifier.Publish(ctx, event, payload); err != nil {
		d.logger.Debug("notification publish failed",
			logging.String("event", string(event)),
			logging.Error(err))
	}
}
