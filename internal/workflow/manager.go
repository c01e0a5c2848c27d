package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"podforge/internal/config"
	"podforge/internal/episodes"
	"podforge/internal/logging"
	"podforge/internal/notifications"
	"podforge/internal/pipeline"
	"podforge/internal/scheduler"
	"podforge/internal/services"
	"podforge/internal/staging"
	"podforge/internal/tasks"
)

// Standing job ids, also shown in schedule listings.
const (
	JobDailyGeneration = "daily_podcast_generation"
	JobHourlyAnalytics = "hourly_analytics"
)

// Manager wires the scheduler, pipeline, and stores into the daemon's
// recurring workflow.
type Manager struct {
	cfg       *config.Config
	store     *episodes.Store
	pipeline  *pipeline.Pipeline
	scheduler *scheduler.Scheduler
	tasks     *tasks.Manager
	notifier  notifications.Service
	logger    *slog.Logger

	mu          sync.RWMutex
	running     bool
	runCtx      context.Context
	cancel      context.CancelFunc
	lastErr     error
	lastEpisode *episodes.Episode
}

// NewManager constructs a stopped manager. A nil notifier falls back to
// the configured notification service.
func NewManager(
	cfg *config.Config,
	store *episodes.Store,
	pipe *pipeline.Pipeline,
	taskManager *tasks.Manager,
	notifier notifications.Service,
	logger *slog.Logger,
) *Manager {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	m := &Manager{
		cfg:      cfg,
		store:    store,
		pipeline: pipe,
		tasks:    taskManager,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
	}
	m.scheduler = scheduler.New(logger, scheduler.WithDropObserver(m.onTriggerDropped))
	return m
}

// Start registers the standing jobs and launches the scheduler. Calling
// Start on a running manager is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.runCtx, m.cancel = context.WithCancel(ctx)
	m.running = true
	runCtx := m.runCtx
	m.mu.Unlock()

	if m.cfg.Schedule.Enabled {
		if err := m.registerJobs(); err != nil {
			m.Stop()
			return err
		}
	} else {
		m.logger.Info("scheduling disabled, no standing jobs registered")
	}

	m.scheduler.Start(runCtx)
	return nil
}

// Stop shuts the scheduler down and cancels in-flight runs via context.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.runCtx = nil
	m.mu.Unlock()

	cancel()
	m.scheduler.Stop()
}

// Generate starts a manual generation run in the background and returns
// the pending episode row immediately.
func (m *Manager) Generate(ctx context.Context, topics []string, style string) (*episodes.Episode, error) {
	episode, err := m.pipeline.Prepare(ctx, pipeline.Request{
		Topics: topics,
		Style:  episodes.Style(style),
	})
	if err != nil {
		return nil, err
	}

	runCtx := m.runContext()
	go func() {
		_, runErr := m.pipeline.RunEpisode(runCtx, episode)
		m.recordOutcome(episode.ID, runErr)
	}()
	return episode, nil
}

// GenerateSync runs a generation to its terminal status before returning.
func (m *Manager) GenerateSync(ctx context.Context, topics []string, style string) (*episodes.Episode, error) {
	episode, err := m.pipeline.Run(ctx, pipeline.Request{
		Topics: topics,
		Style:  episodes.Style(style),
	})
	if episode != nil {
		m.recordOutcome(episode.ID, err)
	}
	return episode, err
}

// Jobs lists the registered scheduled jobs.
func (m *Manager) Jobs() []scheduler.JobStatus {
	return m.scheduler.Jobs()
}

func (m *Manager) registerJobs() error {
	maxInstances := m.cfg.Schedule.MaxInstances
	coalesce := m.cfg.Schedule.Coalesce

	daily := scheduler.JobConfig{
		ID:           JobDailyGeneration,
		Trigger:      scheduler.Daily(m.cfg.Schedule.DailyHour, m.cfg.Schedule.DailyMinute),
		Handler:      m.runDailyGeneration,
		MaxInstances: maxInstances,
		Coalesce:     coalesce,
	}
	if err := m.scheduler.AddJob(daily); err != nil {
		return fmt.Errorf("register %s: %w", JobDailyGeneration, err)
	}

	interval := time.Duration(m.cfg.Schedule.AnalyticsIntervalMinutes) * time.Minute
	analytics := scheduler.JobConfig{
		ID:           JobHourlyAnalytics,
		Trigger:      scheduler.Every(interval),
		Handler:      m.runAnalytics,
		MaxInstances: maxInstances,
		Coalesce:     coalesce,
	}
	if err := m.scheduler.AddJob(analytics); err != nil {
		return fmt.Errorf("register %s: %w", JobHourlyAnalytics, err)
	}
	return nil
}

// runDailyGeneration produces the scheduled episode from the configured
// topics and style. The job annotation rides the context into every
// pipeline log line of the run.
func (m *Manager) runDailyGeneration(ctx context.Context) error {
	ctx = services.WithJob(ctx, JobDailyGeneration)
	topics := m.cfg.Schedule.DailyTopics
	if len(topics) == 0 {
		err := services.Wrap(services.ErrConfiguration, "schedule", "daily",
			"schedule.daily_topics is empty", nil)
		m.setLastError(err)
		return err
	}
	m.publish(ctx, notifications.EventScheduleTriggered, notifications.Payload{"job": JobDailyGeneration})

	episode, err := m.pipeline.Run(ctx, pipeline.Request{
		Topics: topics,
		Style:  episodes.Style(m.cfg.Schedule.DailyStyle),
	})
	if episode != nil {
		m.setLastEpisode(episode)
	}
	m.setLastError(err)
	return err
}

// runAnalytics logs a library snapshot and mirrors it to the sink.
func (m *Manager) runAnalytics(ctx context.Context) error {
	ctx = services.WithJob(ctx, JobHourlyAnalytics)
	logger := logging.WithContext(ctx, m.logger)

	summary, err := m.store.Summary(ctx)
	if err != nil {
		m.setLastError(err)
		return fmt.Errorf("library analytics: %w", err)
	}

	totalAudio := time.Duration(summary.TotalDurationSeconds * float64(time.Second)).Round(time.Second)
	logger.Info("library analytics",
		logging.Int("episodes_total", summary.Total),
		logging.Int("episodes_ready", summary.Ready),
		logging.Int("episodes_generating", summary.Generating),
		logging.Int("episodes_failed", summary.Failed),
		logging.Duration("audio_total", totalAudio),
		logging.Int64("library_bytes", summary.TotalSizeBytes),
		logging.String(logging.FieldEventType, "analytics_snapshot"))

	// Staging should be near-empty between runs; growth means leaked run dirs.
	if dirs, err := staging.ListDirectories(m.cfg.Paths.StagingDir); err != nil {
		logger.Warn("staging usage scan failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "analytics_snapshot"))
	} else if len(dirs) > 0 {
		var stagingBytes int64
		for _, dir := range dirs {
			stagingBytes += dir.Size
		}
		logger.Info("staging usage",
			logging.Int("run_dirs", len(dirs)),
			logging.String("staging_size", logging.FormatBytes(stagingBytes)),
			logging.String(logging.FieldEventType, "analytics_snapshot"))
	}

	m.publish(ctx, notifications.EventAnalytics, notifications.Payload{
		"ready":    strconv.Itoa(summary.Ready),
		"total":    strconv.Itoa(summary.Total),
		"duration": totalAudio.String(),
		"size":     strconv.FormatInt(summary.TotalSizeBytes, 10),
	})
	return nil
}

func (m *Manager) onTriggerDropped(jobID string, inFlight int) {
	m.publish(context.Background(), notifications.EventTriggerDropped, notifications.Payload{
		"job":     jobID,
		"running": strconv.Itoa(inFlight),
	})
}

func (m *Manager) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		m.logger.Debug("notification publish failed",
			logging.String("event", string(event)),
			logging.Error(err))
	}
}

func (m *Manager) runContext() context.Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.runCtx != nil {
		return m.runCtx
	}
	return context.Background()
}

func (m *Manager) recordOutcome(episodeID int64, err error) {
	if episode, gerr := m.store.GetByID(context.Background(), episodeID); gerr == nil {
		m.setLastEpisode(episode)
	}
	m.setLastError(err)
}
