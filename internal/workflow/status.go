package workflow

import (
	"context"

	"podforge/internal/episodes"
	"podforge/internal/logging"
	"podforge/internal/scheduler"
	"podforge/internal/tasks"
)

// StatusSummary is the lightweight daemon state shown by the API and CLI.
type StatusSummary struct {
	Running      bool
	LastError    string
	LastEpisode  *episodes.Episode
	EpisodeStats map[episodes.Status]int
	TaskStats    map[tasks.Status]int
	Jobs         []scheduler.JobStatus
}

// Status snapshots the manager, store, task, and job state.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastEpisode := m.lastEpisode
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read episode stats", logging.Error(err))
	}

	summary := StatusSummary{
		Running:      running,
		EpisodeStats: stats,
		TaskStats:    m.tasks.Stats(),
		Jobs:         m.scheduler.Jobs(),
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastEpisode != nil {
		copied := *lastEpisode
		summary.LastEpisode = &copied
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastEpisode(episode *episodes.Episode) {
	m.mu.Lock()
	if episode != nil {
		copied := *episode
		m.lastEpisode = &copied
	} else {
		m.lastEpisode = nil
	}
	m.mu.Unlock()
}
