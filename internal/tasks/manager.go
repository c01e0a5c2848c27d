package tasks

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"podforge/internal/logging"
)

// Status describes where a task is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the status ends a task's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Task is a lifecycle record for one pipeline run or scheduled job firing.
type Task struct {
	ID          string
	Name        string
	Status      Status
	CreatedAt   time.Time
	CompletedAt *time.Time
}

const defaultRetention = 200

// Manager owns task records. All mutation goes through it; callers only
// ever see value copies.
type Manager struct {
	logger    *slog.Logger
	retention int

	mu    sync.RWMutex
	tasks map[string]*Task
	order []string // task ids, oldest first
}

// NewManager returns a manager bounded to retention records. Retention
// values below one fall back to the default bound.
func NewManager(retention int, logger *slog.Logger) *Manager {
	if retention < 1 {
		retention = defaultRetention
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		logger:    logging.NewComponentLogger(logger, "tasks"),
		retention: retention,
		tasks:     make(map[string]*Task),
	}
}

// Register creates a pending task and returns its id.
func (m *Manager) Register(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "task"
	}

	task := &Task{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.tasks[task.ID] = task
	m.order = append(m.order, task.ID)
	m.pruneLocked()
	m.mu.Unlock()

	m.logger.Debug("registered task",
		logging.String("task_id", task.ID),
		logging.String("task_name", name))
	return task.ID
}

// Update moves a task to the given status. Updates for unknown ids and
// updates after a terminal status are logged and dropped so a stale caller
// can never fail a run or rewrite history.
func (m *Manager) Update(id string, status Status) {
	m.mu.Lock()
	task, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		logging.WarnWithContext(m.logger, "ignoring update for unknown task", "task_update_unknown",
			logging.String("task_id", id),
			logging.String("task_status", string(status)))
		return
	}
	if task.Status.IsTerminal() {
		prior := task.Status
		m.mu.Unlock()
		logging.WarnWithContext(m.logger, "ignoring update for completed task", "task_update_after_terminal",
			logging.String("task_id", id),
			logging.String("task_status", string(prior)),
			logging.String("requested_status", string(status)))
		return
	}

	task.Status = status
	if status.IsTerminal() {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}
	name := task.Name
	m.mu.Unlock()

	m.logger.Debug("task status changed",
		logging.String("task_id", id),
		logging.String("task_name", name),
		logging.String("task_status", string(status)))
}

// Start marks a task running.
func (m *Manager) Start(id string) {
	m.Update(id, StatusRunning)
}

// Complete applies the terminal status implied by err.
func (m *Manager) Complete(id string, err error) {
	if err != nil {
		m.Update(id, StatusFailed)
		return
	}
	m.Update(id, StatusSucceeded)
}

// Get returns a copy of the task with the given id.
func (m *Manager) Get(id string) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// List returns up to limit task records, most recent first. A non-positive
// limit returns every retained record.
func (m *Manager) List(limit int) []Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Task, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		if task, ok := m.tasks[m.order[i]]; ok {
			result = append(result, *task)
		}
	}
	return result
}

// Stats returns a count of retained tasks grouped by status.
func (m *Manager) Stats() map[Status]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[Status]int)
	for _, task := range m.tasks {
		stats[task.Status]++
	}
	return stats
}

// Count returns the number of retained task records.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// pruneLocked evicts records beyond the retention bound, oldest terminal
// records first so in-flight tasks survive as long as possible.
func (m *Manager) pruneLocked() {
	for len(m.order) > m.retention {
		evict := -1
		for i, id := range m.order {
			if task, ok := m.tasks[id]; ok && task.Status.IsTerminal() {
				evict = i
				break
			}
		}
		if evict < 0 {
			evict = 0
		}
		id := m.order[evict]
		m.order = append(m.order[:evict], m.order[evict+1:]...)
		delete(m.tasks, id)
	}
}
