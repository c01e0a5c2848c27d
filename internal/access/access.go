// Package access gives CLI commands one handle over the episode library
// that works with or without a running daemon. Socket-backed access covers
// every operation; direct store access is read-only and refuses operations
// that must go through the daemon.
package access

import (
	"context"
	"errors"
	"strings"

	"podforge/internal/api"
	"podforge/internal/episodes"
	"podforge/internal/ipc"
)

// ErrDaemonNotRunning indicates an operation needs a running daemon.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Access provides library operations regardless of IPC or direct store backing.
type Access interface {
	Status(ctx context.Context) (*ipc.StatusResponse, error)
	List(ctx context.Context, statuses []string, limit int) ([]api.Episode, error)
	Describe(ctx context.Context, id int64) (*api.Episode, error)
	Generate(ctx context.Context, topics []string, style string) (*api.Episode, error)
	Remove(ctx context.Context, id int64) (bool, error)
	ClearFailed(ctx context.Context) (int64, error)
	Tasks(ctx context.Context, limit int) ([]api.ScheduleEntry, error)
	Jobs(ctx context.Context) ([]ipc.JobEntry, error)
}

// NewIPCAccess returns an Access backed by daemon IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewStoreAccess returns a read-only Access backed by direct DB access.
func NewStoreAccess(store *episodes.Store) Access {
	return &storeAccess{store: store, service: api.NewEpisodeService(store)}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) Status(_ context.Context) (*ipc.StatusResponse, error) {
	return a.client.Status()
}

func (a *ipcAccess) List(_ context.Context, statuses []string, limit int) ([]api.Episode, error) {
	resp, err := a.client.EpisodeList(statuses, limit)
	if err != nil {
		return nil, err
	}
	return resp.Episodes, nil
}

func (a *ipcAccess) Describe(_ context.Context, id int64) (*api.Episode, error) {
	resp, err := a.client.EpisodeDescribe(id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, nil
		}
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return &resp.Episode, nil
}

func (a *ipcAccess) Generate(_ context.Context, topics []string, style string) (*api.Episode, error) {
	resp, err := a.client.Generate(topics, style)
	if err != nil {
		return nil, err
	}
	return &resp.Episode, nil
}

func (a *ipcAccess) Remove(_ context.Context, id int64) (bool, error) {
	resp, err := a.client.EpisodeRemove(id)
	if err != nil {
		return false, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ClearFailed(_ context.Context) (int64, error) {
	resp, err := a.client.EpisodeClearFailed()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) Tasks(_ context.Context, limit int) ([]api.ScheduleEntry, error) {
	resp, err := a.client.TaskList(limit)
	if err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (a *ipcAccess) Jobs(_ context.Context) ([]ipc.JobEntry, error) {
	resp, err := a.client.ScheduleList()
	if err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

type storeAccess struct {
	store   *episodes.Store
	service *api.EpisodeService
}

// Status reports a degraded snapshot: library stats from the database with
// the daemon marked not running.
func (a *storeAccess) Status(ctx context.Context) (*ipc.StatusResponse, error) {
	stats, err := a.service.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &ipc.StatusResponse{
		EpisodeStats: stats,
		DatabasePath: a.store.Path(),
	}, nil
}

func (a *storeAccess) List(ctx context.Context, statuses []string, limit int) ([]api.Episode, error) {
	var filters []episodes.Status
	for _, s := range statuses {
		if parsed, ok := episodes.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	if len(filters) == 0 {
		return a.service.List(ctx, limit)
	}
	eps, err := a.store.List(ctx, filters...)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(eps) > limit {
		eps = eps[:limit]
	}
	return api.FromEpisodes(eps), nil
}

func (a *storeAccess) Describe(ctx context.Context, id int64) (*api.Episode, error) {
	return a.service.Describe(ctx, id)
}

func (a *storeAccess) Generate(context.Context, []string, string) (*api.Episode, error) {
	return nil, ErrDaemonNotRunning
}

func (a *storeAccess) Remove(context.Context, int64) (bool, error) {
	return false, ErrDaemonNotRunning
}

func (a *storeAccess) ClearFailed(context.Context) (int64, error) {
	return 0, ErrDaemonNotRunning
}

// Tasks are tracked in daemon memory only; there is no history to read
// from the database.
func (a *storeAccess) Tasks(context.Context, int) ([]api.ScheduleEntry, error) {
	return nil, ErrDaemonNotRunning
}

func (a *storeAccess) Jobs(context.Context) ([]ipc.JobEntry, error) {
	return nil, ErrDaemonNotRunning
}
