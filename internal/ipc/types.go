package ipc

import "podforge/internal/api"

// PingRequest checks daemon reachability.
type PingRequest struct{}

// PingResponse identifies the answering daemon process.
type PingResponse struct {
	PID     int    `json:"pid"`
	Version string `json:"version"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// Episode mirrors the HTTP API episode DTO for internal IPC callers.
type Episode = api.Episode

// ScheduleEntry mirrors the merged task/schedule row DTO.
type ScheduleEntry = api.ScheduleEntry

// DependencyStatus describes availability of an external dependency.
type DependencyStatus = api.DependencyStatus

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	EpisodeStats map[string]int     `json:"episode_stats"`
	TaskStats    map[string]int     `json:"task_stats"`
	LastError    string             `json:"last_error"`
	LastEpisode  *Episode           `json:"last_episode"`
	Jobs         []ScheduleEntry    `json:"jobs"`
	LockPath     string             `json:"lock_path"`
	DatabasePath string             `json:"database_path"`
	Dependencies []DependencyStatus `json:"dependencies"`
	PID          int                `json:"pid"`
	Version      string             `json:"version"`
}

// GenerateRequest queues a new episode for the given topics.
type GenerateRequest struct {
	Topics []string `json:"topics"`
	Style  string   `json:"style"`
}

// GenerateResponse returns the freshly created episode record.
type GenerateResponse struct {
	Episode Episode `json:"episode"`
}

// EpisodeListRequest filters the library listing by status.
type EpisodeListRequest struct {
	Statuses []string `json:"statuses"`
	Limit    int      `json:"limit"`
}

// EpisodeListResponse contains library entries.
type EpisodeListResponse struct {
	Episodes []Episode `json:"episodes"`
}

// EpisodeDescribeRequest fetches a single episode by id.
type EpisodeDescribeRequest struct {
	ID int64 `json:"id"`
}

// EpisodeDescribeResponse contains a single episode.
type EpisodeDescribeResponse struct {
	Episode Episode `json:"episode"`
}

// EpisodeRemoveRequest deletes an episode record and its artifact.
type EpisodeRemoveRequest struct {
	ID int64 `json:"id"`
}

// EpisodeRemoveResponse reports whether anything was deleted.
type EpisodeRemoveResponse struct {
	Removed bool `json:"removed"`
}

// EpisodeClearFailedRequest removes error-status episodes.
type EpisodeClearFailedRequest struct{}

// EpisodeClearFailedResponse reports number of removed entries.
type EpisodeClearFailedResponse struct {
	Removed int64 `json:"removed"`
}

// TaskListRequest bounds the task history listing.
type TaskListRequest struct {
	Limit int `json:"limit"`
}

// TaskListResponse contains recent task records as schedule rows.
type TaskListResponse struct {
	Tasks []ScheduleEntry `json:"tasks"`
}

// ScheduleListRequest fetches registered scheduler jobs.
type ScheduleListRequest struct{}

// JobEntry is one registered scheduler job with its run counters.
type JobEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Trigger   string `json:"trigger"`
	InFlight  int    `json:"in_flight"`
	LastRun   string `json:"last_run"`
	NextRun   string `json:"next_run"`
	Runs      uint64 `json:"runs"`
	Dropped   uint64 `json:"dropped"`
	Coalesced uint64 `json:"coalesced"`
}

// ScheduleListResponse contains registered jobs.
type ScheduleListResponse struct {
	Jobs []JobEntry `json:"jobs"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
