package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TimePlaceholder renders in place of absent timestamps in schedule views.
const TimePlaceholder = "—"

// Episode describes a library entry in a transport-friendly format.
type Episode struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Topics          []string `json:"topics,omitempty"`
	Style           string   `json:"style"`
	Status          string   `json:"status"`
	Progress        float64  `json:"progress"`
	AudioFilePath   string   `json:"audioFilePath,omitempty"`
	DurationSeconds float64  `json:"durationSeconds,omitempty"`
	FileSizeBytes   int64    `json:"fileSizeBytes,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
	TaskID          string   `json:"taskId,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
	CompletedAt     string   `json:"completedAt,omitempty"`
}

// ScheduleEntry is one row of the merged task/schedule listing. Task rows
// carry their completion time as last_run; job rows carry real trigger
// times. Absent timestamps render as TimePlaceholder, never null.
type ScheduleEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	LastRun string `json:"last_run"`
	NextRun string `json:"next_run"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running      bool            `json:"running"`
	EpisodeStats map[string]int  `json:"episodeStats"`
	TaskStats    map[string]int  `json:"taskStats"`
	LastError    string          `json:"lastError,omitempty"`
	LastEpisode  *Episode        `json:"lastEpisode,omitempty"`
	Jobs         []ScheduleEntry `json:"jobs"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	Version      string             `json:"version,omitempty"`
	PID          int                `json:"pid"`
	DatabasePath string             `json:"databasePath"`
	LockFilePath string             `json:"lockFilePath"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// EpisodeListResponse wraps a collection of episodes for API responses.
type EpisodeListResponse struct {
	Episodes []Episode `json:"episodes"`
}

// EpisodeResponse wraps a single episode.
type EpisodeResponse struct {
	Episode Episode `json:"episode"`
}

// ScheduleListResponse wraps the merged task/schedule listing.
type ScheduleListResponse struct {
	Entries []ScheduleEntry `json:"entries"`
}

// LibraryStatsResponse provides a normalized episode stats payload.
type LibraryStatsResponse struct {
	Counts map[string]int `json:"counts"`
}
