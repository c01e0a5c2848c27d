// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal episode models into transport-friendly
// DTOs that the CLI and other consumers can render without coupling to
// internal types.
//
// # Key Types
//
// Episode: transport representation of a library entry with progress,
// artifact details, and topics.
//
// WorkflowStatus: daemon running state, episode and task stats, standing
// jobs, and last episode.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// ScheduleEntry: one row of the merged task/schedule listing.
//
// # Converters
//
// FromEpisode: episodes.Episode -> Episode with topic decoding and RFC3339
// timestamps.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// MergedScheduleView: scheduler jobs plus task records -> []ScheduleEntry.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (episodes.Status, tasks.Status) are exposed as lowercase strings.
// Timestamps use RFC3339 with milliseconds. ScheduleEntry keeps the
// snake_case last_run/next_run tags and the fixed "—" placeholder that
// dashboard consumers already parse.
package api
