package api

import (
	"time"

	"podforge/internal/deps"
	"podforge/internal/episodes"
	"podforge/internal/scheduler"
	"podforge/internal/tasks"
	"podforge/internal/workflow"
)

// FromEpisode converts a library record to its API representation.
func FromEpisode(ep *episodes.Episode) Episode {
	if ep == nil {
		return Episode{}
	}

	dto := Episode{
		ID:              ep.ID,
		Title:           ep.Title,
		Description:     ep.Description,
		Style:           string(ep.Style),
		Status:          string(ep.Status),
		Progress:        ep.GenerationProgress,
		AudioFilePath:   ep.AudioFilePath,
		DurationSeconds: ep.DurationSeconds,
		FileSizeBytes:   ep.FileSizeBytes,
		ErrorMessage:    ep.ErrorMessage,
		TaskID:          ep.TaskID,
	}
	if topics := ep.Topics(); len(topics) > 0 {
		dto.Topics = topics
	}
	if !ep.CreatedAt.IsZero() {
		dto.CreatedAt = ep.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if ep.CompletedAt != nil && !ep.CompletedAt.IsZero() {
		dto.CompletedAt = ep.CompletedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromEpisodes converts a slice of library records into API DTOs.
func FromEpisodes(eps []*episodes.Episode) []Episode {
	if len(eps) == 0 {
		return nil
	}
	out := make([]Episode, 0, len(eps))
	for _, ep := range eps {
		out = append(out, FromEpisode(ep))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	jobs := make([]ScheduleEntry, 0, len(summary.Jobs))
	for _, job := range summary.Jobs {
		jobs = append(jobs, FromJobStatus(job))
	}

	wf := WorkflowStatus{
		Running:      summary.Running,
		EpisodeStats: MergeEpisodeStats(summary.EpisodeStats),
		TaskStats:    MergeTaskStats(summary.TaskStats),
		Jobs:         jobs,
	}

	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastEpisode != nil {
		last := FromEpisode(summary.LastEpisode)
		wf.LastEpisode = &last
	}
	return wf
}

// FromDependencyStatuses converts dependency check results for transport.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, DependencyStatus{
			Name:        st.Name,
			Command:     st.Command,
			Description: st.Description,
			Optional:    st.Optional,
			Available:   st.Available,
			Version:     st.Version,
			Detail:      st.Detail,
		})
	}
	return out
}

// MergeEpisodeStats produces a string-keyed representation of library stats.
func MergeEpisodeStats(stats map[episodes.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// MergeTaskStats produces a string-keyed representation of task stats.
func MergeTaskStats(stats map[tasks.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FromJobStatus converts a scheduler job into a merged-view row.
func FromJobStatus(job scheduler.JobStatus) ScheduleEntry {
	entry := ScheduleEntry{
		ID:      job.ID,
		Name:    job.Name,
		Status:  "scheduled",
		LastRun: TimePlaceholder,
		NextRun: TimePlaceholder,
	}
	if job.InFlight > 0 {
		entry.Status = "running"
	}
	if !job.LastRun.IsZero() {
		entry.LastRun = job.LastRun.UTC().Format(dateTimeFormat)
	}
	if !job.NextRun.IsZero() {
		entry.NextRun = job.NextRun.UTC().Format(dateTimeFormat)
	}
	return entry
}

// FromTask converts a task record into a merged-view row. Tasks do not
// recur, so next_run is always the placeholder.
func FromTask(t tasks.Task) ScheduleEntry {
	entry := ScheduleEntry{
		ID:      t.ID,
		Name:    t.Name,
		Status:  string(t.Status),
		LastRun: TimePlaceholder,
		NextRun: TimePlaceholder,
	}
	if t.CompletedAt != nil && !t.CompletedAt.IsZero() {
		entry.LastRun = t.CompletedAt.UTC().Format(dateTimeFormat)
	}
	return entry
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
