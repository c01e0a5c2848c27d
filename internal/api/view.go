package api

import (
	"sort"
	"time"

	"podforge/internal/scheduler"
	"podforge/internal/tasks"
)

// MergedScheduleView combines standing scheduler jobs and task records into
// one listing. Jobs come first in registration order; task rows follow
// most-recent-first, matching the order the task manager returns them in.
func MergedScheduleView(jobs []scheduler.JobStatus, records []tasks.Task) []ScheduleEntry {
	if len(jobs) == 0 && len(records) == 0 {
		return nil
	}
	out := make([]ScheduleEntry, 0, len(jobs)+len(records))
	for _, job := range jobs {
		out = append(out, FromJobStatus(job))
	}
	for _, record := range records {
		out = append(out, FromTask(record))
	}
	return out
}

// SortEpisodesNewestFirst orders episodes by CreatedAt descending, breaking
// ties by ID descending.
func SortEpisodesNewestFirst(eps []Episode) []Episode {
	if len(eps) == 0 {
		return nil
	}
	sorted := make([]Episode, len(eps))
	copy(sorted, eps)
	sort.Slice(sorted, func(i, j int) bool {
		ti := ParseAPITime(sorted[i].CreatedAt)
		tj := ParseAPITime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})
	return sorted
}

// ParseAPITime parses an API timestamp for consumers that need display
// formatting. Unparseable values yield the zero time.
func ParseAPITime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
