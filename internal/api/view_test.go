package api

import (
	"testing"
	"time"

	"podforge/internal/scheduler"
	"podforge/internal/tasks"
)

func TestMergedScheduleView(t *testing.T) {
	jobs := []scheduler.JobStatus{
		{ID: "daily_podcast_generation", Name: "daily_podcast_generation"},
		{ID: "hourly_analytics", Name: "hourly_analytics"},
	}
	records := []tasks.Task{
		{ID: "newer", Name: "podcast_generation", Status: tasks.StatusRunning},
		{ID: "older", Name: "podcast_generation", Status: tasks.StatusSucceeded},
	}

	entries := MergedScheduleView(jobs, records)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].ID != "daily_podcast_generation" || entries[1].ID != "hourly_analytics" {
		t.Fatalf("expected jobs first in registration order, got %#v", entries[:2])
	}
	if entries[2].ID != "newer" || entries[3].ID != "older" {
		t.Fatalf("expected task order preserved, got %#v", entries[2:])
	}
	for _, entry := range entries {
		if entry.LastRun == "" || entry.NextRun == "" {
			t.Fatalf("expected placeholder instead of empty timestamp: %#v", entry)
		}
	}
}

func TestMergedScheduleViewEmpty(t *testing.T) {
	if entries := MergedScheduleView(nil, nil); entries != nil {
		t.Fatalf("expected nil for empty inputs, got %#v", entries)
	}
}

func TestSortEpisodesNewestFirst(t *testing.T) {
	older := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC).Format(dateTimeFormat)
	newer := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC).Format(dateTimeFormat)
	eps := []Episode{
		{ID: 1, CreatedAt: older},
		{ID: 3, CreatedAt: newer},
		{ID: 2, CreatedAt: newer},
	}

	sorted := SortEpisodesNewestFirst(eps)
	if sorted[0].ID != 3 || sorted[1].ID != 2 || sorted[2].ID != 1 {
		t.Fatalf("unexpected order: %v, %v, %v", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if eps[0].ID != 1 {
		t.Fatal("expected input slice to be left unchanged")
	}
}
