package main

import (
	"context"
	"path/filepath"
	"testing"

	"podforge/internal/testsupport"
)

func TestCLIStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	ready := testsupport.NewEpisode(t, env.store, "状态节目")
	ready.MarkReady(filepath.Join(env.cfg.Paths.LibraryDir, "status.mp3"), 30, 1024)
	if err := env.store.Update(context.Background(), ready); err != nil {
		t.Fatalf("update episode: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	requireContains(t, stdout, "== Daemon ==")
	requireContains(t, stdout, "Running")
	requireContains(t, stdout, "== Dependencies ==")
	requireContains(t, stdout, "edge-tts")
	requireContains(t, stdout, "== Scheduled Jobs ==")
	requireContains(t, stdout, "daily_podcast_generation")
	requireContains(t, stdout, "== Episode Library ==")
	requireContains(t, stdout, "Ready")
}

func TestCLIStatusOffline(t *testing.T) {
	cfg, configPath, _ := setupOfflineEnv(t)
	missingSocket := filepath.Join(cfg.Paths.LogDir, "missing.sock")

	stdout, _, err := runCLI(t, []string{"status"}, missingSocket, configPath)
	if err != nil {
		t.Fatalf("offline status: %v", err)
	}

	requireContains(t, stdout, "Not running (library opened directly)")
	requireContains(t, stdout, "edge-tts")
	requireContains(t, stdout, "Library is empty")
}
