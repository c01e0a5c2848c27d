package main

import (
	"os"
	"path/filepath"
	"testing"

	"podforge/internal/config"
	"podforge/internal/testsupport"
)

func TestCLIDoctor(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithScriptProvider(config.ProviderFile),
	)
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LibraryDir, cfg.Paths.LogDir, cfg.Script.InboxDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	configPath := filepath.Join(homeDir, ".config", "podforge", "config.toml")
	writeTestConfig(t, configPath, cfg)
	missingSocket := filepath.Join(cfg.Paths.LogDir, "missing.sock")

	stdout, _, err := runCLI(t, []string{"doctor"}, missingSocket, configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}

	requireContains(t, stdout, "== Dependencies ==")
	requireContains(t, stdout, "edge-tts")
	requireContains(t, stdout, "== Environment ==")
	requireContains(t, stdout, "Staging directory")
	requireContains(t, stdout, "Script inbox")
	requireContains(t, stdout, "Episode database")
	requireContains(t, stdout, "All checks passed")
}
