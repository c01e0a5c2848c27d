package main

import (
	"os"
	"path/filepath"
	"testing"

	"podforge/internal/version"
)

func TestConfigInitShowValidate(t *testing.T) {
	cfg, configPath, _ := setupOfflineEnv(t)
	missingSocket := filepath.Join(cfg.Paths.LogDir, "missing.sock")

	stdout, _, err := runCLI(t, []string{"config", "validate"}, missingSocket, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, "Configuration valid")

	target := filepath.Join(t.TempDir(), "podforge", "config.toml")
	stdout, _, err = runCLI(t, []string{"config", "init", "--path", target}, missingSocket, configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	stdout, _, err = runCLI(t, []string{"config", "show"}, missingSocket, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, stdout, "[paths]")
	requireContains(t, stdout, cfg.Paths.StagingDir)
	requireContains(t, stdout, "(redacted)")
}

func TestCLIVersion(t *testing.T) {
	cfg, configPath, _ := setupOfflineEnv(t)
	missingSocket := filepath.Join(cfg.Paths.LogDir, "missing.sock")

	stdout, _, err := runCLI(t, []string{"version"}, missingSocket, configPath)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, stdout, "podforge "+version.Version)
}
