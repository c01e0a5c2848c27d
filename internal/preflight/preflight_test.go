package preflight

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podforge/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace_OK(t *testing.T) {
	result := CheckFreeSpace("test", t.TempDir(), 1)
	if !result.Passed {
		t.Fatalf("expected pass for one-byte threshold, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "free") {
		t.Fatalf("expected free-space detail, got: %s", result.Detail)
	}
}

func TestCheckFreeSpace_BelowThreshold(t *testing.T) {
	result := CheckFreeSpace("test", t.TempDir(), math.MaxUint64)
	if result.Passed {
		t.Fatal("expected failure for impossible threshold")
	}
	if !strings.Contains(result.Detail, "required") {
		t.Fatalf("expected threshold detail, got: %s", result.Detail)
	}
}

func TestCheckFreeSpace_MissingPath(t *testing.T) {
	result := CheckFreeSpace("test", filepath.Join(t.TempDir(), "nope"), 1)
	if result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckLLM_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`)
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), "Script LLM", config.LLMConfig{
		APIKey:  "good-key",
		BaseURL: srv.URL,
		Model:   "demo-model",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckLLM_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), "Script LLM", config.LLMConfig{
		APIKey:  "bad-key",
		BaseURL: srv.URL,
		Model:   "demo-model",
	})
	if result.Passed {
		t.Fatal("expected failure for rejected key")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), "Script LLM", config.LLMConfig{})
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
	if result.Detail != "API key missing" {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckGemini_MissingKey(t *testing.T) {
	result := CheckGemini(context.Background(), config.Gemini{})
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
	if result.Detail != "API key missing" {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckScriptProvider_FileInbox(t *testing.T) {
	cfg := config.Default()
	cfg.Script.Provider = config.ProviderFile
	cfg.Script.InboxDir = t.TempDir()

	result := CheckScriptProvider(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass for inbox dir, got: %s", result.Detail)
	}
	if result.Name != "Script inbox" {
		t.Fatalf("unexpected check name: %s", result.Name)
	}
}

func TestCheckScriptProvider_LLMMissingKey(t *testing.T) {
	cfg := config.Default()
	cfg.Script.Provider = config.ProviderLLM
	cfg.LLM.APIKey = ""

	result := CheckScriptProvider(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure without an API key")
	}
	if result.Name != "Script LLM" {
		t.Fatalf("unexpected check name: %s", result.Name)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_FileProviderConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Script.Provider = config.ProviderFile
	cfg.Script.InboxDir = t.TempDir()

	results := RunAll(context.Background(), &cfg)
	// Staging dir, free space, library dir, log dir, script inbox.
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_SkipsLibraryWhenUnset(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.LibraryDir = ""
	cfg.Paths.LogDir = t.TempDir()
	cfg.Script.Provider = config.ProviderFile
	cfg.Script.InboxDir = t.TempDir()

	results := RunAll(context.Background(), &cfg)
	for _, r := range results {
		if r.Name == "Library directory" {
			t.Fatal("expected library check to be skipped")
		}
	}
}

func TestCheckSystemDeps(t *testing.T) {
	binDir := t.TempDir()
	writeStub := func(name, body string) {
		t.Helper()
		path := filepath.Join(binDir, name)
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	writeStub("edge-tts", `echo "edge-tts 7.0.2"`)
	writeStub("ffmpeg", `echo "ffmpeg version 6.1.1 Copyright (c) 2000-2023"`)
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}

	byName := make(map[string]int, len(statuses))
	for i, st := range statuses {
		byName[st.Name] = i
	}

	edge := statuses[byName["edge-tts"]]
	if !edge.Available || edge.Optional {
		t.Fatalf("expected edge-tts to be required and available, got %#v", edge)
	}
	if edge.Version != "7.0.2" {
		t.Fatalf("expected edge-tts version 7.0.2, got %q", edge.Version)
	}

	ffmpeg := statuses[byName["FFmpeg"]]
	if !ffmpeg.Available || !ffmpeg.Optional {
		t.Fatalf("expected ffmpeg to be optional and available, got %#v", ffmpeg)
	}
	if ffmpeg.Version != "6.1.1" {
		t.Fatalf("expected ffmpeg version 6.1.1, got %q", ffmpeg.Version)
	}

	ffprobe := statuses[byName["FFprobe"]]
	if ffprobe.Available {
		t.Fatalf("expected ffprobe to be missing, got %#v", ffprobe)
	}
	if !ffprobe.Optional {
		t.Fatal("expected ffprobe to be optional")
	}
}
