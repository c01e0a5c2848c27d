package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "   "},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[0].Version != "" {
		t.Fatalf("expected empty version without version args, got %q", results[0].Version)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available {
		t.Fatal("expected blank command to be unavailable")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %s", results[2].Detail)
	}
}

func TestCheckBinariesCapturesVersion(t *testing.T) {
	binDir := t.TempDir()
	tool := filepath.Join(binDir, "fake-tts")
	script := []byte("#!/bin/sh\necho \"fake-tts 7.0.2\"\n")
	if err := os.WriteFile(tool, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := CheckBinaries(context.Background(), []Requirement{
		{Name: "FakeTTS", Command: tool, VersionArgs: []string{"--version"}},
	})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected stub to be available, got %#v", results[0])
	}
	if results[0].Version != "7.0.2" {
		t.Fatalf("expected version 7.0.2, got %q", results[0].Version)
	}
}

func TestCheckBinariesToleratesFailingVersionProbe(t *testing.T) {
	binDir := t.TempDir()
	tool := filepath.Join(binDir, "broken")
	script := []byte("#!/bin/sh\nexit 1\n")
	if err := os.WriteFile(tool, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := CheckBinaries(context.Background(), []Requirement{
		{Name: "Broken", Command: tool, VersionArgs: []string{"--version"}},
	})
	if !results[0].Available {
		t.Fatalf("expected binary to stay available, got %#v", results[0])
	}
	if results[0].Version != "" {
		t.Fatalf("expected empty version after probe failure, got %q", results[0].Version)
	}
}

func TestVersionToken(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   string
	}{
		{"ffmpeg banner", "ffmpeg version 6.1.1-static Copyright (c) 2000-2023\nbuilt with gcc\n", "6.1.1-static"},
		{"name and number", "edge-tts 7.0.0\n", "7.0.0"},
		{"bare number", "7.0.0\n", "7.0.0"},
		{"leading blank line", "\n\nfake version 1.2\n", "1.2"},
		{"empty output", "\n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := versionToken(tc.output); got != tc.want {
				t.Fatalf("versionToken(%q) = %q, want %q", tc.output, got, tc.want)
			}
		})
	}
}
