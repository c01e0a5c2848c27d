package preflight

import (
	"context"

	"podforge/internal/config"
)

// Minimum free space on the staging volume before a run is considered safe.
const minStagingFreeBytes = 500 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Staging directory (always checked)
	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, minStagingFreeBytes))

	// Library directory (when configured)
	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}

	// Log directory (always checked; the episode store lives here)
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	// Script provider connectivity
	results = append(results, CheckScriptProvider(ctx, cfg))

	return results
}

// CheckScriptProvider verifies that the configured script source is usable.
// Validation pins the provider to a known value, so the llm case doubles as
// the default.
func CheckScriptProvider(ctx context.Context, cfg *config.Config) Result {
	switch cfg.Script.Provider {
	case config.ProviderGemini:
		return CheckGemini(ctx, cfg.Gemini)
	case config.ProviderFile:
		return CheckDirectoryAccess("Script inbox", cfg.Script.InboxDir)
	default:
		return CheckLLM(ctx, "Script LLM", cfg.GetLLM())
	}
}
