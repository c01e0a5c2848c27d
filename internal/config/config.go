package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Script contains configuration for podcast script generation.
type Script struct {
	Provider      string `toml:"provider"`
	Language      string `toml:"language"`
	InboxDir      string `toml:"inbox_dir"`
	TargetMinutes int    `toml:"target_minutes"`
}

// LLM contains connection settings for an OpenAI-compatible completion API.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Gemini contains connection settings for the Google Gemini API.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Voices assigns a synthesis voice to each speaker role. Roles without an
// explicit entry fall back to the host voice.
type Voices struct {
	Host     string `toml:"host"`
	Guest    string `toml:"guest"`
	Narrator string `toml:"narrator"`
}

// Synthesis contains configuration for text-to-speech synthesis.
type Synthesis struct {
	Engine         string `toml:"engine"`
	Rate           string `toml:"rate"`
	Volume         string `toml:"volume"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Voices         Voices `toml:"voices"`
}

// Assembly contains configuration for audio concatenation and export.
type Assembly struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Schedule contains configuration for the built-in job scheduler.
type Schedule struct {
	Enabled                  bool     `toml:"enabled"`
	DailyHour                int      `toml:"daily_hour"`
	DailyMinute              int      `toml:"daily_minute"`
	DailyTopics              []string `toml:"daily_topics"`
	DailyStyle               string   `toml:"daily_style"`
	AnalyticsIntervalMinutes int      `toml:"analytics_interval_minutes"`
	MaxInstances             int      `toml:"max_instances"`
	Coalesce                 bool     `toml:"coalesce"`
}

// Tasks contains configuration for the in-memory task registry.
type Tasks struct {
	Retention int `toml:"retention"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic          string `toml:"ntfy_topic"`
	RequestTimeout     int    `toml:"request_timeout"`
	Generation         bool   `toml:"generation"`
	Schedule           bool   `toml:"schedule"`
	Cleanup            bool   `toml:"cleanup"`
	Errors             bool   `toml:"errors"`
	DedupWindowSeconds int    `toml:"dedup_window_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Podforge.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Script: script generation provider and episode sizing
//   - LLM: OpenAI-compatible completion endpoint for script writing
//   - Gemini: Google Gemini endpoint for script writing
//   - Synthesis: text-to-speech engine and voice assignments
//   - Assembly: audio concatenation and export settings
//   - Schedule: daily generation and analytics job timing
//   - Tasks: in-memory task registry retention
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Script        Script        `toml:"script"`
	LLM           LLM           `toml:"llm"`
	Gemini        Gemini        `toml:"gemini"`
	Synthesis     Synthesis     `toml:"synthesis"`
	Assembly      Assembly      `toml:"assembly"`
	Schedule      Schedule      `toml:"schedule"`
	Tasks         Tasks         `toml:"tasks"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/podforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/podforge/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// LibraryDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	if c.Script.Provider == ProviderFile && strings.TrimSpace(c.Script.InboxDir) != "" {
		if err := os.MkdirAll(c.Script.InboxDir, 0o755); err != nil {
			return fmt.Errorf("create script inbox directory %q: %w", c.Script.InboxDir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the episode store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LogDir, "episodes.db")
}

// EdgeTTSBinary returns the edge-tts executable name.
func (c *Config) EdgeTTSBinary() string {
	return "edge-tts"
}

// FFmpegBinary returns the ffmpeg executable name used for audio assembly.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for audio inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains connection settings handed to the script writer.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the OpenAI-compatible connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

// VoiceForRole resolves a speaker role to its configured voice. Unknown or
// unconfigured roles fall back to the host voice.
func (c *Config) VoiceForRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleGuest:
		if c.Synthesis.Voices.Guest != "" {
			return c.Synthesis.Voices.Guest
		}
	case RoleNarrator:
		if c.Synthesis.Voices.Narrator != "" {
			return c.Synthesis.Voices.Narrator
		}
	}
	return c.Synthesis.Voices.Host
}
