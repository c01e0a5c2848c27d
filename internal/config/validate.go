package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScript(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateTasks(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScript() error {
	switch c.Script.Provider {
	case ProviderLLM:
		if c.LLM.APIKey == "" {
			return errors.New("llm.api_key must be set when script.provider is \"llm\" (or set OPENROUTER_API_KEY)")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("gemini.api_key must be set when script.provider is \"gemini\" (or set GEMINI_API_KEY)")
		}
	case ProviderFile:
		if strings.TrimSpace(c.Script.InboxDir) == "" {
			return errors.New("script.inbox_dir must be set when script.provider is \"file\"")
		}
	default:
		return fmt.Errorf("script.provider must be one of %q, %q, %q", ProviderLLM, ProviderGemini, ProviderFile)
	}
	if _, err := language.Parse(c.Script.Language); err != nil {
		return fmt.Errorf("script.language %q is not a valid BCP 47 tag: %w", c.Script.Language, err)
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	for field, voice := range map[string]string{
		"synthesis.voices.host":     c.Synthesis.Voices.Host,
		"synthesis.voices.guest":    c.Synthesis.Voices.Guest,
		"synthesis.voices.narrator": c.Synthesis.Voices.Narrator,
	} {
		if err := validateVoiceName(voice); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

func validateVoiceName(voice string) error {
	if voice == "" {
		return errors.New("voice must not be empty")
	}
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return fmt.Errorf("voice %q must look like ll-RR-Name (for example zh-CN-YunxiNeural)", voice)
	}
	locale := parts[0] + "-" + parts[1]
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("voice %q has unparseable locale %q: %w", voice, locale, err)
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.DailyHour < 0 || c.Schedule.DailyHour > 23 {
		return errors.New("schedule.daily_hour must be between 0 and 23")
	}
	if c.Schedule.DailyMinute < 0 || c.Schedule.DailyMinute > 59 {
		return errors.New("schedule.daily_minute must be between 0 and 59")
	}
	switch c.Schedule.DailyStyle {
	case StyleConversation, StyleLecture, StyleQA:
	default:
		return fmt.Errorf("schedule.daily_style must be one of %q, %q, %q", StyleConversation, StyleLecture, StyleQA)
	}
	if c.Schedule.Enabled && len(c.Schedule.DailyTopics) == 0 {
		return errors.New("schedule.daily_topics must include at least one topic when schedule.enabled is true")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":                 c.LLM.TimeoutSeconds,
		"gemini.timeout_seconds":              c.Gemini.TimeoutSeconds,
		"synthesis.timeout_seconds":           c.Synthesis.TimeoutSeconds,
		"assembly.timeout_seconds":            c.Assembly.TimeoutSeconds,
		"schedule.analytics_interval_minutes": c.Schedule.AnalyticsIntervalMinutes,
		"schedule.max_instances":              c.Schedule.MaxInstances,
		"script.target_minutes":               c.Script.TargetMinutes,
	})
}

func (c *Config) validateTasks() error {
	if c.Tasks.Retention < 1 {
		return errors.New("tasks.retention must be >= 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.DedupWindowSeconds < 0 {
		return errors.New("notifications.dedup_window_seconds must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
