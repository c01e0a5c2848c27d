package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeScript(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeGemini()
	c.normalizeSynthesis()
	c.normalizeSchedule()
	c.normalizeTasks()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("PODFORGE_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeScript() error {
	c.Script.Provider = strings.ToLower(strings.TrimSpace(c.Script.Provider))
	if c.Script.Provider == "" {
		c.Script.Provider = defaultScriptProvider
	}
	c.Script.Language = strings.TrimSpace(c.Script.Language)
	if c.Script.Language == "" {
		c.Script.Language = defaultScriptLanguage
	}
	if c.Script.TargetMinutes <= 0 {
		c.Script.TargetMinutes = defaultScriptTargetMinutes
	}
	if strings.TrimSpace(c.Script.InboxDir) != "" {
		var err error
		if c.Script.InboxDir, err = expandPath(c.Script.InboxDir); err != nil {
			return fmt.Errorf("script.inbox_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("DEEPSEEK_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
}

func (c *Config) normalizeSynthesis() {
	c.Synthesis.Engine = strings.ToLower(strings.TrimSpace(c.Synthesis.Engine))
	if c.Synthesis.Engine == "" {
		c.Synthesis.Engine = defaultSynthesisEngine
	}
	c.Synthesis.Rate = strings.TrimSpace(c.Synthesis.Rate)
	c.Synthesis.Volume = strings.TrimSpace(c.Synthesis.Volume)
	if c.Synthesis.TimeoutSeconds <= 0 {
		c.Synthesis.TimeoutSeconds = defaultSynthesisTimeout
	}
	if c.Assembly.TimeoutSeconds <= 0 {
		c.Assembly.TimeoutSeconds = defaultAssemblyTimeout
	}
	c.Synthesis.Voices.Host = strings.TrimSpace(c.Synthesis.Voices.Host)
	if c.Synthesis.Voices.Host == "" {
		c.Synthesis.Voices.Host = defaultHostVoice
	}
	c.Synthesis.Voices.Guest = strings.TrimSpace(c.Synthesis.Voices.Guest)
	if c.Synthesis.Voices.Guest == "" {
		c.Synthesis.Voices.Guest = defaultGuestVoice
	}
	c.Synthesis.Voices.Narrator = strings.TrimSpace(c.Synthesis.Voices.Narrator)
	if c.Synthesis.Voices.Narrator == "" {
		c.Synthesis.Voices.Narrator = c.Synthesis.Voices.Host
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.DailyStyle = strings.ToLower(strings.TrimSpace(c.Schedule.DailyStyle))
	if c.Schedule.DailyStyle == "" {
		c.Schedule.DailyStyle = defaultDailyStyle
	}
	if c.Schedule.AnalyticsIntervalMinutes <= 0 {
		c.Schedule.AnalyticsIntervalMinutes = defaultAnalyticsIntervalMins
	}
	if c.Schedule.MaxInstances <= 0 {
		c.Schedule.MaxInstances = defaultScheduleMaxInstances
	}
	topics := make([]string, 0, len(c.Schedule.DailyTopics))
	seen := make(map[string]struct{}, len(c.Schedule.DailyTopics))
	for _, topic := range c.Schedule.DailyTopics {
		trimmed := strings.TrimSpace(topic)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		topics = append(topics, trimmed)
	}
	c.Schedule.DailyTopics = topics
}

func (c *Config) normalizeTasks() {
	if c.Tasks.Retention <= 0 {
		c.Tasks.Retention = defaultTaskRetention
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	if c.Notifications.DedupWindowSeconds < 0 {
		c.Notifications.DedupWindowSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
