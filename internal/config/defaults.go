package config

// Script generation providers.
const (
	ProviderLLM    = "llm"
	ProviderGemini = "gemini"
	ProviderFile   = "file"
)

// Speaker roles recognized by the voice table.
const (
	RoleHost     = "host"
	RoleGuest    = "guest"
	RoleNarrator = "narrator"
)

// Episode styles.
const (
	StyleConversation = "conversation"
	StyleLecture      = "lecture"
	StyleQA           = "qa"
)

// EngineEdge is the supported speech synthesis engine.
const EngineEdge = "edge"

const (
	defaultStagingDir             = "~/.local/share/podforge/staging"
	defaultLibraryDir             = "~/podcasts"
	defaultLogDir                 = "~/.local/share/podforge/logs"
	defaultLogRetentionDays       = 60
	defaultAPIBind                = "127.0.0.1:7823"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultScriptProvider         = ProviderLLM
	defaultScriptLanguage         = "zh-CN"
	defaultScriptTargetMinutes    = 15
	defaultLLMBaseURL             = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel               = "google/gemini-3-flash-preview"
	defaultLLMReferer             = "https://github.com/podforge/podforge"
	defaultLLMTitle               = "Podforge Script Writer"
	defaultLLMTimeoutSeconds      = 120
	defaultGeminiModel            = "gemini-2.5-flash"
	defaultGeminiTimeoutSeconds   = 120
	defaultSynthesisEngine        = EngineEdge
	defaultSynthesisTimeout       = 300
	defaultAssemblyTimeout        = 600
	defaultHostVoice              = "zh-CN-YunxiNeural"
	defaultGuestVoice             = "zh-CN-XiaoxiaoNeural"
	defaultNarratorVoice          = "zh-CN-YunyangNeural"
	defaultDailyHour              = 20
	defaultDailyMinute            = 0
	defaultDailyStyle             = StyleConversation
	defaultAnalyticsIntervalMins  = 60
	defaultScheduleMaxInstances   = 3
	defaultTaskRetention          = 200
	defaultNotifyRequestTimeout   = 10
	defaultNotifyDedupWindowSecs  = 600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Script: Script{
			Provider:      defaultScriptProvider,
			Language:      defaultScriptLanguage,
			TargetMinutes: defaultScriptTargetMinutes,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Gemini: Gemini{
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		Synthesis: Synthesis{
			Engine:         defaultSynthesisEngine,
			TimeoutSeconds: defaultSynthesisTimeout,
			Voices: Voices{
				Host:     defaultHostVoice,
				Guest:    defaultGuestVoice,
				Narrator: defaultNarratorVoice,
			},
		},
		Assembly: Assembly{
			TimeoutSeconds: defaultAssemblyTimeout,
		},
		Schedule: Schedule{
			DailyHour:                defaultDailyHour,
			DailyMinute:              defaultDailyMinute,
			DailyStyle:               defaultDailyStyle,
			AnalyticsIntervalMinutes: defaultAnalyticsIntervalMins,
			MaxInstances:             defaultScheduleMaxInstances,
		},
		Tasks: Tasks{
			Retention: defaultTaskRetention,
		},
		Notifications: Notifications{
			RequestTimeout:     defaultNotifyRequestTimeout,
			Generation:         true,
			Schedule:           true,
			Cleanup:            true,
			Errors:             true,
			DedupWindowSeconds: defaultNotifyDedupWindowSecs,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
