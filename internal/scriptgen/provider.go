package scriptgen

import (
	"context"
	"fmt"
	"log/slog"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/services"
	"podforge/internal/services/gemini"
	"podforge/internal/services/llm"
)

// Request describes the episode a script is wanted for.
type Request struct {
	Topics        []string
	Style         string
	Language      string
	TargetMinutes int
}

// Provider produces a script document for an episode request.
type Provider interface {
	GenerateScript(ctx context.Context, req Request) (*Script, error)
}

// chatCompleter is the JSON completion surface both model clients share.
type chatCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New selects and constructs the configured script provider.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.NewComponentLogger(logger, "scriptgen")

	switch cfg.Script.Provider {
	case config.ProviderLLM:
		llmCfg := cfg.GetLLM()
		if llmCfg.APIKey == "" {
			return nil, services.Wrap(services.ErrConfiguration, "script", "new",
				"llm provider requires llm.api_key", nil)
		}
		client := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		})
		return &completionProvider{name: config.ProviderLLM, completer: client, logger: log}, nil

	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "script", "new",
				"gemini provider unavailable", err)
		}
		return &completionProvider{name: config.ProviderGemini, completer: client, logger: log}, nil

	case config.ProviderFile:
		if cfg.Script.InboxDir == "" {
			return nil, services.Wrap(services.ErrConfiguration, "script", "new",
				"file provider requires script.inbox_dir", nil)
		}
		return &fileProvider{dir: cfg.Script.InboxDir, logger: log}, nil
	}

	return nil, services.Wrap(services.ErrConfiguration, "script", "new",
		fmt.Sprintf("unsupported script provider %q", cfg.Script.Provider), nil)
}

// completionProvider drafts scripts through a chat-completion model.
type completionProvider struct {
	name      string
	completer chatCompleter
	logger    *slog.Logger
}

func (p *completionProvider) GenerateScript(ctx context.Context, req Request) (*Script, error) {
	if len(joinTopics(req.Topics, "")) == 0 {
		return nil, services.Wrap(services.ErrValidation, "script", "generate",
			"at least one topic required", nil)
	}

	content, err := p.completer.CompleteJSON(ctx, scriptSystemPrompt, buildUserPrompt(req))
	if err != nil {
		return nil, services.Wrap(services.ErrScriptSource, "script", "generate",
			fmt.Sprintf("%s provider failed", p.name), err)
	}

	script := ParseDocument(content)
	if !script.Usable() {
		return nil, services.Wrap(services.ErrScriptSource, "script", "parse",
			fmt.Sprintf("%s provider returned an empty script", p.name), nil)
	}

	p.logger.Debug("script drafted",
		logging.String("provider", p.name),
		logging.String("title", script.Title),
		logging.Int("segments", len(script.Segments)),
		logging.Int("chars", len(content)))
	return script, nil
}
