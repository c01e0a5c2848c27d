package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/services"
	"podforge/internal/services/edgetts"
)

// client is the engine-facing surface the synthesizer drives.
type client interface {
	Synthesize(ctx context.Context, text, voice, dest string) error
}

// Synthesizer renders text segments to audio clips through the configured
// engine.
type Synthesizer struct {
	client  client
	logger  *slog.Logger
	timeout time.Duration
}

// New builds a synthesizer for the configured engine. An unsupported
// engine is a configuration error, not a degraded mode.
func New(cfg *config.Config, logger *slog.Logger) (*Synthesizer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var engine client
	switch cfg.Synthesis.Engine {
	case config.EngineEdge:
		engine = edgetts.NewService(cfg.EdgeTTSBinary(), cfg.Synthesis.Rate, cfg.Synthesis.Volume)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "synthesis", "new",
			fmt.Sprintf("unsupported synthesis engine %q", cfg.Synthesis.Engine), nil)
	}

	return &Synthesizer{
		client:  engine,
		logger:  logging.NewComponentLogger(logger, "speech"),
		timeout: time.Duration(cfg.Synthesis.TimeoutSeconds) * time.Second,
	}, nil
}

// Synthesize renders text with the given voice into dest. Failures are
// synthesis errors scoped to this one call; the caller decides whether the
// run survives. The clip at dest belongs to the caller on success.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice, dest string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := s.client.Synthesize(ctx, text, voice, dest); err != nil {
		return services.Wrap(services.ErrSynthesis, "synthesis", "synthesize",
			fmt.Sprintf("voice %s", voice), err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return services.Wrap(services.ErrSynthesis, "synthesis", "synthesize",
			"engine reported success but wrote no clip", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrSynthesis, "synthesis", "synthesize",
			"engine wrote an empty clip", nil)
	}

	s.logger.Debug("synthesized clip",
		logging.String("voice", voice),
		logging.Int("chars", len([]rune(text))),
		logging.Int64("bytes", info.Size()),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}
