package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"podforge/internal/audio"
	"podforge/internal/audioprobe"
	"podforge/internal/config"
	"podforge/internal/episodes"
	"podforge/internal/fileutil"
	"podforge/internal/logging"
	"podforge/internal/notifications"
	"podforge/internal/scriptgen"
	"podforge/internal/services"
	"podforge/internal/staging"
	"podforge/internal/tasks"
	"podforge/internal/textutil"
)

// Progress milestones persisted during a run. Synthesis advances between
// the script and assembly marks proportionally to segments processed.
const (
	progressScript   = 0.2
	progressAssembly = 0.9
)

// Synthesizer renders one text segment into an audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, dest string) error
}

// Assembler merges ordered clips into the episode artifact.
type Assembler interface {
	Assemble(ctx context.Context, clips []string, dest string) (audio.Result, error)
}

// Request describes a new episode to generate.
type Request struct {
	Topics []string
	Style  episodes.Style
}

// Pipeline owns episode generation runs.
type Pipeline struct {
	cfg       *config.Config
	store     *episodes.Store
	provider  scriptgen.Provider
	synth     Synthesizer
	assembler Assembler
	tasks     *tasks.Manager
	notifier  notifications.Service
	logger    *slog.Logger

	mu     sync.Mutex
	active map[int64]struct{}
}

// New wires a pipeline. A nil notifier falls back to the configured
// notification service; a nil logger discards output.
func New(
	cfg *config.Config,
	store *episodes.Store,
	provider scriptgen.Provider,
	synth Synthesizer,
	assembler Assembler,
	taskManager *tasks.Manager,
	notifier notifications.Service,
	logger *slog.Logger,
) *Pipeline {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Pipeline{
		cfg:       cfg,
		store:     store,
		provider:  provider,
		synth:     synth,
		assembler: assembler,
		tasks:     taskManager,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		active:    make(map[int64]struct{}),
	}
}

// Run creates a new episode for the request and generates it to a
// terminal status. The returned episode reflects the persisted outcome;
// the error carries the failure that drove an error status.
func (p *Pipeline) Run(ctx context.Context, req Request) (*episodes.Episode, error) {
	episode, err := p.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.RunEpisode(ctx, episode)
}

// Prepare validates the request and creates the pending episode row and
// its task, without starting generation. Callers that want the run in
// the background hand the row to RunEpisode on their own goroutine.
func (p *Pipeline) Prepare(ctx context.Context, req Request) (*episodes.Episode, error) {
	topics := cleanTopics(req.Topics)
	if len(topics) == 0 {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run", "at least one topic required", nil)
	}
	style := req.Style
	if style == "" {
		style = episodes.StyleConversation
	}
	if _, ok := episodes.ParseStyle(string(style)); !ok {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run",
			fmt.Sprintf("unknown style %q", style), nil)
	}

	taskID := p.tasks.Register("podcast_generation")
	title := textutil.TitleFromTopics(topics, p.cfg.Script.Language)
	episode, err := p.store.NewEpisode(ctx, title, "", topics, style, taskID)
	if err != nil {
		p.tasks.Complete(taskID, err)
		return nil, services.Wrap(services.ErrTransient, "pipeline", "run", "create episode record", err)
	}
	return episode, nil
}

// RunEpisode generates an existing non-terminal episode. A second
// concurrent run for the same id is rejected with a validation error.
func (p *Pipeline) RunEpisode(ctx context.Context, episode *episodes.Episode) (*episodes.Episode, error) {
	if episode == nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run", "episode required", nil)
	}
	if episode.IsTerminal() {
		return episode, services.Wrap(services.ErrValidation, "pipeline", "run",
			fmt.Sprintf("episode %d already completed with status %s", episode.ID, episode.Status), nil)
	}
	if !p.acquire(episode.ID) {
		return episode, services.Wrap(services.ErrValidation, "pipeline", "run",
			fmt.Sprintf("episode %d already has a run in flight", episode.ID), nil)
	}
	defer p.release(episode.ID)

	// The task id doubles as the run correlation id in logs.
	ctx = services.WithEpisodeID(ctx, episode.ID)
	ctx = services.WithRunID(ctx, episode.TaskID)
	logger := logging.WithContext(ctx, p.logger)
	started := time.Now()
	logger.Info("generation run started",
		logging.String("title", episode.Title),
		logging.String("style", string(episode.Style)),
		logging.String(logging.FieldEventType, "run_start"))
	p.tasks.Start(episode.TaskID)
	p.publish(ctx, notifications.EventGenerationStarted, notifications.Payload{"title": episode.Title})

	err := p.execute(ctx, logger, episode)
	p.tasks.Complete(episode.TaskID, err)
	if err != nil {
		logging.ErrorWithContext(logger, "generation run failed", "run_failure",
			logging.Error(err),
			logging.String("failure_kind", string(services.FailureKind(err))),
			logging.Duration("elapsed", time.Since(started)))
		p.publish(ctx, notifications.EventGenerationFailed, notifications.Payload{
			"title": episode.Title,
			"error": episode.ErrorMessage,
		})
		return episode, err
	}

	logger.Info("generation run complete",
		logging.String("title", episode.Title),
		logging.String("path", episode.AudioFilePath),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "run_complete"))
	p.publish(ctx, notifications.EventEpisodeReady, notifications.Payload{
		"title":    episode.Title,
		"duration": formatDuration(episode.DurationSeconds),
	})
	return episode, nil
}

// execute drives one run to a terminal persisted status. Every failure
// path marks the episode error before returning. Each phase tags the
// context so its log lines and downstream services carry the stage name.
func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, episode *episodes.Episode) error {
	run, err := staging.NewRun(p.cfg, episode.ID, logger)
	if err != nil {
		return p.fail(ctx, logger, episode,
			services.Wrap(services.ErrTransient, "staging", "new", "create run scratch directory", err))
	}
	defer p.releaseScratch(ctx, run)

	stageCtx, logger := p.stageContext(ctx, "script")
	script, err := p.provider.GenerateScript(stageCtx, scriptgen.Request{
		Topics:        episode.Topics(),
		Style:         string(episode.Style),
		Language:      p.cfg.Script.Language,
		TargetMinutes: p.cfg.Script.TargetMinutes,
	})
	if err != nil {
		return p.fail(stageCtx, logger, episode, err)
	}
	p.adoptScript(stageCtx, logger, episode, script)

	stageCtx, logger = p.stageContext(ctx, "synthesis")
	segments := script.ResolvedSegments()
	clips := p.synthesizeSegments(stageCtx, logger, episode, run, segments)
	if len(clips) == 0 {
		return p.fail(stageCtx, logger, episode,
			services.Wrap(services.ErrAssembly, "assembly", "collect", "no segments produced audio", nil))
	}

	stageCtx, logger = p.stageContext(ctx, "assembly")
	merged := run.Path("episode.mp3")
	result, err := p.assembler.Assemble(stageCtx, clips, merged)
	if err != nil {
		return p.fail(stageCtx, logger, episode, err)
	}
	if result.Degraded {
		logger.Warn("episode assembled in degraded mode",
			logging.Int("clips_dropped", len(clips)-result.ClipsMerged),
			logging.String(logging.FieldEventType, "assembly_degraded"))
	}
	p.advance(stageCtx, logger, episode, progressAssembly)

	stageCtx, logger = p.stageContext(ctx, "publish")
	duration, size := p.probeArtifact(stageCtx, logger, result.OutputPath)
	finalPath, err := p.publishArtifact(episode, result.OutputPath)
	if err != nil {
		return p.fail(stageCtx, logger, episode,
			services.Wrap(services.ErrAssembly, "publish", "move", "publish artifact to library", err))
	}

	episode.MarkReady(finalPath, duration, size)
	if err := p.store.Update(stageCtx, episode); err != nil {
		return p.fail(stageCtx, logger, episode,
			services.Wrap(services.ErrTransient, "pipeline", "persist", "save ready episode", err))
	}
	return nil
}

// stageContext annotates the run context for one phase and derives the
// logger that phase logs through.
func (p *Pipeline) stageContext(ctx context.Context, name string) (context.Context, *slog.Logger) {
	ctx = services.WithStage(ctx, name)
	return ctx, logging.WithContext(ctx, p.logger)
}

// adoptScript folds the drafted script into the episode row. Persistence
// problems here are not fatal; the run continues on the in-memory copy.
func (p *Pipeline) adoptScript(ctx context.Context, logger *slog.Logger, episode *episodes.Episode, script *scriptgen.Script) {
	if title := strings.TrimSpace(script.Title); title != "" {
		episode.Title = title
	}
	if description := strings.TrimSpace(script.Description); description != "" {
		episode.Description = description
	}
	if data, err := json.Marshal(script); err == nil {
		episode.ScriptContent = string(data)
	}
	episode.AdvanceProgress(progressScript)
	if err := p.store.Update(ctx, episode); err != nil {
		logging.WarnWithContext(logger, "could not persist drafted script", "script_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "episode row lags the run until the next update"))
	}
}

// synthesizeSegments renders each non-empty segment in order. A failed
// segment is logged and skipped; the clip list preserves segment order.
func (p *Pipeline) synthesizeSegments(ctx context.Context, logger *slog.Logger, episode *episodes.Episode, run *staging.Run, segments []scriptgen.Segment) []string {
	total := len(segments)
	clips := make([]string, 0, total)
	for i, segment := range segments {
		if ctx.Err() != nil {
			logger.Warn("synthesis interrupted",
				logging.Int("segments_remaining", total-i),
				logging.String(logging.FieldEventType, "synthesis_interrupted"))
			break
		}
		text := strings.TrimSpace(segment.Content)
		if text == "" {
			logger.Debug("skipping empty segment", logging.Int("segment", i))
			continue
		}

		voice := p.cfg.VoiceForRole(segment.Speaker)
		dest := run.SegmentPath(i)
		if err := p.synth.Synthesize(ctx, text, voice, dest); err != nil {
			logging.ErrorWithContext(logger, "segment synthesis failed", "segment_synthesis_failed",
				logging.Int("segment", i),
				logging.String("voice", voice),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check edge-tts installation and network access"))
			continue
		}
		clips = append(clips, dest)
		p.advance(ctx, logger, episode, progressScript+(progressAssembly-progressScript)*float64(i+1)/float64(total))
	}
	return clips
}

// fail persists the error outcome and hands the causal error back.
func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, episode *episodes.Episode, err error) error {
	episode.MarkError(failureMessage(err))
	if uerr := p.store.Update(ctx, episode); uerr != nil {
		logging.ErrorWithContext(logger, "could not persist error status", "error_persist_failed",
			logging.Error(uerr),
			logging.String(logging.FieldErrorHint, "check episode database access"))
	}
	return err
}

// failureMessage renders a non-empty human-readable message for the row.
func failureMessage(err error) string {
	detail := services.Details(err)
	switch {
	case detail.Stage != "" && detail.Message != "":
		return fmt.Sprintf("%s: %s", detail.Stage, detail.Message)
	case detail.Message != "":
		return detail.Message
	case err != nil:
		return err.Error()
	default:
		return "generation failed"
	}
}

// advance raises and persists run progress. Progress is cosmetic; store
// failures only warn.
func (p *Pipeline) advance(ctx context.Context, logger *slog.Logger, episode *episodes.Episode, value float64) {
	episode.AdvanceProgress(value)
	if err := p.store.SetProgress(ctx, episode.ID, episode.GenerationProgress); err != nil {
		logger.Warn("could not persist progress",
			logging.Float64("progress", episode.GenerationProgress),
			logging.Error(err),
			logging.String(logging.FieldEventType, "progress_persist_failed"))
	}
}

// probeArtifact measures the merged output. ffprobe is optional; without
// it the duration is estimated from the constant-bitrate export.
func (p *Pipeline) probeArtifact(ctx context.Context, logger *slog.Logger, path string) (float64, int64) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	binary := p.cfg.FFprobeBinary()
	if _, err := exec.LookPath(binary); err == nil {
		result, err := audioprobe.Inspect(ctx, binary, path)
		if err == nil {
			if result.AudioStreamCount() == 0 {
				logger.Warn("merged artifact reports no audio stream",
					logging.String("path", path),
					logging.String(logging.FieldAlert, "artifact_without_audio"))
			}
			if bytes := result.SizeBytes(); bytes > 0 {
				size = bytes
			}
			if duration := result.DurationSeconds(); duration > 0 {
				return duration, size
			}
		} else {
			logger.Warn("artifact probe failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "artifact_probe_failed"))
		}
	}

	// 128kbit/s CBR puts 16000 bytes in every second.
	return float64(size) / 16000, size
}

// publishArtifact moves the merged file into the library under its
// deterministic name.
func (p *Pipeline) publishArtifact(episode *episodes.Episode, src string) (string, error) {
	library := p.cfg.Paths.LibraryDir
	if err := os.MkdirAll(library, 0o755); err != nil {
		return "", fmt.Errorf("create library directory: %w", err)
	}
	name := fmt.Sprintf("podcast_%d_%s.mp3", episode.ID, textutil.ArtifactSlug(episode.Title))
	dest := filepath.Join(library, name)
	if err := fileutil.MoveFile(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// releaseScratch removes the run directory and routes failures to the
// notification sink.
func (p *Pipeline) releaseScratch(ctx context.Context, run *staging.Run) {
	if err := run.Release(); err != nil {
		p.publish(ctx, notifications.EventCleanupFailed, notifications.Payload{
			"path":  run.Dir,
			"error": err.Error(),
		})
	}
}

func (p *Pipeline) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Publish(ctx, event, payload); err != nil {
		p.logger.Debug("notification publish failed",
			logging.String("event", string(event)),
			logging.Error(err))
	}
}

func (p *Pipeline) acquire(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.active[id]; ok {
		return false
	}
	p.active[id] = struct{}{}
	return true
}

func (p *Pipeline) release(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, id)
}

func cleanTopics(topics []string) []string {
	cleaned := make([]string, 0, len(topics))
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
