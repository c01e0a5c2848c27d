package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"podforge/internal/config"
	"podforge/internal/fileutil"
	"podforge/internal/logging"
	"podforge/internal/services"
)

const (
	// mixSampleRate matches edge-tts output so normalization never resamples
	// in the common case.
	mixSampleRate = 24000
	silenceMs     = 500
	exportBitrate = "128k"
)

// Result describes the outcome of one assembly.
type Result struct {
	OutputPath  string
	ClipsMerged int
	Gaps        int
	Degraded    bool
}

// Assembler concatenates ordered clips into a single MP3 artifact.
type Assembler struct {
	binary        string
	timeout       time.Duration
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
	lookPath      func(name string) (string, error)
}

// NewAssembler builds an assembler using the configured ffmpeg binary.
func NewAssembler(cfg *config.Config, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{
		binary:   cfg.FFmpegBinary(),
		timeout:  time.Duration(cfg.Assembly.TimeoutSeconds) * time.Second,
		logger:   logging.NewComponentLogger(logger, "audio"),
		lookPath: exec.LookPath,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (a *Assembler) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	a.commandRunner = runner
}

// Assemble merges clips in input order into dest. Scratch files are written
// next to dest, so dest should live inside the run's staging directory.
func (a *Assembler) Assemble(ctx context.Context, clips []string, dest string) (Result, error) {
	if len(clips) == 0 {
		return Result{}, services.Wrap(services.ErrAssembly, "assembly", "assemble", "no clips to assemble", nil)
	}
	for _, clip := range clips {
		if _, err := os.Stat(clip); err != nil {
			return Result{}, services.Wrap(services.ErrAssembly, "assembly", "assemble",
				fmt.Sprintf("clip missing: %s", filepath.Base(clip)), err)
		}
	}

	logger := logging.WithContext(ctx, a.logger)
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if len(clips) == 1 {
		if err := fileutil.CopyFileVerified(clips[0], dest); err != nil {
			return Result{}, services.Wrap(services.ErrAssembly, "assembly", "passthrough", "copy single clip", err)
		}
		return Result{OutputPath: dest, ClipsMerged: 1}, nil
	}

	if _, err := a.lookPath(a.binary); err != nil {
		return a.assembleDegraded(logger, clips, dest, err)
	}

	result, err := a.merge(ctx, clips, dest)
	if err != nil {
		return Result{}, err
	}
	logger.Info("assembled episode audio",
		logging.Int("clips", result.ClipsMerged),
		logging.Int("gaps", result.Gaps),
		logging.String("path", dest),
		logging.String(logging.FieldEventType, "assembly_complete"))
	return result, nil
}

// assembleDegraded copies the first clip verbatim when merging is impossible.
func (a *Assembler) assembleDegraded(logger *slog.Logger, clips []string, dest string, cause error) (Result, error) {
	logging.WarnWithContext(logger, "ffmpeg unavailable, keeping first clip only", "assembly_degraded",
		logging.Error(cause),
		logging.Int("clips_dropped", len(clips)-1),
		logging.String(logging.FieldErrorHint, "install ffmpeg to enable multi-segment episodes"),
		logging.String(logging.FieldImpact, "episode contains only the first segment"))

	if err := fileutil.CopyFileVerified(clips[0], dest); err != nil {
		return Result{}, services.Wrap(services.ErrAssembly, "assembly", "degraded", "copy first clip", err)
	}
	return Result{OutputPath: dest, ClipsMerged: 1, Degraded: true}, nil
}

// merge normalizes every clip to a common PCM format, interleaves silence,
// and exports a constant-bitrate MP3.
func (a *Assembler) merge(ctx context.Context, clips []string, dest string) (Result, error) {
	workDir := filepath.Dir(dest)

	normalized := make([]string, 0, len(clips))
	for i, clip := range clips {
		wav := filepath.Join(workDir, fmt.Sprintf("norm_%d.wav", i))
		if err := a.run(ctx, a.binary, normalizeArgs(clip, wav)...); err != nil {
			return Result{}, services.Wrap(services.ErrAssembly, "assembly", "normalize",
				fmt.Sprintf("clip %d", i), err)
		}
		normalized = append(normalized, wav)
	}

	silence := filepath.Join(workDir, "silence.wav")
	if err := a.run(ctx, a.binary, silenceArgs(silence)...); err != nil {
		return Result{}, services.Wrap(services.ErrAssembly, "assembly", "silence", "generate gap", err)
	}

	listPath := filepath.Join(workDir, "concat_list.txt")
	if err := writeConcatList(listPath, normalized, silence); err != nil {
		return Result{}, services.Wrap(services.ErrAssembly, "assembly", "concat", "write list", err)
	}

	if err := a.run(ctx, a.binary, concatArgs(listPath, dest)...); err != nil {
		return Result{}, services.Wrap(services.ErrAssembly, "assembly", "concat", "merge clips", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return Result{}, services.Wrap(services.ErrAssembly, "assembly", "concat", "merged output missing", err)
	}
	if info.Size() == 0 {
		return Result{}, services.Wrap(services.ErrAssembly, "assembly", "concat", "merged output empty", nil)
	}

	return Result{OutputPath: dest, ClipsMerged: len(clips), Gaps: len(clips) - 1}, nil
}

// run executes a command, using the custom runner if set.
func (a *Assembler) run(ctx context.Context, name string, args ...string) error {
	if a.commandRunner != nil {
		return a.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// normalizeArgs decodes a clip to mono PCM at the mix sample rate.
func normalizeArgs(clip, dest string) []string {
	return []string{
		"-y", "-v", "error",
		"-i", clip,
		"-ar", fmt.Sprint(mixSampleRate),
		"-ac", "1",
		"-acodec", "pcm_s16le",
		dest,
	}
}

// silenceArgs generates the fixed gap inserted between adjacent clips.
func silenceArgs(dest string) []string {
	return []string{
		"-y", "-v", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", mixSampleRate),
		"-t", fmt.Sprintf("%.3f", float64(silenceMs)/1000),
		"-acodec", "pcm_s16le",
		dest,
	}
}

// concatArgs stitches the list entries and exports constant-bitrate MP3.
func concatArgs(listPath, dest string) []string {
	return []string{
		"-y", "-v", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:a", "libmp3lame",
		"-b:a", exportBitrate,
		dest,
	}
}

// writeConcatList emits the concat demuxer playlist: clips in input order
// with the silence entry between each adjacent pair.
func writeConcatList(path string, clips []string, silence string) error {
	var builder strings.Builder
	for i, clip := range clips {
		if i > 0 {
			fmt.Fprintf(&builder, "file '%s'\n", silence)
		}
		fmt.Fprintf(&builder, "file '%s'\n", clip)
	}
	return os.WriteFile(path, []byte(builder.String()), 0o644)
}
