package edgetts

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command is the default edge-tts executable name.
const Command = "edge-tts"

// Service invokes edge-tts to synthesize one clip per call.
type Service struct {
	binary        string
	rate          string
	volume        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an edge-tts service. Rate and volume are passed through
// to the tool when non-empty (e.g. "+10%", "-5%").
func NewService(binary, rate, volume string) *Service {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = Command
	}
	return &Service{
		binary: binary,
		rate:   strings.TrimSpace(rate),
		volume: strings.TrimSpace(volume),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Binary returns the executable the service will invoke.
func (s *Service) Binary() string {
	return s.binary
}

// Available reports whether the edge-tts binary can be found on PATH.
func (s *Service) Available() error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return fmt.Errorf("edge-tts not available: %w", err)
	}
	return nil
}

// Synthesize renders text with the given voice into dest. The caller owns
// the destination file afterwards.
func (s *Service) Synthesize(ctx context.Context, text, voice, dest string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("edge-tts: empty text")
	}
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return errors.New("edge-tts: voice required")
	}
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return errors.New("edge-tts: destination path required")
	}

	args := buildArgs(text, voice, s.rate, s.volume, dest)
	return s.run(ctx, s.binary, args...)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the edge-tts command arguments.
func buildArgs(text, voice, rate, volume, dest string) []string {
	args := make([]string, 0, 10)
	args = append(args,
		"--text", text,
		"--voice", voice,
		"--write-media", dest,
	)
	if rate != "" {
		args = append(args, "--rate", rate)
	}
	if volume != "" {
		args = append(args, "--volume", volume)
	}
	return args
}
