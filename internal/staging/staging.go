// Package staging manages scratch directories for generation runs. Each run
// gets its own directory under the staging root so concurrent runs never
// collide, and per-segment clips use a stable transient naming scheme.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"podforge/internal/config"
	"podforge/internal/logging"
)

const runDirPrefix = "run-"

// Run is a scoped scratch directory for one generation run. The run owns
// every file inside its directory; Release removes the whole tree.
type Run struct {
	EpisodeID int64
	Dir       string
	logger    *slog.Logger
}

// NewRun creates a fresh scratch directory under the staging root.
func NewRun(cfg *config.Config, episodeID int64, logger *slog.Logger) (*Run, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	root := strings.TrimSpace(cfg.Paths.StagingDir)
	if root == "" {
		return nil, fmt.Errorf("staging directory not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	dir := filepath.Join(root, fmt.Sprintf("%s%d-%s", runDirPrefix, episodeID, uuid.NewString()))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	return &Run{
		EpisodeID: episodeID,
		Dir:       dir,
		logger:    logging.NewComponentLogger(logger, "staging"),
	}, nil
}

// SegmentPath returns the scratch path for the clip at the given segment
// index.
func (r *Run) SegmentPath(index int) string {
	return filepath.Join(r.Dir, fmt.Sprintf("temp_segment_%d.mp3", index))
}

// Path returns a scratch path for an arbitrary file inside the run directory.
func (r *Run) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Release removes the run directory and everything in it. Failures are
// logged and returned so the caller can route them to its observability
// sink; they are never fatal to the run that triggered them.
func (r *Run) Release() error {
	if r == nil || r.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(r.Dir); err != nil {
		logging.WarnWithContext(r.logger, "failed to remove run scratch directory", "staging_cleanup_failed",
			logging.String("path", r.Dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"))
		return fmt.Errorf("release staging run %s: %w", r.Dir, err)
	}
	r.logger.Debug("released run scratch directory", logging.String("path", r.Dir))
	return nil
}
