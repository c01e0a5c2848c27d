package preflight

import (
	"context"
	"fmt"
	"log/slog"

	"podforge/internal/config"
	"podforge/internal/deps"
	"podforge/internal/logging"
)

// Snapshot aggregates binary availability and readiness checks. The daemon
// logs one at boot and the doctor command renders one on demand.
type Snapshot struct {
	Binaries []deps.Status
	Checks   []Result
}

// Collect gathers the full dependency snapshot for the given config.
func Collect(ctx context.Context, cfg *config.Config) Snapshot {
	return Snapshot{
		Binaries: CheckSystemDeps(ctx, cfg),
		Checks:   RunAll(ctx, cfg),
	}
}

// Healthy reports whether every required binary is available and every
// readiness check passed. Optional binaries do not affect the outcome.
func (s Snapshot) Healthy() bool {
	for _, st := range s.Binaries {
		if !st.Available && !st.Optional {
			return false
		}
	}
	for _, check := range s.Checks {
		if !check.Passed {
			return false
		}
	}
	return true
}

// Log writes the snapshot to the daemon log, one line per dependency.
func (s Snapshot) Log(logger *slog.Logger) {
	if logger == nil {
		return
	}
	for _, st := range s.Binaries {
		attrs := []logging.Attr{
			logging.String("dependency", st.Name),
			logging.String("command", st.Command),
			logging.Bool("available", st.Available),
			logging.Bool("optional", st.Optional),
		}
		if st.Version != "" {
			attrs = append(attrs, logging.String("version", st.Version))
		}
		if st.Available || st.Optional {
			if st.Detail != "" {
				attrs = append(attrs, logging.String("detail", st.Detail))
			}
			attrs = append(attrs, logging.String(logging.FieldEventType, "dependency_snapshot"))
			logger.Info("dependency checked", logging.Args(attrs...)...)
			continue
		}
		attrs = append(attrs,
			logging.String("detail", st.Detail),
			logging.String(logging.FieldErrorHint, fmt.Sprintf("install %s and restart the daemon", st.Command)),
			logging.String(logging.FieldImpact, "generation runs will fail until resolved"),
		)
		logging.WarnWithContext(logger, "dependency missing", "dependency_snapshot", attrs...)
	}
	for _, check := range s.Checks {
		attrs := []logging.Attr{
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		}
		if check.Passed {
			attrs = append(attrs, logging.String(logging.FieldEventType, "dependency_snapshot"))
			logger.Info("preflight check passed", logging.Args(attrs...)...)
			continue
		}
		attrs = append(attrs, logging.String(logging.FieldErrorHint, "run podforge doctor for details"))
		logging.WarnWithContext(logger, "preflight check failed", "dependency_snapshot", attrs...)
	}
}
