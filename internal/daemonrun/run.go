package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"podforge/internal/audio"
	"podforge/internal/config"
	"podforge/internal/daemon"
	"podforge/internal/episodes"
	"podforge/internal/ipc"
	"podforge/internal/logging"
	"podforge/internal/notifications"
	"podforge/internal/pipeline"
	"podforge/internal/preflight"
	"podforge/internal/scriptgen"
	"podforge/internal/speech"
	"podforge/internal/staging"
	"podforge/internal/tasks"
	"podforge/internal/workflow"
)

// Run directories untouched for this long are treated as abandoned by a
// previous daemon and swept at startup.
const staleRunMaxAge = 24 * time.Hour

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the podforge daemon runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("podforge-%s.log", runID))

	loggerOpts := logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	}
	logger, err := logging.New(loggerOpts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	preflight.Collect(signalCtx, cfg).Log(logger)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update podforge.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "podforge-*.log", Exclude: []string{logPath}},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, "podforge.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	sweepStaleRuns(signalCtx, cfg, logger)

	store, err := episodes.Open(cfg)
	if err != nil {
		logger.Error("open episode store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	taskManager := tasks.NewManager(cfg.Tasks.Retention, logger)

	provider, err := scriptgen.New(signalCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init script provider: %w", err)
	}
	synthesizer, err := speech.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init speech synthesizer: %w", err)
	}
	assembler := audio.NewAssembler(cfg, logger)

	pipe := pipeline.New(cfg, store, provider, synthesizer, assembler, taskManager, notifier, logger)
	workflowManager := workflow.NewManager(cfg, store, pipe, taskManager, notifier, logger)

	d, err := daemon.New(cfg, store, taskManager, workflowManager, notifier, logger, logPath)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := filepath.Join(cfg.Paths.LogDir, "podforge.sock")
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and episode database access"),
			logging.String(logging.FieldImpact, "daemon may not generate episodes"),
		)
	}

	<-signalCtx.Done()
	logger.Info("podforge daemon shutting down")
	return nil
}

func sweepStaleRuns(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	result := staging.CleanStale(ctx, cfg.Paths.StagingDir, staleRunMaxAge, logger)
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		return
	}
	logger.Info("staging sweep complete",
		logging.String(logging.FieldEventType, "staging_sweep"),
		logging.Int("removed", len(result.Removed)),
		logging.Int("errors", len(result.Errors)),
	)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "podforge.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
