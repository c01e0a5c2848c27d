package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"podforge/internal/audio"
	"podforge/internal/config"
	"podforge/internal/daemon"
	"podforge/internal/episodes"
	"podforge/internal/ipc"
	"podforge/internal/logging"
	"podforge/internal/pipeline"
	"podforge/internal/scriptgen"
	"podforge/internal/tasks"
	"podforge/internal/testsupport"
	"podforge/internal/workflow"
)

type stubProvider struct{}

func (stubProvider) GenerateScript(context.Context, scriptgen.Request) (*scriptgen.Script, error) {
	return &scriptgen.Script{
		Title: "开源专题",
		Segments: []scriptgen.Segment{
			{Speaker: config.RoleHost, Content: "欢迎收听"},
			{Speaker: config.RoleGuest, Content: "很高兴来到这里"},
		},
	}, nil
}

type stubSynth struct{}

func (stubSynth) Synthesize(_ context.Context, text, _, dest string) error {
	return os.WriteFile(dest, []byte(text), 0o644)
}

type stubAssembler struct{}

func (stubAssembler) Assemble(_ context.Context, clips []string, dest string) (audio.Result, error) {
	if err := os.WriteFile(dest, []byte("merged"), 0o644); err != nil {
		return audio.Result{}, err
	}
	return audio.Result{OutputPath: dest, ClipsMerged: len(clips)}, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *episodes.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithScheduleEnabled("科技新闻"),
	)

	configPath := filepath.Join(homeDir, ".config", "podforge", "config.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	taskManager := tasks.NewManager(50, nil)
	pipe := pipeline.New(cfg, store, stubProvider{}, stubSynth{}, stubAssembler{}, taskManager, nil, nil)
	mgr := workflow.NewManager(cfg, store, pipe, taskManager, nil, nil)

	d, err := daemon.New(cfg, store, taskManager, mgr, nil, logger, "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		cancel()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Stop()
	})

	return env
}

// setupOfflineEnv prepares a config file and seeded store with no daemon
// behind the socket, for exercising the read-only fallback path.
func setupOfflineEnv(t *testing.T) (*config.Config, string, *episodes.Store) {
	t.Helper()

	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := filepath.Join(homeDir, ".config", "podforge", "config.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	return cfg, configPath, store
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
