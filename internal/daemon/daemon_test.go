package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"podforge/internal/audio"
	"podforge/internal/config"
	"podforge/internal/daemon"
	"podforge/internal/episodes"
	"podforge/internal/logging"
	"podforge/internal/notifications"
	"podforge/internal/pipeline"
	"podforge/internal/scriptgen"
	"podforge/internal/tasks"
	"podforge/internal/testsupport"
	"podforge/internal/workflow"
)

type stubProvider struct{}

func (stubProvider) GenerateScript(context.Context, scriptgen.Request) (*scriptgen.Script, error) {
	return &scriptgen.Script{
		Title:    "每日一期",
		Segments: []scriptgen.Segment{{Speaker: config.RoleHost, Content: "大家好"}},
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

type sinkRecorder struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (s *sinkRecorder) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *sinkRecorder) seen(event notifications.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e == event {
			return true
		}
	}
	return false
}

type fixture struct {
	cfg    *config.Config
	store  *episodes.Store
	sink   *sinkRecorder
	daemon *daemon.Daemon
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	taskManager := tasks.NewManager(50, nil)
	sink := &sinkRecorder{}
	pipe := pipeline.New(cfg, store, stubProvider{}, stubSynth{}, stubAssembler{}, taskManager, sink, nil)
	mgr := workflow.NewManager(cfg, store, pipe, taskManager, sink, nil)
	d, err := daemon.New(cfg, store, taskManager, mgr, sink, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop()
	})
	return &fixture{cfg: cfg, store: store, sink: sink, daemon: d}
}

func TestDaemonStartStop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.daemon.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := f.daemon.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), status.PID)
	}
	if status.Version == "" {
		t.Fatal("expected version in status")
	}
	if status.DatabasePath != f.store.Path() {
		t.Fatalf("unexpected database path %q", status.DatabasePath)
	}
	if filepath.Base(status.LockFilePath) != "podforged.lock" {
		t.Fatalf("unexpected lock path %q", status.LockFilePath)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency snapshot in status")
	}
	if !f.sink.seen(notifications.EventDaemonStarted) {
		t.Fatal("expected daemon started notification")
	}

	// Second start must fail while the first is running.
	if err := f.daemon.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	f.daemon.Stop()
	if status := f.daemon.Status(ctx); status.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if !f.sink.seen(notifications.EventDaemonStopped) {
		t.Fatal("expected daemon stopped notification")
	}
}

func TestDaemonRemoveEpisodeSweepsArtifact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	episode := testsupport.NewEpisode(t, f.store, "待删除节目")
	artifact := filepath.Join(f.cfg.Paths.LibraryDir, "podcast_1_test.mp3")
	testsupport.WriteFile(t, artifact, 64)
	episode.MarkReady(artifact, 12.5, 64)
	if err := f.store.Update(ctx, episode); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	removed, err := f.daemon.RemoveEpisode(ctx, episode.ID)
	if err != nil {
		t.Fatalf("RemoveEpisode failed: %v", err)
	}
	if !removed {
		t.Fatal("expected episode to be removed")
	}
	if _, err := os.Stat(artifact); !os.IsNotExist(err) {
		t.Fatalf("expected artifact swept, stat err=%v", err)
	}
	if stored, err := f.store.GetByID(ctx, episode.ID); err != nil || stored != nil {
		t.Fatalf("expected row gone, got %+v err=%v", stored, err)
	}

	removed, err = f.daemon.RemoveEpisode(ctx, 9999)
	if err != nil {
		t.Fatalf("RemoveEpisode unknown id errored: %v", err)
	}
	if removed {
		t.Fatal("expected not_found outcome for unknown id")
	}
}

func TestDaemonClearFailedEpisodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	episode := testsupport.NewEpisode(t, f.store, "失败节目")
	episode.MarkError("synthesis failed")
	if err := f.store.Update(ctx, episode); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	testsupport.NewEpisode(t, f.store, "进行中节目")

	cleared, err := f.daemon.ClearFailedEpisodes(ctx)
	if err != nil {
		t.Fatalf("ClearFailedEpisodes failed: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 cleared, got %d", cleared)
	}
	remaining, err := f.daemon.ListEpisodes(ctx, nil)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining episode, got %d", len(remaining))
	}
}

func TestDaemonTestNotification(t *testing.T) {
	f := newFixture(t)

	ok, detail, err := f.daemon.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification errored: %v", err)
	}
	if ok {
		t.Fatal("expected test notification to be skipped without a topic")
	}
	if detail != "ntfy topic not configured" {
		t.Fatalf("unexpected detail %q", detail)
	}

	f.cfg.Notifications.NtfyTopic = "https://ntfy.sh/podforge-test"
	ok, detail, err = f.daemon.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification errored: %v", err)
	}
	if !ok || detail != "test notification sent" {
		t.Fatalf("expected sent outcome, got ok=%v detail=%q", ok, detail)
	}
	if !f.sink.seen(notifications.EventTest) {
		t.Fatal("expected test event published")
	}
}
