package access_test

import (
	"context"
	"errors"
	"testing"

	"podforge/internal/access"
	"podforge/internal/episodes"
	"podforge/internal/ipc"
	"podforge/internal/testsupport"
)

func TestOpenWithFallbackUsesStoreWhenDialFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seed := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ready := testsupport.NewEpisode(t, seed, "上线节目")
	ready.MarkReady("/tmp/podcast_1_demo.mp3", 61.5, 2048)
	if err := seed.Update(ctx, ready); err != nil {
		t.Fatalf("update ready episode: %v", err)
	}
	failed := testsupport.NewEpisode(t, seed, "失败节目")
	failed.MarkError("synthesis failed")
	if err := seed.Update(ctx, failed); err != nil {
		t.Fatalf("update failed episode: %v", err)
	}

	dialErr := errors.New("socket unavailable")
	session, err := access.OpenWithFallback(
		func() (*ipc.Client, error) { return nil, dialErr },
		func() (*episodes.Store, error) { return episodes.Open(cfg) },
	)
	if err != nil {
		t.Fatalf("OpenWithFallback: %v", err)
	}
	t.Cleanup(func() {
		if err := session.Close(); err != nil {
			t.Errorf("session close: %v", err)
		}
	})

	status, err := session.Access.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Running {
		t.Fatal("store-backed status must not report a running daemon")
	}
	if status.EpisodeStats[string(episodes.StatusReady)] != 1 {
		t.Fatalf("unexpected stats %v", status.EpisodeStats)
	}
	if status.DatabasePath == "" {
		t.Fatal("expected database path in degraded status")
	}

	all, err := session.Access.List(ctx, nil, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(all))
	}

	failures, err := session.Access.List(ctx, []string{string(episodes.StatusError)}, 0)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(failures) != 1 || failures[0].ID != failed.ID {
		t.Fatalf("expected failed episode %d, got %v", failed.ID, failures)
	}

	limited, err := session.Access.List(ctx, nil, 1)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 episode with limit, got %d", len(limited))
	}

	described, err := session.Access.Describe(ctx, ready.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if described == nil || described.Title != "上线节目" {
		t.Fatalf("unexpected describe result %v", described)
	}
	missing, err := session.Access.Describe(ctx, 9999)
	if err != nil {
		t.Fatalf("Describe missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown episode, got %v", missing)
	}

	if _, err := session.Access.Generate(ctx, []string{"科技"}, ""); !errors.Is(err, access.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning from Generate, got %v", err)
	}
	if _, err := session.Access.Remove(ctx, ready.ID); !errors.Is(err, access.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning from Remove, got %v", err)
	}
	if _, err := session.Access.ClearFailed(ctx); !errors.Is(err, access.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning from ClearFailed, got %v", err)
	}
	if _, err := session.Access.Tasks(ctx, 0); !errors.Is(err, access.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning from Tasks, got %v", err)
	}
	if _, err := session.Access.Jobs(ctx); !errors.Is(err, access.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning from Jobs, got %v", err)
	}
}

func TestOpenWithFallbackRequiresStoreOpener(t *testing.T) {
	_, err := access.OpenWithFallback(nil, nil)
	if err == nil {
		t.Fatal("expected error without dial or store opener")
	}
}
