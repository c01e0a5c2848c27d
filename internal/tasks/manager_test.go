package tasks_test

import (
	"errors"
	"fmt"
	"testing"

	"podforge/internal/tasks"
)

func TestRegisterCreatesPendingTask(t *testing.T) {
	manager := tasks.NewManager(10, nil)

	id := manager.Register("daily_podcast_generation")
	if id == "" {
		t.Fatal("expected task id assigned")
	}

	task, ok := manager.Get(id)
	if !ok {
		t.Fatal("expected task retrievable by id")
	}
	if task.Name != "daily_podcast_generation" {
		t.Fatalf("unexpected name %q", task.Name)
	}
	if task.Status != tasks.StatusPending {
		t.Fatalf("expected pending, got %s", task.Status)
	}
	if task.CompletedAt != nil {
		t.Fatalf("expected no completion timestamp, got %v", task.CompletedAt)
	}

	second := manager.Register("daily_podcast_generation")
	if second == id {
		t.Fatal("expected distinct ids per registration")
	}
}

func TestUpdateUnknownIDIsDropped(t *testing.T) {
	manager := tasks.NewManager(10, nil)

	// Must not panic or create a record.
	manager.Update("no-such-task", tasks.StatusRunning)
	if manager.Count() != 0 {
		t.Fatalf("expected no records, got %d", manager.Count())
	}
}

func TestTerminalUpdateAppliedOnce(t *testing.T) {
	manager := tasks.NewManager(10, nil)

	id := manager.Register("generate")
	manager.Start(id)

	running, _ := manager.Get(id)
	if running.Status != tasks.StatusRunning {
		t.Fatalf("expected running, got %s", running.Status)
	}
	if running.CompletedAt != nil {
		t.Fatal("expected no completion timestamp while running")
	}

	manager.Complete(id, nil)
	done, _ := manager.Get(id)
	if done.Status != tasks.StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatal("expected completion timestamp on terminal task")
	}
	completedAt := *done.CompletedAt

	// Late failure report must not rewrite the terminal record.
	manager.Complete(id, errors.New("late failure"))
	after, _ := manager.Get(id)
	if after.Status != tasks.StatusSucceeded {
		t.Fatalf("expected terminal status preserved, got %s", after.Status)
	}
	if after.CompletedAt == nil || !after.CompletedAt.Equal(completedAt) {
		t.Fatalf("expected completion timestamp unchanged, got %v", after.CompletedAt)
	}
}

func TestCompleteWithErrorMarksFailed(t *testing.T) {
	manager := tasks.NewManager(10, nil)

	id := manager.Register("generate")
	manager.Start(id)
	manager.Complete(id, errors.New("synthesis failed"))

	task, _ := manager.Get(id)
	if task.Status != tasks.StatusFailed {
		t.Fatalf("expected failed, got %s", task.Status)
	}
	if task.CompletedAt == nil {
		t.Fatal("expected completion timestamp on failed task")
	}
}

func TestListMostRecentFirstWithLimit(t *testing.T) {
	manager := tasks.NewManager(10, nil)

	var ids []string
	for i := 1; i <= 3; i++ {
		ids = append(ids, manager.Register(fmt.Sprintf("task-%d", i)))
	}

	all := manager.List(0)
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	if all[0].ID != ids[2] || all[1].ID != ids[1] || all[2].ID != ids[0] {
		t.Fatalf("expected newest first, got %s,%s,%s", all[0].ID, all[1].ID, all[2].ID)
	}

	limited := manager.List(2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(limited))
	}
	if limited[0].ID != ids[2] || limited[1].ID != ids[1] {
		t.Fatalf("expected two newest tasks, got %s,%s", limited[0].ID, limited[1].ID)
	}
}

func TestRetentionEvictsTerminalFirst(t *testing.T) {
	manager := tasks.NewManager(3, nil)

	doneA := manager.Register("done-a")
	manager.Complete(doneA, nil)
	runningB := manager.Register("running-b")
	manager.Start(runningB)
	doneC := manager.Register("done-c")
	manager.Complete(doneC, nil)

	// Fourth registration exceeds the bound; the oldest terminal record goes.
	freshD := manager.Register("fresh-d")

	if manager.Count() != 3 {
		t.Fatalf("expected 3 retained tasks, got %d", manager.Count())
	}
	if _, ok := manager.Get(doneA); ok {
		t.Fatal("expected oldest terminal task evicted")
	}
	for _, id := range []string{runningB, doneC, freshD} {
		if _, ok := manager.Get(id); !ok {
			t.Fatalf("expected task %s retained", id)
		}
	}
}

func TestRetentionEvictsOldestWhenNoneTerminal(t *testing.T) {
	manager := tasks.NewManager(2, nil)

	first := manager.Register("first")
	manager.Start(first)
	second := manager.Register("second")
	manager.Start(second)
	third := manager.Register("third")

	if manager.Count() != 2 {
		t.Fatalf("expected 2 retained tasks, got %d", manager.Count())
	}
	if _, ok := manager.Get(first); ok {
		t.Fatal("expected oldest task evicted when all are live")
	}
	if _, ok := manager.Get(second); !ok {
		t.Fatal("expected second task retained")
	}
	if _, ok := manager.Get(third); !ok {
		t.Fatal("expected third task retained")
	}
}

func TestStatsGroupsByStatus(t *testing.T) {
	manager := tasks.NewManager(10, nil)

	manager.Register("pending-one")
	running := manager.Register("running-one")
	manager.Start(running)
	done := manager.Register("done-one")
	manager.Complete(done, nil)
	failed := manager.Register("failed-one")
	manager.Complete(failed, errors.New("boom"))

	stats := manager.Stats()
	if stats[tasks.StatusPending] != 1 || stats[tasks.StatusRunning] != 1 {
		t.Fatalf("unexpected live counts: %v", stats)
	}
	if stats[tasks.StatusSucceeded] != 1 || stats[tasks.StatusFailed] != 1 {
		t.Fatalf("unexpected terminal counts: %v", stats)
	}
}
