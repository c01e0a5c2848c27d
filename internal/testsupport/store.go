package testsupport

import (
	"context"
	"testing"

	"podforge/internal/config"
	"podforge/internal/episodes"
)

// MustOpenStore opens an episode store for tests and closes it on cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *episodes.Store {
	t.Helper()

	store, err := episodes.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewEpisode inserts a generating episode with sane defaults and returns it.
func NewEpisode(t testing.TB, store *episodes.Store, title string) *episodes.Episode {
	t.Helper()

	episode, err := store.NewEpisode(context.Background(), title, "", []string{"测试话题"}, episodes.StyleConversation, "")
	if err != nil {
		t.Fatalf("create episode: %v", err)
	}
	return episode
}
