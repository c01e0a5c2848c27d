package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"podforge/internal/config"
	"podforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventEpisodeReady, notifications.Payload{"title": "Example"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "generation started",
			event: notifications.EventGenerationStarted,
			payload: notifications.Payload{
				"title": "每日科技新闻",
			},
			expectTitle:   "Podforge - Generation Started",
			expectMessage: "🎙️ Generating episode: 每日科技新闻",
			expectTags:    "podforge,generate,started",
		},
		{
			name:  "episode ready",
			event: notifications.EventEpisodeReady,
			payload: notifications.Payload{
				"title":    "每日科技新闻",
				"duration": "5m12s",
			},
			expectTitle:    "Podforge - Episode Ready",
			expectMessage:  "✅ Ready to listen: 每日科技新闻 (5m12s)",
			expectTags:     "podforge,generate,completed",
			expectPriority: "high",
		},
		{
			name:  "generation failed",
			event: notifications.EventGenerationFailed,
			payload: notifications.Payload{
				"title": "Morning Brief",
				"error": "no segments produced audio",
			},
			expectTitle:    "Podforge - Generation Failed",
			expectMessage:  "❌ Generation failed for Morning Brief: no segments produced audio",
			expectTags:     "podforge,error,alert",
			expectPriority: "high",
		},
		{
			name:  "trigger dropped",
			event: notifications.EventTriggerDropped,
			payload: notifications.Payload{
				"job":     "daily_podcast_generation",
				"running": "3",
			},
			expectTitle:   "Podforge - Trigger Dropped",
			expectMessage: "⚠️ Dropped trigger for daily_podcast_generation: 3 instances already running",
			expectTags:    "podforge,schedule,dropped",
		},
		{
			name:  "analytics summary",
			event: notifications.EventAnalytics,
			payload: notifications.Payload{
				"ready":    "12",
				"total":    "15",
				"duration": "3h20m",
			},
			expectTitle:    "Podforge - Library Analytics",
			expectMessage:  "📊 Library: 12 ready of 15 episodes, 3h20m of audio",
			expectTags:     "podforge,analytics",
			expectPriority: "low",
		},
		{
			name:          "daemon started",
			event:         notifications.EventDaemonStarted,
			payload:       notifications.Payload{"version": "1.2.0"},
			expectTitle:   "Podforge - Daemon",
			expectMessage: "🚀 Daemon started (1.2.0)",
			expectTags:    "podforge,daemon",
		},
		{
			name:  "cleanup failed",
			event: notifications.EventCleanupFailed,
			payload: notifications.Payload{
				"path":  "/tmp/staging/run-12",
				"error": "permission denied",
			},
			expectTitle:   "Podforge - Cleanup Failed",
			expectMessage: "🧹 Scratch cleanup failed for /tmp/staging/run-12: permission denied",
			expectTags:    "podforge,cleanup,alert",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "synthesis",
				"error":   "edge-tts exited with status 1",
			},
			expectTitle:    "Podforge - Error",
			expectMessage:  "❌ Error with synthesis: edge-tts exited with status 1",
			expectTags:     "podforge,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.DedupWindowSeconds = 0

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresDisabledCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Generation = false
	cfg.Notifications.Schedule = false
	cfg.Notifications.Cleanup = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	suppressed := []notifications.Event{
		notifications.EventGenerationStarted,
		notifications.EventEpisodeReady,
		notifications.EventGenerationFailed,
		notifications.EventScheduleTriggered,
		notifications.EventTriggerDropped,
		notifications.EventAnalytics,
		notifications.EventCleanupFailed,
		notifications.EventError,
	}

	for _, event := range suppressed {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceDeduplicatesRepeats(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.DedupWindowSeconds = 600

	svc := notifications.NewService(&cfg)
	payload := notifications.Payload{"job": "daily_podcast_generation", "running": "3"}

	for i := 0; i < 3; i++ {
		if err := svc.Publish(context.Background(), notifications.EventTriggerDropped, payload); err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 delivery for repeated event, got %d", calls)
	}

	// A different message for the same event is not a duplicate.
	other := notifications.Payload{"job": "podcast_analytics", "running": "3"}
	if err := svc.Publish(context.Background(), notifications.EventTriggerDropped, other); err != nil {
		t.Fatalf("publish distinct failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 deliveries for distinct messages, got %d", calls)
	}
}

func TestNtfyServiceSurfacesHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.DedupWindowSeconds = 0

	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
