package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"podforge/internal/config"
	"podforge/internal/version"
)

var userAgent = "Podforge/" + version.Version

// Event identifies a notification-worthy milestone.
type Event string

const (
	EventGenerationStarted Event = "generation_started"
	EventEpisodeReady      Event = "episode_ready"
	EventGenerationFailed  Event = "generation_failed"
	EventScheduleTriggered Event = "schedule_triggered"
	EventTriggerDropped    Event = "trigger_dropped"
	EventAnalytics         Event = "analytics_summary"
	EventCleanupFailed     Event = "cleanup_failed"
	EventDaemonStarted     Event = "daemon_started"
	EventDaemonStopped     Event = "daemon_stopped"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries the string fields an event message is rendered from.
type Payload map[string]string

func (p Payload) get(key string) string {
	return strings.TrimSpace(p[key])
}

func (p Payload) getOr(key, fallback string) string {
	if value := p.get(key); value != "" {
		return value
	}
	return fallback
}

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

type category int

const (
	categoryAlways category = iota
	categoryGeneration
	categorySchedule
	categoryCleanup
	categoryErrors
)

type eventSpec struct {
	category category
	title    string
	priority string
	tags     []string
	message  func(Payload) string
}

var eventSpecs = map[Event]eventSpec{
	EventGenerationStarted: {
		category: categoryGeneration,
		title:    "Podforge - Generation Started",
		tags:     []string{"podforge", "generate", "started"},
		message: func(p Payload) string {
			return fmt.Sprintf("🎙️ Generating episode: %s", p.getOr("title", "episode"))
		},
	},
	EventEpisodeReady: {
		category: categoryGeneration,
		title:    "Podforge - Episode Ready",
		priority: "high",
		tags:     []string{"podforge", "generate", "completed"},
		message: func(p Payload) string {
			title := p.getOr("title", "episode")
			if duration := p.get("duration"); duration != "" {
				return fmt.Sprintf("✅ Ready to listen: %s (%s)", title, duration)
			}
			return fmt.Sprintf("✅ Ready to listen: %s", title)
		},
	},
	EventGenerationFailed: {
		category: categoryErrors,
		title:    "Podforge - Generation Failed",
		priority: "high",
		tags:     []string{"podforge", "error", "alert"},
		message: func(p Payload) string {
			return fmt.Sprintf("❌ Generation failed for %s: %s",
				p.getOr("title", "episode"), p.getOr("error", "unknown"))
		},
	},
	EventScheduleTriggered: {
		category: categorySchedule,
		title:    "Podforge - Job Triggered",
		tags:     []string{"podforge", "schedule", "fired"},
		message: func(p Payload) string {
			return fmt.Sprintf("⏰ Scheduled job fired: %s", p.getOr("job", "job"))
		},
	},
	EventTriggerDropped: {
		category: categorySchedule,
		title:    "Podforge - Trigger Dropped",
		tags:     []string{"podforge", "schedule", "dropped"},
		message: func(p Payload) string {
			job := p.getOr("job", "job")
			if running := p.get("running"); running != "" {
				return fmt.Sprintf("⚠️ Dropped trigger for %s: %s instances already running", job, running)
			}
			return fmt.Sprintf("⚠️ Dropped trigger for %s: concurrency limit reached", job)
		},
	},
	EventAnalytics: {
		category: categorySchedule,
		title:    "Podforge - Library Analytics",
		priority: "low",
		tags:     []string{"podforge", "analytics"},
		message: func(p Payload) string {
			summary := fmt.Sprintf("📊 Library: %s ready of %s episodes",
				p.getOr("ready", "0"), p.getOr("total", "0"))
			if duration := p.get("duration"); duration != "" {
				summary += ", " + duration + " of audio"
			}
			return summary
		},
	},
	EventDaemonStarted: {
		category: categoryAlways,
		title:    "Podforge - Daemon",
		tags:     []string{"podforge", "daemon"},
		message: func(p Payload) string {
			if version := p.get("version"); version != "" {
				return "🚀 Daemon started (" + version + ")"
			}
			return "🚀 Daemon started"
		},
	},
	EventDaemonStopped: {
		category: categoryAlways,
		title:    "Podforge - Daemon",
		tags:     []string{"podforge", "daemon"},
		message: func(Payload) string {
			return "🛑 Daemon stopped"
		},
	},
	EventCleanupFailed: {
		category: categoryCleanup,
		title:    "Podforge - Cleanup Failed",
		tags:     []string{"podforge", "cleanup", "alert"},
		message: func(p Payload) string {
			return fmt.Sprintf("🧹 Scratch cleanup failed for %s: %s",
				p.getOr("path", "staging"), p.getOr("error", "unknown"))
		},
	},
	EventError: {
		category: categoryErrors,
		title:    "Podforge - Error",
		priority: "high",
		tags:     []string{"podforge", "error", "alert"},
		message: func(p Payload) string {
			var builder strings.Builder
			builder.WriteString("❌ Error")
			if label := p.get("context"); label != "" {
				builder.WriteString(" with ")
				builder.WriteString(label)
			}
			builder.WriteString(": ")
			builder.WriteString(p.getOr("error", "unknown"))
			return builder.String()
		},
	},
	EventTest: {
		category: categoryAlways,
		title:    "Podforge - Test",
		priority: "low",
		tags:     []string{"podforge", "test"},
		message: func(Payload) string {
			return "🧪 Notification system test"
		},
	},
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[category]bool{
			categoryAlways:     true,
			categoryGeneration: cfg.Notifications.Generation,
			categorySchedule:   cfg.Notifications.Schedule,
			categoryCleanup:    cfg.Notifications.Cleanup,
			categoryErrors:     cfg.Notifications.Errors,
		},
		dedupWindow: time.Duration(cfg.Notifications.DedupWindowSeconds) * time.Second,
		lastSent:    make(map[string]time.Time),
		now:         time.Now,
	}
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	enabled     map[category]bool
	dedupWindow time.Duration
	now         func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// Publish renders and sends the event when its category is enabled.
// Suppressed categories and deduplicated repeats return nil without a call.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	spec, ok := eventSpecs[event]
	if !ok {
		return fmt.Errorf("unknown notification event %q", event)
	}
	if !n.enabled[spec.category] {
		return nil
	}

	message := spec.message(payload)
	if n.suppressDuplicate(event, message) {
		return nil
	}
	return n.send(ctx, spec, message)
}

func (n *ntfyService) suppressDuplicate(event Event, message string) bool {
	if n.dedupWindow <= 0 {
		return false
	}

	key := string(event) + "\n" + message
	now := n.now()

	n.mu.Lock()
	defer n.mu.Unlock()

	if last, seen := n.lastSent[key]; seen && now.Sub(last) < n.dedupWindow {
		return true
	}
	if len(n.lastSent) > 64 {
		for k, sent := range n.lastSent {
			if now.Sub(sent) >= n.dedupWindow {
				delete(n.lastSent, k)
			}
		}
	}
	n.lastSent[key] = now
	return false
}

func (n *ntfyService) send(ctx context.Context, spec eventSpec, message string) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if spec.title != "" {
		req.Header.Set("Title", spec.title)
	}
	if len(spec.tags) > 0 {
		req.Header.Set("Tags", strings.Join(spec.tags, ","))
	}
	if spec.priority != "" && spec.priority != "default" {
		req.Header.Set("Priority", spec.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
