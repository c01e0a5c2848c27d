// Package notifications delivers pipeline and scheduler events via
// pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the major generation milestones so
// pipeline code can emit consistent, user-friendly messages without
// duplicating HTTP glue. Event categories map to config toggles, and repeated
// identical messages inside the dedup window are sent once.
//
// Extend this package if you need alternative transports; all pipeline code
// depends only on the simple Service interface.
package notifications
