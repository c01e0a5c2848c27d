// Package episodes persists podcast episodes in SQLite.
//
// The store owns the episode lifecycle rows (generating, ready, error),
// their audio artifact metadata, and the generation progress used by the
// daemon API. All timestamps are stored as RFC 3339 strings in UTC.
package episodes
