// Package pipeline runs the episode generation state machine.
//
// A run owns one episode row from creation to its terminal status:
// generating → ready on success, generating → error on failure. The run
// drafts a script, synthesizes the non-empty segments strictly in order,
// assembles the clips into one MP3, publishes it to the library
// directory, and persists the outcome. A per-segment synthesis failure
// is logged and skipped; the run fails only when no segment produced a
// clip or a later stage failed outright.
//
// Scratch clips live in a per-run staging directory that is released
// after the assembly attempt on every exit path. Release failures are
// reported to the notification sink and never fail the run.
//
// Concurrent runs for the same episode id are rejected with a
// validation error by an in-process run lock.
package pipeline
