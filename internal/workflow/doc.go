// Package workflow owns the daemon's recurring work: it wires the
// scheduler to the generation pipeline, registers the standing jobs,
// and summarizes run state for the API and CLI.
//
// Two jobs are registered when scheduling is enabled: daily podcast
// generation at the configured wall-clock time, and an hourly library
// analytics snapshot. Both run with the configured per-job concurrency
// limit; triggers dropped at the limit are reported to the notification
// sink.
package workflow
