// Package services defines shared utilities consumed by the generation
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp episode IDs, stage names, job IDs, and run
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (configuration vs synthesis vs assembly vs script
//     source) uniform across the pipeline.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays consistent.
package services
