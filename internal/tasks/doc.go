// Package tasks tracks lifecycle records for pipeline runs and scheduled
// jobs. The manager is process-local: records exist for observability, not
// for recovery, and are bounded by the configured retention count.
package tasks
