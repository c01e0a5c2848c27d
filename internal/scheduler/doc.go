// Package scheduler fires recurring jobs on cron or interval triggers.
//
// The scheduler is an explicit instance owned by the daemon. Jobs are
// registered with AddJob before or after Start; re-registering an id
// replaces the job. Each job runs a trigger-evaluation loop in its own
// goroutine; handler instances are launched as independent goroutines so
// the loop never waits on handler work.
//
// # Concurrency
//
// A job runs at most MaxInstances handler instances at once. A trigger
// that fires while the job is at its limit is dropped, counted, and
// logged; dropped ticks are never queued. When a loop wakes late enough
// that several fire times have elapsed, Coalesce collapses the backlog
// into a single instance instead of starting one per missed fire.
//
// Stop cancels the trigger loops and waits for them to exit. In-flight
// handler instances only see the context cancellation; Stop does not
// wait for them to finish.
package scheduler
