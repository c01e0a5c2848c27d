// Package daemon coordinates the long-running podforge process.
//
// It wires configuration, the episode store, the task manager, and the
// workflow manager into a single lifecycle with flock-based locking to
// prevent multiple instances. The daemon serves the HTTP observability
// API, exposes the library and task views consumed by the control
// socket, and emits daemon lifecycle notifications.
//
// Keep orchestration logic here: generation steps live in their own
// packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
