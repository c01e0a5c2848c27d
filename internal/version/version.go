// Package version records the release identity reported by the daemon
// status surfaces and the CLI.
package version

// Version is the podforge release string. Release builds may override it
// with -ldflags "-X podforge/internal/version.Version=...".
var Version = "1.0.0"
