// Package preflight provides readiness checks for external tools and
// filesystem paths that Podforge depends on.
//
// These checks run in two contexts:
//   - The daemon collects a Snapshot at startup and logs it before the
//     scheduler can fire its first job, so a broken install surfaces
//     ahead of a doomed generation run.
//   - The CLI "podforge doctor" command renders the same snapshot for
//     interactive troubleshooting.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
