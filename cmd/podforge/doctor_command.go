package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podforge/internal/api"
	"podforge/internal/config"
	"podforge/internal/episodes"
	"podforge/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external dependencies and environment readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snapshot := preflight.Collect(cmd.Context(), cfg)

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(api.FromDependencyStatuses(snapshot.Binaries), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, check := range snapshot.Checks {
				kind := statusOK
				if !check.Passed {
					kind = statusError
				}
				fmt.Fprintln(stdout, renderStatusLine(check.Name, kind, check.Detail, colorize))
			}
			dbKind, dbDetail := databaseHealthLine(cmd.Context(), cfg)
			fmt.Fprintln(stdout, renderStatusLine("Episode database", dbKind, dbDetail, colorize))
			fmt.Fprintln(stdout)

			if snapshot.Healthy() && dbKind != statusError {
				fmt.Fprintln(stdout, "All checks passed")
			} else {
				fmt.Fprintln(stdout, "Some checks failed; generation may run degraded or not at all")
			}
			return nil
		},
	}
}

// databaseHealthLine opens the library database directly and reports its
// condition. Opening initializes a missing database, so a fresh install
// reads as healthy rather than absent.
func databaseHealthLine(ctx context.Context, cfg *config.Config) (statusKind, string) {
	store, err := episodes.Open(cfg)
	if err != nil {
		return statusError, err.Error()
	}
	defer store.Close()

	health, err := store.CheckHealth(ctx)
	if err != nil {
		return statusError, err.Error()
	}
	if len(health.MissingColumns) > 0 {
		return statusError, fmt.Sprintf("schema missing columns: %s", strings.Join(health.MissingColumns, ", "))
	}
	if !health.IntegrityCheck {
		return statusError, fmt.Sprintf("%s failed integrity check", health.DBPath)
	}
	return statusOK, fmt.Sprintf("%s (%d episodes)", health.DBPath, health.TotalEpisodes)
}
