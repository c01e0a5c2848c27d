package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podforge/internal/access"
	"podforge/internal/api"
	"podforge/internal/config"
	"podforge/internal/ipc"
	"podforge/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and episode library status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(lib access.Access) error {
				resp, err := lib.Status(cmd.Context())
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, daemonStateLine(resp, colorize))
				if resp.Running {
					fmt.Fprintln(stdout, renderStatusLine("Version", statusInfo, resp.Version, colorize))
					fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, strconv.Itoa(resp.PID), colorize))
				}
				if resp.DatabasePath != "" {
					fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, resp.DatabasePath, colorize))
				}
				if resp.LastError != "" {
					fmt.Fprintln(stdout, renderStatusLine("Last Error", statusError, resp.LastError, colorize))
				}
				fmt.Fprintln(stdout)

				// An offline snapshot carries no dependency data, so check locally.
				dependencies := resp.Dependencies
				if len(dependencies) == 0 {
					dependencies = localDependencyStatuses(cmd.Context(), ctx.configValue())
				}
				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, line := range dependencyLines(dependencies, colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout)

				if len(resp.Jobs) > 0 {
					for _, line := range renderSectionHeader("Scheduled Jobs", colorize) {
						fmt.Fprintln(stdout, line)
					}
					table := renderTable(
						[]string{"Name", "Status", "Last Run", "Next Run"},
						buildJobRows(resp.Jobs),
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
					)
					fmt.Fprintln(stdout, table)
					fmt.Fprintln(stdout)
				}

				for _, line := range renderSectionHeader("Episode Library", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := buildStatsRows(resp.EpisodeStats)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "Library is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprint(stdout, table)
				return nil
			})
		},
	}
}

func daemonStateLine(resp *ipc.StatusResponse, colorize bool) string {
	if resp.Running {
		return renderStatusLine("Daemon", statusOK, "Running", colorize)
	}
	return renderStatusLine("Daemon", statusWarn, "Not running (library opened directly)", colorize)
}

func buildJobRows(jobs []ipc.ScheduleEntry) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.Name,
			formatStatusLabel(job.Status),
			job.LastRun,
			job.NextRun,
		})
	}
	return rows
}

func dependencyLines(dependencies []api.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(dependencies)+1)
	missing := make([]string, 0)
	for _, dep := range dependencies {
		if dep.Available {
			message := "Ready"
			if dep.Version != "" {
				message = fmt.Sprintf("Ready (%s)", dep.Version)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, fmt.Sprintf("%s (see README.md for install steps)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}

func localDependencyStatuses(ctx context.Context, cfg *config.Config) []api.DependencyStatus {
	if cfg == nil {
		return nil
	}
	return api.FromDependencyStatuses(preflight.CheckSystemDeps(ctx, cfg))
}
