package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podforge/internal/access"
	"podforge/internal/ipc"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List recent generation tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(lib access.Access) error {
				tasks, err := lib.Tasks(cmd.Context(), limit)
				if err != nil {
					return daemonRequiredError(err, "task history")
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"tasks": tasks})
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks recorded")
					return nil
				}
				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					rows = append(rows, []string{
						task.ID,
						task.Name,
						formatStatusLabel(task.Status),
						task.LastRun,
					})
				}
				table := renderTable(
					[]string{"ID", "Name", "Status", "Completed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum tasks to list (0 for all retained)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List registered scheduler jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(lib access.Access) error {
				jobs, err := lib.Jobs(cmd.Context())
				if err != nil {
					return daemonRequiredError(err, "schedule inspection")
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"jobs": jobs})
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs registered (schedule.enabled is off)")
					return nil
				}
				table := renderTable(
					[]string{"Name", "Trigger", "Status", "Last Run", "Next Run", "Runs", "Dropped"},
					buildScheduleRows(jobs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func buildScheduleRows(jobs []ipc.JobEntry) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		status := "scheduled"
		if job.InFlight > 0 {
			status = "running"
		}
		rows = append(rows, []string{
			job.Name,
			job.Trigger,
			formatStatusLabel(status),
			job.LastRun,
			job.NextRun,
			fmt.Sprintf("%d", job.Runs),
			fmt.Sprintf("%d", job.Dropped),
		})
	}
	return rows
}
