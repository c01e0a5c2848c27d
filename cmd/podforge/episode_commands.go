package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podforge/internal/access"
	"podforge/internal/api"
	"podforge/internal/episodes"
	"podforge/internal/logging"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	episodesCmd := &cobra.Command{
		Use:   "episodes",
		Short: "Inspect and manage the episode library",
	}

	episodesCmd.AddCommand(newEpisodeListCommand(ctx))
	episodesCmd.AddCommand(newEpisodeShowCommand(ctx))
	episodesCmd.AddCommand(newEpisodeDeleteCommand(ctx))
	episodesCmd.AddCommand(newEpisodeClearFailedCommand(ctx))

	return episodesCmd
}

func newEpisodeListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStatusFilters(listStatuses); err != nil {
				return err
			}
			return ctx.withAccess(func(lib access.Access) error {
				items, err := lib.List(cmd.Context(), listStatuses, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"episodes": items})
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No episodes found")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Title", "Status", "Progress", "Created"},
					buildEpisodeListRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil,
		"Filter by episode status (repeatable): "+strings.Join(statusFilterNames(), ", "))
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum episodes to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newEpisodeShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <episodeID>",
		Short: "Show episode details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid episode id %q", args[0])
			}
			return ctx.withAccess(func(lib access.Access) error {
				episode, err := lib.Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if episode == nil {
					return fmt.Errorf("episode %d not found", id)
				}
				if asJSON {
					return writeJSON(cmd, episode)
				}
				printEpisodeDetails(cmd.OutOrStdout(), *episode)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newEpisodeDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <episodeID...>",
		Short: "Delete episodes and their audio artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withAccess(func(lib access.Access) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					removed, err := lib.Remove(cmd.Context(), id)
					if err != nil {
						return daemonRequiredError(err, "episode deletion")
					}
					if removed {
						fmt.Fprintf(out, "Episode %d removed\n", id)
					} else {
						fmt.Fprintf(out, "Episode %d not found\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newEpisodeClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Remove failed episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(func(lib access.Access) error {
				removed, err := lib.ClearFailed(cmd.Context())
				if err != nil {
					return daemonRequiredError(err, "clearing failed episodes")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d failed episodes\n", removed)
				return nil
			})
		},
	}
}

func printEpisodeDetails(out io.Writer, episode api.Episode) {
	write := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			value = api.TimePlaceholder
		}
		fmt.Fprintf(out, "%-12s %s\n", label+":", value)
	}

	write("ID", fmt.Sprintf("%d", episode.ID))
	write("Title", episode.Title)
	write("Status", formatStatusLabel(episode.Status))
	write("Style", episode.Style)
	write("Topics", strings.Join(episode.Topics, ", "))
	write("Progress", formatProgress(episode.Progress))
	write("Created", formatDisplayTime(episode.CreatedAt))
	write("Completed", formatDisplayTime(episode.CompletedAt))
	write("Audio", episode.AudioFilePath)
	if episode.DurationSeconds > 0 {
		write("Duration", formatDurationSeconds(episode.DurationSeconds))
	}
	if episode.FileSizeBytes > 0 {
		write("Size", logging.FormatBytes(episode.FileSizeBytes))
	}
	if strings.TrimSpace(episode.ErrorMessage) != "" {
		write("Error", episode.ErrorMessage)
	}
	if strings.TrimSpace(episode.Description) != "" {
		write("Description", episode.Description)
	}
}

// validateStatusFilters rejects unknown --status values up front; the
// daemon side drops them silently, which reads as an empty filter.
func validateStatusFilters(values []string) error {
	for _, value := range values {
		if _, ok := episodes.ParseStatus(value); !ok {
			return fmt.Errorf("unknown status %q, expected one of: %s",
				value, strings.Join(statusFilterNames(), ", "))
		}
	}
	return nil
}

func statusFilterNames() []string {
	all := episodes.AllStatuses()
	names := make([]string, len(all))
	for i, status := range all {
		names[i] = string(status)
	}
	return names
}

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid episode id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func daemonRequiredError(err error, operation string) error {
	if errors.Is(err, access.ErrDaemonNotRunning) {
		return fmt.Errorf("%s requires a running daemon; start it with `podforged`", operation)
	}
	return err
}
