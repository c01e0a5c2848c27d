package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podforge/internal/ipc"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var topics []string
	var style string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Queue podcast generation for the given topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Generate(topics, style)
				if err != nil {
					return err
				}
				episode := resp.Episode
				fmt.Fprintf(cmd.OutOrStdout(), "Queued episode %d: %s\n", episode.ID, episode.Title)
				fmt.Fprintf(cmd.OutOrStdout(), "Track progress with `podforge episodes show %d`\n", episode.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&topics, "topic", "t", nil, "Episode topic (repeatable)")
	cmd.Flags().StringVar(&style, "style", "", "Script style: conversation, lecture, or qa (default conversation)")
	return cmd
}
