package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyforge/internal/config"
	"storyforge/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every story and its completeness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				artifacts, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(artifacts) == 0 {
					fmt.Fprintln(out, "Library is empty. Drop a JSON submission into", cfg.Paths.IntakeDir)
					return nil
				}

				validator, err := ctx.validator()
				if err != nil {
					return err
				}
				colorize := shouldColorize(out)

				rows := make([][]string, 0, len(artifacts))
				playable := 0
				for _, a := range artifacts {
					report := validator.Validate(a)
					if report.Playable() {
						playable++
					}
					status := audioStatusLabel(report.Audio.Status)
					duration := "-"
					if a.Audio != nil {
						duration = formatDuration(a.Audio.DurationSeconds)
					}
					rows = append(rows, []string{
						shortID(a.ID),
						a.Title,
						stageCell(report.Scenes),
						stageCell(report.Entities),
						stageCell(report.Images),
						colorizeStatus(status, report.Audio.Status, colorize),
						duration,
						fmt.Sprintf("%d", a.WordCount),
						yesNo(report.Playable()),
					})
				}

				fmt.Fprintln(out, renderTable(
					[]string{"ID", "TITLE", "SCENES", "ENTITIES", "IMAGES", "AUDIO", "LENGTH", "WORDS", "PLAYABLE"},
					rows,
					6, 7,
				))
				fmt.Fprintf(out, "%d stories, %d playable\n", len(artifacts), playable)
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
