package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"storyforge/internal/completeness"
	"storyforge/internal/config"
	"storyforge/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one story's completeness report in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				a, err := resolveArtifact(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				validator, err := ctx.validator()
				if err != nil {
					return err
				}
				report := validator.Validate(a)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s  %s\n", a.ID, a.Title)
				if a.Outline != "" {
					fmt.Fprintf(out, "Outline: %s\n", a.Outline)
				}
				if len(a.Characters) > 0 {
					fmt.Fprint(out, "Characters:")
					for _, c := range a.Characters {
						fmt.Fprintf(out, " %s", c.Name)
					}
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "Words: %d  Playable: %s  Force regenerate: %s\n",
					a.WordCount, yesNo(report.Playable()), yesNo(a.ForceRegenerate))
				fmt.Fprintln(out)

				if len(a.Scenes) > 0 {
					fmt.Fprintln(out, "Scenes:")
					for _, s := range a.Scenes {
						fmt.Fprintf(out, "  %2d. %s  (%d words, image %s)\n",
							s.SceneNumber, s.Title,
							len(strings.Fields(s.Content)), yesNo(s.HasValidImage()))
					}
					fmt.Fprintln(out)
				}

				printStage(out, "Scenes", report.Scenes)
				printStage(out, "Entities", report.Entities)
				printStage(out, "Images", report.Images)

				fmt.Fprintf(out, "Audio: %s", audioStatusLabel(report.Audio.Status))
				if report.Audio.Reason != "" {
					fmt.Fprintf(out, " (%s)", report.Audio.Reason)
				}
				fmt.Fprintln(out)
				if a.Audio != nil && a.Audio.Path != "" {
					fmt.Fprintf(out, "  %s  %s  %d segments  %d bytes\n",
						a.Audio.Path, formatDuration(a.Audio.DurationSeconds),
						a.Audio.SegmentCount, a.Audio.SizeBytes)
				}
				return nil
			})
		},
	}
}

func printStage(out io.Writer, name string, report completeness.StageReport) {
	fmt.Fprintf(out, "%s: %s\n", name, stageCell(report))
	for _, p := range report.Problems {
		if p.SceneNumber > 0 {
			fmt.Fprintf(out, "  scene %d (%s): %s\n", p.SceneNumber, p.Title, p.Reason)
		} else {
			fmt.Fprintf(out, "  %s\n", p.Reason)
		}
	}
}
