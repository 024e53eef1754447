package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyforge/internal/config"
	"storyforge/internal/store"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <id>",
		Short: "Check a story's completeness without repairing it",
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
				if report.Playable() {
					fmt.Fprintf(out, "%s is complete and playable\n", a.Title)
					return nil
				}
				fmt.Fprintf(out, "%s needs processing\n", a.Title)
				printStage(out, "Scenes", report.Scenes)
				printStage(out, "Entities", report.Entities)
				printStage(out, "Images", report.Images)
				fmt.Fprintf(out, "Audio: %s", audioStatusLabel(report.Audio.Status))
				if report.Audio.Reason != "" {
					fmt.Fprintf(out, " (%s)", report.Audio.Reason)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a story from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				a, err := resolveArtifact(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				removed, err := st.Remove(cmd.Context(), a.ID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("story %s not found", a.ID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", a.Title)
				return nil
			})
		},
	}
}
