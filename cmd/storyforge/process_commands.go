package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyforge/internal/config"
	"storyforge/internal/pipeline"
	"storyforge/internal/store"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <id>",
		Short: "Run one repair pass for a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(cmd.Context(), func(cfg *config.Config, st *store.Store, orch *pipeline.Orchestrator) error {
				a, err := resolveArtifact(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				res, err := orch.Process(cmd.Context(), a.ID)
				if err != nil {
					return err
				}
				printPassResult(cmd, a.Title, res)
				return nil
			})
		},
	}
}

func newRegenerateCommand(ctx *commandContext) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "regenerate <id>",
		Short: "Flag a story so every stage is rebuilt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := func(cfg *config.Config, st *store.Store, orch *pipeline.Orchestrator) error {
				a, err := resolveArtifact(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				if err := st.SetForceRegenerate(cmd.Context(), a.ID, true); err != nil {
					return err
				}
				if !now {
					fmt.Fprintf(cmd.OutOrStdout(), "%s flagged; the next sweep rebuilds every stage\n", a.Title)
					return nil
				}
				res, err := orch.Process(cmd.Context(), a.ID)
				if err != nil {
					return err
				}
				printPassResult(cmd, a.Title, res)
				return nil
			}
			if now {
				return ctx.withOrchestrator(cmd.Context(), run)
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				return run(cfg, st, nil)
			})
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Run the rebuild immediately instead of waiting for a sweep")
	return cmd
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Repair every incomplete story in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(cmd.Context(), func(cfg *config.Config, st *store.Store, orch *pipeline.Orchestrator) error {
				ids, err := st.ListIDs(cmd.Context())
				if err != nil {
					return err
				}
				validator, err := ctx.validator()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				repaired := 0
				for _, id := range ids {
					a, err := st.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if a == nil {
						continue
					}
					report := validator.Validate(a)
					if !report.NeedsProcessing() && !a.ForceRegenerate {
						continue
					}
					repaired++
					res, err := orch.Process(cmd.Context(), id)
					if err != nil {
						fmt.Fprintf(out, "%s: %v\n", a.Title, err)
						continue
					}
					printPassResult(cmd, a.Title, res)
				}
				fmt.Fprintf(out, "%d stories checked, %d repaired\n", len(ids), repaired)
				return nil
			})
		},
	}
}

func printPassResult(cmd *cobra.Command, title string, res pipeline.Result) {
	out := cmd.OutOrStdout()
	verb := "unchanged"
	if res.Changed {
		verb = "updated"
	}
	fmt.Fprintf(out, "%s: %s, audio %s, playable %s\n",
		title, verb, audioStatusLabel(res.Report.Audio.Status), yesNo(res.Report.Playable()))
}
