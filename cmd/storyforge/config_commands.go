package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"storyforge/internal/config"
	"storyforge/internal/deps"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set gemini.api_key (or export GEMINI_API_KEY) before running StoryForge.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Configuration: %s\n", path)
			} else {
				fmt.Fprintf(out, "Configuration: defaults (no file at %s)\n", path)
			}
			fmt.Fprintf(out, "Data directory:   %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Intake directory: %s\n", cfg.Paths.IntakeDir)
			fmt.Fprintf(out, "Media directory:  %s\n", cfg.Paths.MediaDir)
			fmt.Fprintf(out, "Log directory:    %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Database:         %s\n", cfg.DatabasePath())
			fmt.Fprintf(out, "Text model:       %s\n", cfg.Gemini.TextModel)
			fmt.Fprintf(out, "Image model:      %s (enabled: %s)\n", cfg.Gemini.ImageModel, yesNo(cfg.Gemini.ImagesEnabled))
			fmt.Fprintf(out, "Speech model:     %s (enabled: %s, voice %s)\n", cfg.Gemini.SpeechModel, yesNo(cfg.Gemini.SpeechEnabled), cfg.Gemini.Voice)
			fmt.Fprintf(out, "Audio:            %s %s, %d Hz, floor %d bytes\n", cfg.Audio.Codec, cfg.Audio.Bitrate, cfg.Audio.SampleRate, cfg.Audio.SizeFloor)
			if cfg.Notifications.NtfyTopic != "" {
				fmt.Fprintf(out, "Notifications:    %s\n", cfg.Notifications.NtfyTopic)
			} else {
				fmt.Fprintln(out, "Notifications:    disabled")
			}
			for _, status := range deps.Check(deps.Narration(cfg.Audio)) {
				if status.Available {
					fmt.Fprintf(out, "%-17s %s\n", status.Name+":", status.Command)
				} else {
					fmt.Fprintf(out, "%-17s missing (%s)\n", status.Name+":", status.Detail)
				}
			}
			return nil
		},
	}
}
