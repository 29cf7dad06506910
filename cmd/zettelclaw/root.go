package main

import (
	"fmt"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "zettelclaw",
		Short:         "Bridge a note vault to the Claude Code runtime",
		Long:          `Scaffolds an Obsidian vault, installs editor plugins, and runs the session hook that turns conversation transcripts into vault notes.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file path (default ~/.config/zettelclaw/config.yaml)")
	rootCmd.PersistentFlags().String("vault", "", "Vault path override")

	rootCmd.AddCommand(
		NewSetupCmd(),
		NewPluginsCmd(),
		NewConfigureCmd(),
		NewHookCmd(),
		NewWatchCmd(),
		NewStatusCmd(),
	)

	return rootCmd
}

// loadConfig resolves the config path from flags and loads it, applying
// the --vault override.
func loadConfig(cmd *cobra.Command) (*internal.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = internal.DefaultConfigPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}

	if vault, _ := cmd.Flags().GetString("vault"); vault != "" {
		cfg.Vault = vault
	}

	return cfg, path, nil
}
