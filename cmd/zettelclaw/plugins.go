package main

import (
	"fmt"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/spf13/cobra"
)

func NewPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Download and enable the editor plugin set",
		RunE:  runPlugins,
	}

	cmd.Flags().Bool("quiet", false, "Suppress download progress")
	return cmd
}

func runPlugins(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Vault == "" {
		return fmt.Errorf("vault not configured, run setup first")
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	downloader := internal.NewDownloader()

	var ids []string
	for _, plugin := range internal.DefaultPlugins() {
		var progress func(file string, written, total int64)
		if !quiet {
			p := plugin
			progress = func(file string, written, total int64) {
				if written == total && total > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s/%s (%d bytes)\n", p.ID, file, total)
				}
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installing %s...\n", plugin.ID)
		if err := downloader.InstallPlugin(cmd.Context(), cfg.Vault, plugin, progress); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			continue
		}
		ids = append(ids, plugin.ID)
	}

	if len(ids) > 0 {
		if err := internal.EnablePlugins(cfg.Vault, ids...); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Enabled %d plugins\n", len(ids))
	return nil
}
