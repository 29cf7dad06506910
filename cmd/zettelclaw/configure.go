package main

import (
	"fmt"
	"path/filepath"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/spf13/cobra"
)

// obsidianPatches are the editor settings the vault relies on: markdown
// links off in favor of wikilinks, attachments routed to their folder, and
// the daily-notes core plugin pointed at the journal directory.
func obsidianPatches(cfg *internal.Config) map[string]map[string]any {
	return map[string]map[string]any{
		"app.json": {
			"attachmentFolderPath": internal.AttachmentsDir,
			"alwaysUpdateLinks":    true,
			"newLinkFormat":        "shortest",
			"useMarkdownLinks":     false,
		},
		"daily-notes.json": {
			"folder":   cfg.JournalDir,
			"format":   "YYYY-MM-DD",
			"template": filepath.Join(internal.TemplatesDir, "daily"),
		},
		"templates.json": {
			"folder": internal.TemplatesDir,
		},
	}
}

func NewConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Patch the vault's editor configuration",
		Long:  `Merges the wanted settings into the vault's .obsidian JSON files, preserving any keys set by hand.`,
		RunE:  runConfigure,
	}

	cmd.Flags().Bool("dry-run", false, "Print diffs instead of writing")
	return cmd
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Vault == "" {
		return fmt.Errorf("vault not configured, run setup first")
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	for name, patch := range obsidianPatches(cfg) {
		path := filepath.Join(cfg.Vault, internal.ObsidianDir, name)
		before, after, err := internal.PatchJSONFile(path, patch, dryRun)
		if err != nil {
			return err
		}

		if before == after {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: unchanged\n", name)
			continue
		}

		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s", name, internal.DiffText(before, after))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: updated\n", name)
		}
	}

	return nil
}
