package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/spf13/cobra"
)

func NewSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup [vault-path]",
		Short: "Scaffold a vault and install the session hook",
		Long:  `Creates the vault folder layout, initializes it as a git repository, writes the config file, and registers the hook with the Claude Code runtime.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSetup,
	}

	cmd.Flags().Bool("no-git", false, "Skip git initialization")
	cmd.Flags().Bool("no-hook", false, "Skip hook registration")
	return cmd
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		vault, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve vault path: %w", err)
		}
		cfg.Vault = vault
	}
	if cfg.Vault == "" {
		return fmt.Errorf("vault path required: pass it as an argument or set it in %s", cfgPath)
	}

	if err := internal.ScaffoldVault(cfg); err != nil {
		return fmt.Errorf("scaffold vault: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scaffolded vault at %s\n", cfg.Vault)

	noGit, _ := cmd.Flags().GetBool("no-git")
	if !noGit {
		if internal.IsGitRepo(cfg.Vault) {
			fmt.Fprintln(cmd.OutOrStdout(), "Git repository already present, skipping init")
		} else if err := internal.InitVaultRepo(cfg.Vault); err != nil {
			return fmt.Errorf("init vault repo: %w", err)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized git repository")
		}
	}

	if err := internal.SaveConfig(cfgPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath)

	noHook, _ := cmd.Flags().GetBool("no-hook")
	if !noHook {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home: %w", err)
		}
		bin, err := os.Executable()
		if err != nil {
			bin = "zettelclaw"
		}
		settings := filepath.Join(home, ".claude", "settings.json")
		if err := internal.InstallHookSettings(settings, bin); err != nil {
			return fmt.Errorf("install hook: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered session hook in %s\n", settings)
	}

	return nil
}
