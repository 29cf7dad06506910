package main

import (
	"fmt"
	"time"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/spf13/cobra"
)

func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "hook",
		Short:  "Session hook entrypoints",
		Hidden: true,
	}

	cmd.AddCommand(newHookRunCmd())
	return cmd
}

func newHookRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one session event from stdin",
		RunE:  runHook,
	}

	cmd.Flags().String("state", "", "Checkpoint file override")
	return cmd
}

// runHook is the outermost hook boundary: every failure becomes a warning
// plus a status line. It never returns an error, so the triggering event is
// never blocked or crashed by this component.
func runHook(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: hook panic: %v\n", r)
			fmt.Fprintf(cmd.OutOrStdout(), "hook failed: %v\n", r)
		}
	}()

	out := cmd.OutOrStdout()
	warn := cmd.ErrOrStderr()

	ev, err := internal.ParseHookEvent(cmd.InOrStdin())
	if err != nil {
		fmt.Fprintf(warn, "warning: %v\n", err)
		fmt.Fprintf(out, "hook failed: unreadable event\n")
		return nil
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(warn, "warning: %v\n", err)
		fmt.Fprintf(out, "hook failed: config unavailable\n")
		return nil
	}
	if cfg.Vault == "" {
		fmt.Fprintln(out, "vault not configured, skipping")
		return nil
	}
	if err := internal.CheckVault(cfg); err != nil {
		fmt.Fprintf(warn, "warning: %v\n", err)
		fmt.Fprintln(out, "vault missing, skipping")
		return nil
	}

	statePath, _ := cmd.Flags().GetString("state")
	if statePath == "" {
		statePath, err = internal.DefaultStatePath()
		if err != nil {
			fmt.Fprintf(warn, "warning: resolve state path: %v\n", err)
			fmt.Fprintln(out, "hook failed: no state path")
			return nil
		}
	}

	// State is loaded once, mutated in memory, and written back at most
	// once below.
	state := internal.LoadSweepState(statePath)
	dispatcher := internal.NewDispatcher(cfg.DispatcherBin)
	changed := false

	if ev.IsReset() {
		rs := internal.RunReset(cmd.Context(), cfg, state, dispatcher, ev, time.Now())
		changed = changed || rs.Changed
		switch {
		case rs.Dispatched:
			fmt.Fprintf(out, "reset dispatched: %s\n", rs.Message)
		case rs.Skipped:
			fmt.Fprintf(out, "reset skipped: %s\n", rs.Message)
		default:
			fmt.Fprintf(out, "reset dispatch failed: %s\n", rs.Message)
		}
	}

	if cfg.SweepEnabled {
		sweeper := internal.NewSweeper(cfg, state, dispatcher)
		sum := sweeper.Run(cmd.Context(), internal.SessionDirs(internal.ClaudeProjectsDir()))
		changed = changed || sum.Changed
		if sum.Ran {
			fmt.Fprintf(out, "swept %d files, dispatched %d tasks\n", sum.Examined, sum.Dispatched)
			if sum.Failed > 0 {
				fmt.Fprintf(out, "skipped %d files due to dispatch errors\n", sum.Failed)
			}
		}
	}

	if changed {
		if err := internal.SaveSweepState(statePath, state); err != nil {
			fmt.Fprintf(warn, "warning: save state: %v\n", err)
		}
	}

	return nil
}
