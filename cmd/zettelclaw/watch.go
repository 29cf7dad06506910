package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/spf13/cobra"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch session directories and sweep on change",
		Long:  `Watches the runtime's session directories and runs a sweep pass once transcript writes go quiet.`,
		RunE:  runWatch,
	}

	cmd.Flags().Duration("debounce", 30*time.Second, "Quiet window before a sweep runs")
	cmd.Flags().String("state", "", "Checkpoint file override")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Vault == "" {
		return fmt.Errorf("vault not configured, run setup first")
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")

	statePath, _ := cmd.Flags().GetString("state")
	if statePath == "" {
		statePath, err = internal.DefaultStatePath()
		if err != nil {
			return fmt.Errorf("resolve state path: %w", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := internal.SessionDirs(internal.ClaudeProjectsDir())
	if len(dirs) == 0 {
		return fmt.Errorf("no session directories under %s", internal.ClaudeProjectsDir())
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d session directories...\n", len(dirs))

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isTranscriptEvent(event) {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		case <-timer.C:
			pending = false
			runWatchSweep(cmd, cfg, statePath)
		}
	}
}

func isTranscriptEvent(event fsnotify.Event) bool {
	if !internal.IsTranscript(event.Name) && !strings.HasSuffix(event.Name, ".jsonl.tmp") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// runWatchSweep runs one forced sweep pass; the quiet window already gated
// it, so the interval gate is bypassed.
func runWatchSweep(cmd *cobra.Command, cfg *internal.Config, statePath string) {
	state := internal.LoadSweepState(statePath)
	sweeper := internal.NewSweeper(cfg, state, internal.NewDispatcher(cfg.DispatcherBin))
	sweeper.Force = true

	sum := sweeper.Run(cmd.Context(), internal.SessionDirs(internal.ClaudeProjectsDir()))
	fmt.Fprintf(cmd.OutOrStdout(), "swept %d files, dispatched %d tasks\n", sum.Examined, sum.Dispatched)
	if sum.Failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped %d files due to dispatch errors\n", sum.Failed)
	}

	if sum.Changed {
		if err := internal.SaveSweepState(statePath, state); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: save state: %v\n", err)
		}
	}
}
