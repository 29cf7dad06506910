package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show checkpoint state",
		RunE:  runStatus,
	}

	cmd.Flags().String("state", "", "Checkpoint file override")
	cmd.Flags().Int("limit", 10, "Entries to show")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	statePath, _ := cmd.Flags().GetString("state")
	if statePath == "" {
		var err error
		statePath, err = internal.DefaultStatePath()
		if err != nil {
			return fmt.Errorf("resolve state path: %w", err)
		}
	}

	state := internal.LoadSweepState(statePath)
	out := cmd.OutOrStdout()

	if state.LastSweepAt != nil {
		fmt.Fprintf(out, "Last sweep: %s\n", state.LastSweepAt.Format(time.RFC3339))
	} else {
		fmt.Fprintln(out, "Last sweep: never")
	}
	fmt.Fprintf(out, "Tracked transcripts: %d\n", len(state.Files))

	type entry struct {
		path   string
		cursor internal.SweepCursor
	}
	entries := make([]entry, 0, len(state.Files))
	for p, c := range state.Files {
		entries = append(entries, entry{p, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].cursor.UpdatedAt.After(entries[j].cursor.UpdatedAt)
	})

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > len(entries) {
		limit = len(entries)
	}
	for _, e := range entries[:limit] {
		fmt.Fprintf(out, "  %s  offset=%d  updated=%s\n",
			e.path, e.cursor.Offset, e.cursor.UpdatedAt.Format(time.RFC3339))
	}

	return nil
}
