package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ytqa/internal/services"
	"ytqa/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and clean up transcription sessions",
	}
	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsRemoveCommand(ctx))
	sessionsCmd.AddCommand(newSessionsPruneCommand(ctx))
	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.sessionManager()
			if err != nil {
				return err
			}
			infos, err := manager.List()
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(out, "No sessions")
				return nil
			}
			fmt.Fprintln(out, renderSessionTable(infos, time.Now()))
			return nil
		},
	}
}

func renderSessionTable(infos []session.Info, now time.Time) string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.ID,
			yesNo(info.HasTranscript),
			formatBytes(info.Size),
			formatAge(info.ModTime, now),
		})
	}
	return renderTable(
		[]string{"Session", "Transcript", "Size", "Last Activity"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	)
}

func newSessionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"remove"},
		Short:   "Delete sessions and their files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.sessionManager()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var errs []error
			for _, id := range args {
				if err := manager.Remove(id); err != nil {
					errs = append(errs, fmt.Errorf("%s: %s", id, services.Describe(err)))
					continue
				}
				fmt.Fprintf(out, "Removed session %s\n", id)
			}
			return errors.Join(errs...)
		},
	}
}

func newSessionsPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions idle for longer than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			manager, err := ctx.sessionManager()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(false)
			if err != nil {
				return err
			}
			result := manager.Prune(cmd.Context(), olderThan, logger)
			out := cmd.OutOrStdout()
			for _, id := range result.Removed {
				fmt.Fprintf(out, "Removed session %s\n", id)
			}
			for _, id := range result.Skipped {
				fmt.Fprintf(out, "Skipped busy session %s\n", id)
			}
			fmt.Fprintf(out, "Pruned %d session(s)\n", len(result.Removed))
			var errs []error
			for _, perr := range result.Errors {
				errs = append(errs, fmt.Errorf("%s: %w", perr.ID, perr.Error))
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Minimum idle time before a session is removed")
	return cmd
}
