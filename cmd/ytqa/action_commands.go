package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"ytqa/internal/pipeline"
	"ytqa/internal/session"
	"ytqa/internal/shell"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "transcribe URL",
		Short: "Download a video's audio and transcribe it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd.Context())
			defer stop()
			return ctx.withRuntime(runCtx, false, func(rt *pipeline.Runtime, _ *slog.Logger) error {
				t, err := rt.Transcribe(runCtx, sessionID, strings.TrimSpace(args[0]))
				if err != nil {
					return wrapActionError(err)
				}
				out := cmd.OutOrStdout()
				printTranscript(out, t)
				fmt.Fprintln(cmd.ErrOrStderr(), transcriptSummary(t))
				return nil
			})
		},
	}
	addSessionFlag(cmd, &sessionID)
	return cmd
}

func newAskCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer a question about the session's transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			runCtx, stop := signalContext(cmd.Context())
			defer stop()
			return ctx.withRuntime(runCtx, false, func(rt *pipeline.Runtime, _ *slog.Logger) error {
				reply, err := rt.Ask(runCtx, sessionID, question)
				if err != nil {
					return wrapActionError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			})
		},
	}
	addSessionFlag(cmd, &sessionID)
	return cmd
}

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Print the session's saved transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.sessionManager()
			if err != nil {
				return err
			}
			// Reading a transcript needs no external services.
			p := pipeline.New(pipeline.Deps{Sessions: manager}, pipeline.Options{})
			t, err := p.Segments(cmd.Context(), sessionID)
			if err != nil {
				return wrapActionError(err)
			}
			printTranscript(cmd.OutOrStdout(), t)
			fmt.Fprintln(cmd.ErrOrStderr(), transcriptSummary(t))
			return nil
		},
	}
	addSessionFlag(cmd, &sessionID)
	return cmd
}

func newShellCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive question shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.ValidateID(sessionID); err != nil {
				return err
			}
			return ctx.withRuntime(cmd.Context(), false, func(rt *pipeline.Runtime, logger *slog.Logger) error {
				warnPreflight(cmd.Context(), ctx.config, logger, cmd.ErrOrStderr())
				out := cmd.OutOrStdout()
				sh := shell.New(rt.Pipeline, shell.Options{
					In:        cmd.InOrStdin(),
					Out:       out,
					SessionID: sessionID,
					Color:     shell.ColorEnabled(out),
					Logger:    logger,
				})
				return sh.Run(cmd.Context())
			})
		},
	}
	addSessionFlag(cmd, &sessionID)
	return cmd
}
