package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"ytqa/internal/config"
	"ytqa/internal/logging"
	"ytqa/internal/pipeline"
	"ytqa/internal/preflight"
	"ytqa/internal/web"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser question page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			address := strings.TrimSpace(bind)
			if address == "" {
				address = cfg.Server.Bind
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()
			return ctx.withRuntime(runCtx, true, func(rt *pipeline.Runtime, logger *slog.Logger) error {
				warnPreflight(runCtx, cfg, logger, cmd.ErrOrStderr())
				server := web.New(address, rt.Pipeline, rt.Metrics.Handler(), logger)
				if err := server.Start(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl-C to stop)\n", server.Addr())
				<-runCtx.Done()
				server.Stop()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from server.bind)")
	return cmd
}

// warnPreflight reports missing local dependencies without blocking startup.
func warnPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) {
	if cfg == nil {
		return
	}
	for _, result := range preflight.Failed(preflight.RunLocal(ctx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "actions depending on this check will fail"),
			logging.String(logging.FieldErrorHint, "run ytqa status for details"),
		)
		fmt.Fprintf(w, "warning: %s: %s\n", result.Name, result.Detail)
	}
}
