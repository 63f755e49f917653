package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ytqa/internal/embedcache"
	"ytqa/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration and dependency readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configPath := ctx.configPath
			if configPath == "" {
				configPath = "(defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config file", statusInfo, configPath, colorize),
				renderStatusLine("Data directory", statusInfo, cfg.Paths.DataDir, colorize),
				renderStatusLine("Transcription", statusInfo,
					fmt.Sprintf("%s, model %s on %s", cfg.Transcription.Backend, cfg.Transcription.ModelSize, cfg.Transcription.Device), colorize),
				renderStatusLine("Chunking", statusInfo,
					fmt.Sprintf("%s, size %d, overlap %d", cfg.Chunking.Strategy, cfg.Chunking.ChunkSize, cfg.Chunking.Overlap), colorize),
				renderStatusLine("LLM", statusInfo,
					fmt.Sprintf("%s (key configured: %s)", cfg.LLM.Model, yesNo(cfg.LLM.APIKey != "")), colorize),
			)
			lines = append(lines, cacheStatusLine(cmd, cfg.Embedding.CacheEnabled, cfg.EmbeddingCachePath(), colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			local := preflight.RunLocal(cmd.Context(), cfg)
			lines = append(lines, checkLines(local, colorize)...)

			failed := len(preflight.Failed(local))
			if !offline {
				services := []preflight.Result{
					preflight.CheckEmbedding(cmd.Context(), cfg),
					preflight.CheckLLM(cmd.Context(), cfg),
				}
				failed += len(preflight.Failed(services))
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Services", colorize)...)
				lines = append(lines, checkLines(services, colorize)...)
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if failed > 0 {
				return fmt.Errorf("%d readiness check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip embedding and LLM service checks")
	return cmd
}

func cacheStatusLine(cmd *cobra.Command, enabled bool, path string, colorize bool) string {
	const label = "Embedding cache"
	if !enabled {
		return renderStatusLine(label, statusInfo, "disabled", colorize)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return renderStatusLine(label, statusInfo, "empty (not created yet)", colorize)
	}
	store, err := embedcache.Open(cmd.Context(), path)
	if err != nil {
		return renderStatusLine(label, statusWarn, err.Error(), colorize)
	}
	defer store.Close()
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return renderStatusLine(label, statusWarn, err.Error(), colorize)
	}
	return renderStatusLine(label, statusInfo,
		fmt.Sprintf("%d vectors across %d model(s)", stats.Entries, stats.Models), colorize)
}
