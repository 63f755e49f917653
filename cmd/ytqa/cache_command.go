package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytqa/internal/embedcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the embedding cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cached vector counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *embedcache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Path", "Vectors", "Models"},
					[][]string{{store.Path(), fmt.Sprint(stats.Entries), fmt.Sprint(stats.Models)}},
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *embedcache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached vector(s)\n", removed)
				return nil
			})
		},
	})
	return cacheCmd
}

func withCacheStore(cmd *cobra.Command, ctx *commandContext, fn func(*embedcache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := embedcache.Open(cmd.Context(), cfg.EmbeddingCachePath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
