package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"audiodupes/internal/fpcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the fingerprint cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func withCache(cmd *cobra.Command, ctx *commandContext, fn func(*fpcache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		return fmt.Errorf("fingerprint cache is disabled (cache.enabled = false)")
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	store, err := fpcache.Open(cmd.Context(), cfg.Cache.Path, logger)
	if err != nil {
		return fmt.Errorf("open fingerprint cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and age",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *fpcache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				printKeyValues(cmd.OutOrStdout(), [][2]string{
					{"Path", stats.Path},
					{"Entries", strconv.Itoa(stats.Entries)},
					{"Fingerprint data", humanize.IBytes(uint64(max(stats.CodeBytes, 0)))},
					{"File size", humanize.IBytes(uint64(max(stats.FileBytes, 0)))},
					{"Oldest entry", describeAge(stats.OldestEntry)},
					{"Newest entry", describeAge(stats.NewestEntry)},
				})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *fpcache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached fingerprints from %s\n", removed, store.Path())
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove cached fingerprints for files that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *fpcache.Store) error {
				removed, err := store.Prune(cmd.Context())
				if err != nil {
					return err
				}
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries; %s\n", removed, stats)
				return nil
			})
		},
	}
}

func describeAge(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", ts.Local().Format("2006-01-02 15:04"), humanize.Time(ts))
}
