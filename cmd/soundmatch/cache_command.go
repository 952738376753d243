package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"soundmatch/internal/resolvecache"
	"soundmatch/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the resolution cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached resolutions and rankings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *resolvecache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if entries == nil {
						entries = []resolvecache.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Cache is empty")
					return nil
				}
				color := shouldColorize(out)
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					expires := humanize.Time(entry.ExpiresAt)
					if entry.Expired {
						expires = colorize("expired "+expires, ansiRed, color)
					}
					rows = append(rows, []string{
						entry.Key,
						string(entry.Kind),
						entry.Summary,
						humanize.Time(entry.StoredAt),
						expires,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Key", "Kind", "Summary", "Stored", "Expires"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
					color,
				))
				fmt.Fprintf(out, "%s entries\n", humanize.Comma(int64(len(entries))))
				return nil
			})
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove one cache entry by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *resolvecache.Store) error {
				key := strings.TrimSpace(args[0])
				removed, err := store.Remove(cmd.Context(), key)
				if err != nil {
					return err
				}
				if !removed {
					return services.Wrap(services.ErrNotFound, "cache", "remove", fmt.Sprintf("no entry for key %q", key), nil)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", key)
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *resolvecache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s entries\n", humanize.Comma(removed))
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired entries and compact the cache file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheStore(cmd, ctx, func(store *resolvecache.Store) error {
				before := fileSize(store.Path())
				result, err := store.Prune(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %s expired entries\n", humanize.Comma(result.Removed))
				if result.Vacuumed {
					fmt.Fprintf(out, "Compacted %s -> %s\n", humanize.Bytes(before), humanize.Bytes(fileSize(store.Path())))
				} else {
					fmt.Fprintln(out, "Compaction skipped")
				}
				return nil
			})
		},
	}
}

// withCacheStore opens the configured cache for fn and closes it afterwards.
func withCacheStore(cmd *cobra.Command, ctx *commandContext, fn func(*resolvecache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Resolution cache is disabled (set cache.enabled = true in config.toml)")
		return nil
	}
	store, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("open cache %s: %w", cfg.Cache.Path, err)
	}
	defer store.Close()
	return fn(store)
}

func fileSize(path string) uint64 {
	if path == "" || path == ":memory:" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}
