package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobcrap/jobcrap-cli/internal/cache"
	"github.com/jobcrap/jobcrap-cli/internal/config"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries from the local cache",
	Long: `Delete cached feed pages and story details older than the cache TTL and
reclaim disk space.

Uses cache_ttl from config (default: 5m) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		maxAge := cfg.CacheTTLDuration()
		if flagPruneOlderThan != "" {
			d, err := time.ParseDuration(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			maxAge = d
		}

		deleted, err := db.Prune(maxAge)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d cache entr%s older than %s.\n", deleted, plural(deleted, "y", "ies"), maxAge)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.CachePath()
		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		pages, details, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Cache: %s\n", dbPath)
		fmt.Printf("Feed pages: %d\n", pages)
		fmt.Printf("Story details: %d\n", details)
		fmt.Printf("Size: %s\n", formatBytes(size))
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override cache TTL (e.g., 30m, 24h)")
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
