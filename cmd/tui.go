package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobcrap/jobcrap-cli/internal/api"
	"github.com/jobcrap/jobcrap-cli/internal/auth"
	"github.com/jobcrap/jobcrap-cli/internal/cache"
	"github.com/jobcrap/jobcrap-cli/internal/config"
	"github.com/jobcrap/jobcrap-cli/internal/feed"
	"github.com/jobcrap/jobcrap-cli/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	query, err := startQuery(cfg)
	if err != nil {
		return err
	}

	client, err := api.NewClient(cfg.ResolvedAPIURL(), cfg.RequestTimeoutDuration())
	if err != nil {
		return err
	}

	session, err := auth.Load(auth.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if session.Authenticated() {
		client.SetToken(session.Token)
	}

	store, err := cache.Open(config.CachePath())
	if err != nil {
		// The cache is an optimization; run without it rather than fail.
		fmt.Printf("  [warn] cache unavailable: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
		// Drop expired entries from earlier runs.
		store.Prune(cfg.CacheTTLDuration())
	}

	return tui.Run(tui.RunOpts{
		Cfg:     cfg,
		Client:  client,
		Store:   store,
		Session: session,
		Query:   query,
	})
}

// startQuery builds the initial feed query from --from-url or the
// individual filter flags, falling back to the configured default sort.
func startQuery(cfg *config.Config) (feed.Query, error) {
	if flagFromURL != "" {
		q, err := feed.ParseShareURL(flagFromURL)
		if err != nil {
			return feed.Query{}, fmt.Errorf("invalid --from-url: %w", err)
		}
		return q, nil
	}

	q := feed.DefaultQuery()
	if cfg.DefaultSort != "" {
		q.Sort = feed.SortMode(cfg.DefaultSort)
	}

	if flagCategory != "" {
		if !feed.ValidCategory(flagCategory) {
			return feed.Query{}, fmt.Errorf("unknown category %q", flagCategory)
		}
		q.Category = flagCategory
	}
	q.Country = flagCountry
	q.Tag = flagTag
	q.Search = flagSearch
	if flagSort != "" {
		if !feed.ValidSort(flagSort) {
			return feed.Query{}, fmt.Errorf("unknown sort mode %q", flagSort)
		}
		q.Sort = feed.SortMode(flagSort)
	}
	return q, nil
}
