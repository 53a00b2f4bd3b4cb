package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobcrap/jobcrap-cli/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagCategory string
	flagCountry  string
	flagTag      string
	flagSearch   string
	flagSort     string
	flagFromURL  string
)

var rootCmd = &cobra.Command{
	Use:   "jobcrap",
	Short: "Terminal reader for anonymous workplace stories",
	Long:  "jobcrap browses the anonymous workplace-story feed from your terminal: filter, search, vote, and read comments without leaving the shell.",
	RunE:  runTUI,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&flagCategory, "category", "", "start filtered to a category (dark, funny, scary, sad, wholesome, wild)")
	rootCmd.Flags().StringVar(&flagCountry, "country", "", "start filtered to a country")
	rootCmd.Flags().StringVar(&flagTag, "tag", "", "start filtered to a tag")
	rootCmd.Flags().StringVar(&flagSearch, "search", "", "start with a search query")
	rootCmd.Flags().StringVar(&flagSort, "sort", "", "sort mode (recent, top, trending, discussed, controversial)")
	rootCmd.Flags().StringVar(&flagFromURL, "from-url", "", "open the feed described by a pasted jobcrap web link")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jobcrap %s (commit: %s, built: %s)\n", version, commit, date)
		if res := update.Check(context.Background(), version); res != nil {
			fmt.Printf("update available: %s\n", res.LatestVersion)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
