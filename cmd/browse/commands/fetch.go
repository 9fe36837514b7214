package commands

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"browsekit/lib/pagecache"
	"browsekit/lib/util/serviceutil"
)

var (
	fetchCache    *string
	fetchLifetime *time.Duration
)

func init() {
	fetchCache = fetchCmd.Flags().String("cache", "", "Path of a sqlite page cache to serve repeated fetches from.")
	fetchLifetime = fetchCmd.Flags().Duration("cache-lifetime", pagecache.DefaultLifetime, "How long cached pages stay valid.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url> [--cache <path/to/cache.db>]",
	Short: "Fetches a page without mutating session state, optionally through a page cache.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		session := newSession()

		if *fetchCache != "" {
			cache, err := pagecache.Open(*fetchCache, *fetchLifetime)
			if err != nil {
				serviceutil.Fatal("failed to open page cache", err)
			}
			defer cache.Close()
			session.SetCache(cache)
		}

		start := time.Now()
		doc, err := session.Fetch(cmd.Context(), args[0], http.MethodGet, nil)
		if err != nil {
			serviceutil.Fatal("failed to fetch page", err)
		}

		slog.Info("fetched page",
			"title", doc.Find("title").First().Text(),
			"seconds", time.Since(start).Seconds(),
		)
	},
}
