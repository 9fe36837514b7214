package commands

import (
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"browsekit/lib/browser"
	"browsekit/lib/util/serviceutil"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <url>",
	Short: "Opens a page and lists the URLs extracted from it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		session := newSession()
		err := session.Open(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to open page", err)
		}

		slog.Info("opened page",
			"url", session.PageURL(),
			"status", session.StatusCode(),
			"title", session.PageTitle(),
		)

		t := newTable()
		t.AppendHeader(table.Row{"kind", "url"})
		for _, kind := range browser.Kinds {
			for _, url := range session.URLs(kind) {
				t.AppendRow(table.Row{kind.String(), url})
			}
		}
		t.Render()
	},
}
