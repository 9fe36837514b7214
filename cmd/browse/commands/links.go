package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"browsekit/lib/htmlutil"
	"browsekit/lib/util/serviceutil"
)

func init() {
	rootCmd.AddCommand(linksCmd)
}

var linksCmd = &cobra.Command{
	Use:   "links <url>",
	Short: "Opens a page and lists its anchors with their visible text.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		session := newSession()
		err := session.Open(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to open page", err)
		}

		doc := session.PageDocument()
		anchors := htmlutil.GetAnchors(cmd.Context(), doc.Url, doc.Find("a"))

		t := newTable()
		t.AppendHeader(table.Row{"name", "href"})
		for _, anchor := range anchors {
			t.AppendRow(table.Row{anchor.Name, anchor.Href})
		}
		t.Render()
	},
}
