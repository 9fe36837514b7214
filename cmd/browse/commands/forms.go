package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"browsekit/lib/util/serviceutil"
)

var (
	submitIndex  *int
	submitFormID *string
	submitParams *[]string
)

func init() {
	submitIndex = submitCmd.Flags().Int("form", 0, "Index of the form to submit.")
	submitFormID = submitCmd.Flags().String("id", "", "Id of the form to submit, takes precedence over --form.")
	submitParams = submitCmd.Flags().StringArray("param", nil, `Form parameters in "name=value" format.`)
	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(submitCmd)
}

func inputNames(form *goquery.Selection) []string {
	var names []string
	form.Find("input").Each(func(_ int, field *goquery.Selection) {
		name := field.AttrOr("name", "")
		if name == "" {
			return
		}
		names = append(names, name)
	})
	return names
}

var formsCmd = &cobra.Command{
	Use:   "forms <url>",
	Short: "Opens a page and lists the forms found in it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		session := newSession()
		err := session.Open(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to open page", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"index", "id", "method", "action", "inputs"})
		for index, form := range session.Forms() {
			t.AppendRow(table.Row{
				index,
				form.AttrOr("id", ""),
				form.AttrOr("method", ""),
				form.AttrOr("action", ""),
				strings.Join(inputNames(form), ", "),
			})
		}
		t.Render()
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <url> [--form <index> | --id <form id>] [--param name=value]...",
	Short: "Opens a page, fills in a form and submits it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		session := newSession()
		err := session.Open(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to open page", err)
		}

		var selected bool
		if *submitFormID != "" {
			selected = session.SelectFormByAttr("id", *submitFormID)
		} else {
			selected = session.SelectForm(*submitIndex)
		}
		if !selected {
			serviceutil.Fatal("failed to select form", fmt.Errorf(
				"no form matching index=%d id=%q among %d forms",
				*submitIndex, *submitFormID, len(session.Forms()),
			))
		}

		for _, param := range *submitParams {
			name, value, ok := strings.Cut(param, "=")
			if !ok {
				continue
			}
			session.SetFormParam(name, value)
		}
		if !session.FormSatisfied() {
			slog.Warn("submitting form with empty parameters", "params", session.FormParams())
		}

		err = session.SubmitForm(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to submit form", err)
		}

		slog.Info("submitted form",
			"url", session.PageURL(),
			"status", session.StatusCode(),
			"title", session.PageTitle(),
		)

		t := newTable()
		t.AppendHeader(table.Row{"cookie", "value"})
		for name, value := range session.PageCookies() {
			t.AppendRow(table.Row{name, value})
		}
		t.Render()
	},
}
