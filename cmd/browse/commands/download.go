package commands

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"browsekit/lib/util/serviceutil"
)

var (
	downloadOut  *string
	downloadData *[]string
)

func init() {
	downloadOut = downloadCmd.Flags().StringP("out", "o", "out.bin", "File to write the downloaded contents to.")
	downloadData = downloadCmd.Flags().StringArray("data", nil, `Form data in "name=value" format, switches the request to a POST.`)
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download <url> [-o <path/to/out>] [--data name=value]...",
	Short: "Streams the contents of a URL to a file, bypassing the HTML parser.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data map[string]string
		if len(*downloadData) > 0 {
			data = map[string]string{}
			for _, pair := range *downloadData {
				name, value, ok := strings.Cut(pair, "=")
				if !ok {
					continue
				}
				data[name] = value
			}
		}

		session := newSession()
		err := session.Download(cmd.Context(), args[0], data, *downloadOut)
		if err != nil {
			serviceutil.Fatal("failed to download", err)
		}
		slog.Info("downloaded", "url", args[0], "file", *downloadOut)
	},
}
