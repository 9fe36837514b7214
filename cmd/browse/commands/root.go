package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	devenv "browsekit/dev/env"
	"browsekit/lib/browser"
	"browsekit/lib/telemetry"
	"browsekit/lib/util/restyutil"
)

var (
	flagHeaders    []string
	flagCookies    []string
	flagProxyHost  string
	flagProxyPort  int
	flagTimeout    time.Duration
	flagRate       float64
	flagCloudflare bool
	flagNoRedirect bool
	flagNoCookies  bool
	flagDebugHTTP  bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "browse",
	Short: "browse is a CLI for poking at websites with a headless browsing session.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(flagVerbose || flagDebugHTTP)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringArrayVar(&flagHeaders, "header", nil, `Extra request headers in "name=value, name=value" format.`)
	flags.StringArrayVar(&flagCookies, "cookie", nil, `Extra cookies in "name=value; name=value" format.`)
	flags.StringVar(&flagProxyHost, "proxy-host", "", "Host of an HTTP proxy to route requests through.")
	flags.IntVar(&flagProxyPort, "proxy-port", 0, "Port of the HTTP proxy.")
	flags.DurationVar(&flagTimeout, "timeout", browser.DefaultTimeout, "Read timeout for requests.")
	flags.Float64Var(&flagRate, "rate", 0, "Maximum requests per second, 0 for unlimited.")
	flags.BoolVar(&flagCloudflare, "cloudflare", false, "Bypass cloudflare bot protection.")
	flags.BoolVar(&flagNoRedirect, "no-redirects", false, "Do not follow HTTP redirects.")
	flags.BoolVar(&flagNoCookies, "no-cookies", false, "Do not merge received cookies into the jar.")
	flags.BoolVar(&flagDebugHTTP, "debug-http", false, "Write request/response transcripts to dev/.state/resty/browse.")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging.")
}

// newSession builds a session from the persistent flags, layered over the
// optional dev/.state/browser_config.json5 defaults.
func newSession() *browser.Session {
	if flagDebugHTTP {
		browser.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput("<dev_state>/resty/browse"))
	}

	s := browser.NewWithOptions(browser.Options{
		CloudflareBypass:  flagCloudflare,
		RequestsPerSecond: flagRate,
	})

	cfg, err := devenv.GetStateConfig[devenv.BrowserTestConfig]("browser_config.json5")
	if err == nil {
		s.SetRequestHeaders(cfg.Headers)
		s.SetCookies(cfg.Cookies)
		s.SetProxy(cfg.Proxy.Host, cfg.Proxy.Port)
	}

	for _, header := range flagHeaders {
		s.SetRequestHeaders(browser.ParseHeaders(header))
	}
	for _, cookie := range flagCookies {
		s.SetCookies(browser.ParseCookies(cookie))
	}
	if flagProxyHost != "" {
		s.SetProxy(flagProxyHost, flagProxyPort)
	}
	s.SetTimeout(flagTimeout)
	s.SetFollowRedirects(!flagNoRedirect)
	s.SetHandleCookies(!flagNoCookies)
	return s
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
