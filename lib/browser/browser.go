// Package browser implements a stateful headless browsing session on top of
// resty and goquery: it issues requests, carries cookies and headers across
// navigations, parses responses into documents and exposes the URLs and HTML
// forms found in the current page.
package browser

import (
	"fmt"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"browsekit/lib/telemetry"
	"browsekit/lib/util/restyutil"
)

// DefaultUserAgent is sent with every request unless overridden with
// SetRequestHeader.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// DefaultTimeout is the read timeout applied to new sessions.
const DefaultTimeout = 10 * time.Second

const maxRedirects = 10

// PageCache stores raw page bodies keyed by URL. Fetch consults it for
// bodyless GET requests when one is attached with SetCache.
type PageCache interface {
	Get(url string) ([]byte, error)
	Set(url string, body []byte) error
}

// Session is a single logical browser instance. It is not safe for
// concurrent use; callers that share one across goroutines must add their
// own locking.
type Session struct {
	http *resty.Client

	doc         *goquery.Document
	pageURL     string
	pageHTML    string
	res         *resty.Response
	urls        map[URLKind][]string
	history     []string
	forms       []*goquery.Selection
	selected    *goquery.Selection
	formParams  map[string]string
	headers     map[string]string
	cookies     map[string]string
	pageCookies map[string]string
	parsed      bool

	proxyHost       string
	proxyPort       int
	handleCookies   bool
	autoParse       bool
	followRedirects bool
	timeout         time.Duration

	cache PageCache
}

// Options configures optional behavior of a new session.
type Options struct {
	// CloudflareBypass wraps the transport so that pages behind
	// cloudflare's bot protection can still be opened.
	CloudflareBypass bool
	// RequestsPerSecond throttles outgoing requests when > 0.
	RequestsPerSecond float64
}

// New creates a session with default configuration: redirects followed,
// received cookies merged into the jar, pages parsed on open, a 10 second
// read timeout and the default user agent.
func New() *Session {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *Session {
	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	client.SetTimeout(DefaultTimeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	// cookies are managed by the session jar, not the transport
	client.SetCookieJar(nil)
	telemetry.InstrumentResty(client, "browsekit/http")
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	s := &Session{
		http:            client,
		urls:            newURLBuckets(),
		headers:         map[string]string{},
		cookies:         map[string]string{},
		pageCookies:     map[string]string{},
		formParams:      map[string]string{},
		handleCookies:   true,
		autoParse:       true,
		followRedirects: true,
		timeout:         DefaultTimeout,
	}
	s.SetRequestHeader("User-Agent", DefaultUserAgent)
	return s
}

// SetAutoParse controls whether URLs and forms are extracted immediately
// after a page is opened.
func (s *Session) SetAutoParse(flag bool) {
	s.autoParse = flag
}

// SetFollowRedirects controls resolution of HTTP redirects. When disabled,
// opening a redirecting URL records the redirect response itself so its
// status, Location header and cookies stay inspectable.
func (s *Session) SetFollowRedirects(flag bool) {
	s.followRedirects = flag
	if flag {
		s.http.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	} else {
		s.http.SetRedirectPolicy(resty.NoRedirectPolicy())
	}
}

// SetHandleCookies controls whether cookies issued by opened pages are
// merged into the outgoing jar.
func (s *Session) SetHandleCookies(flag bool) {
	s.handleCookies = flag
}

// SetTimeout sets the read timeout for all future requests.
func (s *Session) SetTimeout(timeout time.Duration) {
	s.timeout = timeout
	s.http.SetTimeout(timeout)
}

// SetProxy routes all future requests through an HTTP proxy. The proxy is
// only applied once both host and port are set.
func (s *Session) SetProxy(host string, port int) {
	s.proxyHost = host
	s.proxyPort = port
	if host != "" && port > 0 {
		s.http.SetProxy(fmt.Sprintf("http://%s:%d", host, port))
	}
}

// SetCache attaches a page cache consulted by Fetch.
func (s *Session) SetCache(cache PageCache) {
	s.cache = cache
}

// SetRequestHeader upserts a header sent with all future requests. For
// cookies use SetCookie instead.
func (s *Session) SetRequestHeader(key, value string) {
	s.headers[key] = value
}

// SetRequestHeaders upserts every header in the given map.
func (s *Session) SetRequestHeaders(headers map[string]string) {
	for k, v := range headers {
		s.headers[k] = v
	}
}

// RequestHeader returns the value in use for the given request header.
func (s *Session) RequestHeader(key string) string {
	return s.headers[key]
}

// RequestHeaders returns the live map of all request headers in use.
func (s *Session) RequestHeaders() map[string]string {
	return s.headers
}

// ResponseHeader returns a response header of the current page.
func (s *Session) ResponseHeader(key string) string {
	if s.res == nil {
		return ""
	}
	return s.res.Header().Get(key)
}

// StatusCode returns the HTTP status code of the current page, or 0 when no
// page has been loaded.
func (s *Session) StatusCode() int {
	if s.res == nil {
		return 0
	}
	return s.res.StatusCode()
}

// ContentType returns the Content-Type header of the current page.
func (s *Session) ContentType() string {
	return s.ResponseHeader("Content-Type")
}

// History returns the URLs of every page opened by this session, oldest
// first.
func (s *Session) History() []string {
	return s.history
}

// PageURL returns the URL of the current page, after any redirects.
func (s *Session) PageURL() string {
	return s.pageURL
}

// PageTitle returns the title of the current page.
func (s *Session) PageTitle() string {
	if s.doc == nil {
		return ""
	}
	return s.doc.Find("title").First().Text()
}

// PageHTML returns the HTML of the current page's body element.
func (s *Session) PageHTML() string {
	return s.pageHTML
}

// PageDocument returns the parsed document of the current page, nil when no
// page has been loaded.
func (s *Session) PageDocument() *goquery.Document {
	return s.doc
}

// PageResponse returns the raw response of the current page, nil when no
// page has been loaded.
func (s *Session) PageResponse() *resty.Response {
	return s.res
}

// ElementsByAttr returns every element under the given tag whose attribute
// equals the given value exactly.
func (s *Session) ElementsByAttr(tag, name, value string) ([]*goquery.Selection, error) {
	if s.doc == nil {
		return nil, ErrNoPage
	}
	var match []*goquery.Selection
	s.doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
		if sel.AttrOr(name, "") == value {
			match = append(match, sel)
		}
	})
	return match, nil
}

func statusText(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}
