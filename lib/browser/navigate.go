package browser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// Open loads a page with a GET request and updates the session state.
func (s *Session) Open(ctx context.Context, rawurl string) error {
	return s.OpenWithData(ctx, rawurl, http.MethodGet, nil)
}

// OpenWithData loads a page and updates the session state. The request is
// built from the session's headers, cookie jar, proxy and timeout settings;
// data is sent as query parameters on GET and as a form-encoded body
// otherwise.
//
// On transport failure the previous page state is left untouched. On parse
// failure the response is recorded (status and headers stay inspectable)
// but the page state, history and cookie jar keep their previous values.
func (s *Session) OpenWithData(ctx context.Context, rawurl, method string, data map[string]string) error {
	ctx, span := tracer.Start(ctx, "session:Open")
	defer span.End()

	res, err := s.execute(ctx, rawurl, method, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return fmt.Errorf("%w: opening %s: %w", ErrTransport, rawurl, err)
	}

	doc, err := documentFrom(res)
	if err != nil {
		s.res = res
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	s.parsed = false
	s.res = res
	s.selected = nil
	s.formParams = map[string]string{}
	s.forms = nil
	s.pageURL = finalURL(res)
	s.history = append(s.history, s.pageURL)
	s.pageHTML = bodyHTML(doc)
	s.doc = doc
	s.pageCookies = cookieMap(res.Cookies())
	if s.handleCookies {
		s.SetCookies(s.pageCookies)
	}
	if s.autoParse {
		return s.Parse()
	}
	return nil
}

// Fetch runs the same request/parse pipeline as OpenWithData and returns
// the parsed document without touching any session state. When a page cache
// is attached, bodyless GET requests are served from and recorded into it.
func (s *Session) Fetch(ctx context.Context, rawurl, method string, data map[string]string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "session:Fetch")
	defer span.End()

	cacheable := s.cache != nil && strings.EqualFold(method, http.MethodGet) && len(data) == 0
	if cacheable {
		body, err := s.cache.Get(rawurl)
		if err == nil {
			span.SetStatus(codes.Ok, "cache hit")
			return documentFromBytes(body, rawurl)
		}
	}

	res, err := s.execute(ctx, rawurl, method, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, fmt.Errorf("%w: opening %s: %w", ErrTransport, rawurl, err)
	}
	doc, err := documentFrom(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if cacheable {
		err := s.cache.Set(rawurl, res.Body())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to cache page")
		}
	}
	return doc, nil
}

// Download streams the contents of a URL to a file, bypassing the HTML
// parser. A GET request is made when data is nil, a form POST otherwise.
// Session headers, cookies, proxy, timeout and redirect settings all apply.
func (s *Session) Download(ctx context.Context, rawurl string, data map[string]string, outfile string) error {
	ctx, span := tracer.Start(ctx, "session:Download")
	defer span.End()

	req := s.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(s.headers) > 0 {
		req.SetHeaders(s.headers)
	}
	if cookie := s.CookieString(); cookie != "" {
		req.SetHeader("Cookie", cookie)
	}

	method := http.MethodGet
	if data != nil {
		method = http.MethodPost
		req.SetFormData(data)
	}

	res, err := req.Execute(method, rawurl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected status")
		return fmt.Errorf("%w: got %s", ErrDownload, statusText(res.StatusCode()))
	}

	out, err := os.Create(outfile)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer out.Close()

	_, err = io.Copy(out, body)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return nil
}

func (s *Session) execute(ctx context.Context, rawurl, method string, data map[string]string) (*resty.Response, error) {
	method = strings.ToUpper(method)

	req := s.http.R().SetContext(ctx)
	if len(s.headers) > 0 {
		req.SetHeaders(s.headers)
	}
	if cookie := s.CookieString(); cookie != "" {
		req.SetHeader("Cookie", cookie)
	}
	if len(data) > 0 {
		if method == http.MethodGet {
			req.SetQueryParams(data)
		} else {
			req.SetFormData(data)
		}
	}

	res, err := req.Execute(method, rawurl)
	if err != nil {
		// with redirects disabled the transport reports an error but
		// still hands back the usable redirect response
		if !s.followRedirects && res != nil && res.RawResponse != nil &&
			res.StatusCode() >= http.StatusMultipleChoices &&
			res.StatusCode() < http.StatusBadRequest {
			return res, nil
		}
		return nil, err
	}
	if res.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("got %s", statusText(res.StatusCode()))
	}
	return res, nil
}

func documentFrom(res *resty.Response) (*goquery.Document, error) {
	return documentFromBytes(res.Body(), finalURL(res))
}

func documentFromBytes(body []byte, location string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if loc, err := url.Parse(location); err == nil {
		doc.Url = loc
	}
	return doc, nil
}

// finalURL is the resolved location of a response, after any redirects.
func finalURL(res *resty.Response) string {
	raw := res.RawResponse
	if raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	return res.Request.URL
}

func bodyHTML(doc *goquery.Document) string {
	html, err := goquery.OuterHtml(doc.Find("body").First())
	if err != nil {
		return ""
	}
	return html
}

func cookieMap(cookies []*http.Cookie) map[string]string {
	out := map[string]string{}
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out
}
