package browser

import "errors"

var (
	// ErrTransport wraps network, proxy, timeout and HTTP status failures
	// raised while opening or fetching a page.
	ErrTransport = errors.New("transport failure")
	// ErrParse wraps failures to parse a response body as HTML.
	ErrParse = errors.New("failed to parse page")
	// ErrNoPage is returned when page data is requested before any page
	// has been loaded.
	ErrNoPage = errors.New("no page has been loaded")
	// ErrNoFormSelected is returned by SubmitForm without a selection.
	ErrNoFormSelected = errors.New("no form selected")
	// ErrUnsupportedMethod is returned when a form declares a submission
	// method other than get or post.
	ErrUnsupportedMethod = errors.New("unsupported form submission method")
	// ErrDownload wraps failures while streaming a response to disk.
	ErrDownload = errors.New("download failed")
)
