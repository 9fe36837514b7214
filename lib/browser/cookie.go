package browser

import (
	"sort"
	"strings"
)

// SetCookie upserts a cookie sent with all future requests.
func (s *Session) SetCookie(name, value string) {
	s.cookies[name] = value
}

// SetCookies upserts every cookie in the given map.
func (s *Session) SetCookies(cookies map[string]string) {
	for k, v := range cookies {
		s.cookies[k] = v
	}
}

// Cookie returns the value of an outgoing cookie, "" when not set.
func (s *Session) Cookie(name string) string {
	return s.cookies[name]
}

// Cookies returns the live map of all outgoing cookies.
func (s *Session) Cookies() map[string]string {
	return s.cookies
}

// PageCookies returns the cookies received with the current page.
func (s *Session) PageCookies() map[string]string {
	return s.pageCookies
}

// ClearCookies drops every outgoing cookie.
func (s *Session) ClearCookies() {
	s.cookies = map[string]string{}
}

// CookieString serializes the outgoing jar in a form usable as a literal
// Cookie header value. Cookies with empty values are skipped and names are
// emitted in sorted order so the result is deterministic.
func (s *Session) CookieString() string {
	names := make([]string, 0, len(s.cookies))
	for name, value := range s.cookies {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	for i, name := range names {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(name)
		out.WriteString("=")
		out.WriteString(s.cookies[name])
	}
	return out.String()
}

// ParseCookies parses a cookie string into a name to value map. A leading
// "Cookie: " or "Set-Cookie: " prefix is stripped and segments without an
// "=" are dropped.
func ParseCookies(cookieString string) map[string]string {
	cookieString = strings.TrimPrefix(cookieString, "Cookie: ")
	cookieString = strings.TrimPrefix(cookieString, "Set-Cookie: ")

	parsed := map[string]string{}
	for _, segment := range strings.Split(cookieString, ";") {
		segment = strings.TrimSpace(segment)
		name, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		parsed[name] = value
	}
	return parsed
}

// ParseHeaders parses a header string in "name=value, name=value" format
// into a map. Empty segments and segments without an "=" are skipped.
func ParseHeaders(header string) map[string]string {
	parsed := map[string]string{}
	for _, segment := range strings.Split(header, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		name, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		parsed[name] = value
	}
	return parsed
}
