package browser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseCookies(t *testing.T) {
	cases := []struct {
		input    string
		expected map[string]string
	}{
		{
			input:    "Cookie: session=abc123; theme=dark",
			expected: map[string]string{"session": "abc123", "theme": "dark"},
		},
		{
			input:    "Set-Cookie: session=abc123",
			expected: map[string]string{"session": "abc123"},
		},
		{
			input:    "a=1;  b=2 ; junk ; c=",
			expected: map[string]string{"a": "1", "b": "2", "c": ""},
		},
		{
			input:    "",
			expected: map[string]string{},
		},
	}
	for _, c := range cases {
		got := ParseCookies(c.input)
		if diff := cmp.Diff(c.expected, got); diff != "" {
			t.Fatalf("ParseCookies(%q) mismatch (-want +got):\n%s", c.input, diff)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	cases := []struct {
		input    string
		expected map[string]string
	}{
		{
			input:    "Accept=text/html, X-Requested-With=XMLHttpRequest",
			expected: map[string]string{"Accept": "text/html", "X-Requested-With": "XMLHttpRequest"},
		},
		{
			input:    "Accept=text/html,,junk",
			expected: map[string]string{"Accept": "text/html"},
		},
		{
			input:    "",
			expected: map[string]string{},
		},
	}
	for _, c := range cases {
		got := ParseHeaders(c.input)
		if diff := cmp.Diff(c.expected, got); diff != "" {
			t.Fatalf("ParseHeaders(%q) mismatch (-want +got):\n%s", c.input, diff)
		}
	}
}

func TestCookieString(t *testing.T) {
	session := New()
	require.Equal(t, "", session.CookieString())

	session.SetCookies(map[string]string{
		"b":     "2",
		"a":     "1",
		"empty": "",
	})
	require.Equal(t, "a=1; b=2", session.CookieString())

	session.ClearCookies()
	require.Equal(t, "", session.CookieString())
}
