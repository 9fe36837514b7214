package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"browsekit/lib/telemetry"
)

const extractPage = `<html>
<head>
<title>Extract</title>
<link rel="stylesheet" type="text/css" href="/styles/main.css">
<link rel="icon" href="/favicon.ico">
</head>
<body>
<a href="/relative">relative</a>
<a href="https://external.example.com/page">absolute</a>
<a>no href</a>
<img src="/images/logo.PNG">
<img src="/images/photo.jpeg">
<img src="/render.php">
<script src="/scripts/app.js"></script>
<script src="/scripts/loader"></script>
</body>
</html>`

func newExtractServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, extractPage)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtractURLBuckets(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newExtractServer(t)
	session := New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := session.Open(ctx, server.URL+"/")
	require.NoError(t, err)

	require.Equal(t, []string{
		server.URL + "/relative",
		"https://external.example.com/page",
	}, session.URLs(Hyperlink))
	require.Equal(t, []string{
		server.URL + "/images/logo.PNG",
		server.URL + "/images/photo.jpeg",
	}, session.URLs(Image))
	require.Equal(t, []string{
		server.URL + "/scripts/app.js",
	}, session.URLs(Script))
	require.Equal(t, []string{
		server.URL + "/styles/main.css",
	}, session.URLs(Stylesheet))
}

func TestParseIdempotent(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newExtractServer(t)
	session := New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := session.Open(ctx, server.URL+"/")
	require.NoError(t, err)

	before := session.URLs(Hyperlink)
	require.NoError(t, session.Parse())
	require.NoError(t, session.Parse())
	require.Equal(t, before, session.URLs(Hyperlink))
}

func TestAutoParseDisabled(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newExtractServer(t)
	session := New()
	session.SetAutoParse(false)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := session.Open(ctx, server.URL+"/")
	require.NoError(t, err)
	require.Empty(t, session.URLs(Hyperlink))
	require.Empty(t, session.Forms())

	require.NoError(t, session.Parse())
	require.Len(t, session.URLs(Hyperlink), 2)
}
