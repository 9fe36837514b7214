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

const formPage = `<html>
<head><title>Forms</title></head>
<body>
<form id="search" method="get" action="/search">
<input name="q" value="">
</form>
<form id="login" method="post" action="/login">
<input name="username" value="">
<input name="token" value="abc">
<input type="submit" value="go">
</form>
<form id="noop" method="dialog" action="/noop">
<input name="x" value="1">
</form>
<form id="selfpost" method="post">
<input name="y" value="2">
</form>
</body>
</html>`

func newFormServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, formPage)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		fmt.Fprintf(
			w,
			`<html><head><title>Login %s</title></head><body><p>user=%s token=%s</p></body></html>`,
			r.Method, r.PostFormValue("username"), r.PostFormValue("token"),
		)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(
			w,
			`<html><head><title>Search</title></head><body><p>q=%s</p></body></html>`,
			r.URL.Query().Get("q"),
		)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func openFormPage(t *testing.T, ctx context.Context, server *httptest.Server) *Session {
	session := New()
	err := session.Open(ctx, server.URL+"/")
	require.NoError(t, err)
	return session
}

func TestSelectForm(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newFormServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session := openFormPage(t, ctx, server)
	require.Len(t, session.Forms(), 4)
	require.Nil(t, session.Form(99))
	require.NotNil(t, session.FormByID("login"))
	require.Nil(t, session.FormByID("nonexistent"))

	require.False(t, session.SelectForm(-1))
	require.False(t, session.SelectForm(99))
	require.Nil(t, session.SelectedForm())

	require.True(t, session.SelectForm(1))
	require.NotNil(t, session.SelectedForm())
	require.Equal(t, map[string]string{"username": "", "token": "abc"}, session.FormParams())
	require.Equal(t, "post", session.FormAttrs()["method"])

	// reselecting resets parameters
	session.SetFormParam("username", "alice")
	require.True(t, session.SelectForm(1))
	require.Equal(t, "", session.FormParam("username"))
}

func TestSelectFormByAttr(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newFormServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session := openFormPage(t, ctx, server)
	require.False(t, session.SelectFormByAttr("id", "nonexistent"))
	require.True(t, session.SelectFormByAttr("id", "login"))
	require.Equal(t, "login", session.FormAttrs()["id"])
}

func TestFormSatisfied(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newFormServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session := openFormPage(t, ctx, server)
	require.False(t, session.FormSatisfied())

	require.True(t, session.SelectForm(1))
	require.False(t, session.FormSatisfied())

	session.SetFormParam("username", "alice")
	require.True(t, session.FormSatisfied())

	session.SetFormParam("token", "")
	require.False(t, session.FormSatisfied())
}

func TestSubmitForm(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newFormServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session := openFormPage(t, ctx, server)

	err := session.SubmitForm(ctx)
	require.ErrorIs(t, err, ErrNoFormSelected)

	require.True(t, session.SelectFormByAttr("id", "login"))
	session.SetFormParam("username", "alice")

	err = session.SubmitForm(ctx)
	require.NoError(t, err)
	require.Equal(t, "Login POST", session.PageTitle())
	require.Contains(t, session.PageHTML(), "user=alice token=abc")
	require.Equal(t, server.URL+"/login", session.PageURL())
	require.Len(t, session.History(), 2)
}

func TestSubmitFormGet(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newFormServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session := openFormPage(t, ctx, server)
	require.True(t, session.SelectFormByAttr("id", "search"))
	session.SetFormParam("q", "golang")

	err := session.SubmitForm(ctx)
	require.NoError(t, err)
	require.Equal(t, "Search", session.PageTitle())
	require.Contains(t, session.PageHTML(), "q=golang")
}

func TestSubmitFormUnsupportedMethod(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	server := newFormServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session := openFormPage(t, ctx, server)
	require.True(t, session.SelectFormByAttr("id", "noop"))

	err := session.SubmitForm(ctx)
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestSubmitFormEmptyAction(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:browser")
	defer cleanup()

	// a form without an action posts back to the page it came from
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			r.ParseForm()
			fmt.Fprintf(
				w,
				`<html><head><title>Posted</title></head><body><p>y=%s</p></body></html>`,
				r.PostFormValue("y"),
			)
			return
		}
		fmt.Fprint(w, formPage)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	session := New()
	err := session.Open(ctx, server.URL+"/page")
	require.NoError(t, err)

	require.True(t, session.SelectFormByAttr("id", "selfpost"))
	err = session.SubmitForm(ctx)
	require.NoError(t, err)
	require.Equal(t, "Posted", session.PageTitle())
	require.Contains(t, session.PageHTML(), "y=2")
}
