package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fakeServer records requests and serves canned responses by path.
type fakeServer struct {
	mu       sync.Mutex
	requests []*http.Request
	forms    []map[string][]string
	routes   map[string]http.HandlerFunc
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	f := &fakeServer{routes: make(map[string]http.HandlerFunc)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			r.ParseForm()
		}
		f.mu.Lock()
		f.requests = append(f.requests, r)
		f.forms = append(f.forms, r.PostForm)
		h, ok := f.routes[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"Record not found"}`)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeServer) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

func (f *fakeServer) json(route, body string) {
	f.handle(route, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
}

func (f *fakeServer) last() (*http.Request, map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.requests)
	return f.requests[n-1], f.forms[n-1]
}

func newTestClient(url string, opts ...Option) *Client {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRateLimit(rate.Inf, 1),
	}
	return NewClient(url, append(base, opts...)...)
}

func TestCreateApp(t *testing.T) {
	f, srv := newFakeServer(t)
	f.json("POST /api/v1/apps", `{"id":"1","client_id":"cid","client_secret":"secret"}`)

	app, err := newTestClient(srv.URL).CreateApp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cid", app.ClientID)
	assert.Equal(t, "secret", app.ClientSecret)
	assert.Equal(t, srv.URL, app.BaseURL)
	assert.Equal(t, strings.TrimPrefix(srv.URL, "http://"), app.Instance)

	_, form := f.last()
	assert.Equal(t, []string{ClientName}, form["client_name"])
	assert.Equal(t, []string{Scopes}, form["scopes"])
	assert.Equal(t, []string{redirectURI}, form["redirect_uris"])
}

func TestLogin(t *testing.T) {
	f, srv := newFakeServer(t)
	f.handle("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.PostForm.Get("password") != "hunter2" {
			http.Redirect(w, r, "/auth/sign_in", http.StatusFound)
			return
		}
		fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","scope":"read write follow"}`)
	})
	app := &App{BaseURL: srv.URL, ClientID: "cid", ClientSecret: "secret"}
	c := newTestClient(srv.URL)

	tok, err := c.Login(context.Background(), app, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)

	_, form := f.last()
	assert.Equal(t, "password", form["grant_type"][0])
	assert.Equal(t, "alice", form["username"][0])

	_, err = c.Login(context.Background(), app, "alice", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication), "got %v", err)
}

func TestRequestAccessToken(t *testing.T) {
	f, srv := newFakeServer(t)
	f.json("POST /oauth/token", `{"access_token":"code-tok"}`)
	app := &App{BaseURL: srv.URL, ClientID: "cid", ClientSecret: "secret"}

	tok, err := newTestClient(srv.URL).RequestAccessToken(context.Background(), app, "abc")
	require.NoError(t, err)
	assert.Equal(t, "code-tok", tok.AccessToken)

	_, form := f.last()
	assert.Equal(t, "authorization_code", form["grant_type"][0])
	assert.Equal(t, "abc", form["code"][0])
}

func TestBrowserLoginURL(t *testing.T) {
	u := BrowserLoginURL(&App{BaseURL: "https://x.example", ClientID: "cid"})
	assert.True(t, strings.HasPrefix(u, "https://x.example/oauth/authorize/?"))
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "response_type=code")
	assert.Contains(t, u, "scope=read+write+follow")
}

func TestPostStatus(t *testing.T) {
	f, srv := newFakeServer(t)
	f.json("POST /api/v1/statuses", `{"id":"99","content":"<p>hi</p>","visibility":"unlisted"}`)

	keys := 0
	c := newTestClient(srv.URL, WithToken("tok"), WithIdempotencyKeys(func() string {
		keys++
		return fmt.Sprintf("key-%d", keys)
	}))

	s, err := c.PostStatus(context.Background(), StatusParams{
		Status:     "hi",
		Visibility: VisibilityUnlisted,
		MediaIDs:   []string{"m1", "m2"},
		Sensitive:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "99", s.ID)

	r, form := f.last()
	assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
	assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
	assert.Equal(t, []string{"m1", "m2"}, form["media_ids[]"])
	assert.Equal(t, "unlisted", form["visibility"][0])
	assert.Equal(t, "true", form["sensitive"][0])

	_, err = c.PostStatus(context.Background(), StatusParams{Status: "again"})
	require.NoError(t, err)
	r, form = f.last()
	assert.Equal(t, "key-2", r.Header.Get("Idempotency-Key"))
	assert.Equal(t, "public", form["visibility"][0])
}

func TestDefaultIdempotencyKeysAreUUIDs(t *testing.T) {
	f, srv := newFakeServer(t)
	f.json("POST /api/v1/statuses", `{"id":"1"}`)
	c := newTestClient(srv.URL)

	_, err := c.PostStatus(context.Background(), StatusParams{Status: "x"})
	require.NoError(t, err)
	r, _ := f.last()
	assert.Len(t, r.Header.Get("Idempotency-Key"), 36)
}

func TestTimelinePages(t *testing.T) {
	f, srv := newFakeServer(t)
	f.handle("GET /api/v1/timelines/home", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("max_id") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/timelines/home?max_id=2>; rel="next", <%s/api/v1/timelines/home?min_id=3>; rel="prev"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[{"id":"3"},{"id":"2"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":"1"}]`)
		}
	})

	pages := newTestClient(srv.URL).TimelinePages()
	var ids []string
	for pages.More() {
		page, err := pages.Next(context.Background())
		require.NoError(t, err)
		for _, s := range page {
			ids = append(ids, s.ID)
		}
	}
	assert.Equal(t, []string{"3", "2", "1"}, ids)

	_, err := pages.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestNextPath(t *testing.T) {
	tests := []struct{ link, want string }{
		{`<https://x.example/api/v1/timelines/home?max_id=5>; rel="next"`, "/api/v1/timelines/home?max_id=5"},
		{`<https://x.example/a?min_id=9>; rel="prev"`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPath(tt.link), tt.link)
	}
}

func TestUploadMedia(t *testing.T) {
	f, srv := newFakeServer(t)
	f.handle("POST /api/v1/media", func(w http.ResponseWriter, r *http.Request) {
		file, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error":"no file"}`, http.StatusUnprocessableEntity)
			return
		}
		data, _ := io.ReadAll(file)
		fmt.Fprintf(w, `{"id":"m1","type":"image","description":"%s:%s"}`, hdr.Filename, data)
	})

	a, err := newTestClient(srv.URL).UploadMedia(context.Background(), "cat.png", strings.NewReader("meow"))
	require.NoError(t, err)
	assert.Equal(t, "m1", a.ID)
	assert.Equal(t, "cat.png:meow", a.Description)
}

func TestSearch(t *testing.T) {
	f, srv := newFakeServer(t)
	f.json("GET /api/v1/search", `{"accounts":[{"id":"1","acct":"bob"}],"statuses":[],"hashtags":[{"name":"go"}]}`)
	f.json("GET /api/v1/accounts/search", `[{"id":"2","acct":"carol"}]`)
	c := newTestClient(srv.URL)

	res, err := c.Search(context.Background(), "bob", true)
	require.NoError(t, err)
	require.Len(t, res.Accounts, 1)
	assert.Equal(t, "bob", res.Accounts[0].Acct)
	r, _ := f.last()
	assert.Equal(t, "true", r.URL.Query().Get("resolve"))

	accts, err := c.SearchAccounts(context.Background(), "carol")
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, "2", accts[0].ID)
}

func TestAccountActions(t *testing.T) {
	f, srv := newFakeServer(t)
	c := newTestClient(srv.URL, WithToken("tok"))
	actions := map[string]func(context.Context, string) (*Relationship, error){
		"follow":   c.Follow,
		"unfollow": c.Unfollow,
		"mute":     c.Mute,
		"unmute":   c.Unmute,
		"block":    c.Block,
		"unblock":  c.Unblock,
	}
	for name, action := range actions {
		f.json("POST /api/v1/accounts/42/"+name, `{"id":"42","following":true}`)
		rel, err := action(context.Background(), "42")
		require.NoError(t, err, name)
		assert.Equal(t, "42", rel.ID, name)
		r, _ := f.last()
		assert.Equal(t, "/api/v1/accounts/42/"+name, r.URL.Path)
	}
}

func TestVerifyCredentialsAndNotifications(t *testing.T) {
	f, srv := newFakeServer(t)
	f.json("GET /api/v1/accounts/verify_credentials", `{"id":"7","username":"alice","display_name":""}`)
	f.json("GET /api/v1/notifications", `[{"id":"n1","type":"mention","account":{"id":"8"}}]`)
	c := newTestClient(srv.URL, WithToken("tok"))

	me, err := c.VerifyCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Name())

	ns, err := c.Notifications(context.Background())
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "mention", ns[0].Type)
}

func TestErrorResponses(t *testing.T) {
	f, srv := newFakeServer(t)
	f.handle("GET /api/v1/accounts/verify_credentials", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"The access token is invalid"}`)
	})
	f.handle("GET /api/v1/timelines/home", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error":"Validation failed"}`)
	})
	c := newTestClient(srv.URL)

	_, err := c.VerifyCredentials(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindAuthentication, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, err.Error(), "The access token is invalid")

	_, err = c.TimelineHome(context.Background(), 0)
	assert.ErrorIs(t, err, ErrAPI)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = c.Search(context.Background(), "x", false)
	assert.True(t, IsNotFound(err), "got %v", err)

	s := c.Stats()
	assert.Equal(t, int64(3), s.Requests)
	assert.Equal(t, int64(3), s.Failures)
	assert.False(t, s.LastRequest.IsZero())
}

func TestInstance(t *testing.T) {
	f, srv := newFakeServer(t)
	f.json("GET /api/v1/instance", `{"uri":"x.example","title":"X","version":"4.2.0"}`)
	domain := strings.TrimPrefix(srv.URL, "http://")

	var looked []string
	c := newTestClient(srv.URL, WithHostLookup(func(ctx context.Context, host string) error {
		looked = append(looked, host)
		if host == "nowhere.invalid" {
			return errors.New("no such host")
		}
		return nil
	}))

	inst, err := c.Instance(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, "X", inst.Title)
	assert.Equal(t, "127.0.0.1", looked[0])
	r, _ := f.last()
	assert.Empty(t, r.Header.Get("Authorization"))

	_, err = c.Instance(context.Background(), "nowhere.invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain nowhere.invalid not found")

	f.handle("GET /api/v1/instance", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err = c.Instance(context.Background(), domain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not host a Mastodon instance")
}

func TestRateLimitHonoursContext(t *testing.T) {
	_, srv := newFakeServer(t)
	c := newTestClient(srv.URL, WithRateLimit(rate.Limit(0.001), 1))
	_, _ = c.Notifications(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Notifications(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(1), c.Stats().Requests)
}
