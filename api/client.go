// Package api is a client for the Mastodon REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	ClientName    = "tusk"
	ClientWebsite = "https://github.com/drake/tusk"
	Scopes        = "read write follow"

	// redirectURI asks the server to show the authorization code to the
	// user instead of redirecting.
	redirectURI = "urn:ietf:wg:oauth:2.0:oob"
)

// Stats holds request counters.
type Stats struct {
	Requests    int64
	Failures    int64
	BytesRead   int64
	LastRequest time.Time
}

// Client talks to one instance. It is safe for concurrent use.
type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
	newKey    func() string
	lookup    func(ctx context.Context, host string) error

	requests    atomic.Int64
	failures    atomic.Int64
	bytesRead   atomic.Int64
	lastRequest atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the access token sent with authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets the underlying HTTP client. Redirects are never
// followed regardless of its CheckRedirect.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit throttles requests to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithIdempotencyKeys sets the generator for Idempotency-Key headers.
func WithIdempotencyKeys(gen func() string) Option {
	return func(c *Client) { c.newKey = gen }
}

// WithHostLookup replaces the DNS check made by Instance.
func WithHostLookup(lookup func(ctx context.Context, host string) error) Option {
	return func(c *Client) { c.lookup = lookup }
}

// NewClient creates a client for the instance at baseURL, for example
// "https://mastodon.social".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(5), 10),
		userAgent: ClientName,
		logger:    slog.Default(),
		newKey:    uuid.NewString,
		lookup:    lookupHost,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Servers answer a failed password login with a redirect to the login
	// page; it must reach Login as a response.
	h := *c.http
	h.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	c.http = &h
	return c
}

// BaseURL returns the instance URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Stats returns a snapshot of the request counters.
func (c *Client) Stats() Stats {
	s := Stats{
		Requests:  c.requests.Load(),
		Failures:  c.failures.Load(),
		BytesRead: c.bytesRead.Load(),
	}
	if ns := c.lastRequest.Load(); ns != 0 {
		s.LastRequest = time.Unix(0, ns)
	}
	return s
}

// request describes one API call.
type request struct {
	method      string
	url         string // absolute, or a path below baseURL
	query       url.Values
	form        url.Values
	body        io.Reader
	contentType string
	header      http.Header
	auth        bool
}

// do sends req and returns the response for any status below 300. Other
// statuses are turned into *Error. The caller closes the body.
func (c *Client) do(ctx context.Context, req request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := req.url
	if !strings.Contains(target, "://") {
		target = c.baseURL + target
	}
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body, contentType := req.body, req.contentType
	if req.form != nil {
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	hr, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindAPI, Message: "build request", Cause: err}
	}
	for k, v := range req.header {
		hr.Header[k] = v
	}
	if contentType != "" {
		hr.Header.Set("Content-Type", contentType)
	}
	hr.Header.Set("User-Agent", c.userAgent)
	hr.Header.Set("Accept", "application/json")
	if req.auth && c.token != "" {
		hr.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.requests.Add(1)
	c.lastRequest.Store(time.Now().UnixNano())
	start := time.Now()

	resp, err := c.http.Do(hr)
	if err != nil {
		c.failures.Add(1)
		return nil, &Error{Kind: KindAPI, Message: req.method + " " + redact(target), Cause: err}
	}
	c.logger.Debug("api request", "method", req.method, "url", redact(target),
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 300 {
		return resp, nil
	}
	if resp.StatusCode < 400 {
		// only Login expects redirects
		return resp, nil
	}

	defer resp.Body.Close()
	c.failures.Add(1)
	return nil, responseError(resp)
}

// responseError builds an *Error from an error response. Mastodon reports
// errors as {"error": "..."}.
func responseError(resp *http.Response) error {
	var payload struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := ""
	if json.Unmarshal(data, &payload) == nil {
		msg = payload.Error
		if payload.Description != "" {
			msg += ": " + payload.Description
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	kind := KindAPI
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuthentication
	}
	return &Error{Kind: kind, Status: resp.StatusCode, Message: msg}
}

// decode reads a JSON body into v and closes it.
func (c *Client) decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &Error{Kind: KindAPI, Status: resp.StatusCode, Message: "unexpected redirect"}
	}
	cr := &countingReader{r: resp.Body}
	err := json.NewDecoder(cr).Decode(v)
	c.bytesRead.Add(cr.n)
	if err != nil {
		return &Error{Kind: KindAPI, Status: resp.StatusCode, Message: "decode response", Cause: err}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) (http.Header, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: path, query: query, auth: true})
	if err != nil {
		return nil, err
	}
	return resp.Header, c.decode(resp, v)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, header http.Header, v any) error {
	if form == nil {
		form = url.Values{}
	}
	resp, err := c.do(ctx, request{method: http.MethodPost, url: path, form: form, header: header, auth: true})
	if err != nil {
		return err
	}
	return c.decode(resp, v)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// redact drops the query string, which may carry OAuth codes.
func redact(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func (c *Client) errorf(format string, args ...any) error {
	return &Error{Kind: KindAPI, Message: fmt.Sprintf(format, args...)}
}
