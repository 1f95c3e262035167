package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
)

// StatusParams are the fields of a new status.
type StatusParams struct {
	Status      string
	Visibility  string // defaults to public
	MediaIDs    []string
	Sensitive   bool
	SpoilerText string
	InReplyToID string
}

// PostStatus publishes a status. Every call carries a fresh
// Idempotency-Key so the server drops duplicates of a retried request.
func (c *Client) PostStatus(ctx context.Context, p StatusParams) (*Status, error) {
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	form := url.Values{
		"status":     {p.Status},
		"visibility": {p.Visibility},
	}
	for _, id := range p.MediaIDs {
		form.Add("media_ids[]", id)
	}
	if p.Sensitive {
		form.Set("sensitive", "true")
	}
	if p.SpoilerText != "" {
		form.Set("spoiler_text", p.SpoilerText)
	}
	if p.InReplyToID != "" {
		form.Set("in_reply_to_id", p.InReplyToID)
	}

	header := http.Header{"Idempotency-Key": {c.newKey()}}
	var s Status
	if err := c.postForm(ctx, "/api/v1/statuses", form, header, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// TimelineHome returns the newest page of the home timeline. A limit of
// zero uses the server default.
func (c *Client) TimelineHome(ctx context.Context, limit int) ([]Status, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []Status
	if _, err := c.getJSON(ctx, "/api/v1/timelines/home", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pages walks a paginated timeline by following the Link header.
type Pages struct {
	c    *Client
	next string
}

// TimelinePages returns a pager over the home timeline, newest first.
func (c *Client) TimelinePages() *Pages {
	return &Pages{c: c, next: "/api/v1/timelines/home"}
}

// More reports whether another page may be fetched.
func (p *Pages) More() bool { return p.next != "" }

// Next fetches the next page. After the last page More returns false.
func (p *Pages) Next(ctx context.Context) ([]Status, error) {
	if p.next == "" {
		return nil, io.EOF
	}
	var out []Status
	header, err := p.c.getJSON(ctx, p.next, nil, &out)
	if err != nil {
		return nil, err
	}
	p.next = nextPath(header.Get("Link"))
	return out, nil
}

var linkNext = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// nextPath extracts the path and query of the rel="next" link.
func nextPath(link string) string {
	m := linkNext.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	u, err := url.Parse(m[1])
	if err != nil {
		return ""
	}
	return u.RequestURI()
}

// UploadMedia uploads a file for attaching to a status.
func (c *Client) UploadMedia(ctx context.Context, filename string, r io.Reader) (*Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         "/api/v1/media",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		auth:        true,
	})
	if err != nil {
		return nil, err
	}
	var a Attachment
	if err := c.decode(resp, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Notifications returns the newest notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	if _, err := c.getJSON(ctx, "/api/v1/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search searches accounts, statuses and hashtags. With resolve the server
// looks up remote accounts it does not know yet.
func (c *Client) Search(ctx context.Context, query string, resolve bool) (*SearchResults, error) {
	q := url.Values{"q": {query}, "resolve": {strconv.FormatBool(resolve)}}
	var out SearchResults
	if _, err := c.getJSON(ctx, "/api/v1/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
