package api

import (
	"context"
	"net"
	"net/http"
	"net/url"
)

// SearchAccounts finds accounts matching query.
func (c *Client) SearchAccounts(ctx context.Context, query string) ([]Account, error) {
	var out []Account
	if _, err := c.getJSON(ctx, "/api/v1/accounts/search", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyCredentials returns the account the token belongs to.
func (c *Client) VerifyCredentials(ctx context.Context) (*Account, error) {
	var a Account
	if _, err := c.getJSON(ctx, "/api/v1/accounts/verify_credentials", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Follow(ctx context.Context, id string) (*Relationship, error) {
	return c.accountAction(ctx, id, "follow")
}

func (c *Client) Unfollow(ctx context.Context, id string) (*Relationship, error) {
	return c.accountAction(ctx, id, "unfollow")
}

func (c *Client) Mute(ctx context.Context, id string) (*Relationship, error) {
	return c.accountAction(ctx, id, "mute")
}

func (c *Client) Unmute(ctx context.Context, id string) (*Relationship, error) {
	return c.accountAction(ctx, id, "unmute")
}

func (c *Client) Block(ctx context.Context, id string) (*Relationship, error) {
	return c.accountAction(ctx, id, "block")
}

func (c *Client) Unblock(ctx context.Context, id string) (*Relationship, error) {
	return c.accountAction(ctx, id, "unblock")
}

func (c *Client) accountAction(ctx context.Context, id, action string) (*Relationship, error) {
	var r Relationship
	if err := c.postForm(ctx, "/api/v1/accounts/"+url.PathEscape(id)+"/"+action, nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Instance fetches public information about the server at domain, which
// need not be the client's own instance. The request is unauthenticated.
func (c *Client) Instance(ctx context.Context, domain string) (*Instance, error) {
	host := domain
	if h, _, err := net.SplitHostPort(domain); err == nil {
		host = h
	}
	if err := c.lookup(ctx, host); err != nil {
		return nil, c.errorf("domain %s not found", domain)
	}

	scheme := "https"
	if u, err := url.Parse(c.baseURL); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	target := scheme + "://" + domain + "/api/v1/instance"

	resp, err := c.do(ctx, request{method: http.MethodGet, url: target})
	if IsNotFound(err) {
		return nil, c.errorf("instance info not found at %s; the domain probably does not host a Mastodon instance", target)
	}
	if err != nil {
		return nil, err
	}
	var inst Instance
	if err := c.decode(resp, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func lookupHost(ctx context.Context, host string) error {
	_, err := net.DefaultResolver.LookupHost(ctx, host)
	return err
}
