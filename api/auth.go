package api

import (
	"context"
	"net/http"
	"net/url"
)

// CreateApp registers tusk as an OAuth application on the client's
// instance.
func (c *Client) CreateApp(ctx context.Context) (*App, error) {
	form := url.Values{
		"client_name":   {ClientName},
		"redirect_uris": {redirectURI},
		"scopes":        {Scopes},
		"website":       {ClientWebsite},
	}
	resp, err := c.do(ctx, request{method: http.MethodPost, url: "/api/v1/apps", form: form})
	if err != nil {
		return nil, err
	}
	app := &App{BaseURL: c.baseURL, Instance: hostOf(c.baseURL)}
	if err := c.decode(resp, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Login exchanges a username and password for a token. The server
// redirects to its login page when the credentials are wrong, which is
// reported as ErrAuthentication.
func (c *Client) Login(ctx context.Context, app *App, username, password string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {app.ClientID},
		"client_secret": {app.ClientSecret},
		"username":      {username},
		"password":      {password},
		"scope":         {Scopes},
	}
	return c.requestToken(ctx, form)
}

// BrowserLoginURL returns the URL where the user can authorize the app and
// obtain a code for RequestAccessToken.
func BrowserLoginURL(app *App) string {
	q := url.Values{
		"response_type": {"code"},
		"redirect_uri":  {redirectURI},
		"scope":         {Scopes},
		"client_id":     {app.ClientID},
	}
	return app.BaseURL + "/oauth/authorize/?" + q.Encode()
}

// RequestAccessToken exchanges an authorization code for a token.
func (c *Client) RequestAccessToken(ctx context.Context, app *App, code string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {app.ClientID},
		"client_secret": {app.ClientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}
	return c.requestToken(ctx, form)
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, url: "/oauth/token", form: form})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &Error{Kind: KindAuthentication, Status: resp.StatusCode, Message: "login failed"}
	}
	var tok Token
	if err := c.decode(resp, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	return u.Host
}
