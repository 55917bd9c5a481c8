// Package zoneminder implements a client for the ZoneMinder HTTP API.
package zoneminder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// sessionExpiry is how long a ZoneMinder login cookie is trusted before the
// client forces a new login.
const sessionExpiry = 30 * time.Minute

// Client holds an authenticated session with a ZoneMinder install.
// ZoneMinder authenticates with a form login that sets a ZMSESSID cookie;
// the client logs in again transparently once the cookie is stale.
type Client struct {
	// HTTP is the HTTP client for performing requests. It must have a cookie
	// jar so that the login session persists across calls.
	http *http.Client
	// url is the base URL of the ZoneMinder install, with no trailing slash.
	url string
	// username and password are the login credentials. They are kept only to
	// re-establish expired sessions.
	username string
	password string

	// now reports the current time. Tests replace it.
	now func() time.Time

	mu        sync.Mutex
	lastLogin time.Time
}

// New creates a client for the ZoneMinder install at base. No login happens
// until the first request.
func New(base, username, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't create cookie jar: %w", err)
	}
	// Some API endpoints fail when the URL carries extra slashes, so keep the
	// base in a consistent no-trailing-slash form.
	base = strings.TrimRight(base, "/")
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second, Jar: jar},
		url:      base,
		username: username,
		password: password,
		now:      time.Now,
	}, nil
}

// URL returns the base URL of the ZoneMinder install, without a trailing
// slash.
func (c *Client) URL() string {
	return c.url
}

// login establishes a fresh session. The caller must hold c.mu.
func (c *Client) login(ctx context.Context) error {
	slog.InfoContext(ctx, "logging into ZoneMinder", slog.String("url", c.url))
	form := url.Values{
		"username": {c.username},
		"password": {c.password},
		"action":   {"login"},
		"view":     {"console"},
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("couldn't make login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't log into %s: %w", c.url, err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("couldn't log into %s: %s", c.url, resp.Status)
	}
	c.lastLogin = c.now()
	return nil
}

// ensure logs in if the session is missing or stale.
func (c *Client) ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastLogin.IsZero() || c.now().Sub(c.lastLogin) >= sessionExpiry {
		return c.login(ctx)
	}
	return nil
}

// refresh notes that a successful request extended the session.
func (c *Client) refresh() {
	c.mu.Lock()
	c.lastLogin = c.now()
	c.mu.Unlock()
}

// get performs a GET against the install and decodes the JSON response into
// u. The response body is truncated to 8 MB.
func get[Resp any](ctx context.Context, c *Client, url string, u *Resp) error {
	b, err := c.raw(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, u); err != nil {
		return fmt.Errorf("couldn't decode JSON response: %w", err)
	}
	return nil
}

// post performs a form POST against the install and decodes the JSON
// response into u.
func post[Resp any](ctx context.Context, c *Client, url string, form url.Values, u *Resp) error {
	b, err := c.raw(ctx, "POST", url, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, u); err != nil {
		return fmt.Errorf("couldn't decode JSON response: %w", err)
	}
	return nil
}

// raw performs a request with session handling and returns the response
// bytes.
func (c *Client) raw(ctx context.Context, method, url string, body io.Reader) ([]byte, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("couldn't make request: %w", err)
	}
	if method == "POST" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't %s: %w", method, err)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("couldn't read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed: %s", resp.Status)
	}
	c.refresh()
	return b, nil
}

// apiurl creates an API URL under the install for the given endpoint.
func (c *Client) apiurl(ep string) string {
	return c.url + "/api/" + strings.TrimLeft(ep, "/")
}
