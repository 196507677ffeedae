// Package client is a typed HTTP client for the Atrium API.
//
// The session is carried by the server-managed access_token cookie: a cookie
// jar attaches it to every request and the client never mints or inspects
// credentials itself.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/atrium-dev/atrium/internal/apierror"
)

// SessionCookieName is the cookie the server sets on successful login
const SessionCookieName = "access_token"

// Client represents an HTTP client for the Atrium API
type Client struct {
	baseURL        string
	httpClient     *http.Client
	onUnauthorized func()
}

// New creates a new API client for the given server base URL
// (e.g. "https://atrium.example.com")
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// SetHTTPClient sets a custom HTTP client. A cookie jar is attached if the
// given client has none, since the session cannot work without one.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err == nil {
			httpClient.Jar = jar
		}
	}
	c.httpClient = httpClient
}

// OnUnauthorized registers a hook invoked whenever an authenticated request
// is answered with 401/403. The session controller uses it to force the
// session back to anonymous no matter which call observed the failure.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// BaseURL returns the server base URL this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SessionCookie returns the current session cookie value, if any
func (c *Client) SessionCookie() (string, bool) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", false
	}
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == SessionCookieName {
			return cookie.Value, true
		}
	}
	return "", false
}

// RestoreSessionCookie seeds the jar with a previously persisted session
// cookie so a CLI session survives between invocations
func (c *Client) RestoreSessionCookie(value string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	c.httpClient.Jar.SetCookies(u, []*http.Cookie{{
		Name:  SessionCookieName,
		Value: value,
		Path:  "/",
	}})
	return nil
}

// ClearSession drops the session cookie from the jar
func (c *Client) ClearSession() {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	c.httpClient.Jar.SetCookies(u, []*http.Cookie{{
		Name:   SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

// requestOptions control per-call behavior
type requestOptions struct {
	// notifyUnauthorized escalates a 401/403 through the OnUnauthorized
	// hook. Login and the identity check keep it off: their 401 is a
	// local answer, not a session-wide failure.
	notifyUnauthorized bool
}

// doJSON sends a JSON request and decodes a JSON response into out (if non-nil)
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, opts requestOptions) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out, opts)
}

// doForm sends a form-encoded request (the login endpoint's wire format)
func (c *Client) doForm(ctx context.Context, method, path string, form url.Values, out interface{}, opts requestOptions) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(req, out, opts)
}

func (c *Client) send(req *http.Request, out interface{}, opts requestOptions) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := apierror.FromResponse(resp.StatusCode, body)
		if opts.notifyUnauthorized && apiErr.IsUnauthorized() && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}

	if out != nil {
		return decodeJSON(resp.Body, out)
	}

	return nil
}

func decodeJSON(r io.Reader, out interface{}) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
