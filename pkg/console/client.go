package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client issues authenticated requests against the backoffice API. Every
// request runs the same pipeline: attach the current credential, send, and on
// a 401 perform exactly one silent refresh followed by exactly one replay.
// Concurrent 401s coalesce into a single refresh; an unrecoverable refresh
// clears the session and surfaces ErrSessionExpired.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	session          *SessionStore
	creds            CredentialSource
	refresh          RefreshStrategy
	tags             *TagRegistry
	group            singleflight.Group
	onSessionExpired func()
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithCredentialSource(src CredentialSource) Option {
	return func(c *Client) { c.creds = src }
}

func WithRefreshStrategy(s RefreshStrategy) Option {
	return func(c *Client) { c.refresh = s }
}

// WithSessionExpiredHandler registers the callback fired when a refresh fails
// and the session is torn down.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func NewClient(baseURL string, session *SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		session: session,
		creds:   BearerCredentials{},
		tags:    NewTagRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the session store for readers.
func (c *Client) Session() *SessionStore { return c.session }

// Tags exposes the invalidation registry so views can subscribe.
func (c *Client) Tags() *TagRegistry { return c.tags }

// Do runs one logical API call through the pipeline and decodes the JSON
// response into out (which may be nil for empty responses).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.do(ctx, method, path, query, body, out, true)
}

// doDirect skips the refresh-and-retry branch. Login goes through here: a 401
// from the credential check means the credentials are wrong, not that the
// session expired, so it must never trigger a refresh or tear the session down.
func (c *Client) doDirect(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.do(ctx, method, path, query, body, out, false)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, allowRefresh bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh && c.refresh != nil {
		resp.Body.Close()

		if err := c.refreshCredentials(ctx); err != nil {
			c.expireSession()
			return fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}

		// Replay the original request once with the renewed credential.
		resp, err = c.send(ctx, method, path, query, payload)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			c.expireSession()
			return ErrSessionExpired
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.creds.Attach(req, c.session.Snapshot())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	return resp, nil
}

// refreshCredentials performs the silent renewal. Concurrent callers share a
// single in-flight refresh; all of them observe the same outcome.
func (c *Client) refreshCredentials(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		snap := c.session.Snapshot()
		tokens, err := c.refresh.Refresh(ctx, snap.Tokens.RefreshToken)
		if err != nil {
			return nil, err
		}
		c.session.TokenRefreshed(tokens)
		return tokens, nil
	})
	return err
}

func (c *Client) expireSession() {
	c.session.Cleared()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}
