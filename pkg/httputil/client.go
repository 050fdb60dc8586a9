package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/matzehuels/ivrflow/pkg/buildinfo"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// DefaultTimeout bounds a single request made by [Client].
const DefaultTimeout = 10 * time.Second

// Client performs cached, retried JSON GET requests.
type Client struct {
	http    *http.Client
	cache   *Cache
	headers map[string]string
	policy  Policy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPolicy sets the retry policy.
func WithPolicy(p Policy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// NewClient returns a client sending headers with every request. cache may
// be nil to disable caching.
func NewClient(cache *Cache, headers map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		cache:   cache,
		headers: headers,
		policy:  DefaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cached fills v from the cache under key, or runs fetch (with retries) and
// caches the result. refresh skips the cache read.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if c.cache != nil && !refresh {
		if ok, _ := c.cache.Get(key, v); ok {
			return nil
		}
	}
	if err := Retry(ctx, c.policy, fetch); err != nil {
		return err
	}
	if c.cache != nil {
		_ = c.cache.Set(key, v)
	}
	return nil
}

// Get fetches url and decodes the JSON body into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RetryableError{Err: errs.Wrap(errs.ErrCodeNetwork, err, "GET %s", url)}
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", url)
	}
	return nil
}

// CheckStatus maps an HTTP status to an error: nil for 2xx, ErrCodeNotFound
// for 404, a retryable ErrCodeNetwork for 5xx and a plain ErrCodeNetwork for
// anything else.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "resource not found")
	case code >= 500:
		return &RetryableError{Err: errs.New(errs.ErrCodeNetwork, "server error: status %d", code)}
	default:
		return errs.New(errs.ErrCodeNetwork, "unexpected status %d", code)
	}
}
