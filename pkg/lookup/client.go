package lookup

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/httputil"
)

// Client fetches reference lists from an HTTP service.
type Client struct {
	base    string
	http    *httputil.Client
	refresh bool
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRefresh bypasses cached responses.
func WithRefresh(refresh bool) Option {
	return func(c *Client) { c.refresh = refresh }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client for the service at baseURL. cache may be nil.
func NewClient(baseURL string, cache *httputil.Cache, headers map[string]string, opts ...Option) (*Client, error) {
	if err := errs.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	if cache != nil {
		cache = cache.Namespace("lookup:" + strings.TrimRight(baseURL, "/") + ":")
	}
	return NewClientWith(baseURL, httputil.NewClient(cache, headers), opts...), nil
}

// NewClientWith wraps a preconfigured HTTP client.
func NewClientWith(baseURL string, hc *httputil.Client, opts ...Option) *Client {
	c := &Client{base: baseURL, http: hc, log: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Buyers implements [Provider].
func (c *Client) Buyers(ctx context.Context) ([]Buyer, error) {
	var out []Buyer
	if err := c.fetch(ctx, "buyers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Campaigns implements [Provider].
func (c *Client) Campaigns(ctx context.Context) ([]Campaign, error) {
	var out []Campaign
	if err := c.fetch(ctx, "campaigns", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, resource string, v any) error {
	url := joinURL(c.base, resource)
	err := c.http.Cached(ctx, resource, c.refresh, v, func() error {
		c.log.Debug("fetching", "url", url)
		return c.http.Get(ctx, url, v)
	})
	if err != nil {
		code := errs.GetCode(err)
		if code == "" {
			code = errs.ErrCodeNetwork
		}
		return errs.Wrap(code, err, "fetch %s", resource)
	}
	return nil
}
