package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lumadev/amazon-product-scout/internal/cache"
	"github.com/lumadev/amazon-product-scout/internal/ratelimit"
)

// DefaultBaseURL is the amazon.es search endpoint.
const DefaultBaseURL = "https://www.amazon.es/s"

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client fetches search-results pages over plain HTTP. It is the markup
// path's page source; parsing happens elsewhere.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *ratelimit.AdaptiveRateLimiter
	cache      cache.PageCache
	logger     *slog.Logger
}

// Options configures the fetch client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Cache is optional; nil disables page caching.
	Cache cache.PageCache
	// MinDelay/MaxDelay pace consecutive requests.
	MinDelay time.Duration
	MaxDelay time.Duration
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MinDelay == 0 {
		opts.MinDelay = 1 * time.Second
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		limiter:    ratelimit.NewAdaptiveRateLimiter(opts.MinDelay, opts.MaxDelay),
		cache:      opts.Cache,
		logger:     logger.With("component", "fetch"),
	}
}

// FetchSearchResults returns the raw HTML of the search-results page for the
// given query. A cached page is served without touching the storefront.
func (c *Client) FetchSearchResults(ctx context.Context, query string) (string, error) {
	if c.cache != nil {
		html, err := c.cache.Get(ctx, query)
		if err == nil {
			c.logger.Debug("serving cached page", "query", query)
			return html, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("page cache read failed", "error", err)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	q := url.Values{}
	q.Set("k", query)
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.limiter.RecordError()
		return "", fmt.Errorf("failed to fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.limiter.RecordError()
		return "", fmt.Errorf("search page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.limiter.RecordError()
		return "", fmt.Errorf("failed to read search page: %w", err)
	}

	c.limiter.RecordSuccess()
	html := string(body)

	if c.cache != nil {
		if err := c.cache.Set(ctx, query, html); err != nil {
			c.logger.Warn("page cache write failed", "error", err)
		}
	}

	return html, nil
}
