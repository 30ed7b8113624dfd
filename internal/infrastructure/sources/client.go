// Package sources fetches quotes from public price pages and endpoints.
package sources

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"folio-backend/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second across all sources
	DefaultMinDelay  = 500 * time.Millisecond
	DefaultMaxDelay  = 1500 * time.Millisecond

	maxBodyBytes = 4 << 20
)

// DefaultUserAgents are rotated per request.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

// Client is the shared HTTP client for every quote source.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgents []string
	next       atomic.Uint64
	minDelay   time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the request rate. Zero or negative disables limiting.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

func WithUserAgents(agents []string) ClientOption {
	return func(c *Client) {
		if len(agents) > 0 {
			c.userAgents = agents
		}
	}
}

// WithDelay sets the random pause range used by Pace.
func WithDelay(min, max time.Duration) ClientOption {
	return func(c *Client) {
		c.minDelay, c.maxDelay = min, max
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client with polite defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		userAgents: DefaultUserAgents,
		minDelay:   DefaultMinDelay,
		maxDelay:   DefaultMaxDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url. A non-2xx status returns the response together with an
// error wrapping domain.ErrQuoteUnavailable.
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept-Language", "ja,en-US;q=0.8,en;q=0.6")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Dur("elapsed", elapsed).Msg("quote request failed")
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	out := &Response{Status: resp.StatusCode, Body: body}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().Str("url", url).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("quote request non-OK response")
		return out, fmt.Errorf("%w: GET %s: status %d", domain.ErrQuoteUnavailable, url, resp.StatusCode)
	}
	c.logger.Debug().Str("url", url).Int("bytes", len(body)).Dur("elapsed", elapsed).Msg("quote request")
	return out, nil
}

// Pace sleeps for a random duration in the configured range, returning early
// if ctx is done.
func (c *Client) Pace(ctx context.Context) error {
	d := c.minDelay
	if spread := c.maxDelay - c.minDelay; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) userAgent() string {
	n := c.next.Add(1) - 1
	return c.userAgents[n%uint64(len(c.userAgents))]
}
