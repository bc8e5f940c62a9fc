// Package restclient is the shared JSON-over-HTTP client used by every
// platform adapter. Requests are paced by a token bucket and retried with
// exponential backoff on transport errors, 429 and 5xx responses.
package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

const (
	DefaultUserAgent  = "PredictHub/1.0"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryWait  = 500 * time.Millisecond

	maxErrorBody = 512
)

// Options configures a Client. Zero values fall back to the package
// defaults; a zero RatePerSecond disables pacing.
type Options struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxRetries    int
	RetryWait     time.Duration
	// Limiter, when set, is shared with other clients and overrides
	// RatePerSecond/Burst.
	Limiter    *rate.Limiter
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues GET requests against a single API root.
type Client struct {
	baseURL    string
	userAgent  string
	maxRetries int
	retryWait  time.Duration
	limiter    *rate.Limiter
	http       *http.Client
	logger     *slog.Logger
}

// RequestOption mutates an outgoing request. Options run on every attempt,
// so a signer sees a fresh timestamp on each retry.
type RequestOption func(*http.Request) error

// WithHeader sets a static header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) error {
		r.Header.Set(key, value)
		return nil
	}
}

// New creates a Client.
func New(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		retryWait:  opts.RetryWait,
		limiter:    opts.Limiter,
		http:       opts.HTTPClient,
		logger:     opts.Logger,
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	} else if opts.MaxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	if c.limiter == nil {
		if opts.RatePerSecond > 0 {
			burst := opts.Burst
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
		} else {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Limiter exposes the request limiter so sibling clients can share it.
func (c *Client) Limiter() *rate.Limiter { return c.limiter }

// GetJSON fetches path (relative to the base URL) with the given query and
// decodes the JSON body into out. A nil out discards the body.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any, opts ...RequestOption) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt-1); err != nil {
				return err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("restclient: rate limiter: %w", err)
		}

		retry, err := c.attempt(ctx, target, out, opts)
		if err == nil {
			return nil
		}
		if !retry || ctx.Err() != nil {
			return err
		}
		lastErr = err
		c.logger.Warn("retrying request",
			slog.String("url", target),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)
	}
	return fmt.Errorf("restclient: giving up after %d retries: %w", c.maxRetries, lastErr)
}

// attempt performs one round trip. The bool reports whether the failure is
// worth retrying.
func (c *Client) attempt(ctx context.Context, target string, out any, opts []RequestOption) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("restclient: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for _, opt := range opts {
		if err := opt(req); err != nil {
			return false, fmt.Errorf("restclient: prepare request: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("restclient: GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: target, Body: string(body)}
		return statusErr.Temporary(), statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("restclient: decode %s: %w", target, err)
	}
	return false, nil
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	wait := c.retryWait << attempt
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("restclient: HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("restclient: HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Unwrap maps the status onto the domain sentinels so callers can use
// errors.Is(err, domain.ErrNotFound) and friends.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	case e.StatusCode >= 500:
		return domain.ErrUnavailable
	default:
		return nil
	}
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound is shorthand for errors.Is(err, domain.ErrNotFound).
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
