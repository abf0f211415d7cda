// Package boundary fetches boundary GeoJSON documents from remote URLs.
package boundary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
	"github.com/couchcryptid/noise-dashboard/internal/observability"
)

// ErrUnsupportedURL is returned for URLs that are not absolute http(s) locations.
var ErrUnsupportedURL = errors.New("only absolute http and https URLs are supported")

// ErrBlockedAddress is returned when a URL resolves to a loopback, private,
// link-local, multicast, or unspecified address.
var ErrBlockedAddress = errors.New("address is not publicly routable")

// ErrTooLarge is returned when a document exceeds the configured size limit.
var ErrTooLarge = errors.New("document exceeds size limit")

const maxRetryBackoff = 2 * time.Second

// ClientConfig controls the HTTP client behind Fetch.
type ClientConfig struct {
	Timeout  time.Duration
	MaxBytes int64
	// Retries is how many extra attempts follow a network error or 5xx response.
	Retries      int
	RetryBackoff time.Duration
	// AllowPrivate lets URLs reach non-public addresses.
	AllowPrivate bool
}

// Client implements domain.BoundaryFetcher over plain HTTP.
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a boundary document client.
func NewClient(cfg ClientConfig, metrics *observability.Metrics, logger *slog.Logger) *Client {
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	if !cfg.AllowPrivate {
		dialer.Control = refusePrivate
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			// No proxy: the dialer has to see the real destination.
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: cfg.Timeout,
				MaxIdleConns:        4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// refusePrivate runs after DNS resolution, so it sees the address actually dialed.
func refusePrivate(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if !publicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

func publicAddr(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsValid() &&
		!a.IsLoopback() &&
		!a.IsPrivate() &&
		!a.IsLinkLocalUnicast() &&
		!a.IsLinkLocalMulticast() &&
		!a.IsInterfaceLocalMulticast() &&
		!a.IsMulticast() &&
		!a.IsUnspecified()
}

// Fetch downloads the document at rawURL. Every failure is a *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.metrics.BoundaryFetches.WithLabelValues("rejected").Inc()
		return nil, &domain.FetchError{URL: rawURL, Err: ErrUnsupportedURL}
	}

	start := domain.Now()
	body, err := c.fetchWithRetry(ctx, u.String())
	c.metrics.BoundaryFetchDuration.Observe(domain.Since(start).Seconds())
	if errors.Is(err, ErrBlockedAddress) {
		c.metrics.BoundaryFetches.WithLabelValues("rejected").Inc()
		c.logger.Warn("boundary fetch refused", "url", rawURL, "error", err)
		return nil, &domain.FetchError{URL: rawURL, Err: ErrBlockedAddress}
	}
	if err != nil {
		c.metrics.BoundaryFetches.WithLabelValues("error").Inc()
		c.logger.Warn("boundary fetch failed", "url", rawURL, "error", err)
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}

	c.metrics.BoundaryFetches.WithLabelValues("success").Inc()
	c.logger.Debug("boundary fetched", "url", rawURL, "bytes", len(body))
	return body, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	backoff := c.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		body, err := c.doRequest(ctx, fullURL)
		if err == nil || attempt >= c.cfg.Retries || !retryable(err) {
			return body, err
		}
		c.logger.Debug("retrying boundary fetch", "url", fullURL, "attempt", attempt+1, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxRetryBackoff)
	}
}

// statusError is a non-200 response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// retryable reports whether another attempt could succeed: transport errors and 5xx responses.
func retryable(err error) bool {
	if errors.Is(err, ErrBlockedAddress) || errors.Is(err, ErrTooLarge) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBytes {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, c.cfg.MaxBytes)
	}
	return body, nil
}

// Options configures the fetcher stack built by New.
type Options struct {
	Timeout         time.Duration
	MaxBytes        int64
	Retries         int
	RetryBackoff    time.Duration
	AllowPrivate    bool
	CacheSize       int
	CacheTTL        time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// New builds the production fetcher: cache in front of a circuit breaker in front of the HTTP client.
func New(opts Options, metrics *observability.Metrics, logger *slog.Logger) *CachedFetcher {
	client := NewClient(ClientConfig{
		Timeout:      opts.Timeout,
		MaxBytes:     opts.MaxBytes,
		Retries:      opts.Retries,
		RetryBackoff: opts.RetryBackoff,
		AllowPrivate: opts.AllowPrivate,
	}, metrics, logger)
	breaker := NewBreakerFetcher(BreakerConfig{Failures: opts.BreakerFailures, Timeout: opts.BreakerTimeout}, client)
	return NewCachedFetcher(breaker, opts.CacheSize, opts.CacheTTL, metrics)
}
