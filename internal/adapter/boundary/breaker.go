package boundary

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

// BreakerConfig controls when the breaker opens and how long it stays open.
type BreakerConfig struct {
	Failures uint32
	Timeout  time.Duration
}

// BreakerFetcher wraps a BoundaryFetcher with a circuit breaker so a dead
// host fails fast instead of stalling every render pass.
type BreakerFetcher struct {
	cb      *gobreaker.CircuitBreaker
	wrapped domain.BoundaryFetcher
}

// NewBreakerFetcher creates a breaker decorator around a fetcher.
func NewBreakerFetcher(cfg BreakerConfig, wrapped domain.BoundaryFetcher) *BreakerFetcher {
	settings := gobreaker.Settings{
		Name:        "boundary",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		// A URL the client refuses says nothing about the remote host.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnsupportedURL) || errors.Is(err, ErrBlockedAddress)
		},
	}
	return &BreakerFetcher{
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.wrapped.Fetch(ctx, url)
	})
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	body, _ := result.([]byte)
	return body, nil
}

// State reports the breaker state for logging and tests.
func (b *BreakerFetcher) State() gobreaker.State {
	return b.cb.State()
}
