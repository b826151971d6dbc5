package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/use-agent/gleaner/models"
)

// Fetcher issues exactly one GET per call through an Engine, with a
// timeout and a rotated header profile. It never retries.
type Fetcher struct {
	engine   Engine
	profiles ProfileProvider
	timeout  time.Duration
	calls    atomic.Uint64
}

// NewFetcher creates a Fetcher. A nil provider uses DefaultProfiles with seed 0.
func NewFetcher(engine Engine, profiles ProfileProvider, timeout time.Duration) *Fetcher {
	if profiles == nil {
		profiles = NewSeededProfiles(0, nil)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{engine: engine, profiles: profiles, timeout: timeout}
}

// Timeout returns the per-fetch deadline.
func (f *Fetcher) Timeout() time.Duration { return f.timeout }

// Fetch retrieves rawURL. Failures before a response is received are
// returned as a *models.ScrapeError with code TRANSPORT_ERROR; a URL that
// cannot be requested at all yields INVALID_INPUT.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	profile := f.profiles.Profile(f.calls.Add(1))

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := f.engine.Fetch(ctx, &FetchRequest{
		URL:     rawURL,
		Headers: profile.Headers,
		Timeout: f.timeout,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, models.NewScrapeError(models.ErrCodeTransport,
				fmt.Sprintf("request timed out after %s", f.timeout), err)
		}
		return nil, models.NewScrapeError(models.ErrCodeTransport, "request failed", err)
	}
	return result, nil
}

// validateURL rejects URLs no HTTP client could request.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "invalid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("invalid URL %q: no http or https scheme supplied", rawURL), nil)
	}
	if u.Host == "" {
		return models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("invalid URL %q: no host supplied", rawURL), nil)
	}
	return nil
}
