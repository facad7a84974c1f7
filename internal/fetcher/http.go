package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	Timeout    time.Duration // per-request timeout
	RatePerSec float64       // request rate limit; 0 disables limiting
	Retries    int           // retries after the first attempt
}

// HTTPFetcher downloads files over HTTP(S) with rate limiting and
// simple retry on transient failures.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retries int
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: limiter,
		retries: opts.Retries,
	}
}

// Download performs a rate-limited GET and returns the response body.
// Server errors (5xx) are retried with linear backoff; client errors are
// not.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "http: cancelled")
			}
			zap.L().Debug("http: retrying download", zap.String("url", rawURL), zap.Int("attempt", attempt))
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "http: rate limit wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "http: build request for %s", rawURL)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = eris.Wrapf(err, "http: get %s", rawURL)
			continue
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http: get %s: status %d", rawURL, resp.StatusCode)
		default:
			_ = resp.Body.Close()
			return nil, eris.Errorf("http: get %s: status %d", rawURL, resp.StatusCode)
		}
	}
	return nil, lastErr
}
