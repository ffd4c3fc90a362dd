package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/okian/sweatstake/pkg/metrics"
)

// Default provider client configuration constants.
const (
	// defaultTimeout bounds one provider API call.
	defaultTimeout = 15 * time.Second

	// defaultRateLimit caps requests per second against one provider. Both
	// supported providers throttle well above this at the app level.
	defaultRateLimit = rate.Limit(5)

	// defaultBurst allows short request bursts within the rate budget.
	defaultBurst = 5

	// breakerMinRequests and breakerFailureRatio open the breaker once a
	// provider fails most of a sample of calls.
	breakerMinRequests  = 5
	breakerFailureRatio = 0.6
)

// apiClient is the HTTP core shared by the provider adapters. It serializes
// access through a per-provider rate limiter and a circuit breaker so one
// provider outage cannot stall a whole verification pass. All requests are
// GETs, so tripping mid-call never leaves provider state half-written.
type apiClient struct {
	name    string
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func newAPIClient(name, baseURL string, opts ...Option) *apiClient {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.baseURL != "" {
		baseURL = cfg.baseURL
	}
	return &apiClient{
		name:    name,
		baseURL: baseURL,
		hc:      cfg.hc,
		limiter: rate.NewLimiter(cfg.rateLimit, cfg.burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: name,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= breakerMinRequests && ratio >= breakerFailureRatio
			},
			Timeout: cfg.breakerTimeout,
		}),
	}
}

// getJSON performs one authorized GET and decodes the response body into out.
func (c *apiClient) getJSON(ctx context.Context, path, token string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	start := time.Now()
	body, status, err := c.execute(ctx, path, token)
	metrics.RecordProviderRequest(c.name, statusLabel(status, err), float64(time.Since(start).Milliseconds()))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}

func (c *apiClient) execute(ctx context.Context, path, token string) ([]byte, int, error) {
	var status int
	body, err := c.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
		}
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s rejected the token", ErrNoToken, c.name)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %s returned status %d", ErrProviderUnavailable, c.name, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%s returned status %d", c.name, resp.StatusCode)
		}
		return raw, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, status, fmt.Errorf("%w: circuit open for %s", ErrProviderUnavailable, c.name)
		}
		return nil, status, err
	}
	return body.([]byte), status, nil
}

func statusLabel(status int, err error) string {
	if status != 0 {
		return strconv.Itoa(status)
	}
	if err != nil {
		return "error"
	}
	return "ok"
}
