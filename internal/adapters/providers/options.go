package providers

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type options struct {
	baseURL        string
	hc             *http.Client
	rateLimit      rate.Limit
	burst          int
	breakerTimeout time.Duration
}

func defaultOptions() *options {
	return &options{
		hc:             &http.Client{},
		rateLimit:      defaultRateLimit,
		burst:          defaultBurst,
		breakerTimeout: 30 * time.Second,
	}
}

// Option applies a configuration option to a provider adapter.
type Option func(*options)

// WithBaseURL overrides the provider API base URL (tests point it at a local
// server).
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		if hc != nil {
			o.hc = hc
		}
	}
}

// WithRateLimit caps requests per second against the provider.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		if limit > 0 && burst > 0 {
			o.rateLimit = limit
			o.burst = burst
		}
	}
}

// WithBreakerTimeout sets how long an open circuit stays open before probing.
func WithBreakerTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.breakerTimeout = d
		}
	}
}
