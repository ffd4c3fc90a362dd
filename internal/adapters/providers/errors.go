package providers

import "errors"

// Sentinel kinds for provider errors.
var (
	// ErrNoToken means the subject holds no access grant for the provider.
	ErrNoToken = errors.New("no access token for subject")

	// ErrProviderUnavailable means the provider API could not serve the
	// request (outage, rate limiting or an open circuit breaker).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrUnknownProvider means no adapter is registered under the slug.
	ErrUnknownProvider = errors.New("unknown provider")
)
