package ledger

import (
	"net/http"
	"time"
)

// GatewayOption applies a configuration option to the gateway client.
type GatewayOption func(*GatewayClient)

// WithAuthToken sets the bearer token presented to the chain gateway.
func WithAuthToken(token string) GatewayOption {
	return func(c *GatewayClient) {
		c.token = token
	}
}

// WithTimeout bounds a single gateway call, including transaction inclusion
// for writes.
func WithTimeout(d time.Duration) GatewayOption {
	return func(c *GatewayClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client (tests inject httptest clients).
func WithHTTPClient(hc *http.Client) GatewayOption {
	return func(c *GatewayClient) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// MemoryOption applies a configuration option to the memory ledger.
type MemoryOption func(*MemoryLedger)

// WithClock sets the time source used for receipt mint timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryLedger) {
		if now != nil {
			m.now = now
		}
	}
}

// WithFault installs a fault hook consulted before every operation. Returning
// a non-nil error makes the operation fail with it. Used by tests to simulate
// partial gateway outages.
func WithFault(hook func(op string, goalID uint64) error) MemoryOption {
	return func(m *MemoryLedger) {
		m.fault = hook
	}
}
