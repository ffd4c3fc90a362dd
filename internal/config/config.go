// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// TriggerToken authenticates the scheduler's POST /v1/run calls. Empty
	// disables the endpoint.
	TriggerToken string `koanf:"trigger_token"`

	// RunIntervalSec is the cadence of the internal run loop, in seconds.
	RunIntervalSec int `koanf:"run_interval_sec"`

	// RunBudgetSec bounds one pipeline invocation, in seconds.
	RunBudgetSec int `koanf:"run_budget_sec"`

	// GoalConcurrency bounds how many goals one run processes in parallel.
	GoalConcurrency int `koanf:"goal_concurrency"`

	// LedgerEndpoint is the chain gateway base URL.
	LedgerEndpoint string `koanf:"ledger_endpoint"`

	// LedgerToken authenticates against the chain gateway.
	LedgerToken string `koanf:"ledger_token"`

	// LedgerTimeoutSec bounds one gateway call including transaction
	// inclusion, in seconds.
	LedgerTimeoutSec int `koanf:"ledger_timeout_sec"`

	// ProviderRateLimit caps provider API requests per second.
	ProviderRateLimit float64 `koanf:"provider_rate_limit"`

	// ProviderBurst allows short provider request bursts.
	ProviderBurst int `koanf:"provider_burst"`

	// FitbitBaseURL and StravaBaseURL override the provider API endpoints,
	// mainly for tests and the simulator.
	FitbitBaseURL string `koanf:"fitbit_base_url"`
	StravaBaseURL string `koanf:"strava_base_url"`

	// FitbitTokens and StravaTokens map participant addresses to OAuth access
	// tokens. The token exchange itself runs outside this service.
	FitbitTokens map[string]string `koanf:"fitbit_tokens"`
	StravaTokens map[string]string `koanf:"strava_tokens"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		RunIntervalSec:    900,
		RunBudgetSec:      600,
		GoalConcurrency:   runtime.NumCPU(),
		LedgerEndpoint:    "http://localhost:8545",
		LedgerTimeoutSec:  30,
		ProviderRateLimit: 5,
		ProviderBurst:     5,
	}
}

// RunInterval returns the run loop cadence.
func (c *Config) RunInterval() time.Duration {
	return time.Duration(c.RunIntervalSec) * time.Second
}

// RunBudget returns the per-invocation time budget.
func (c *Config) RunBudget() time.Duration {
	return time.Duration(c.RunBudgetSec) * time.Second
}

// LedgerTimeout returns the per-gateway-call timeout.
func (c *Config) LedgerTimeout() time.Duration {
	return time.Duration(c.LedgerTimeoutSec) * time.Second
}
