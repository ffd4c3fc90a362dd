package pipeline

import "errors"

// Sentinel kinds for pipeline errors.
var (
	// ErrNoLedger means the service was constructed without a ledger client.
	ErrNoLedger = errors.New("pipeline requires a ledger client")

	// ErrNoRegistry means the service was constructed without a provider
	// registry.
	ErrNoRegistry = errors.New("pipeline requires a provider registry")
)
