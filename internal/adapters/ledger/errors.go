package ledger

import "errors"

// Sentinel kinds for ledger errors.
var (
	// ErrNotFound means the goal or participant does not exist on the ledger.
	ErrNotFound = errors.New("not found on ledger")

	// ErrAlreadyVerified means a verification record already exists for the
	// (goal, participant) pair. Safe to treat as success.
	ErrAlreadyVerified = errors.New("participant already verified")

	// ErrAlreadySettled means the goal was settled, possibly by a concurrent
	// invocation. Safe to treat as success.
	ErrAlreadySettled = errors.New("goal already settled")

	// ErrNotSettled means an operation requires a settled goal.
	ErrNotSettled = errors.New("goal not settled")

	// ErrReceiptExists means a receipt is already minted for the pair.
	ErrReceiptExists = errors.New("receipt already minted")

	// ErrRejected means the contract refused the write for a state reason
	// other than the specific sentinels above.
	ErrRejected = errors.New("write rejected by ledger")

	// ErrUnavailable means the chain gateway could not be reached or failed
	// internally; the true ledger state is unknown.
	ErrUnavailable = errors.New("ledger unavailable")
)
