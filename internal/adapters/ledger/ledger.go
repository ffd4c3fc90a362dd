// Package ledger defines the client interface to the on-chain goal ledger and
// its implementations.
//
// The ledger is the single authoritative, append-only store of goals,
// participants and receipts. The pipeline is a pure client: every write here
// blocks until the underlying transaction is included, and every write may be
// rejected if a concurrent invocation already performed it. Callers are
// expected to re-read state immediately before writing and to treat the
// "already done" sentinels as success.
package ledger

import (
	"context"

	"github.com/okian/sweatstake/internal/domain/model"
)

// Client provides read/write access to the goal ledger.
type Client interface {
	// ListGoals returns every goal known to the ledger.
	ListGoals(ctx context.Context) ([]model.Goal, error)

	// GetGoal returns one goal. Returns ErrNotFound for unknown ids.
	GetGoal(ctx context.Context, goalID uint64) (model.Goal, error)

	// GetParticipants returns the current participant set of a goal.
	GetParticipants(ctx context.Context, goalID uint64) ([]model.Participant, error)

	// GetParticipant returns one participant's fresh state.
	// Returns ErrNotFound if the address has no entry in the goal.
	GetParticipant(ctx context.Context, goalID uint64, addr string) (model.Participant, error)

	// HasReceipt reports whether a proof receipt already exists for the pair.
	HasReceipt(ctx context.Context, goalID uint64, addr string) (bool, error)

	// SubmitVerification records a participant's achieved value, in ledger
	// milliunits, and marks them verified. Blocks until inclusion.
	// Returns ErrAlreadyVerified if a verification was already recorded.
	SubmitVerification(ctx context.Context, goalID uint64, addr string, achievedMilli int64) error

	// SubmitSettlement finalizes a goal's outcomes. Blocks until inclusion.
	// Returns ErrAlreadySettled if the goal is already settled and ErrRejected
	// if any participant is still unverified.
	SubmitSettlement(ctx context.Context, goalID uint64) error

	// MintReceipts mints one receipt per entry in a single transaction.
	// Blocks until inclusion. Returns ErrReceiptExists if any entry's pair
	// already holds a receipt; no partial mint happens in that case.
	MintReceipts(ctx context.Context, entries []model.ReceiptEntry) error
}
