// Package payout computes per-participant receipt payouts.
//
// Winners get their stake back; losers get zero. Loser-pool redistribution to
// winners is owned by the ledger contract's settlement arithmetic and is
// deliberately not duplicated here.
package payout

import (
	"github.com/shopspring/decimal"

	"github.com/okian/sweatstake/internal/domain/model"
)

// Compute returns the receipt payout for a participant of a settled goal.
func Compute(p model.Participant) decimal.Decimal {
	if p.Succeeded {
		return p.Stake
	}
	return decimal.Zero
}

// Succeeded reports whether an achieved value meets a goal target. The ledger
// sets Participant.Succeeded at settlement using the same rule; this is used
// for receipts of participants read before that write lands, and by the
// simulator's invariant checks.
func Succeeded(achieved, target float64) bool {
	return achieved >= target
}
