// Package phase computes a goal's lifecycle phase from its timestamps and flags.
package phase

import (
	"time"

	"github.com/okian/sweatstake/internal/domain/model"
)

// Phase is a goal's position in its lifecycle.
type Phase int

const (
	// Entry accepts new participants until the entry deadline.
	Entry Phase = iota
	// Competition runs from entry deadline to competition close.
	Competition
	// AwaitingSettlement means the window closed; the pipeline may process it.
	AwaitingSettlement
	// Settled is terminal; outcomes are final.
	Settled
	// Cancelled is terminal; the goal was administratively deactivated and is
	// never processed by the pipeline.
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Entry:
		return "entry"
	case Competition:
		return "competition"
	case AwaitingSettlement:
		return "awaiting_settlement"
	case Settled:
		return "settled"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further pipeline action can change the phase.
func (p Phase) Terminal() bool {
	return p == Settled || p == Cancelled
}

// Resolve computes the phase for a goal at the given instant. Pure; flag checks
// take precedence over time so a settled goal never regresses.
func Resolve(g model.Goal, now time.Time) Phase {
	switch {
	case g.Settled:
		return Settled
	case !g.Active:
		return Cancelled
	case !now.Before(g.Deadline):
		return AwaitingSettlement
	case !now.Before(g.EntryDeadline):
		return Competition
	default:
		return Entry
	}
}
