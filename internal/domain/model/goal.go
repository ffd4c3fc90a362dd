// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GoalKind identifies how a goal's target is measured.
type GoalKind string

// Supported goal kinds. The set is closed; the ledger rejects anything else.
const (
	KindDistance GoalKind = "distance" // metres
	KindSteps    GoalKind = "steps"    // step count
)

// ParseKind validates a kind slug read from the ledger or config.
func ParseKind(s string) (GoalKind, error) {
	switch GoalKind(s) {
	case KindDistance:
		return KindDistance, nil
	case KindSteps:
		return KindSteps, nil
	default:
		return "", fmt.Errorf("unknown goal kind: %q", s)
	}
}

// Unit returns the native measurement unit for the kind.
func (k GoalKind) Unit() string {
	if k == KindDistance {
		return "metres"
	}
	return "steps"
}

func (k GoalKind) String() string { return string(k) }

// Goal mirrors the on-chain goal record. The ledger owns it; the pipeline
// only reads it and submits settlement transactions.
type Goal struct {
	ID               uint64
	Name             string
	Kind             GoalKind
	Target           float64 // native unit (metres or steps)
	MinStake         decimal.Decimal
	MaxStake         decimal.Decimal
	TotalStaked      decimal.Decimal
	StartTime        time.Time
	EntryDeadline    time.Time
	Deadline         time.Time // competition close
	Active           bool      // false once administratively cancelled
	Settled          bool
	ParticipantCount int
}

// Participant mirrors one user's entry in a goal on the ledger.
type Participant struct {
	Addr      string // wallet address
	Provider  string // fitness provider slug linked at entry time
	Stake     decimal.Decimal
	Achieved  float64 // native unit, as last verified
	Verified  bool
	Succeeded bool // set by the ledger at settlement
	Claimed   bool
}

// ReceiptEntry is one row of a batched receipt mint.
type ReceiptEntry struct {
	GoalID    uint64
	Addr      string
	Kind      GoalKind
	Target    float64
	Achieved  float64
	Stake     decimal.Decimal
	Payout    decimal.Decimal
	Succeeded bool
	StartTime time.Time
	EndTime   time.Time
	GoalName  string
}

// Receipt is the immutable proof-of-outcome record as read back from the ledger.
type Receipt struct {
	ReceiptEntry
	MintedAt time.Time
}

// ledgerScale converts native units to the ledger's milliunit fixed point.
var ledgerScale = decimal.NewFromInt(1000)

// ToLedgerUnits scales a native-unit value to the ledger's integer milliunits,
// rounding half up. Scaling is the pipeline's job; provider adapters always
// return native units.
func ToLedgerUnits(value float64) int64 {
	return decimal.NewFromFloat(value).Mul(ledgerScale).Round(0).IntPart()
}

// FromLedgerUnits converts a ledger milliunit value back to native units.
func FromLedgerUnits(v int64) float64 {
	f, _ := decimal.NewFromInt(v).Div(ledgerScale).Float64()
	return f
}
