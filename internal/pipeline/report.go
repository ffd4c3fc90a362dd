package pipeline

import (
	"time"

	"github.com/okian/sweatstake/internal/domain/phase"
)

// ParticipantOutcome classifies what a run did for one participant.
type ParticipantOutcome string

// Participant outcomes.
const (
	// OutcomeVerified means this run submitted the verification.
	OutcomeVerified ParticipantOutcome = "verified"

	// OutcomeAlreadyVerified means the ledger already held a verification,
	// recorded by an earlier run or a concurrent one.
	OutcomeAlreadyVerified ParticipantOutcome = "already_verified"

	// OutcomeError means the provider or the ledger write failed; the
	// participant is retried on the next invocation.
	OutcomeError ParticipantOutcome = "error"

	// OutcomeSkipped means another worker of this run already handled the
	// participant.
	OutcomeSkipped ParticipantOutcome = "skipped"
)

// SettlementStatus classifies the settlement step of one goal.
type SettlementStatus string

// Settlement statuses.
const (
	// SettlementSubmitted means this run settled the goal.
	SettlementSubmitted SettlementStatus = "settled"

	// SettlementDuplicate means the goal was already settled, possibly by a
	// concurrent run. Treated as success.
	SettlementDuplicate SettlementStatus = "already_settled"

	// SettlementBlocked means at least one participant is still unverified.
	// The goal stays in awaiting settlement and is retried indefinitely.
	SettlementBlocked SettlementStatus = "blocked"

	// SettlementError means the settlement write failed.
	SettlementError SettlementStatus = "error"

	// SettlementNotAttempted means the goal never reached the settlement step
	// this run.
	SettlementNotAttempted SettlementStatus = "not_attempted"
)

// ParticipantReport is one participant's outcome within a run.
type ParticipantReport struct {
	Addr     string             `json:"addr"`
	Provider string             `json:"provider"`
	Outcome  ParticipantOutcome `json:"outcome"`
	Achieved float64            `json:"achieved,omitempty"`
	Reason   string             `json:"reason,omitempty"`
}

// GoalReport aggregates one goal's processing within a run.
type GoalReport struct {
	GoalID           uint64              `json:"goal_id"`
	Name             string              `json:"name"`
	Phase            string              `json:"phase"`
	Participants     []ParticipantReport `json:"participants,omitempty"`
	Settlement       SettlementStatus    `json:"settlement"`
	SettlementReason string              `json:"settlement_reason,omitempty"`
	ReceiptsMinted   int                 `json:"receipts_minted"`
	ReceiptsSkipped  int                 `json:"receipts_skipped"`
	ReceiptError     string              `json:"receipt_error,omitempty"`

	// Stuck warns that the goal cannot settle until a failing participant
	// verifies or an operator cancels the goal.
	Stuck bool `json:"stuck,omitempty"`

	// Err records a goal-fatal failure, such as the ledger being unreachable
	// while reading the participant set.
	Err string `json:"error,omitempty"`
}

// Report summarizes one pipeline invocation. It lives in memory only; the
// latest report is retained for the HTTP API and otherwise exists for logging.
type Report struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Duration   string       `json:"duration"`
	GoalsSeen  int          `json:"goals_seen"`
	Goals      []GoalReport `json:"goals,omitempty"`
}

// Processed returns the number of goals this run acted on.
func (r *Report) Processed() int {
	return len(r.Goals)
}

// StuckGoals returns the ids of goals flagged stuck this run.
func (r *Report) StuckGoals() []uint64 {
	var ids []uint64
	for _, g := range r.Goals {
		if g.Stuck {
			ids = append(ids, g.GoalID)
		}
	}
	return ids
}

// eligible reports whether a goal in the given phase needs processing this run.
// Awaiting-settlement goals run the full chain; settled goals may still owe
// receipts from an interrupted earlier run.
func eligible(p phase.Phase) bool {
	return p == phase.AwaitingSettlement || p == phase.Settled
}
