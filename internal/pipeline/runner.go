package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/internal/domain/phase"
	"github.com/okian/sweatstake/internal/domain/track"
	"github.com/okian/sweatstake/pkg/logger"
	"github.com/okian/sweatstake/pkg/metrics"
)

// RunOnce executes one full pipeline invocation and returns its report.
//
// Only a failure to enumerate goals aborts the run; everything after that is
// recorded per goal or per participant and never stops the remaining goals.
// The invocation is bounded by the run budget; goals cut off mid-processing
// are picked up, state intact, by the next invocation.
func (s *Service) RunOnce(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.runBudget)
	defer cancel()

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	s.logger.Info(ctx, "pipeline run started", logger.String("run_id", report.RunID))

	goals, err := s.ledger.ListGoals(ctx)
	if err != nil {
		metrics.RecordRunFailed()
		metrics.RecordErrorByComponent("pipeline", "list_goals")
		return nil, fmt.Errorf("enumerate goals: %w", err)
	}
	report.GoalsSeen = len(goals)

	now := time.Now()
	pending := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if eligible(phase.Resolve(g, now)) {
			pending = append(pending, g)
		}
	}

	// The tracker is scoped to this run only. Cross-run idempotency comes from
	// re-reading ledger state before every write, never from memory.
	tracker := track.NewInMemoryTracker()
	pool := newGoalPool(s.goalConcurrency, func(ctx context.Context, g model.Goal) GoalReport {
		return s.processGoal(ctx, g, tracker)
	})

	for _, gr := range pool.run(ctx, pending) {
		// Settled goals with nothing left to do are fully processed; keep
		// them out of the report.
		if gr.Phase == phase.Settled.String() && gr.ReceiptsMinted == 0 && gr.ReceiptError == "" && gr.Err == "" {
			continue
		}
		metrics.RecordGoalProcessed()
		report.Goals = append(report.Goals, gr)
	}

	report.FinishedAt = time.Now()
	report.Duration = report.FinishedAt.Sub(report.StartedAt).String()
	metrics.RecordRun(float64(report.FinishedAt.Sub(report.StartedAt).Milliseconds()))
	metrics.UpdateStuckGoals(len(report.StuckGoals()))

	s.retain(report)
	return report, nil
}

// processGoal drives one goal through verification, settlement and receipt
// issuance on a single worker.
func (s *Service) processGoal(ctx context.Context, g model.Goal, tracker track.Tracker) GoalReport {
	p := phase.Resolve(g, time.Now())
	gr := GoalReport{
		GoalID:     g.ID,
		Name:       g.Name,
		Phase:      p.String(),
		Settlement: SettlementNotAttempted,
	}

	if p == phase.AwaitingSettlement {
		participants, err := s.verifyParticipants(ctx, g, tracker)
		if err != nil {
			// Ledger unreachable for this goal. Abort the goal, not the run.
			metrics.RecordErrorByComponent("pipeline", "verification")
			gr.Err = err.Error()
			return gr
		}
		gr.Participants = participants

		status, reason := s.settleGoal(ctx, g)
		gr.Settlement = status
		gr.SettlementReason = reason
		switch status {
		case SettlementBlocked:
			gr.Stuck = true
			s.logger.Warn(ctx, "goal stuck awaiting verification",
				logger.Uint64("goal_id", g.ID),
				logger.String("reason", reason),
			)
			return gr
		case SettlementError:
			metrics.RecordErrorByComponent("pipeline", "settlement")
			return gr
		}
	}

	minted, skipped, err := s.issueReceipts(ctx, g)
	gr.ReceiptsMinted = minted
	gr.ReceiptsSkipped = skipped
	if err != nil {
		metrics.RecordErrorByComponent("pipeline", "receipts")
		gr.ReceiptError = err.Error()
	}
	return gr
}
