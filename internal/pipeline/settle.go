package pipeline

import (
	"context"
	"errors"

	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/pkg/logger"
	"github.com/okian/sweatstake/pkg/metrics"
)

// settleGoal submits settlement for a goal once every participant verifies.
// Eligibility comes from a fresh participant read, not the orchestrator's
// in-run tally, because a concurrent invocation may have verified participants
// this run never saw. A goal with unverified participants is never settled; it
// stays in awaiting settlement until the data arrives or an operator cancels
// it.
func (s *Service) settleGoal(ctx context.Context, g model.Goal) (SettlementStatus, string) {
	fresh, err := s.ledger.GetGoal(ctx, g.ID)
	if err != nil {
		return SettlementError, err.Error()
	}
	if fresh.Settled {
		metrics.RecordSettlementDuplicate()
		return SettlementDuplicate, ""
	}

	participants, err := s.ledger.GetParticipants(ctx, g.ID)
	if err != nil {
		return SettlementError, err.Error()
	}
	for _, p := range participants {
		if !p.Verified {
			metrics.RecordSettlementBlocked()
			return SettlementBlocked, "participant " + p.Addr + " unverified"
		}
	}

	err = s.ledger.SubmitSettlement(ctx, g.ID)
	switch {
	case err == nil:
		metrics.RecordSettlementSubmitted()
		s.logger.Info(ctx, "goal settled", logger.Uint64("goal_id", g.ID))
		return SettlementSubmitted, ""
	case errors.Is(err, ledger.ErrAlreadySettled):
		// Race with a concurrent invocation. Treated as success.
		metrics.RecordSettlementDuplicate()
		return SettlementDuplicate, ""
	default:
		s.logger.Error(ctx, "settlement write failed",
			logger.Uint64("goal_id", g.ID),
			logger.Error(err),
		)
		return SettlementError, err.Error()
	}
}
