package goalsim

import (
	"context"
	"fmt"

	"github.com/okian/sweatstake/internal/domain/payout"
	"github.com/okian/sweatstake/pkg/logger"
)

// verifyInvariants checks the final ledger state after all passes:
//
//   - every settled goal has a fully verified participant set
//   - every participant's succeeded flag matches achieved >= target
//   - every settled goal holds exactly one receipt per participant
//   - receipt payouts follow the stake-back-or-zero rule
//   - no unsettled goal holds any receipt
func verifyInvariants(ctx context.Context, f *fixture, stats *Stats, verbose bool) error {
	logger.Get().Info(ctx, "verifying settlement invariants")

	for _, seeded := range f.goals {
		g, err := f.ledger.GetGoal(ctx, seeded.ID)
		if err != nil {
			return fmt.Errorf("read goal %d: %w", seeded.ID, err)
		}
		participants, err := f.ledger.GetParticipants(ctx, seeded.ID)
		if err != nil {
			return fmt.Errorf("read participants of goal %d: %w", seeded.ID, err)
		}

		if !g.Settled {
			stats.GoalsStuck++
			if f.ledger.ReceiptCount(g.ID) != 0 {
				stats.InvariantViolations++
				logger.Get().Error(ctx, "unsettled goal holds receipts", logger.Uint64("goalID", g.ID))
			}
			continue
		}
		stats.GoalsSettled++

		receipts := 0
		for _, p := range participants {
			if !p.Verified {
				stats.InvariantViolations++
				logger.Get().Error(ctx, "settled goal has unverified participant",
					logger.Uint64("goalID", g.ID),
					logger.String("addr", p.Addr),
				)
			}
			if p.Succeeded != payout.Succeeded(p.Achieved, g.Target) {
				stats.InvariantViolations++
				logger.Get().Error(ctx, "succeeded flag does not match achieved value",
					logger.Uint64("goalID", g.ID),
					logger.String("addr", p.Addr),
				)
			}

			r, ok := f.ledger.ReceiptFor(g.ID, p.Addr)
			if !ok {
				stats.InvariantViolations++
				logger.Get().Error(ctx, "missing receipt",
					logger.Uint64("goalID", g.ID),
					logger.String("addr", p.Addr),
				)
				continue
			}
			receipts++

			want := payout.Compute(p)
			if !r.Payout.Equal(want) {
				stats.InvariantViolations++
				logger.Get().Error(ctx, "receipt payout mismatch",
					logger.Uint64("goalID", g.ID),
					logger.String("addr", p.Addr),
					logger.String("want", want.String()),
					logger.String("got", r.Payout.String()),
				)
			}
		}

		if f.ledger.ReceiptCount(g.ID) != len(participants) {
			stats.InvariantViolations++
			logger.Get().Error(ctx, "receipt count mismatch",
				logger.Uint64("goalID", g.ID),
				logger.Int("participants", len(participants)),
				logger.Int("receipts", f.ledger.ReceiptCount(g.ID)),
			)
		}
		stats.ReceiptsMinted += receipts

		if verbose {
			logger.Get().Debug(ctx, "goal verified",
				logger.Uint64("goalID", g.ID),
				logger.Int("participants", len(participants)),
				logger.Int("receipts", receipts),
			)
		}
	}

	if stats.InvariantViolations > 0 {
		return fmt.Errorf("%d invariant violations", stats.InvariantViolations)
	}
	logger.Get().Info(ctx, "all invariants hold",
		logger.Int("settled", stats.GoalsSettled),
		logger.Int("stuck", stats.GoalsStuck),
	)
	return nil
}
