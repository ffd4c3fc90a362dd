package pipeline

import (
	"context"
	"errors"

	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/internal/domain/payout"
	"github.com/okian/sweatstake/pkg/logger"
	"github.com/okian/sweatstake/pkg/metrics"
)

// issueReceipts mints proof receipts for a settled goal's participants. The
// receipt existence check runs immediately before batch construction, never
// cached from an earlier phase, and the whole batch goes to the ledger in one
// transaction. A pair that already holds a receipt is skipped, which is what
// makes re-invocation and concurrent invocation safe.
func (s *Service) issueReceipts(ctx context.Context, g model.Goal) (minted, skipped int, err error) {
	fresh, err := s.ledger.GetGoal(ctx, g.ID)
	if err != nil {
		return 0, 0, err
	}
	if !fresh.Settled {
		return 0, 0, ledger.ErrNotSettled
	}

	participants, err := s.ledger.GetParticipants(ctx, g.ID)
	if err != nil {
		return 0, 0, err
	}

	batch := make([]model.ReceiptEntry, 0, len(participants))
	for _, p := range participants {
		exists, err := s.ledger.HasReceipt(ctx, g.ID, p.Addr)
		if err != nil {
			return 0, skipped, err
		}
		if exists {
			metrics.RecordReceiptSkipped()
			skipped++
			continue
		}
		batch = append(batch, model.ReceiptEntry{
			GoalID:    g.ID,
			Addr:      p.Addr,
			Kind:      fresh.Kind,
			Target:    fresh.Target,
			Achieved:  p.Achieved,
			Stake:     p.Stake,
			Payout:    payout.Compute(p),
			Succeeded: p.Succeeded,
			StartTime: fresh.StartTime,
			EndTime:   fresh.Deadline,
			GoalName:  fresh.Name,
		})
	}
	if len(batch) == 0 {
		return 0, skipped, nil
	}

	if err := s.ledger.MintReceipts(ctx, batch); err != nil {
		if errors.Is(err, ledger.ErrReceiptExists) {
			// A concurrent invocation minted between our existence check and
			// the batch write. Nothing was minted; the next invocation skips
			// the existing receipts and mints the remainder.
			s.logger.Warn(ctx, "receipt batch lost a mint race",
				logger.Uint64("goal_id", g.ID),
				logger.Int("batch_size", len(batch)),
			)
		}
		return 0, skipped, err
	}

	metrics.RecordReceiptsMinted(len(batch))
	s.logger.Info(ctx, "receipts minted",
		logger.Uint64("goal_id", g.ID),
		logger.Int("minted", len(batch)),
		logger.Int("skipped", skipped),
	)
	return len(batch), skipped, nil
}
