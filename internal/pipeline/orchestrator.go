package pipeline

import (
	"context"
	"errors"

	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/internal/domain/track"
	"github.com/okian/sweatstake/pkg/logger"
	"github.com/okian/sweatstake/pkg/metrics"
)

// verifyParticipants runs the verification pass for one goal. Every
// participant's verified flag is re-read from the ledger immediately before
// acting, so a verification recorded by an earlier or concurrent run is
// detected there instead of trusting any cached view. Failures are isolated
// per participant; an errored participant is retried on the next invocation,
// never within this one.
func (s *Service) verifyParticipants(ctx context.Context, g model.Goal, tracker track.Tracker) ([]ParticipantReport, error) {
	participants, err := s.ledger.GetParticipants(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	reports := make([]ParticipantReport, 0, len(participants))
	for _, p := range participants {
		reports = append(reports, s.verifyOne(ctx, g, p, tracker))
	}
	return reports, nil
}

func (s *Service) verifyOne(ctx context.Context, g model.Goal, p model.Participant, tracker track.Tracker) ParticipantReport {
	report := ParticipantReport{Addr: p.Addr, Provider: p.Provider}

	// Fresh read. The listing above may predate a concurrent run's write.
	fresh, err := s.ledger.GetParticipant(ctx, g.ID, p.Addr)
	if err != nil {
		metrics.RecordVerificationError(p.Provider)
		report.Outcome = OutcomeError
		report.Reason = err.Error()
		return report
	}
	if fresh.Verified {
		metrics.RecordVerificationSkipped()
		report.Outcome = OutcomeAlreadyVerified
		report.Achieved = fresh.Achieved
		return report
	}

	key := track.Key(g.ID, p.Addr)
	if tracker.SeenAndRecord(ctx, key) {
		report.Outcome = OutcomeSkipped
		return report
	}

	adapter, err := s.registry.Resolve(p.Provider)
	if err != nil {
		tracker.Unrecord(ctx, key)
		metrics.RecordVerificationError(p.Provider)
		report.Outcome = OutcomeError
		report.Reason = err.Error()
		return report
	}

	result := adapter.Verify(ctx, p.Addr, g.StartTime, g.Deadline)
	if !result.OK {
		tracker.Unrecord(ctx, key)
		metrics.RecordVerificationError(p.Provider)
		s.logger.Warn(ctx, "verification unavailable",
			logger.Uint64("goal_id", g.ID),
			logger.String("addr", p.Addr),
			logger.String("provider", p.Provider),
			logger.String("reason", result.Reason),
		)
		report.Outcome = OutcomeError
		report.Reason = result.Reason
		return report
	}

	err = s.ledger.SubmitVerification(ctx, g.ID, p.Addr, model.ToLedgerUnits(result.Value))
	switch {
	case err == nil:
		metrics.RecordVerificationSubmitted()
		report.Outcome = OutcomeVerified
		report.Achieved = result.Value
	case errors.Is(err, ledger.ErrAlreadyVerified):
		// A concurrent invocation won the race. Informational, not an error.
		metrics.RecordVerificationSkipped()
		report.Outcome = OutcomeAlreadyVerified
		report.Achieved = result.Value
	default:
		tracker.Unrecord(ctx, key)
		metrics.RecordVerificationError(p.Provider)
		s.logger.Error(ctx, "verification write failed",
			logger.Uint64("goal_id", g.ID),
			logger.String("addr", p.Addr),
			logger.Error(err),
		)
		report.Outcome = OutcomeError
		report.Reason = err.Error()
	}
	return report
}
