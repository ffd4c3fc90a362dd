package goalsim

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/sweatstake/internal/adapters/providers"
	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/internal/pipeline"
	"github.com/okian/sweatstake/pkg/logger"
)

// Run executes a complete simulation: seed a ledger, drive the pipeline
// through the configured passes, lift the simulated provider outage before the
// final pass, and check the settlement invariants.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting goal simulation",
		logger.Int("goals", config.NumGoals),
		logger.Int("maxParticipants", config.MaxParticipants),
		logger.Float64("outageRate", config.OutageRate),
		logger.Int("passes", config.Passes),
		logger.Int("workers", config.GoalConcurrency),
	)

	f := generateFixture(ctx, config, stats)

	fitbit := newSimAdapter("fitbit", model.KindSteps, f, config.OutageRate)
	strava := newSimAdapter("strava", model.KindDistance, f, config.OutageRate)

	svc, err := pipeline.NewService(
		f.ledger,
		providers.NewRegistry(fitbit, strava),
		pipeline.WithGoalConcurrency(config.GoalConcurrency),
		pipeline.WithRunBudget(config.RunBudget),
	)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	for pass := 1; pass <= config.Passes; pass++ {
		if pass == config.Passes {
			// Last pass runs with every provider healthy so stuck goals can
			// recover, mirroring an outage that ends between invocations.
			fitbit.restore()
			strava.restore()
		}

		report, err := svc.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}
		stats.PassesRun++

		logger.Get().Info(ctx, "pass finished",
			logger.Int("pass", pass),
			logger.String("runID", report.RunID),
			logger.Int("goalsSeen", report.GoalsSeen),
			logger.Int("goalsProcessed", report.Processed()),
			logger.Int("goalsStuck", len(report.StuckGoals())),
		)
	}

	if err := verifyInvariants(ctx, f, stats, config.Verbose); err != nil {
		return fmt.Errorf("invariant verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("goalsGenerated", stats.GoalsGenerated),
		logger.Int("participantsGenerated", stats.ParticipantsGenerated),
		logger.Int("passesRun", stats.PassesRun),
		logger.Int("goalsSettled", stats.GoalsSettled),
		logger.Int("goalsStuck", stats.GoalsStuck),
		logger.Int("receiptsMinted", stats.ReceiptsMinted),
		logger.Int("invariantViolations", stats.InvariantViolations),
		logger.String("duration", stats.Duration.String()),
	)
}
