// Package pipeline drives goal settlement: it discovers goals whose
// competition window closed, verifies participants against their fitness
// providers, settles fully verified goals on the ledger and mints proof
// receipts exactly once per participant.
//
// There is no lock against concurrent invocations. Safety comes from
// idempotency: every ledger write is preceded by a fresh state read that turns
// the write into a safe no-op when another invocation already performed it.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/adapters/providers"
	"github.com/okian/sweatstake/pkg/logger"
)

// Default service configuration constants.
const (
	// defaultGoalConcurrency bounds how many goals one run processes in
	// parallel. All writes for one goal stay on one worker, preserving the
	// verification, settlement, minting order per goal.
	defaultGoalConcurrency = 4

	// defaultRunBudget bounds one invocation. A goal cut off mid-run is picked
	// up, state intact, by the next invocation.
	defaultRunBudget = 10 * time.Minute

	// defaultInterval is the cadence of the interval loop.
	defaultInterval = 15 * time.Minute
)

// Service runs the settlement pipeline.
type Service struct {
	ledger   ledger.Client
	registry *providers.Registry
	logger   logger.Logger

	goalConcurrency int
	runBudget       time.Duration
	interval        time.Duration

	mu     sync.RWMutex
	latest *Report

	// Interval loop control.
	stop chan struct{}
	done chan struct{}
}

// NewService creates a pipeline service with configuration options.
func NewService(client ledger.Client, registry *providers.Registry, opts ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, ErrNoLedger
	}
	if registry == nil {
		return nil, ErrNoRegistry
	}

	s := &Service{
		ledger:          client,
		registry:        registry,
		logger:          logger.Get().Named("pipeline"),
		goalConcurrency: defaultGoalConcurrency,
		runBudget:       defaultRunBudget,
		interval:        defaultInterval,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Latest returns the most recent run report, or nil before the first run.
func (s *Service) Latest() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest
}

func (s *Service) retain(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = r
}

// Start launches the interval loop. It runs once immediately, then on every
// tick, until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		s.runLogged(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.runLogged(ctx)
			}
		}
	}()
}

// Stop terminates the interval loop and waits for an in-flight run to finish
// or ctx to expire.
func (s *Service) Stop(ctx context.Context) error {
	close(s.stop)

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline shutdown timed out: %w", ctx.Err())
	}
}

func (s *Service) runLogged(ctx context.Context) {
	report, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error(ctx, "pipeline run failed", logger.Error(err))
		return
	}
	s.logger.Info(ctx, "pipeline run finished",
		logger.String("run_id", report.RunID),
		logger.Int("goals_seen", report.GoalsSeen),
		logger.Int("goals_processed", report.Processed()),
		logger.Int("goals_stuck", len(report.StuckGoals())),
		logger.String("duration", report.Duration),
	)
}
