package pipeline

import (
	"context"
	"sync"

	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/pkg/metrics"
)

// goalPool fans independent goals out to a bounded set of workers for one run.
// Each goal is handled start to finish by a single worker, so the per-goal
// write order (verifications, then settlement, then minting) is preserved
// while unrelated goals proceed in parallel.
type goalPool struct {
	workers int
	process func(ctx context.Context, g model.Goal) GoalReport
}

func newGoalPool(workers int, process func(ctx context.Context, g model.Goal) GoalReport) *goalPool {
	if workers < 1 {
		workers = 1
	}
	return &goalPool{workers: workers, process: process}
}

// run processes every goal and returns the per-goal reports. It drains the
// input even when ctx expires; workers observe cancellation through the
// per-call contexts inside process.
func (p *goalPool) run(ctx context.Context, goals []model.Goal) []GoalReport {
	in := make(chan model.Goal)
	out := make(chan GoalReport)

	metrics.UpdateGoalConcurrency(p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range in {
				out <- p.process(ctx, g)
			}
		}()
	}

	go func() {
		defer close(in)
		for _, g := range goals {
			in <- g
		}
	}()
	go func() {
		wg.Wait()
		close(out)
	}()

	reports := make([]GoalReport, 0, len(goals))
	for r := range out {
		reports = append(reports, r)
	}
	return reports
}
