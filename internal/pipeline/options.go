package pipeline

import (
	"time"

	"github.com/okian/sweatstake/pkg/logger"
)

// ServiceOption applies a configuration option to the pipeline service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGoalConcurrency bounds how many goals are processed in parallel per run.
func WithGoalConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.goalConcurrency = n
		}
	}
}

// WithRunBudget bounds the wall-clock duration of one invocation.
func WithRunBudget(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.runBudget = d
		}
	}
}

// WithInterval sets the cadence of the interval loop.
func WithInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}
