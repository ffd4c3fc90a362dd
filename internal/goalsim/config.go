package goalsim

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	NumGoals        int           // Number of goals to generate
	MaxParticipants int           // Upper bound on participants per goal
	OutageRate      float64       // Fraction of participants whose provider is down on the first pass
	Passes          int           // Number of pipeline invocations to run
	GoalConcurrency int           // Pipeline worker count
	RunBudget       time.Duration // Per-invocation time budget
	LogFile         string        // Log file for simulation output
	Verbose         bool          // Enable verbose logging
}

// Stats holds simulation statistics.
type Stats struct {
	GoalsGenerated        int
	ParticipantsGenerated int
	PassesRun             int
	GoalsSettled          int
	GoalsStuck            int
	ReceiptsMinted        int
	InvariantViolations   int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
