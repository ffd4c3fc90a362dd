package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/sweatstake/internal/goalsim"
)

// Default configuration constants.
const (
	defaultNumGoals        = 50
	defaultMaxParticipants = 8
	defaultOutageRate      = 0.2
	defaultPasses          = 3
	defaultRunBudget       = 2 * time.Minute
	defaultSimTimeout      = 10 * time.Minute
)

func main() {
	var (
		numGoals        = flag.Int("goals", defaultNumGoals, "Number of goals to generate")
		maxParticipants = flag.Int("participants", defaultMaxParticipants, "Maximum participants per goal")
		outageRate      = flag.Float64("outage", defaultOutageRate, "Fraction of participants whose provider is down on the first pass")
		passes          = flag.Int("passes", defaultPasses, "Number of pipeline invocations to run")
		workers         = flag.Int("workers", runtime.NumCPU(), "Pipeline goal concurrency")
		logFile         = flag.String("log", "", "Log file for simulation output (default: goalsim_TIMESTAMP.log)")
		verbose         = flag.Bool("verbose", false, "Enable verbose logging")
		help            = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		goalsim.ShowHelp()
		return
	}

	// Setup logging
	if err := goalsim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	// Create simulation configuration
	config := &goalsim.Config{
		NumGoals:        *numGoals,
		MaxParticipants: *maxParticipants,
		OutageRate:      *outageRate,
		Passes:          *passes,
		GoalConcurrency: *workers,
		RunBudget:       defaultRunBudget,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	// Run the simulation
	if err := goalsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
