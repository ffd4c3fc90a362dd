package goalsim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/sweatstake/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "goalsim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the goal simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Sweatstake Goal Simulator
=========================

Runs the settlement pipeline against an in-process ledger seeded with random
goals and participants, then checks the settlement invariants.

Usage:
  go run cmd/goalsim/main.go [options]

Options:
  -goals int
        Number of goals to generate (default 50)
  -participants int
        Maximum participants per goal (default 8)
  -outage float
        Fraction of participants whose provider is down on the first pass (default 0.2)
  -passes int
        Number of pipeline invocations to run (default 3)
  -workers int
        Pipeline goal concurrency (default 4)
  -log string
        Log file for simulation output (default: goalsim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/goalsim/main.go

  # Stress the stuck-goal path
  go run cmd/goalsim/main.go -goals 200 -outage 0.5 -passes 5
`)
}
