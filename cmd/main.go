package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/sweatstake/internal/adapters/http/api"
	"github.com/okian/sweatstake/internal/adapters/http/swagger"
	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/adapters/providers"
	"github.com/okian/sweatstake/internal/config"
	"github.com/okian/sweatstake/internal/pipeline"
	"github.com/okian/sweatstake/pkg/logger"
	"github.com/okian/sweatstake/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Chain gateway client for all ledger reads and writes.
	gateway := ledger.NewGatewayClient(
		cfg.LedgerEndpoint,
		ledger.WithAuthToken(cfg.LedgerToken),
		ledger.WithTimeout(cfg.LedgerTimeout()),
	)

	// Fitness provider adapters, keyed by the provider slug participants
	// register with.
	registry := providers.NewRegistry(
		providers.NewFitbit(providers.StaticTokenSource(cfg.FitbitTokens), fitbitOptions(cfg)...),
		providers.NewStrava(providers.StaticTokenSource(cfg.StravaTokens), stravaOptions(cfg)...),
	)

	// Create and start the settlement pipeline with configuration options.
	svc, err := pipeline.NewService(
		gateway,
		registry,
		pipeline.WithLogger(loggerInstance),
		pipeline.WithGoalConcurrency(cfg.GoalConcurrency),
		pipeline.WithRunBudget(cfg.RunBudget()),
		pipeline.WithInterval(cfg.RunInterval()),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build pipeline: " + err.Error() + "\n")
		return
	}
	svc.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			loggerInstance.Error(ctx, "pipeline shutdown failed", logger.Error(err))
		}
	}()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register the API reference under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, gateway, svc, cfg.TriggerToken)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// fitbitOptions builds the Fitbit adapter options from configuration.
func fitbitOptions(cfg *config.Config) []providers.Option {
	opts := []providers.Option{
		providers.WithRateLimit(rate.Limit(cfg.ProviderRateLimit), cfg.ProviderBurst),
	}
	if cfg.FitbitBaseURL != "" {
		opts = append(opts, providers.WithBaseURL(cfg.FitbitBaseURL))
	}
	return opts
}

// stravaOptions builds the Strava adapter options from configuration.
func stravaOptions(cfg *config.Config) []providers.Option {
	opts := []providers.Option{
		providers.WithRateLimit(rate.Limit(cfg.ProviderRateLimit), cfg.ProviderBurst),
	}
	if cfg.StravaBaseURL != "" {
		opts = append(opts, providers.WithBaseURL(cfg.StravaBaseURL))
	}
	return opts
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval) // Update every 10 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *pipeline.Service) {
	ticker := time.NewTicker(serviceMetricsInterval) // Update every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *pipeline.Service) {
	// Get current stats from the pipeline
	stats := svc.GetStats()

	if stuck, ok := stats["goalsStuck"].(int); ok {
		metrics.UpdateStuckGoals(stuck)
	}

	if workers, ok := stats["goalConcurrency"].(int); ok {
		metrics.UpdateGoalConcurrency(workers)
	}
}
