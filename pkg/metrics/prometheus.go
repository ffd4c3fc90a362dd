// Package metrics provides Prometheus metrics for the SweatStake settlement pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the settlement pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Run Metrics - One sample per Runner invocation
	runsTotal       prometheus.Counter
	runsFailed      prometheus.Counter
	runDuration     prometheus.Histogram
	goalsProcessed  prometheus.Counter
	goalsStuck      prometheus.Gauge
	goalConcurrency prometheus.Gauge

	// Verification Metrics
	verificationsSubmitted prometheus.Counter
	verificationsSkipped   prometheus.Counter
	verificationErrors     *prometheus.CounterVec

	// Provider Metrics - External fitness API calls
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec

	// Ledger Metrics - Chain gateway calls, keyed by operation
	ledgerCalls   *prometheus.CounterVec
	ledgerErrors  *prometheus.CounterVec
	ledgerLatency *prometheus.HistogramVec

	// Settlement Metrics
	settlementsSubmitted prometheus.Counter
	settlementsDuplicate prometheus.Counter
	settlementsBlocked   prometheus.Counter

	// Receipt Metrics
	receiptsMinted   prometheus.Counter
	receiptsSkipped  prometheus.Counter
	receiptBatches   prometheus.Counter
	receiptBatchSize prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorsByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sweatstake",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// Gatherer exposes the custom registry for the HTTP /metrics endpoint.
func Gatherer() prometheus.Gatherer {
	return customRegistry
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Run metrics
	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of pipeline runs started",
	})

	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of pipeline runs aborted by a ledger outage",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of full pipeline run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.goalsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goals_processed_total",
		Help:      "Total number of goals processed across runs",
	})

	m.goalsStuck = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goals_stuck",
		Help:      "Goals awaiting settlement that could not be fully verified in the last run",
	})

	m.goalConcurrency = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goal_concurrency",
		Help:      "Configured number of concurrent goal processors",
	})

	// Verification metrics
	m.verificationsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "verifications_submitted_total",
		Help:      "Total number of verification records written to the ledger",
	})

	m.verificationsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "verifications_skipped_total",
		Help:      "Total number of participants skipped because they were already verified",
	})

	m.verificationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "verification_errors_total",
		Help:      "Total number of per-participant verification failures",
	}, []string{"provider"})

	// Provider metrics
	m.providerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_requests_total",
		Help:      "Total number of fitness provider API calls",
	}, []string{"provider", "status"})

	m.providerLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_latency_milliseconds",
		Help:      "Histogram of fitness provider API call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"provider"})

	// Ledger metrics
	m.ledgerCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_calls_total",
		Help:      "Total number of chain gateway calls by operation",
	}, []string{"op"})

	m.ledgerErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_errors_total",
		Help:      "Total number of failed chain gateway calls by operation",
	}, []string{"op"})

	m.ledgerLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_latency_milliseconds",
		Help:      "Histogram of chain gateway call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	// Settlement metrics
	m.settlementsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "settlements_submitted_total",
		Help:      "Total number of settlement transactions submitted",
	})

	m.settlementsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "settlements_duplicate_total",
		Help:      "Total number of settlements found already done by a concurrent run",
	})

	m.settlementsBlocked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "settlements_blocked_total",
		Help:      "Total number of settlement attempts blocked by unverified participants",
	})

	// Receipt metrics
	m.receiptsMinted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "receipts_minted_total",
		Help:      "Total number of proof-of-outcome receipts minted",
	})

	m.receiptsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "receipts_skipped_total",
		Help:      "Total number of receipts skipped because they already exist",
	})

	m.receiptBatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "receipt_batches_total",
		Help:      "Total number of receipt mint batches submitted",
	})

	m.receiptBatchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "receipt_batch_size",
		Help:      "Histogram of entries per receipt mint batch",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
	})

	// HTTP metrics
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	// Error metrics
	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component and type",
	}, []string{"component", "error_type"})

	// System metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordRun records a completed pipeline run.
func RecordRun(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.runsTotal.Inc()
	globalManager.runDuration.Observe(durationMs)
}

// RecordRunFailed records a run aborted by a ledger outage.
func RecordRunFailed() {
	if !globalManager.enabled {
		return
	}
	globalManager.runsFailed.Inc()
}

// RecordGoalProcessed increments the processed-goal counter.
func RecordGoalProcessed() {
	if !globalManager.enabled {
		return
	}
	globalManager.goalsProcessed.Inc()
}

// UpdateStuckGoals sets the stuck-goal gauge from the latest run.
func UpdateStuckGoals(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.goalsStuck.Set(float64(n))
}

// UpdateGoalConcurrency sets the configured goal concurrency gauge.
func UpdateGoalConcurrency(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.goalConcurrency.Set(float64(n))
}

// RecordVerificationSubmitted increments the submitted-verification counter.
func RecordVerificationSubmitted() {
	if !globalManager.enabled {
		return
	}
	globalManager.verificationsSubmitted.Inc()
}

// RecordVerificationSkipped increments the already-verified counter.
func RecordVerificationSkipped() {
	if !globalManager.enabled {
		return
	}
	globalManager.verificationsSkipped.Inc()
}

// RecordVerificationError increments the per-provider verification error counter.
func RecordVerificationError(provider string) {
	if !globalManager.enabled {
		return
	}
	globalManager.verificationErrors.WithLabelValues(provider).Inc()
}

// RecordProviderRequest records one provider API call and its latency.
func RecordProviderRequest(provider, status string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.providerRequests.WithLabelValues(provider, status).Inc()
	globalManager.providerLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordLedgerCall records one chain gateway call and its latency.
func RecordLedgerCall(op string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.ledgerCalls.WithLabelValues(op).Inc()
	globalManager.ledgerLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordLedgerError increments the per-operation ledger error counter.
func RecordLedgerError(op string) {
	if !globalManager.enabled {
		return
	}
	globalManager.ledgerErrors.WithLabelValues(op).Inc()
}

// RecordSettlementSubmitted increments the settlement counter.
func RecordSettlementSubmitted() {
	if !globalManager.enabled {
		return
	}
	globalManager.settlementsSubmitted.Inc()
}

// RecordSettlementDuplicate increments the duplicate-settlement counter.
func RecordSettlementDuplicate() {
	if !globalManager.enabled {
		return
	}
	globalManager.settlementsDuplicate.Inc()
}

// RecordSettlementBlocked increments the blocked-settlement counter.
func RecordSettlementBlocked() {
	if !globalManager.enabled {
		return
	}
	globalManager.settlementsBlocked.Inc()
}

// RecordReceiptsMinted records a submitted mint batch.
func RecordReceiptsMinted(batchSize int) {
	if !globalManager.enabled {
		return
	}
	globalManager.receiptsMinted.Add(float64(batchSize))
	globalManager.receiptBatches.Inc()
	globalManager.receiptBatchSize.Observe(float64(batchSize))
}

// RecordReceiptSkipped increments the existing-receipt counter.
func RecordReceiptSkipped() {
	if !globalManager.enabled {
		return
	}
	globalManager.receiptsSkipped.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// RecordErrorByComponent increments the detailed error counter.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated-memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}
