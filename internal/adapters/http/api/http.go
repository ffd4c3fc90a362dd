// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/internal/pipeline"
)

// Runner exposes the pipeline operations the API needs. An interface bundle
// keeps the handler layer loosely coupled to the pipeline implementation.
type Runner interface {
	// RunOnce executes one pipeline invocation and returns its report.
	RunOnce(ctx context.Context) (*pipeline.Report, error)

	// Latest returns the most recent run report, or nil before the first run.
	Latest() *pipeline.Report
}

// GoalReader exposes the ledger reads the API serves.
type GoalReader interface {
	ListGoals(ctx context.Context) ([]model.Goal, error)
	GetGoal(ctx context.Context, goalID uint64) (model.Goal, error)
	GetParticipants(ctx context.Context, goalID uint64) ([]model.Participant, error)
}

// Server wires HTTP routes for the pipeline API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	runHandler     *RunHandler
	goalsHandler   *GoalsHandler
	metricsHandler http.Handler
}

// NewServer creates a new API server with all handlers. The trigger token
// guards the scheduler endpoint; an empty token rejects every trigger.
func NewServer(runner Runner, goals GoalReader, statsProvider StatsProvider, triggerToken string) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		runHandler:     NewRunHandler(runner, triggerToken),
		goalsHandler:   NewGoalsHandler(goals),
		metricsHandler: newMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/v1/run", MetricsMiddleware(s.runHandler.HandleTriggerRun, "run"))
	mux.HandleFunc("/v1/runs/latest", MetricsMiddleware(s.runHandler.HandleLatestRun, "runs_latest"))
	mux.HandleFunc("/v1/goals", MetricsMiddleware(s.goalsHandler.HandleListGoals, "goals"))
	mux.HandleFunc("/v1/goals/", MetricsMiddleware(s.goalsHandler.HandleGetGoal, "goal"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
