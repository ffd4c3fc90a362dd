// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/sweatstake/internal/adapters/ledger"
)

// RunHandler handles scheduler trigger and run report requests.
type RunHandler struct {
	runner Runner
	token  string
}

// NewRunHandler creates a new run handler.
func NewRunHandler(runner Runner, token string) *RunHandler {
	return &RunHandler{runner: runner, token: token}
}

// HandleTriggerRun handles POST /v1/run requests from the external scheduler.
// The call is synchronous: it returns once the invocation finishes or its run
// budget expires, with the run report as the body.
func (h *RunHandler) HandleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	report, err := h.runner.RunOnce(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ledger.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "run_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleLatestRun handles GET /v1/runs/latest requests.
func (h *RunHandler) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report := h.runner.Latest()
	if report == nil {
		writeError(w, http.StatusNotFound, "no_report", ErrNoReport)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// authorized checks the bearer token in constant time. An unconfigured token
// rejects every trigger rather than opening the endpoint.
func (h *RunHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.token)) == 1
}
