// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/internal/domain/phase"
)

// GoalsHandler handles read-only goal queries. Every request reads through to
// the ledger; nothing is cached.
type GoalsHandler struct {
	goals GoalReader
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(goals GoalReader) *GoalsHandler {
	return &GoalsHandler{goals: goals}
}

// goalResponse mirrors the OpenAPI schema for goal reads.
type goalResponse struct {
	ID               uint64  `json:"id"`
	Name             string  `json:"name"`
	Kind             string  `json:"kind"`
	Unit             string  `json:"unit"`
	Target           float64 `json:"target"`
	MinStake         string  `json:"min_stake"`
	MaxStake         string  `json:"max_stake"`
	TotalStaked      string  `json:"total_staked"`
	StartTime        string  `json:"start_time"`
	EntryDeadline    string  `json:"entry_deadline"`
	Deadline         string  `json:"deadline"`
	Phase            string  `json:"phase"`
	ParticipantCount int     `json:"participant_count"`
}

type participantResponse struct {
	Addr      string  `json:"addr"`
	Provider  string  `json:"provider"`
	Stake     string  `json:"stake"`
	Achieved  float64 `json:"achieved"`
	Verified  bool    `json:"verified"`
	Succeeded bool    `json:"succeeded"`
}

func toGoalResponse(g model.Goal, now time.Time) goalResponse {
	return goalResponse{
		ID:               g.ID,
		Name:             g.Name,
		Kind:             g.Kind.String(),
		Unit:             g.Kind.Unit(),
		Target:           g.Target,
		MinStake:         g.MinStake.String(),
		MaxStake:         g.MaxStake.String(),
		TotalStaked:      g.TotalStaked.String(),
		StartTime:        g.StartTime.UTC().Format(time.RFC3339),
		EntryDeadline:    g.EntryDeadline.UTC().Format(time.RFC3339),
		Deadline:         g.Deadline.UTC().Format(time.RFC3339),
		Phase:            phase.Resolve(g, now).String(),
		ParticipantCount: g.ParticipantCount,
	}
}

// HandleListGoals handles GET /v1/goals requests.
func (h *GoalsHandler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	goals, err := h.goals.ListGoals(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "ledger_unavailable", err)
		return
	}

	now := time.Now()
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

// HandleGetGoal handles GET /v1/goals/{id} requests, including the goal's
// participant list.
func (h *GoalsHandler) HandleGetGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/v1/goals/")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_goal_id", ErrBadGoalID)
		return
	}

	g, err := h.goals.GetGoal(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "ledger_unavailable", err)
		return
	}

	participants, err := h.goals.GetParticipants(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "ledger_unavailable", err)
		return
	}
	ps := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		ps = append(ps, participantResponse{
			Addr:      p.Addr,
			Provider:  p.Provider,
			Stake:     p.Stake.String(),
			Achieved:  p.Achieved,
			Verified:  p.Verified,
			Succeeded: p.Succeeded,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goal":         toGoalResponse(g, time.Now()),
		"participants": ps,
	})
}
