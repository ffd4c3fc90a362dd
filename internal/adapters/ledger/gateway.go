package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/pkg/metrics"
)

// Default gateway configuration constants.
const (
	// defaultTimeout bounds one call including transaction inclusion; chain
	// writes routinely take several seconds.
	defaultTimeout = 30 * time.Second
)

// GatewayClient implements Client against the chain gateway's JSON API. The
// gateway signs and submits transactions on the pipeline's behalf and does not
// respond to a write until the transaction is included, so every method here
// is synchronous. The client performs no retries; retrying is the pipeline's
// cross-invocation concern.
type GatewayClient struct {
	baseURL string
	token   string
	timeout time.Duration
	hc      *http.Client
}

// NewGatewayClient creates a gateway client for the given base URL.
func NewGatewayClient(baseURL string, opts ...GatewayOption) *GatewayClient {
	c := &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		hc:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire shapes. Stake and payout amounts travel as decimal strings; achieved
// values travel in ledger milliunits.
type goalJSON struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	Kind             string `json:"kind"`
	TargetMilli      int64  `json:"target_milli"`
	MinStake         string `json:"min_stake"`
	MaxStake         string `json:"max_stake"`
	TotalStaked      string `json:"total_staked"`
	StartTime        string `json:"start_time"`
	EntryDeadline    string `json:"entry_deadline"`
	Deadline         string `json:"deadline"`
	Active           bool   `json:"active"`
	Settled          bool   `json:"settled"`
	ParticipantCount int    `json:"participant_count"`
}

type participantJSON struct {
	Addr          string `json:"addr"`
	Provider      string `json:"provider"`
	Stake         string `json:"stake"`
	AchievedMilli int64  `json:"achieved_milli"`
	Verified      bool   `json:"verified"`
	Succeeded     bool   `json:"succeeded"`
	Claimed       bool   `json:"claimed"`
}

type receiptEntryJSON struct {
	GoalID        uint64 `json:"goal_id"`
	Addr          string `json:"addr"`
	Kind          string `json:"kind"`
	TargetMilli   int64  `json:"target_milli"`
	AchievedMilli int64  `json:"achieved_milli"`
	Stake         string `json:"stake"`
	Payout        string `json:"payout"`
	Succeeded     bool   `json:"succeeded"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	GoalName      string `json:"goal_name"`
}

type errorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListGoals returns every goal known to the ledger.
func (c *GatewayClient) ListGoals(ctx context.Context) ([]model.Goal, error) {
	var out struct {
		Goals []goalJSON `json:"goals"`
	}
	if err := c.call(ctx, "list_goals", http.MethodGet, "/v1/goals", nil, &out); err != nil {
		return nil, err
	}
	goals := make([]model.Goal, 0, len(out.Goals))
	for _, gj := range out.Goals {
		g, err := gj.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode goal %d: %w", gj.ID, err)
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// GetGoal returns one goal by id.
func (c *GatewayClient) GetGoal(ctx context.Context, goalID uint64) (model.Goal, error) {
	var gj goalJSON
	if err := c.call(ctx, "get_goal", http.MethodGet, fmt.Sprintf("/v1/goals/%d", goalID), nil, &gj); err != nil {
		return model.Goal{}, err
	}
	g, err := gj.toModel()
	if err != nil {
		return model.Goal{}, fmt.Errorf("decode goal %d: %w", goalID, err)
	}
	return g, nil
}

// GetParticipants returns the participant set of a goal.
func (c *GatewayClient) GetParticipants(ctx context.Context, goalID uint64) ([]model.Participant, error) {
	var out struct {
		Participants []participantJSON `json:"participants"`
	}
	path := fmt.Sprintf("/v1/goals/%d/participants", goalID)
	if err := c.call(ctx, "get_participants", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	ps := make([]model.Participant, 0, len(out.Participants))
	for _, pj := range out.Participants {
		p, err := pj.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode participant %s: %w", pj.Addr, err)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// GetParticipant returns one participant's fresh state.
func (c *GatewayClient) GetParticipant(ctx context.Context, goalID uint64, addr string) (model.Participant, error) {
	var pj participantJSON
	path := fmt.Sprintf("/v1/goals/%d/participants/%s", goalID, addr)
	if err := c.call(ctx, "get_participant", http.MethodGet, path, nil, &pj); err != nil {
		return model.Participant{}, err
	}
	p, err := pj.toModel()
	if err != nil {
		return model.Participant{}, fmt.Errorf("decode participant %s: %w", addr, err)
	}
	return p, nil
}

// HasReceipt reports whether a receipt exists for the pair.
func (c *GatewayClient) HasReceipt(ctx context.Context, goalID uint64, addr string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	path := fmt.Sprintf("/v1/goals/%d/receipts/%s", goalID, addr)
	if err := c.call(ctx, "has_receipt", http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// SubmitVerification records a participant's achieved value.
func (c *GatewayClient) SubmitVerification(ctx context.Context, goalID uint64, addr string, achievedMilli int64) error {
	body := map[string]any{"addr": addr, "achieved_milli": achievedMilli}
	path := fmt.Sprintf("/v1/goals/%d/verify", goalID)
	return c.call(ctx, "submit_verification", http.MethodPost, path, body, nil)
}

// SubmitSettlement finalizes a goal.
func (c *GatewayClient) SubmitSettlement(ctx context.Context, goalID uint64) error {
	path := fmt.Sprintf("/v1/goals/%d/settle", goalID)
	return c.call(ctx, "submit_settlement", http.MethodPost, path, nil, nil)
}

// MintReceipts mints one receipt per entry in a single transaction.
func (c *GatewayClient) MintReceipts(ctx context.Context, entries []model.ReceiptEntry) error {
	ejs := make([]receiptEntryJSON, 0, len(entries))
	for _, e := range entries {
		ejs = append(ejs, receiptEntryJSON{
			GoalID:        e.GoalID,
			Addr:          e.Addr,
			Kind:          e.Kind.String(),
			TargetMilli:   model.ToLedgerUnits(e.Target),
			AchievedMilli: model.ToLedgerUnits(e.Achieved),
			Stake:         e.Stake.String(),
			Payout:        e.Payout.String(),
			Succeeded:     e.Succeeded,
			StartTime:     e.StartTime.UTC().Format(time.RFC3339),
			EndTime:       e.EndTime.UTC().Format(time.RFC3339),
			GoalName:      e.GoalName,
		})
	}
	body := map[string]any{"entries": ejs}
	return c.call(ctx, "mint_receipts", http.MethodPost, "/v1/receipts/mint", body, nil)
}

// call performs one gateway request, mapping HTTP failures to sentinels and
// recording ledger metrics.
func (c *GatewayClient) call(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.do(ctx, method, path, body, out)
	metrics.RecordLedgerCall(op, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLedgerError(op)
	}
	return err
}

func (c *GatewayClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	var ej errorJSON
	_ = json.NewDecoder(resp.Body).Decode(&ej)
	return mapGatewayError(resp.StatusCode, ej)
}

// mapGatewayError translates a gateway error body to a sentinel. The code
// field wins over the HTTP status so state rejections survive proxies that
// rewrite statuses.
func mapGatewayError(status int, ej errorJSON) error {
	switch ej.Code {
	case "not_found":
		return fmt.Errorf("%w: %s", ErrNotFound, ej.Message)
	case "already_verified":
		return fmt.Errorf("%w: %s", ErrAlreadyVerified, ej.Message)
	case "already_settled":
		return fmt.Errorf("%w: %s", ErrAlreadySettled, ej.Message)
	case "not_settled":
		return fmt.Errorf("%w: %s", ErrNotSettled, ej.Message)
	case "receipt_exists":
		return fmt.Errorf("%w: %s", ErrReceiptExists, ej.Message)
	}
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, status, ej.Message)
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}
}

func (gj goalJSON) toModel() (model.Goal, error) {
	kind, err := model.ParseKind(gj.Kind)
	if err != nil {
		return model.Goal{}, err
	}
	minStake, err := decimal.NewFromString(gj.MinStake)
	if err != nil {
		return model.Goal{}, fmt.Errorf("min_stake: %w", err)
	}
	maxStake, err := decimal.NewFromString(gj.MaxStake)
	if err != nil {
		return model.Goal{}, fmt.Errorf("max_stake: %w", err)
	}
	total, err := decimal.NewFromString(gj.TotalStaked)
	if err != nil {
		return model.Goal{}, fmt.Errorf("total_staked: %w", err)
	}
	start, err := time.Parse(time.RFC3339, gj.StartTime)
	if err != nil {
		return model.Goal{}, fmt.Errorf("start_time: %w", err)
	}
	entry, err := time.Parse(time.RFC3339, gj.EntryDeadline)
	if err != nil {
		return model.Goal{}, fmt.Errorf("entry_deadline: %w", err)
	}
	deadline, err := time.Parse(time.RFC3339, gj.Deadline)
	if err != nil {
		return model.Goal{}, fmt.Errorf("deadline: %w", err)
	}
	return model.Goal{
		ID:               gj.ID,
		Name:             gj.Name,
		Kind:             kind,
		Target:           model.FromLedgerUnits(gj.TargetMilli),
		MinStake:         minStake,
		MaxStake:         maxStake,
		TotalStaked:      total,
		StartTime:        start,
		EntryDeadline:    entry,
		Deadline:         deadline,
		Active:           gj.Active,
		Settled:          gj.Settled,
		ParticipantCount: gj.ParticipantCount,
	}, nil
}

func (pj participantJSON) toModel() (model.Participant, error) {
	stake, err := decimal.NewFromString(pj.Stake)
	if err != nil {
		return model.Participant{}, fmt.Errorf("stake: %w", err)
	}
	return model.Participant{
		Addr:      pj.Addr,
		Provider:  pj.Provider,
		Stake:     stake,
		Achieved:  model.FromLedgerUnits(pj.AchievedMilli),
		Verified:  pj.Verified,
		Succeeded: pj.Succeeded,
		Claimed:   pj.Claimed,
	}, nil
}
