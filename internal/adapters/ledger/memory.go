package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/sweatstake/internal/domain/model"
)

// MemoryLedger implements Client in process, enforcing the same state rules
// as the on-chain contract: duplicate verifications are rejected, settlement
// requires a fully verified participant set, receipts are minted at most once
// per (goal, participant) pair, and settlement fixes each participant's
// succeeded flag from achieved >= target. Used by the pipeline tests and the
// goal simulator.
type MemoryLedger struct {
	mu           sync.Mutex
	goals        map[uint64]*model.Goal
	participants map[uint64][]*model.Participant
	receipts     map[string]model.Receipt
	now          func() time.Time
	fault        func(op string, goalID uint64) error
}

// NewMemoryLedger creates an empty in-process ledger.
func NewMemoryLedger(opts ...MemoryOption) *MemoryLedger {
	m := &MemoryLedger{
		goals:        make(map[uint64]*model.Goal),
		participants: make(map[uint64][]*model.Participant),
		receipts:     make(map[string]model.Receipt),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func receiptKey(goalID uint64, addr string) string {
	return fmt.Sprintf("%d|%s", goalID, addr)
}

// AddGoal seeds a goal. Test/simulator setup only; the real ledger gets goals
// from an administrative path outside this service.
func (m *MemoryLedger) AddGoal(g model.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := g
	m.goals[g.ID] = &cp
}

// AddParticipant seeds a participant into a goal.
func (m *MemoryLedger) AddParticipant(goalID uint64, p model.Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := p
	m.participants[goalID] = append(m.participants[goalID], &cp)
	if g, ok := m.goals[goalID]; ok {
		g.ParticipantCount = len(m.participants[goalID])
		g.TotalStaked = g.TotalStaked.Add(p.Stake)
	}
}

func (m *MemoryLedger) check(op string, goalID uint64) error {
	if m.fault != nil {
		if err := m.fault(op, goalID); err != nil {
			return err
		}
	}
	return nil
}

// ListGoals returns every goal.
func (m *MemoryLedger) ListGoals(_ context.Context) ([]model.Goal, error) {
	if err := m.check("list_goals", 0); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Goal, 0, len(m.goals))
	for _, g := range m.goals {
		out = append(out, *g)
	}
	return out, nil
}

// GetGoal returns one goal.
func (m *MemoryLedger) GetGoal(_ context.Context, goalID uint64) (model.Goal, error) {
	if err := m.check("get_goal", goalID); err != nil {
		return model.Goal{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.goals[goalID]
	if !ok {
		return model.Goal{}, ErrNotFound
	}
	return *g, nil
}

// GetParticipants returns copies of a goal's participants.
func (m *MemoryLedger) GetParticipants(_ context.Context, goalID uint64) ([]model.Participant, error) {
	if err := m.check("get_participants", goalID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goalID]; !ok {
		return nil, ErrNotFound
	}
	ps := m.participants[goalID]
	out := make([]model.Participant, 0, len(ps))
	for _, p := range ps {
		out = append(out, *p)
	}
	return out, nil
}

// GetParticipant returns one participant's current state.
func (m *MemoryLedger) GetParticipant(_ context.Context, goalID uint64, addr string) (model.Participant, error) {
	if err := m.check("get_participant", goalID); err != nil {
		return model.Participant{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.findParticipant(goalID, addr)
	if p == nil {
		return model.Participant{}, ErrNotFound
	}
	return *p, nil
}

// HasReceipt reports receipt existence for the pair.
func (m *MemoryLedger) HasReceipt(_ context.Context, goalID uint64, addr string) (bool, error) {
	if err := m.check("has_receipt", goalID); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.receipts[receiptKey(goalID, addr)]
	return ok, nil
}

// SubmitVerification records an achieved value and marks the participant
// verified. Rejects duplicates the way the contract does.
func (m *MemoryLedger) SubmitVerification(_ context.Context, goalID uint64, addr string, achievedMilli int64) error {
	if err := m.check("submit_verification", goalID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.goals[goalID]
	if !ok {
		return ErrNotFound
	}
	if g.Settled {
		return fmt.Errorf("%w: goal %d", ErrAlreadySettled, goalID)
	}
	p := m.findParticipant(goalID, addr)
	if p == nil {
		return ErrNotFound
	}
	if p.Verified {
		return fmt.Errorf("%w: %s in goal %d", ErrAlreadyVerified, addr, goalID)
	}
	p.Achieved = model.FromLedgerUnits(achievedMilli)
	p.Verified = true
	return nil
}

// SubmitSettlement finalizes a goal once every participant is verified.
func (m *MemoryLedger) SubmitSettlement(_ context.Context, goalID uint64) error {
	if err := m.check("submit_settlement", goalID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.goals[goalID]
	if !ok {
		return ErrNotFound
	}
	if g.Settled {
		return fmt.Errorf("%w: goal %d", ErrAlreadySettled, goalID)
	}
	for _, p := range m.participants[goalID] {
		if !p.Verified {
			return fmt.Errorf("%w: participant %s unverified", ErrRejected, p.Addr)
		}
	}
	for _, p := range m.participants[goalID] {
		p.Succeeded = p.Achieved >= g.Target
	}
	g.Settled = true
	return nil
}

// MintReceipts mints the whole batch or nothing.
func (m *MemoryLedger) MintReceipts(_ context.Context, entries []model.ReceiptEntry) error {
	if err := m.check("mint_receipts", 0); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		g, ok := m.goals[e.GoalID]
		if !ok {
			return ErrNotFound
		}
		if !g.Settled {
			return fmt.Errorf("%w: goal %d", ErrNotSettled, e.GoalID)
		}
		if _, exists := m.receipts[receiptKey(e.GoalID, e.Addr)]; exists {
			return fmt.Errorf("%w: %s in goal %d", ErrReceiptExists, e.Addr, e.GoalID)
		}
	}
	minted := m.now()
	for _, e := range entries {
		m.receipts[receiptKey(e.GoalID, e.Addr)] = model.Receipt{ReceiptEntry: e, MintedAt: minted}
	}
	return nil
}

// ReceiptFor returns a minted receipt, if any. Inspection helper for tests
// and the simulator.
func (m *MemoryLedger) ReceiptFor(goalID uint64, addr string) (model.Receipt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.receipts[receiptKey(goalID, addr)]
	return r, ok
}

// ReceiptCount returns the number of receipts minted for a goal.
func (m *MemoryLedger) ReceiptCount(goalID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.receipts {
		if r.GoalID == goalID {
			n++
		}
	}
	return n
}

func (m *MemoryLedger) findParticipant(goalID uint64, addr string) *model.Participant {
	for _, p := range m.participants[goalID] {
		if p.Addr == addr {
			return p
		}
	}
	return nil
}
