package goalsim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/adapters/providers"
	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Constants for fixture generation ranges.
const (
	stepsTargetMin   = 5000.0
	stepsTargetRange = 15000.0

	distanceTargetMin   = 5000.0 // metres
	distanceTargetRange = 45000.0

	stakeMin   = 1.0
	stakeRange = 49.0

	// Achieved values spread around the target so both outcomes occur.
	achievedFactorMin   = 0.4
	achievedFactorRange = 1.2
)

// fixture is the generated world: a seeded ledger plus the achieved values the
// simulated providers will report. Participant addresses are unique across
// goals, so achieved values are keyed by address alone.
type fixture struct {
	ledger   *ledger.MemoryLedger
	achieved map[string]float64
	goals    []model.Goal
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// generateFixture seeds a memory ledger with closed goals and participants.
func generateFixture(ctx context.Context, config *Config, stats *Stats) *fixture {
	logger.Get().Info(ctx, "generating goals",
		logger.Int("numGoals", config.NumGoals),
		logger.Int("maxParticipants", config.MaxParticipants),
	)

	f := &fixture{
		ledger:   ledger.NewMemoryLedger(),
		achieved: make(map[string]float64),
	}
	now := time.Now()

	for i := 0; i < config.NumGoals; i++ {
		id := uint64(i + 1)
		kind := model.KindSteps
		provider := "fitbit"
		target := stepsTargetMin + getRandomFloat()*stepsTargetRange
		if randomInt(2) == 1 {
			kind = model.KindDistance
			provider = "strava"
			target = distanceTargetMin + getRandomFloat()*distanceTargetRange
		}

		g := model.Goal{
			ID:            id,
			Name:          fmt.Sprintf("goal-%d", id),
			Kind:          kind,
			Target:        target,
			MinStake:      decimal.NewFromInt(1),
			MaxStake:      decimal.NewFromInt(50),
			StartTime:     now.Add(-8 * 24 * time.Hour),
			EntryDeadline: now.Add(-7 * 24 * time.Hour),
			Deadline:      now.Add(-time.Hour),
			Active:        true,
		}
		f.ledger.AddGoal(g)
		f.goals = append(f.goals, g)

		count := int(randomInt(int64(config.MaxParticipants))) + 1
		for p := 0; p < count; p++ {
			addr := fmt.Sprintf("0x%04d%04d", id, p)
			stake := decimal.NewFromFloat(stakeMin + getRandomFloat()*stakeRange).Round(2)
			f.ledger.AddParticipant(id, model.Participant{
				Addr:     addr,
				Provider: provider,
				Stake:    stake,
			})
			factor := achievedFactorMin + getRandomFloat()*achievedFactorRange
			f.achieved[addr] = target * factor
			stats.ParticipantsGenerated++
		}
	}

	stats.GoalsGenerated = config.NumGoals
	logger.Get().Info(ctx, "fixture generated",
		logger.Int("goals", stats.GoalsGenerated),
		logger.Int("participants", stats.ParticipantsGenerated),
	)
	return f
}

// simAdapter replays the fixture's achieved values as one provider. Until
// recover is signalled, a deterministic slice of subjects reports an outage,
// exercising the stuck-goal path.
type simAdapter struct {
	name       string
	kind       model.GoalKind
	fixture    *fixture
	outageRate float64
	recovered  bool
}

func newSimAdapter(name string, kind model.GoalKind, f *fixture, outageRate float64) *simAdapter {
	return &simAdapter{name: name, kind: kind, fixture: f, outageRate: outageRate}
}

func (a *simAdapter) Name() string         { return a.name }
func (a *simAdapter) Kind() model.GoalKind { return a.kind }

// restore ends the simulated outage; subsequent passes see every subject.
func (a *simAdapter) restore() { a.recovered = true }

func (a *simAdapter) Verify(_ context.Context, subject string, _, _ time.Time) providers.Result {
	if !a.recovered && a.down(subject) {
		return providers.Unavailable("simulated outage")
	}
	value, ok := a.fixture.achieved[subject]
	if !ok {
		return providers.Unavailable("no data")
	}
	return providers.Achieved(value)
}

// down deterministically marks a fraction of subjects as in outage, keyed on
// the subject's bytes so the same subjects fail on every pass.
func (a *simAdapter) down(subject string) bool {
	if a.outageRate <= 0 {
		return false
	}
	var sum int
	for _, c := range subject {
		sum += int(c)
	}
	return float64(sum%100)/100.0 < a.outageRate
}
