// Package providers contains the fitness provider adapters the pipeline uses
// to verify participants. Each adapter reads one provider's activity API over
// a goal's competition window and reports the total in the goal's native unit.
//
// Adapters never fail a batch. Any condition that prevents reading a subject's
// data, a revoked grant, a provider outage, an open circuit breaker, comes back
// as an Unavailable result so the caller can skip the participant and retry on
// a later invocation.
package providers

import (
	"context"
	"time"

	"github.com/okian/sweatstake/internal/domain/model"
)

// Result is the outcome of one verification read.
type Result struct {
	// Value is the total achieved over the window, in the provider's native
	// unit. Meaningful only when OK is true.
	Value float64

	// OK reports whether the provider returned a definitive total.
	OK bool

	// Reason explains an unavailable result.
	Reason string
}

// Achieved builds a definitive result.
func Achieved(value float64) Result {
	return Result{Value: value, OK: true}
}

// Unavailable builds a result for a subject whose data could not be read.
func Unavailable(reason string) Result {
	return Result{Reason: reason}
}

// Adapter verifies subjects against one fitness provider.
type Adapter interface {
	// Name returns the provider slug participants link at entry time.
	Name() string

	// Kind returns the goal kind this adapter can measure.
	Kind() model.GoalKind

	// Verify reads the subject's total over [windowStart, windowEnd]. A
	// cancelled context surfaces as an Unavailable result, not an error.
	Verify(ctx context.Context, subject string, windowStart, windowEnd time.Time) Result
}

// TokenSource supplies per-subject OAuth access tokens. The pipeline does not
// run the OAuth exchange itself; tokens arrive from configuration or an
// external token store. A missing token models a revoked grant.
type TokenSource interface {
	// AccessToken returns the subject's token. Returns ErrNoToken when the
	// subject holds no grant.
	AccessToken(ctx context.Context, subject string) (string, error)
}

// StaticTokenSource serves tokens from a fixed map, keyed by subject.
type StaticTokenSource map[string]string

// AccessToken implements TokenSource.
func (s StaticTokenSource) AccessToken(_ context.Context, subject string) (string, error) {
	tok, ok := s[subject]
	if !ok || tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}
