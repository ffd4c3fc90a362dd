package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/sweatstake/internal/domain/model"
)

// Fitbit API constants.
const (
	fitbitName    = "fitbit"
	fitbitBaseURL = "https://api.fitbit.com"

	// fitbitPageSize is the activity log page size; 100 is the API maximum.
	fitbitPageSize = 100

	// fitbitManualLog marks activities typed in by hand. Only device-sourced
	// entries count toward a goal.
	fitbitManualLog = "manual"
)

// Fitbit verifies step goals against the Fitbit activity log API.
type Fitbit struct {
	tokens TokenSource
	client *apiClient
}

// NewFitbit creates a Fitbit adapter.
func NewFitbit(tokens TokenSource, opts ...Option) *Fitbit {
	return &Fitbit{
		tokens: tokens,
		client: newAPIClient(fitbitName, fitbitBaseURL, opts...),
	}
}

// Name implements Adapter.
func (f *Fitbit) Name() string { return fitbitName }

// Kind implements Adapter.
func (f *Fitbit) Kind() model.GoalKind { return model.KindSteps }

type fitbitActivity struct {
	LogType   string    `json:"logType"`
	Steps     int64     `json:"steps"`
	StartTime time.Time `json:"startTime"`
}

type fitbitActivityPage struct {
	Activities []fitbitActivity `json:"activities"`
}

// Verify sums device-sourced steps logged inside the window. Manual log
// entries are excluded.
func (f *Fitbit) Verify(ctx context.Context, subject string, windowStart, windowEnd time.Time) Result {
	token, err := f.tokens.AccessToken(ctx, subject)
	if err != nil {
		return Unavailable("no token")
	}

	var total int64
	for offset := 0; ; offset += fitbitPageSize {
		q := url.Values{}
		q.Set("afterDate", windowStart.UTC().Format("2006-01-02"))
		q.Set("sort", "asc")
		q.Set("offset", fmt.Sprint(offset))
		q.Set("limit", fmt.Sprint(fitbitPageSize))

		var page fitbitActivityPage
		if err := f.client.getJSON(ctx, "/1/user/-/activities/list.json?"+q.Encode(), token, &page); err != nil {
			return Unavailable(err.Error())
		}

		done := len(page.Activities) < fitbitPageSize
		for _, a := range page.Activities {
			if a.StartTime.After(windowEnd) {
				done = true
				break
			}
			if a.StartTime.Before(windowStart) || a.LogType == fitbitManualLog {
				continue
			}
			total += a.Steps
		}
		if done {
			return Achieved(float64(total))
		}
	}
}
