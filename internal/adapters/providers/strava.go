package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/sweatstake/internal/domain/model"
)

// Strava API constants.
const (
	stravaName    = "strava"
	stravaBaseURL = "https://www.strava.com"

	// stravaPageSize is the athlete activity page size.
	stravaPageSize = 100
)

// Strava verifies distance goals against the Strava athlete activities API.
type Strava struct {
	tokens TokenSource
	client *apiClient
}

// NewStrava creates a Strava adapter.
func NewStrava(tokens TokenSource, opts ...Option) *Strava {
	return &Strava{
		tokens: tokens,
		client: newAPIClient(stravaName, stravaBaseURL, opts...),
	}
}

// Name implements Adapter.
func (s *Strava) Name() string { return stravaName }

// Kind implements Adapter.
func (s *Strava) Kind() model.GoalKind { return model.KindDistance }

type stravaActivity struct {
	Distance   float64 `json:"distance"` // metres
	Manual     bool    `json:"manual"`
	DeviceName string  `json:"device_name"`
}

// Verify sums recorded distance over the window. Manual uploads and entries
// without a recording device are excluded.
func (s *Strava) Verify(ctx context.Context, subject string, windowStart, windowEnd time.Time) Result {
	token, err := s.tokens.AccessToken(ctx, subject)
	if err != nil {
		return Unavailable("no token")
	}

	var total float64
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("after", fmt.Sprint(windowStart.Unix()))
		q.Set("before", fmt.Sprint(windowEnd.Unix()))
		q.Set("page", fmt.Sprint(page))
		q.Set("per_page", fmt.Sprint(stravaPageSize))

		var activities []stravaActivity
		if err := s.client.getJSON(ctx, "/api/v3/athlete/activities?"+q.Encode(), token, &activities); err != nil {
			return Unavailable(err.Error())
		}

		for _, a := range activities {
			if a.Manual || a.DeviceName == "" {
				continue
			}
			total += a.Distance
		}
		if len(activities) < stravaPageSize {
			return Achieved(total)
		}
	}
}
