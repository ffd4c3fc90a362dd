package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sweatstake/internal/adapters/ledger"
)

func TestGatewayClientReads(t *testing.T) {
	Convey("Given a gateway serving one goal", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /v1/goals", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"goals": []map[string]any{{
					"id": 7, "name": "spring 10k", "kind": "distance",
					"target_milli": 10_000_000,
					"min_stake":    "0.5", "max_stake": "25", "total_staked": "31.5",
					"start_time":     "2026-03-01T00:00:00Z",
					"entry_deadline": "2026-03-02T00:00:00Z",
					"deadline":       "2026-03-08T00:00:00Z",
					"active":         true, "settled": false, "participant_count": 3,
				}},
			})
		})
		mux.HandleFunc("GET /v1/goals/7/participants/0xaa", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"addr": "0xaa", "provider": "strava", "stake": "10",
				"achieved_milli": 12_345_678, "verified": true,
			})
		})
		mux.HandleFunc("GET /v1/goals/7/receipts/0xaa", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"exists": true})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := ledger.NewGatewayClient(srv.URL)
		ctx := context.Background()

		Convey("ListGoals decodes amounts, units and times", func() {
			goals, err := c.ListGoals(ctx)
			So(err, ShouldBeNil)
			So(goals, ShouldHaveLength, 1)
			So(goals[0].ID, ShouldEqual, 7)
			So(goals[0].Target, ShouldEqual, 10000)
			So(goals[0].MinStake.String(), ShouldEqual, "0.5")
			So(goals[0].TotalStaked.String(), ShouldEqual, "31.5")
			So(goals[0].Deadline.UTC().Hour(), ShouldEqual, 0)
		})

		Convey("GetParticipant converts milliunits back to native units", func() {
			p, err := c.GetParticipant(ctx, 7, "0xaa")
			So(err, ShouldBeNil)
			So(p.Provider, ShouldEqual, "strava")
			So(p.Achieved, ShouldEqual, 12345.678)
			So(p.Verified, ShouldBeTrue)
		})

		Convey("HasReceipt reads the exists flag", func() {
			exists, err := c.HasReceipt(ctx, 7, "0xaa")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}

func TestGatewayClientAuth(t *testing.T) {
	Convey("Given a gateway client with a bearer token", t, func() {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := ledger.NewGatewayClient(srv.URL, ledger.WithAuthToken("s3cret"))

		Convey("Writes carry the token", func() {
			err := c.SubmitSettlement(context.Background(), 1)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "Bearer s3cret")
		})
	})
}

func TestGatewayErrorMapping(t *testing.T) {
	Convey("Given gateways answering with error bodies", t, func() {
		ctx := context.Background()

		serve := func(status int, code string) *ledger.GatewayClient {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": "from gateway"})
			}))
			Reset(srv.Close)
			return ledger.NewGatewayClient(srv.URL)
		}

		Convey("The body code maps to its sentinel regardless of status", func() {
			cases := []struct {
				code string
				want error
			}{
				{"not_found", ledger.ErrNotFound},
				{"already_verified", ledger.ErrAlreadyVerified},
				{"already_settled", ledger.ErrAlreadySettled},
				{"not_settled", ledger.ErrNotSettled},
				{"receipt_exists", ledger.ErrReceiptExists},
			}
			for _, tc := range cases {
				c := serve(http.StatusConflict, tc.code)
				err := c.SubmitSettlement(ctx, 1)
				So(errors.Is(err, tc.want), ShouldBeTrue)
			}
		})

		Convey("A bare 404 maps to not found", func() {
			c := serve(http.StatusNotFound, "")
			_, err := c.GetGoal(ctx, 9)
			So(errors.Is(err, ledger.ErrNotFound), ShouldBeTrue)
		})

		Convey("Other 4xx statuses map to a rejection", func() {
			c := serve(http.StatusUnprocessableEntity, "")
			err := c.SubmitVerification(ctx, 1, "0xaa", 1000)
			So(errors.Is(err, ledger.ErrRejected), ShouldBeTrue)
		})

		Convey("5xx statuses map to unavailable", func() {
			c := serve(http.StatusBadGateway, "")
			err := c.SubmitSettlement(ctx, 1)
			So(errors.Is(err, ledger.ErrUnavailable), ShouldBeTrue)
		})

		Convey("A refused connection maps to unavailable", func() {
			c := ledger.NewGatewayClient("http://127.0.0.1:1")
			_, err := c.ListGoals(ctx)
			So(errors.Is(err, ledger.ErrUnavailable), ShouldBeTrue)
		})
	})
}
