package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sweatstake/internal/adapters/ledger"
	"github.com/okian/sweatstake/internal/domain/model"
)

func seedGoal(id uint64, target float64) model.Goal {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return model.Goal{
		ID:            id,
		Name:          "march steps",
		Kind:          model.KindSteps,
		Target:        target,
		MinStake:      decimal.NewFromInt(1),
		MaxStake:      decimal.NewFromInt(100),
		StartTime:     now,
		EntryDeadline: now.Add(24 * time.Hour),
		Deadline:      now.Add(7 * 24 * time.Hour),
		Active:        true,
	}
}

func TestMemoryLedgerVerification(t *testing.T) {
	Convey("Given a memory ledger with one goal and two participants", t, func() {
		ctx := context.Background()
		ml := ledger.NewMemoryLedger()
		ml.AddGoal(seedGoal(1, 10000))
		ml.AddParticipant(1, model.Participant{Addr: "0xaa", Provider: "fitbit", Stake: decimal.NewFromInt(5)})
		ml.AddParticipant(1, model.Participant{Addr: "0xbb", Provider: "strava", Stake: decimal.NewFromInt(7)})

		Convey("Seeding updates the goal's aggregate fields", func() {
			g, err := ml.GetGoal(ctx, 1)
			So(err, ShouldBeNil)
			So(g.ParticipantCount, ShouldEqual, 2)
			So(g.TotalStaked.String(), ShouldEqual, "12")
		})

		Convey("When a verification is submitted", func() {
			err := ml.SubmitVerification(ctx, 1, "0xaa", model.ToLedgerUnits(12000))
			So(err, ShouldBeNil)

			Convey("The participant is marked verified with the achieved value", func() {
				p, err := ml.GetParticipant(ctx, 1, "0xaa")
				So(err, ShouldBeNil)
				So(p.Verified, ShouldBeTrue)
				So(p.Achieved, ShouldEqual, 12000)
			})

			Convey("A duplicate submission is rejected", func() {
				err := ml.SubmitVerification(ctx, 1, "0xaa", model.ToLedgerUnits(12000))
				So(errors.Is(err, ledger.ErrAlreadyVerified), ShouldBeTrue)
			})
		})

		Convey("Verifying an unknown participant fails with not found", func() {
			err := ml.SubmitVerification(ctx, 1, "0xzz", 1000)
			So(errors.Is(err, ledger.ErrNotFound), ShouldBeTrue)
		})

		Convey("Verifying an unknown goal fails with not found", func() {
			err := ml.SubmitVerification(ctx, 99, "0xaa", 1000)
			So(errors.Is(err, ledger.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryLedgerSettlement(t *testing.T) {
	Convey("Given a goal with two verified participants", t, func() {
		ctx := context.Background()
		ml := ledger.NewMemoryLedger()
		ml.AddGoal(seedGoal(1, 10000))
		ml.AddParticipant(1, model.Participant{Addr: "0xaa", Provider: "fitbit", Stake: decimal.NewFromInt(5)})
		ml.AddParticipant(1, model.Participant{Addr: "0xbb", Provider: "strava", Stake: decimal.NewFromInt(7)})
		So(ml.SubmitVerification(ctx, 1, "0xaa", model.ToLedgerUnits(12000)), ShouldBeNil)
		So(ml.SubmitVerification(ctx, 1, "0xbb", model.ToLedgerUnits(4000)), ShouldBeNil)

		Convey("Settlement fixes each participant's outcome against the target", func() {
			So(ml.SubmitSettlement(ctx, 1), ShouldBeNil)

			g, err := ml.GetGoal(ctx, 1)
			So(err, ShouldBeNil)
			So(g.Settled, ShouldBeTrue)

			winner, err := ml.GetParticipant(ctx, 1, "0xaa")
			So(err, ShouldBeNil)
			So(winner.Succeeded, ShouldBeTrue)

			loser, err := ml.GetParticipant(ctx, 1, "0xbb")
			So(err, ShouldBeNil)
			So(loser.Succeeded, ShouldBeFalse)

			Convey("A second settlement is rejected", func() {
				err := ml.SubmitSettlement(ctx, 1)
				So(errors.Is(err, ledger.ErrAlreadySettled), ShouldBeTrue)
			})

			Convey("Late verifications are rejected on settled goals", func() {
				err := ml.SubmitVerification(ctx, 1, "0xbb", 1)
				So(errors.Is(err, ledger.ErrAlreadySettled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a goal with an unverified participant", t, func() {
		ctx := context.Background()
		ml := ledger.NewMemoryLedger()
		ml.AddGoal(seedGoal(2, 5000))
		ml.AddParticipant(2, model.Participant{Addr: "0xaa", Provider: "fitbit", Stake: decimal.NewFromInt(5)})
		ml.AddParticipant(2, model.Participant{Addr: "0xbb", Provider: "strava", Stake: decimal.NewFromInt(5)})
		So(ml.SubmitVerification(ctx, 2, "0xaa", model.ToLedgerUnits(6000)), ShouldBeNil)

		Convey("Settlement is rejected until every participant is verified", func() {
			err := ml.SubmitSettlement(ctx, 2)
			So(errors.Is(err, ledger.ErrRejected), ShouldBeTrue)

			g, gerr := ml.GetGoal(ctx, 2)
			So(gerr, ShouldBeNil)
			So(g.Settled, ShouldBeFalse)
		})
	})
}

func TestMemoryLedgerReceipts(t *testing.T) {
	Convey("Given a settled goal", t, func() {
		ctx := context.Background()
		minted := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
		ml := ledger.NewMemoryLedger(ledger.WithClock(func() time.Time { return minted }))
		ml.AddGoal(seedGoal(1, 10000))
		ml.AddParticipant(1, model.Participant{Addr: "0xaa", Provider: "fitbit", Stake: decimal.NewFromInt(5)})
		ml.AddParticipant(1, model.Participant{Addr: "0xbb", Provider: "strava", Stake: decimal.NewFromInt(7)})
		So(ml.SubmitVerification(ctx, 1, "0xaa", model.ToLedgerUnits(12000)), ShouldBeNil)
		So(ml.SubmitVerification(ctx, 1, "0xbb", model.ToLedgerUnits(4000)), ShouldBeNil)
		So(ml.SubmitSettlement(ctx, 1), ShouldBeNil)

		entries := []model.ReceiptEntry{
			{GoalID: 1, Addr: "0xaa", Kind: model.KindSteps, Target: 10000, Achieved: 12000, Stake: decimal.NewFromInt(5), Payout: decimal.NewFromInt(5), Succeeded: true},
			{GoalID: 1, Addr: "0xbb", Kind: model.KindSteps, Target: 10000, Achieved: 4000, Stake: decimal.NewFromInt(7), Payout: decimal.Zero, Succeeded: false},
		}

		Convey("A batch mint stamps every entry with the clock time", func() {
			So(ml.MintReceipts(ctx, entries), ShouldBeNil)

			exists, err := ml.HasReceipt(ctx, 1, "0xaa")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)

			r, ok := ml.ReceiptFor(1, "0xbb")
			So(ok, ShouldBeTrue)
			So(r.MintedAt.Equal(minted), ShouldBeTrue)
			So(ml.ReceiptCount(1), ShouldEqual, 2)

			Convey("Re-minting any entry fails and mints nothing new", func() {
				err := ml.MintReceipts(ctx, entries[:1])
				So(errors.Is(err, ledger.ErrReceiptExists), ShouldBeTrue)
				So(ml.ReceiptCount(1), ShouldEqual, 2)
			})
		})

		Convey("A batch containing one existing receipt mints no partial batch", func() {
			So(ml.MintReceipts(ctx, entries[:1]), ShouldBeNil)

			err := ml.MintReceipts(ctx, entries)
			So(errors.Is(err, ledger.ErrReceiptExists), ShouldBeTrue)

			exists, herr := ml.HasReceipt(ctx, 1, "0xbb")
			So(herr, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})
	})

	Convey("Minting against an unsettled goal is rejected", t, func() {
		ctx := context.Background()
		ml := ledger.NewMemoryLedger()
		ml.AddGoal(seedGoal(3, 10000))
		ml.AddParticipant(3, model.Participant{Addr: "0xaa", Provider: "fitbit", Stake: decimal.NewFromInt(5)})

		err := ml.MintReceipts(ctx, []model.ReceiptEntry{{GoalID: 3, Addr: "0xaa"}})
		So(errors.Is(err, ledger.ErrNotSettled), ShouldBeTrue)
	})
}

func TestMemoryLedgerFaultInjection(t *testing.T) {
	Convey("Given a ledger with a fault hook on settlement", t, func() {
		ctx := context.Background()
		ml := ledger.NewMemoryLedger(ledger.WithFault(func(op string, goalID uint64) error {
			if op == "submit_settlement" && goalID == 1 {
				return ledger.ErrUnavailable
			}
			return nil
		}))
		ml.AddGoal(seedGoal(1, 10000))
		ml.AddParticipant(1, model.Participant{Addr: "0xaa", Provider: "fitbit", Stake: decimal.NewFromInt(5)})
		So(ml.SubmitVerification(ctx, 1, "0xaa", model.ToLedgerUnits(12000)), ShouldBeNil)

		Convey("The targeted operation fails while reads keep working", func() {
			err := ml.SubmitSettlement(ctx, 1)
			So(errors.Is(err, ledger.ErrUnavailable), ShouldBeTrue)

			g, gerr := ml.GetGoal(ctx, 1)
			So(gerr, ShouldBeNil)
			So(g.Settled, ShouldBeFalse)
		})
	})
}
