package phase_test

import (
	"testing"
	"time"

	"github.com/okian/sweatstake/internal/domain/model"
	"github.com/okian/sweatstake/internal/domain/phase"
	. "github.com/smartystreets/goconvey/convey"
)

func testGoal() model.Goal {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.Goal{
		ID:            1,
		Name:          "june 10k",
		Kind:          model.KindSteps,
		Target:        10000,
		StartTime:     start,
		EntryDeadline: start.Add(48 * time.Hour),
		Deadline:      start.Add(30 * 24 * time.Hour),
		Active:        true,
	}
}

func TestResolve(t *testing.T) {
	Convey("Given an active, unsettled goal", t, func() {
		g := testGoal()

		Convey("Then before the entry deadline it is in Entry", func() {
			So(phase.Resolve(g, g.StartTime.Add(time.Hour)), ShouldEqual, phase.Entry)
		})

		Convey("Then at the entry deadline it is in Competition", func() {
			So(phase.Resolve(g, g.EntryDeadline), ShouldEqual, phase.Competition)
			So(phase.Resolve(g, g.Deadline.Add(-time.Second)), ShouldEqual, phase.Competition)
		})

		Convey("Then at the deadline it awaits settlement", func() {
			So(phase.Resolve(g, g.Deadline), ShouldEqual, phase.AwaitingSettlement)
			So(phase.Resolve(g, g.Deadline.Add(365*24*time.Hour)), ShouldEqual, phase.AwaitingSettlement)
		})
	})

	Convey("Given a settled goal", t, func() {
		g := testGoal()
		g.Settled = true

		Convey("Then it is Settled regardless of time", func() {
			So(phase.Resolve(g, g.StartTime.Add(-time.Hour)), ShouldEqual, phase.Settled)
			So(phase.Resolve(g, g.Deadline.Add(time.Hour)), ShouldEqual, phase.Settled)
		})

		Convey("Then settled wins over cancelled", func() {
			g.Active = false
			So(phase.Resolve(g, g.Deadline), ShouldEqual, phase.Settled)
		})
	})

	Convey("Given a cancelled goal", t, func() {
		g := testGoal()
		g.Active = false

		Convey("Then it is Cancelled and terminal", func() {
			p := phase.Resolve(g, g.StartTime.Add(time.Hour))
			So(p, ShouldEqual, phase.Cancelled)
			So(p.Terminal(), ShouldBeTrue)
		})
	})
}

func TestMonotonicity(t *testing.T) {
	Convey("Given fixed flags, phase never decreases over time", t, func() {
		g := testGoal()
		times := []time.Time{
			g.StartTime,
			g.StartTime.Add(time.Hour),
			g.EntryDeadline.Add(-time.Second),
			g.EntryDeadline,
			g.EntryDeadline.Add(time.Hour),
			g.Deadline.Add(-time.Second),
			g.Deadline,
			g.Deadline.Add(time.Hour),
		}

		prev := phase.Resolve(g, times[0])
		for _, ts := range times[1:] {
			cur := phase.Resolve(g, ts)
			So(cur, ShouldBeGreaterThanOrEqualTo, prev)
			prev = cur
		}
	})
}

func TestString(t *testing.T) {
	Convey("Given all phases", t, func() {
		Convey("Then each has a stable name", func() {
			So(phase.Entry.String(), ShouldEqual, "entry")
			So(phase.Competition.String(), ShouldEqual, "competition")
			So(phase.AwaitingSettlement.String(), ShouldEqual, "awaiting_settlement")
			So(phase.Settled.String(), ShouldEqual, "settled")
			So(phase.Cancelled.String(), ShouldEqual, "cancelled")
		})
	})
}
