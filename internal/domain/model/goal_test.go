package model_test

import (
	"testing"

	"github.com/okian/sweatstake/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseKind(t *testing.T) {
	Convey("Given kind slugs", t, func() {
		Convey("Then known slugs parse", func() {
			k, err := model.ParseKind("distance")
			So(err, ShouldBeNil)
			So(k, ShouldEqual, model.KindDistance)
			So(k.Unit(), ShouldEqual, "metres")

			k, err = model.ParseKind("steps")
			So(err, ShouldBeNil)
			So(k, ShouldEqual, model.KindSteps)
			So(k.Unit(), ShouldEqual, "steps")
		})

		Convey("Then unknown slugs are rejected", func() {
			_, err := model.ParseKind("calories")
			So(err, ShouldNotBeNil)
		})

		Convey("Then String round-trips", func() {
			So(model.KindSteps.String(), ShouldEqual, "steps")
			So(model.KindDistance.String(), ShouldEqual, "distance")
		})
	})
}

func TestLedgerUnits(t *testing.T) {
	Convey("Given native-unit values", t, func() {
		Convey("Then scaling to milliunits rounds half up", func() {
			So(model.ToLedgerUnits(12000), ShouldEqual, int64(12000000))
			So(model.ToLedgerUnits(5.0005), ShouldEqual, int64(5001))
			So(model.ToLedgerUnits(5.0004), ShouldEqual, int64(5000))
			So(model.ToLedgerUnits(0), ShouldEqual, int64(0))
		})

		Convey("Then scaling back recovers the native value", func() {
			So(model.FromLedgerUnits(12000000), ShouldEqual, 12000.0)
			So(model.FromLedgerUnits(5001), ShouldEqual, 5.001)
		})
	})
}
