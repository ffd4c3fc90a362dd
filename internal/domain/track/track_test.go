package track_test

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/sweatstake/internal/domain/track"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryTracker(t *testing.T) {
	Convey("Given a fresh tracker", t, func() {
		ctx := context.Background()
		tr := track.NewInMemoryTracker()

		Convey("Then a new key is recorded once", func() {
			So(tr.SeenAndRecord(ctx, track.Key(1, "0xaaa")), ShouldBeFalse)
			So(tr.SeenAndRecord(ctx, track.Key(1, "0xaaa")), ShouldBeTrue)
			So(tr.Size(), ShouldEqual, 1)
		})

		Convey("Then keys for different goals are independent", func() {
			So(tr.SeenAndRecord(ctx, track.Key(1, "0xaaa")), ShouldBeFalse)
			So(tr.SeenAndRecord(ctx, track.Key(2, "0xaaa")), ShouldBeFalse)
			So(tr.Size(), ShouldEqual, 2)
		})

		Convey("Then Unrecord allows a retry", func() {
			So(tr.SeenAndRecord(ctx, track.Key(1, "0xaaa")), ShouldBeFalse)
			tr.Unrecord(ctx, track.Key(1, "0xaaa"))
			So(tr.SeenAndRecord(ctx, track.Key(1, "0xaaa")), ShouldBeFalse)
		})
	})

	Convey("Given a bounded tracker at capacity", t, func() {
		ctx := context.Background()
		tr := track.NewInMemoryTracker(track.WithMaxSize(2))
		So(tr.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		So(tr.SeenAndRecord(ctx, "b"), ShouldBeFalse)

		Convey("Then existing keys still report seen", func() {
			So(tr.SeenAndRecord(ctx, "a"), ShouldBeTrue)
		})

		Convey("Then new keys are not recorded", func() {
			So(tr.SeenAndRecord(ctx, "c"), ShouldBeFalse)
			So(tr.SeenAndRecord(ctx, "c"), ShouldBeFalse) // still unseen; not evicting
			So(tr.Size(), ShouldEqual, 2)
		})
	})

	Convey("Given concurrent recorders", t, func() {
		ctx := context.Background()
		tr := track.NewInMemoryTracker()

		var wg sync.WaitGroup
		var firsts int64
		var mu sync.Mutex
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !tr.SeenAndRecord(ctx, "shared") {
					mu.Lock()
					firsts++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one caller records the key", func() {
			So(firsts, ShouldEqual, 1)
			So(tr.Size(), ShouldEqual, 1)
		})
	})
}
