package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLedger(t *testing.T) {
	at := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

	Convey("Given a bout between 4 and 9", t, func() {
		b := model.Bout{ID: 1, CompetitorA: 4, CompetitorB: 9}

		Convey("When 9 wins", func() {
			out, err := Decide(b, 9)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, Outcome{WinnerID: 9, LoserID: 4})
		})

		Convey("When someone else is declared the winner", func() {
			_, err := Decide(b, 5)
			So(errors.Is(err, ErrWinnerNotInBout), ShouldBeTrue)
			So(errors.Is(err, faults.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given an empty record", t, func() {
		r := model.PointsRecord{CompetitorID: 4}

		Convey("A win adds 30 points and one win", func() {
			got := Win(r, at)
			So(got.TotalPoints, ShouldEqual, 30)
			So(got.Wins, ShouldEqual, 1)
			So(got.Losses, ShouldEqual, 0)
			So(got.UpdatedAt, ShouldEqual, at)
		})

		Convey("A loss adds 10 points and one loss", func() {
			got := Loss(r, at)
			So(got.TotalPoints, ShouldEqual, 10)
			So(got.Losses, ShouldEqual, 1)
			So(got.Wins, ShouldEqual, 0)
		})

		Convey("The input record is not modified", func() {
			_ = Win(r, at)
			So(r.TotalPoints, ShouldEqual, 0)
		})
	})
}
