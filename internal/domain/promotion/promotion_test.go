package promotion

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEvaluate(t *testing.T) {
	at := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	id := uuid.MustParse("7b0c7a8e-3f0e-4c1b-9f63-2f3f3c1f0a11")
	eng := New(
		WithClock(func() time.Time { return at }),
		WithIDGenerator(func() uuid.UUID { return id }),
	)
	thresholds := rank.DefaultThresholds()

	Convey("Given a white belt", t, func() {
		c := model.Competitor{ID: 3, Rank: rank.White}

		Convey("When points are below the yellow threshold", func() {
			_, ok := eng.Evaluate(c, 99, thresholds)
			So(ok, ShouldBeFalse)
		})

		Convey("When points reach the yellow threshold", func() {
			rec, ok := eng.Evaluate(c, 100, thresholds)

			So(ok, ShouldBeTrue)
			So(rec.ID, ShouldEqual, id)
			So(rec.CompetitorID, ShouldEqual, int64(3))
			So(rec.FromRank, ShouldEqual, rank.White)
			So(rec.ToRank, ShouldEqual, rank.Yellow)
			So(rec.PointsAtPromotion, ShouldEqual, 100)
			So(rec.Trigger, ShouldEqual, model.TriggerAutomatic)
			So(rec.PromotedAt, ShouldEqual, at)
		})

		Convey("When points clear several thresholds at once", func() {
			rec, ok := eng.Evaluate(c, 500, thresholds)

			Convey("Then it moves one step only", func() {
				So(ok, ShouldBeTrue)
				So(rec.ToRank, ShouldEqual, rank.Yellow)
				So(rec.PointsAtPromotion, ShouldEqual, 500)
			})
		})
	})

	Convey("Given a next rank with no threshold", t, func() {
		c := model.Competitor{ID: 4, Rank: rank.Green}
		partial := rank.Thresholds{rank.Yellow: 100, rank.Orange: 250, rank.Green: 450}
		_, ok := eng.Evaluate(c, 10_000, partial)
		So(ok, ShouldBeFalse)
	})

	Convey("Given a black belt", t, func() {
		_, ok := eng.Evaluate(model.Competitor{ID: 5, Rank: rank.Black}, 10_000, thresholds)
		So(ok, ShouldBeFalse)
	})

	Convey("Given a competitor with an unknown rank", t, func() {
		_, ok := eng.Evaluate(model.Competitor{ID: 6, Rank: "purple"}, 10_000, thresholds)
		So(ok, ShouldBeFalse)
	})
}

func TestOverride(t *testing.T) {
	eng := New()
	c := model.Competitor{ID: 9, Rank: rank.Blue}

	Convey("Given an override to a higher rank", t, func() {
		rec, err := eng.Override(c, rank.Black, 720, "sensei.k", "grading panel")

		So(err, ShouldBeNil)
		So(rec.FromRank, ShouldEqual, rank.Blue)
		So(rec.ToRank, ShouldEqual, rank.Black)
		So(rec.Trigger, ShouldEqual, model.TriggerManualOverride)
		So(rec.Actor, ShouldEqual, "sensei.k")
		So(rec.Note, ShouldEqual, "grading panel")
		So(rec.PointsAtPromotion, ShouldEqual, 720)
		So(rec.ID, ShouldNotEqual, uuid.Nil)
	})

	Convey("Given an override downwards", t, func() {
		rec, err := eng.Override(c, rank.Green, 0, "", "")
		So(err, ShouldBeNil)
		So(rec.ToRank, ShouldEqual, rank.Green)
	})

	Convey("Given an override to the current rank", t, func() {
		_, err := eng.Override(c, rank.Blue, 0, "", "")
		So(errors.Is(err, ErrSameRank), ShouldBeTrue)
		So(errors.Is(err, faults.ErrValidation), ShouldBeTrue)
	})

	Convey("Given an override to an unknown rank", t, func() {
		_, err := eng.Override(c, "purple", 0, "", "")
		So(errors.Is(err, ErrUnknownRank), ShouldBeTrue)
	})
}
