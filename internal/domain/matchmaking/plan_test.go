package matchmaking

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlan(t *testing.T) {
	event := model.Event{ID: 7, Name: "Autumn Cup", Date: time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)}
	regs := []model.Registration{
		{ID: 1, EventID: 7, CompetitorID: 1, Status: model.RegistrationRegistered},
		{ID: 2, EventID: 7, CompetitorID: 2, Status: model.RegistrationRegistered},
		{ID: 3, EventID: 7, CompetitorID: 3, Status: model.RegistrationRegistered},
		{ID: 4, EventID: 7, CompetitorID: 4, Status: model.RegistrationRegistered},
		{ID: 5, EventID: 7, CompetitorID: 5, Status: model.RegistrationWithdrawn},
	}
	sched := DefaultSchedule()

	Convey("Given two valid selections", t, func() {
		bouts, err := Plan(event, regs, nil, []Selection{{A: 1, B: 2}, {A: 3, B: 4}}, sched, now)

		Convey("Then bouts are scheduled from 09:00 every 30 minutes", func() {
			So(err, ShouldBeNil)
			So(bouts, ShouldHaveLength, 2)
			So(bouts[0].ScheduledAt, ShouldEqual, time.Date(2026, time.November, 1, 9, 0, 0, 0, time.UTC))
			So(bouts[1].ScheduledAt, ShouldEqual, time.Date(2026, time.November, 1, 9, 30, 0, 0, time.UTC))
			So(bouts[0].Status, ShouldEqual, model.BoutScheduled)
			So(bouts[1].EventID, ShouldEqual, int64(7))
		})
	})

	Convey("Given malformed selections", t, func() {
		_, err := Plan(event, regs, nil, nil, sched, now)
		So(errors.Is(err, faults.ErrValidation), ShouldBeTrue)
		So(errors.Is(err, ErrNoSelections), ShouldBeTrue)

		_, err = Plan(event, regs, nil, []Selection{{A: 1, B: 1}}, sched, now)
		So(errors.Is(err, ErrSameCompetitor), ShouldBeTrue)

		_, err = Plan(event, regs, nil, []Selection{{A: 1, B: 2}, {A: 2, B: 3}}, sched, now)
		So(errors.Is(err, ErrDuplicateSelection), ShouldBeTrue)
		So(faults.IDs(err), ShouldResemble, []int64{2})

		_, err = Plan(event, regs, nil, []Selection{{A: 1}}, sched, now)
		So(errors.Is(err, ErrMissingCompetitor), ShouldBeTrue)
	})

	Convey("Given a competitor who withdrew after proposals were made", t, func() {
		_, err := Plan(event, regs, nil, []Selection{{A: 4, B: 5}}, sched, now)

		Convey("Then the batch fails the consistency check", func() {
			So(errors.Is(err, faults.ErrConsistency), ShouldBeTrue)
			So(errors.Is(err, ErrNotRegistered), ShouldBeTrue)
			So(faults.IDs(err), ShouldResemble, []int64{5})
		})
	})

	Convey("Given a competitor booked by a concurrent confirmation", t, func() {
		existing := []model.Bout{{ID: 30, EventID: 7, CompetitorA: 2, CompetitorB: 3, Status: model.BoutScheduled}}

		bouts, err := Plan(event, regs, existing, []Selection{{A: 1, B: 2}}, sched, now)

		Convey("Then nothing is planned", func() {
			So(bouts, ShouldBeNil)
			So(errors.Is(err, ErrDoubleBooking), ShouldBeTrue)
			So(errors.Is(err, faults.ErrConsistency), ShouldBeTrue)
		})

		Convey("Then a cancelled bout frees the slot", func() {
			existing[0].Status = model.BoutCancelled
			bouts, err := Plan(event, regs, existing, []Selection{{A: 1, B: 2}}, sched, now)
			So(err, ShouldBeNil)
			So(bouts, ShouldHaveLength, 1)
		})
	})
}
