package matchmaking

import (
	"time"

	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/model"
)

const opPlan = "confirm proposals"

// Selection is a pair the organiser chose to turn into a bout.
type Selection struct {
	A int64
	B int64
}

// Schedule places confirmed bouts on the event day.
type Schedule struct {
	StartHour int
	Interval  time.Duration
}

// DefaultSchedule starts at 09:00 with a bout every 30 minutes.
func DefaultSchedule() Schedule {
	return Schedule{StartHour: 9, Interval: 30 * time.Minute}
}

// At returns the slot time of the i-th bout confirmed in one batch.
func (s Schedule) At(event model.Event, i int) time.Time {
	d := event.Date
	start := time.Date(d.Year(), d.Month(), d.Day(), s.StartHour, 0, 0, 0, d.Location())
	return start.Add(time.Duration(i) * s.Interval)
}

// Plan validates picks against the current roster and bouts of the event and
// returns the bouts to create. Any problem rejects the whole batch.
//
// Registrations and bouts must be read under the same lock the caller holds
// while inserting the result, otherwise two concurrent plans can double-book.
func Plan(event model.Event, regs []model.Registration, existing []model.Bout, picks []Selection, sched Schedule, now time.Time) ([]model.Bout, error) {
	if len(picks) == 0 {
		return nil, faults.Validation(opPlan, ErrNoSelections)
	}

	registered := make(map[int64]struct{}, len(regs))
	for _, r := range regs {
		if r.EventID == event.ID && r.Active() {
			registered[r.CompetitorID] = struct{}{}
		}
	}
	booked := bookedCompetitors(existing)

	inBatch := make(map[int64]struct{}, len(picks)*2)
	for _, p := range picks {
		if p.A == 0 || p.B == 0 {
			return nil, faults.Validation(opPlan, ErrMissingCompetitor)
		}
		if p.A == p.B {
			return nil, faults.Validation(opPlan, ErrSameCompetitor, p.A)
		}
		for _, id := range []int64{p.A, p.B} {
			if _, dup := inBatch[id]; dup {
				return nil, faults.Validation(opPlan, ErrDuplicateSelection, id)
			}
			inBatch[id] = struct{}{}
		}
	}

	var unregistered, doubleBooked []int64
	for _, p := range picks {
		for _, id := range []int64{p.A, p.B} {
			if _, ok := registered[id]; !ok {
				unregistered = append(unregistered, id)
				continue
			}
			if _, ok := booked[id]; ok {
				doubleBooked = append(doubleBooked, id)
			}
		}
	}
	if len(unregistered) > 0 {
		return nil, faults.Consistency(opPlan, ErrNotRegistered, unregistered...)
	}
	if len(doubleBooked) > 0 {
		return nil, faults.Consistency(opPlan, ErrDoubleBooking, doubleBooked...)
	}

	out := make([]model.Bout, 0, len(picks))
	for i, p := range picks {
		out = append(out, model.Bout{
			EventID:     event.ID,
			CompetitorA: p.A,
			CompetitorB: p.B,
			ScheduledAt: sched.At(event, i),
			Status:      model.BoutScheduled,
			Notes:       "auto-matched",
			CreatedAt:   now,
		})
	}
	return out, nil
}
