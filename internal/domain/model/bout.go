package model

import "time"

// BoutStatus is the lifecycle state of a bout.
type BoutStatus string

// Bout statuses.
const (
	BoutScheduled BoutStatus = "scheduled"
	BoutOngoing   BoutStatus = "ongoing"
	BoutCompleted BoutStatus = "completed"
	BoutCancelled BoutStatus = "cancelled"
)

// Bout is a scheduled match between two competitors at an event.
type Bout struct {
	ID          int64
	EventID     int64
	CompetitorA int64
	CompetitorB int64
	ScheduledAt time.Time
	Status      BoutStatus
	WinnerID    *int64
	Notes       string
	CreatedAt   time.Time
}

// Involves reports whether competitorID fights in b.
func (b Bout) Involves(competitorID int64) bool {
	return b.CompetitorA == competitorID || b.CompetitorB == competitorID
}

// Opponent returns the other competitor in b.
func (b Bout) Opponent(competitorID int64) (int64, bool) {
	switch competitorID {
	case b.CompetitorA:
		return b.CompetitorB, true
	case b.CompetitorB:
		return b.CompetitorA, true
	default:
		return 0, false
	}
}

// Booked reports whether b still holds its competitors' slots.
func (b Bout) Booked() bool { return b.Status != BoutCancelled }
