package model

import (
	"time"

	"github.com/okian/dojo/internal/domain/rank"
)

// CompetitorStatus is the membership state of a competitor.
type CompetitorStatus string

// Competitor statuses.
const (
	CompetitorActive    CompetitorStatus = "active"
	CompetitorInactive  CompetitorStatus = "inactive"
	CompetitorSuspended CompetitorStatus = "suspended"
)

// Competitor is a club member who can be paired into bouts.
type Competitor struct {
	ID          int64
	Name        string
	Rank        rank.Rank
	WeightKg    float64
	DateOfBirth *time.Time // nil when unknown
	Status      CompetitorStatus
}

// Age returns the competitor's completed years at now. It reports false when
// no date of birth is on file. A date of birth after now yields 0.
func (c Competitor) Age(now time.Time) (int, bool) {
	if c.DateOfBirth == nil {
		return 0, false
	}
	dob := c.DateOfBirth.In(now.Location())
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years, true
}

// WeightClass returns the display class for the competitor's weight.
func (c Competitor) WeightClass() WeightClass { return WeightClassFor(c.WeightKg) }
