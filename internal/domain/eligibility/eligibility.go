// Package eligibility decides whether two competitors may be paired into a bout.
package eligibility

import (
	"math"
	"time"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// Pairing limits. All bounds are inclusive.
const (
	MaxWeightDiffKg = 5.0
	MaxRankDistance = 1
	MaxAgeDiffYears = 3
)

// Weights are compared in hundredths of a kilogram so that 65.3 vs 60.3 is
// exactly 5.00 kg apart.
const weightScale = 100

// Diff holds the distances between two competitors.
type Diff struct {
	WeightKg float64

	// Rank is the ladder distance. RankKnown is false when either rank is
	// not on the ladder.
	Rank      int
	RankKnown bool

	// Age is the absolute age gap with a missing age read as 0 years.
	// AgeKnown is true only when both ages are on file.
	Age      int
	AgeKnown bool

	weightCenti int64
}

// Compare measures a against b with ages taken at now.
func Compare(a, b model.Competitor, now time.Time) Diff {
	var d Diff

	d.weightCenti = absInt64(centi(a.WeightKg) - centi(b.WeightKg))
	d.WeightKg = float64(d.weightCenti) / weightScale

	d.Rank, d.RankKnown = rank.Distance(a.Rank, b.Rank)

	ageA, okA := a.Age(now)
	ageB, okB := b.Age(now)
	d.Age = absInt(ageA - ageB)
	d.AgeKnown = okA && okB
	return d
}

// Eligible reports whether the measured pair is within every limit.
// Unknown ages never block a pair; unknown ranks always do.
func (d Diff) Eligible() bool {
	if d.weightCenti > MaxWeightDiffKg*weightScale {
		return false
	}
	if !d.RankKnown || d.Rank > MaxRankDistance {
		return false
	}
	if d.AgeKnown && d.Age > MaxAgeDiffYears {
		return false
	}
	return true
}

// IsEligiblePair reports whether a and b may fight each other.
func IsEligiblePair(a, b model.Competitor, now time.Time) bool {
	return Compare(a, b, now).Eligible()
}

func centi(kg float64) int64 { return int64(math.Round(kg * weightScale)) }

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
