package rank

import (
	"fmt"
)

// Thresholds maps a rank to the cumulative points a competitor needs to
// reach it. The lowest rank never carries a threshold.
type Thresholds map[Rank]int

// DefaultThresholds returns the club's stock table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Yellow: 100,
		Orange: 250,
		Green:  450,
		Blue:   700,
		Brown:  1000,
		Black:  1400,
	}
}

// For returns the threshold configured for r.
func (t Thresholds) For(r Rank) (int, bool) {
	p, ok := t[r]
	return p, ok
}

// Validate checks that every key is a known rank above the lowest, that no
// threshold is negative, and that thresholds strictly increase along the ladder.
func (t Thresholds) Validate() error {
	for r, p := range t {
		if !r.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownRank, string(r))
		}
		if r == Lowest() {
			return fmt.Errorf("%w: %s", ErrLowestRankThreshold, r)
		}
		if p < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeThreshold, r, p)
		}
	}

	prev, prevRank := -1, Rank("")
	for _, r := range ladder[1:] {
		p, ok := t[r]
		if !ok {
			continue
		}
		if p <= prev {
			return fmt.Errorf("%w: %s=%d is not above %s=%d", ErrThresholdOrder, r, p, prevRank, prev)
		}
		prev, prevRank = p, r
	}
	return nil
}

// Clone returns an independent copy of t.
func (t Thresholds) Clone() Thresholds {
	out := make(Thresholds, len(t))
	for r, p := range t {
		out[r] = p
	}
	return out
}
