// Package rank defines the club's belt ladder. The ladder order declared here
// is the only rank ordering in the module; eligibility, pair scoring and
// promotion all read positions from it.
package rank

import (
	"fmt"
	"strings"
)

// Rank is a belt on the ladder, stored by its lowercase name.
type Rank string

// Belts from novice to highest.
const (
	White  Rank = "white"
	Yellow Rank = "yellow"
	Orange Rank = "orange"
	Green  Rank = "green"
	Blue   Rank = "blue"
	Brown  Rank = "brown"
	Black  Rank = "black"
)

var ladder = [...]Rank{White, Yellow, Orange, Green, Blue, Brown, Black}

// All returns the ladder in ascending order.
func All() []Rank {
	out := make([]Rank, len(ladder))
	copy(out, ladder[:])
	return out
}

// Lowest returns the entry rank.
func Lowest() Rank { return ladder[0] }

// Highest returns the top of the ladder.
func Highest() Rank { return ladder[len(ladder)-1] }

// Parse normalizes s and returns the matching rank.
func Parse(s string) (Rank, error) {
	r := Rank(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRank, s)
	}
	return r, nil
}

// Index returns the position of r on the ladder, or -1 when r is not a known belt.
func (r Rank) Index() int {
	for i, l := range ladder {
		if l == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is on the ladder.
func (r Rank) Valid() bool { return r.Index() >= 0 }

// Next returns the rank immediately above r. It reports false for the top
// rank and for unknown ranks.
func (r Rank) Next() (Rank, bool) {
	i := r.Index()
	if i < 0 || i == len(ladder)-1 {
		return "", false
	}
	return ladder[i+1], true
}

// IsTop reports whether r is the highest rank.
func (r Rank) IsTop() bool { return r == Highest() }

// String implements fmt.Stringer.
func (r Rank) String() string { return string(r) }

// Distance returns the absolute ladder distance between a and b.
// It reports false when either rank is unknown.
func Distance(a, b Rank) (int, bool) {
	ia, ib := a.Index(), b.Index()
	if ia < 0 || ib < 0 {
		return 0, false
	}
	if ia > ib {
		return ia - ib, true
	}
	return ib - ia, true
}
