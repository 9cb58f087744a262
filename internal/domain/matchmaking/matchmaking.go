// Package matchmaking proposes bouts for an event and plans the confirmed ones.
//
// Proposals are greedy: candidate pairs are sorted by score and taken in order
// while neither side has been used. The result is not a globally optimal
// matching and is not meant to be.
package matchmaking

import (
	"sort"
	"time"

	"github.com/okian/dojo/internal/domain/eligibility"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/scoring"
)

// Entrant is a competitor together with their registration state for one event.
type Entrant struct {
	Competitor model.Competitor
	Status     model.RegistrationStatus
}

// ProposedPair is a suggested bout with the distances that justify it.
type ProposedPair struct {
	A          model.Competitor
	B          model.Competitor
	WeightDiff float64
	RankDiff   int
	AgeDiff    int
	Score      float64
}

// Option applies a configuration option to the Matchmaker.
type Option func(*Matchmaker)

// WithClock sets the time source used to derive ages.
func WithClock(now func() time.Time) Option {
	return func(m *Matchmaker) {
		if now != nil {
			m.now = now
		}
	}
}

// WithScorer replaces the pair scorer.
func WithScorer(s *scoring.PairScorer) Option {
	return func(m *Matchmaker) {
		if s != nil {
			m.scorer = s
		}
	}
}

// Matchmaker builds bout proposals. It has no side effects.
type Matchmaker struct {
	scorer *scoring.PairScorer
	now    func() time.Time
}

// New creates a Matchmaker with the stock scorer.
func New(opts ...Option) *Matchmaker {
	m := &Matchmaker{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.scorer == nil {
		m.scorer = scoring.NewPairScorer(scoring.WithClock(m.now))
	}
	return m
}

// Propose returns non-overlapping pairs among registered entrants who are not
// already booked into a live bout of the event. Entrant order is the
// enumeration order and breaks score ties.
func (m *Matchmaker) Propose(entrants []Entrant, bouts []model.Bout) []ProposedPair {
	booked := bookedCompetitors(bouts)

	pool := make([]model.Competitor, 0, len(entrants))
	seen := make(map[int64]struct{}, len(entrants))
	for _, e := range entrants {
		if e.Status != model.RegistrationRegistered {
			continue
		}
		id := e.Competitor.ID
		if _, ok := booked[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pool = append(pool, e.Competitor)
	}

	now := m.now()
	candidates := make([]ProposedPair, 0, len(pool))
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			d := eligibility.Compare(pool[i], pool[j], now)
			if !d.Eligible() {
				continue
			}
			res := m.scorer.FromDiff(d)
			candidates = append(candidates, ProposedPair{
				A:          pool[i],
				B:          pool[j],
				WeightDiff: res.WeightDiff,
				RankDiff:   res.RankDiff,
				AgeDiff:    res.AgeDiff,
				Score:      res.Score,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score < candidates[j].Score
	})

	used := make(map[int64]struct{}, len(pool))
	selected := make([]ProposedPair, 0, len(pool)/2)
	for _, c := range candidates {
		if _, ok := used[c.A.ID]; ok {
			continue
		}
		if _, ok := used[c.B.ID]; ok {
			continue
		}
		used[c.A.ID] = struct{}{}
		used[c.B.ID] = struct{}{}
		selected = append(selected, c)
	}
	return selected
}

func bookedCompetitors(bouts []model.Bout) map[int64]struct{} {
	booked := make(map[int64]struct{}, len(bouts)*2)
	for _, b := range bouts {
		if !b.Booked() {
			continue
		}
		booked[b.CompetitorA] = struct{}{}
		booked[b.CompetitorB] = struct{}{}
	}
	return booked
}
