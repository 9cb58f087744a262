// Package scoring turns an eligible competitor pair into a single cost used to
// rank candidate bouts. Lower scores are better matches.
package scoring

import (
	"errors"
	"time"

	"github.com/okian/dojo/internal/domain/eligibility"
	"github.com/okian/dojo/internal/domain/model"
)

// Default cost factors.
const (
	defaultWeightFactor = 2.0
	defaultRankFactor   = 3.0
	defaultAgeFactor    = 1.0
)

// ErrIneligiblePair is returned when asked to score a pair that may not fight.
var ErrIneligiblePair = errors.New("pair is not eligible")

// Option applies a configuration option to the PairScorer.
type Option func(*PairScorer)

// WithClock sets the time source used to derive ages.
func WithClock(now func() time.Time) Option {
	return func(s *PairScorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFactors overrides the cost multipliers. Non-positive values are ignored.
func WithFactors(weight, rank, age float64) Option {
	return func(s *PairScorer) {
		if weight > 0 {
			s.weightFactor = weight
		}
		if rank > 0 {
			s.rankFactor = rank
		}
		if age > 0 {
			s.ageFactor = age
		}
	}
}

// Result is the scored pair with the raw distances that produced it.
type Result struct {
	WeightDiff float64
	RankDiff   int
	AgeDiff    int
	Score      float64
}

// Scorer computes the cost of pairing a with b.
type Scorer interface {
	Score(a, b model.Competitor) (Result, error)
}

// PairScorer implements Scorer with a weighted sum of distances:
// 2·weight + 3·rank + 1·age, where an unknown age is read as 0 years.
type PairScorer struct {
	weightFactor float64
	rankFactor   float64
	ageFactor    float64
	now          func() time.Time
}

// NewPairScorer creates a scorer with the stock factors.
func NewPairScorer(opts ...Option) *PairScorer {
	s := &PairScorer{
		weightFactor: defaultWeightFactor,
		rankFactor:   defaultRankFactor,
		ageFactor:    defaultAgeFactor,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score returns the cost of a vs b. Ineligible pairs are rejected.
func (s *PairScorer) Score(a, b model.Competitor) (Result, error) {
	d := eligibility.Compare(a, b, s.now())
	if !d.Eligible() {
		return Result{}, ErrIneligiblePair
	}
	return s.FromDiff(d), nil
}

// FromDiff scores an already measured pair without re-checking eligibility.
func (s *PairScorer) FromDiff(d eligibility.Diff) Result {
	return Result{
		WeightDiff: d.WeightKg,
		RankDiff:   d.Rank,
		AgeDiff:    d.Age,
		Score: s.weightFactor*d.WeightKg +
			s.rankFactor*float64(d.Rank) +
			s.ageFactor*float64(d.Age),
	}
}
