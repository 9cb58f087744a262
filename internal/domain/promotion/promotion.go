// Package promotion advances competitors along the belt ladder.
//
// The automatic path moves at most one step per evaluation, even when the
// points total clears several thresholds at once. The manual path lets an
// authorised actor set any rank.
package promotion

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

const opOverride = "promote"

// Sentinel reasons for rejected overrides.
var (
	ErrUnknownRank = errors.New("unknown rank")
	ErrSameRank    = errors.New("competitor already holds this rank")
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source for promotion timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the record id source.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// Engine builds promotion records. It never writes; callers persist the
// record and the new rank in the same transaction.
type Engine struct {
	now   func() time.Time
	newID func() uuid.UUID
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate checks whether c, now holding points, has earned the next rank.
// It reports false when c is at the top, when c's rank is unknown, when the
// next rank has no threshold, or when points fall short.
func (e *Engine) Evaluate(c model.Competitor, points int, thresholds rank.Thresholds) (model.PromotionRecord, bool) {
	next, ok := c.Rank.Next()
	if !ok {
		return model.PromotionRecord{}, false
	}
	need, ok := thresholds.For(next)
	if !ok || points < need {
		return model.PromotionRecord{}, false
	}
	return model.PromotionRecord{
		ID:                e.newID(),
		CompetitorID:      c.ID,
		FromRank:          c.Rank,
		ToRank:            next,
		PointsAtPromotion: points,
		Trigger:           model.TriggerAutomatic,
		PromotedAt:        e.now(),
	}, true
}

// Override sets c to target regardless of thresholds. Moving down the ladder
// is allowed; staying on the same rank is not.
func (e *Engine) Override(c model.Competitor, target rank.Rank, points int, actor, note string) (model.PromotionRecord, error) {
	if !target.Valid() {
		return model.PromotionRecord{}, faults.Validation(opOverride, ErrUnknownRank, c.ID)
	}
	if target == c.Rank {
		return model.PromotionRecord{}, faults.Validation(opOverride, ErrSameRank, c.ID)
	}
	return model.PromotionRecord{
		ID:                e.newID(),
		CompetitorID:      c.ID,
		FromRank:          c.Rank,
		ToRank:            target,
		PointsAtPromotion: points,
		Trigger:           model.TriggerManualOverride,
		Actor:             actor,
		Note:              note,
		PromotedAt:        e.now(),
	}, nil
}
