package memstore

import (
	"context"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// SeedEvent implements seed.Target.
func (s *Store) SeedEvent(_ context.Context, e model.Event) error {
	s.PutEvent(e)
	return nil
}

// SeedCompetitor implements seed.Target.
func (s *Store) SeedCompetitor(_ context.Context, c model.Competitor) error {
	s.PutCompetitor(c)
	return nil
}

// SeedRegistration implements seed.Target.
func (s *Store) SeedRegistration(_ context.Context, r model.Registration) error {
	s.PutRegistration(r)
	return nil
}

// SeedOfficial implements seed.Target.
func (s *Store) SeedOfficial(_ context.Context, o model.Official) error {
	s.PutOfficial(o)
	return nil
}

// SeedThresholds implements seed.Target.
func (s *Store) SeedThresholds(_ context.Context, t rank.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.SetThresholds(t)
	return nil
}
