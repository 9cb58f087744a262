package pgstore

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"github.com/uptrace/bun"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// SeedEvent inserts or replaces an event.
func (s *Store) SeedEvent(ctx context.Context, e model.Event) error {
	row := EventRow{ID: e.ID, Name: e.Name, EventDate: e.Date}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("event_date = EXCLUDED.event_date").
		Exec(ctx)
	return eris.Wrapf(err, "pgstore: seed event %d", e.ID)
}

// SeedCompetitor inserts or replaces a competitor.
func (s *Store) SeedCompetitor(ctx context.Context, c model.Competitor) error {
	row := CompetitorRow{
		ID:          c.ID,
		Name:        c.Name,
		Rank:        string(c.Rank),
		WeightKg:    c.WeightKg,
		DateOfBirth: c.DateOfBirth,
		Status:      string(c.Status),
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("rank = EXCLUDED.rank").
		Set("weight_kg = EXCLUDED.weight_kg").
		Set("date_of_birth = EXCLUDED.date_of_birth").
		Set("status = EXCLUDED.status").
		Exec(ctx)
	return eris.Wrapf(err, "pgstore: seed competitor %d", c.ID)
}

// SeedRegistration inserts or replaces a registration.
func (s *Store) SeedRegistration(ctx context.Context, r model.Registration) error {
	row := RegistrationRow{
		ID:           r.ID,
		EventID:      r.EventID,
		CompetitorID: r.CompetitorID,
		Status:       string(r.Status),
		RegisteredAt: r.RegisteredAt,
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("registered_at = EXCLUDED.registered_at").
		Exec(ctx)
	return eris.Wrapf(err, "pgstore: seed registration %d", r.ID)
}

// SeedOfficial inserts or replaces an official.
func (s *Store) SeedOfficial(ctx context.Context, o model.Official) error {
	row := OfficialRow{
		ID:            o.ID,
		Name:          o.Name,
		Certification: string(o.Certification),
		Active:        o.Active,
		CompetitorID:  o.CompetitorID,
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("certification = EXCLUDED.certification").
		Set("active = EXCLUDED.active").
		Set("competitor_id = EXCLUDED.competitor_id").
		Exec(ctx)
	return eris.Wrapf(err, "pgstore: seed official %d", o.ID)
}

// SeedThresholds replaces the whole rank table.
func (s *Store) SeedThresholds(ctx context.Context, t rank.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, btx bun.Tx) error {
		if _, err := btx.NewDelete().Model((*ThresholdRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return err
		}
		if len(t) == 0 {
			return nil
		}
		rows := make([]ThresholdRow, 0, len(t))
		for _, r := range rank.All() {
			if p, ok := t[r]; ok {
				rows = append(rows, ThresholdRow{Rank: string(r), PointsRequired: p})
			}
		}
		_, err := btx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	return eris.Wrap(err, "pgstore: seed thresholds")
}
