// Package seed loads a club roster from YAML into a store. It is how a fresh
// memory store gets its events, competitors and officials, and how a new
// database gets its first roster.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

const dateLayout = "2006-01-02"

// Target receives seeded records. Both stores implement it.
type Target interface {
	SeedEvent(ctx context.Context, e model.Event) error
	SeedCompetitor(ctx context.Context, c model.Competitor) error
	SeedRegistration(ctx context.Context, r model.Registration) error
	SeedOfficial(ctx context.Context, o model.Official) error
}

// Fixture is the YAML roster document.
type Fixture struct {
	Events        []Event        `koanf:"events"`
	Competitors   []Competitor   `koanf:"competitors"`
	Registrations []Registration `koanf:"registrations"`
	Officials     []Official     `koanf:"officials"`
}

// Event is one events[] item.
type Event struct {
	ID   int64  `koanf:"id"`
	Name string `koanf:"name"`
	Date string `koanf:"date"`
}

// Competitor is one competitors[] item.
type Competitor struct {
	ID          int64   `koanf:"id"`
	Name        string  `koanf:"name"`
	Rank        string  `koanf:"rank"`
	WeightKg    float64 `koanf:"weight_kg"`
	DateOfBirth string  `koanf:"date_of_birth"`
	Status      string  `koanf:"status"`
}

// Registration is one registrations[] item.
type Registration struct {
	ID           int64  `koanf:"id"`
	EventID      int64  `koanf:"event_id"`
	CompetitorID int64  `koanf:"competitor_id"`
	Status       string `koanf:"status"`
	RegisteredAt string `koanf:"registered_at"`
}

// Official is one officials[] item.
type Official struct {
	ID            int64  `koanf:"id"`
	Name          string `koanf:"name"`
	Certification string `koanf:"certification"`
	Active        *bool  `koanf:"active"`
	CompetitorID  int64  `koanf:"competitor_id"`
}

// Load reads a roster file.
func Load(path string) (*Fixture, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFixture, err)
	}
	var f Fixture
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFixture, err)
	}
	return &f, nil
}

// Apply converts every record and hands it to target. Records are applied
// in dependency order: events, competitors, registrations, officials.
func Apply(ctx context.Context, target Target, f *Fixture) error {
	for _, e := range f.Events {
		ev, err := e.toModel()
		if err != nil {
			return err
		}
		if err := target.SeedEvent(ctx, ev); err != nil {
			return err
		}
	}
	for _, c := range f.Competitors {
		comp, err := c.toModel()
		if err != nil {
			return err
		}
		if err := target.SeedCompetitor(ctx, comp); err != nil {
			return err
		}
	}
	for _, r := range f.Registrations {
		reg, err := r.toModel()
		if err != nil {
			return err
		}
		if err := target.SeedRegistration(ctx, reg); err != nil {
			return err
		}
	}
	for _, o := range f.Officials {
		if err := target.SeedOfficial(ctx, o.toModel()); err != nil {
			return err
		}
	}
	return nil
}

func (e Event) toModel() (model.Event, error) {
	d, err := time.Parse(dateLayout, e.Date)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: event %d date %q", ErrInvalidRecord, e.ID, e.Date)
	}
	return model.Event{ID: e.ID, Name: e.Name, Date: d}, nil
}

func (c Competitor) toModel() (model.Competitor, error) {
	r, err := rank.Parse(c.Rank)
	if err != nil {
		return model.Competitor{}, fmt.Errorf("%w: competitor %d: %v", ErrInvalidRecord, c.ID, err)
	}
	if c.WeightKg < 0 {
		return model.Competitor{}, fmt.Errorf("%w: competitor %d has negative weight", ErrInvalidRecord, c.ID)
	}
	out := model.Competitor{
		ID:       c.ID,
		Name:     c.Name,
		Rank:     r,
		WeightKg: c.WeightKg,
		Status:   model.CompetitorStatus(c.Status),
	}
	if out.Status == "" {
		out.Status = model.CompetitorActive
	}
	if c.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, c.DateOfBirth)
		if err != nil {
			return model.Competitor{}, fmt.Errorf("%w: competitor %d date_of_birth %q", ErrInvalidRecord, c.ID, c.DateOfBirth)
		}
		out.DateOfBirth = &dob
	}
	return out, nil
}

func (r Registration) toModel() (model.Registration, error) {
	out := model.Registration{
		ID:           r.ID,
		EventID:      r.EventID,
		CompetitorID: r.CompetitorID,
		Status:       model.RegistrationStatus(r.Status),
	}
	if out.Status == "" {
		out.Status = model.RegistrationRegistered
	}
	if r.RegisteredAt != "" {
		at, err := time.Parse(time.RFC3339, r.RegisteredAt)
		if err != nil {
			return model.Registration{}, fmt.Errorf("%w: registration %d registered_at %q", ErrInvalidRecord, r.ID, r.RegisteredAt)
		}
		out.RegisteredAt = at
	}
	return out, nil
}

func (o Official) toModel() model.Official {
	out := model.Official{
		ID:            o.ID,
		Name:          o.Name,
		Certification: model.CertificationLevel(o.Certification),
		Active:        o.Active == nil || *o.Active,
	}
	if o.CompetitorID != 0 {
		cid := o.CompetitorID
		out.CompetitorID = &cid
	}
	return out
}
