package pgstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// EventRow is the events table.
type EventRow struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	EventDate time.Time `bun:"event_date,notnull"`
}

// RegistrationRow is the event_registrations table.
type RegistrationRow struct {
	bun.BaseModel `bun:"table:event_registrations,alias:er"`

	ID           int64     `bun:"id,pk,autoincrement"`
	EventID      int64     `bun:"event_id,notnull"`
	CompetitorID int64     `bun:"competitor_id,notnull"`
	Status       string    `bun:"status,notnull"`
	RegisteredAt time.Time `bun:"registered_at,notnull"`
}

// CompetitorRow is the competitors table.
type CompetitorRow struct {
	bun.BaseModel `bun:"table:competitors,alias:c"`

	ID          int64      `bun:"id,pk,autoincrement"`
	Name        string     `bun:"name,notnull"`
	Rank        string     `bun:"rank,notnull"`
	WeightKg    float64    `bun:"weight_kg,notnull"`
	DateOfBirth *time.Time `bun:"date_of_birth"`
	Status      string     `bun:"status,notnull"`
}

// BoutRow is the bouts table.
type BoutRow struct {
	bun.BaseModel `bun:"table:bouts,alias:b"`

	ID            int64     `bun:"id,pk,autoincrement"`
	EventID       int64     `bun:"event_id,notnull"`
	CompetitorAID int64     `bun:"competitor_a_id,notnull"`
	CompetitorBID int64     `bun:"competitor_b_id,notnull"`
	ScheduledAt   time.Time `bun:"scheduled_at,notnull"`
	Status        string    `bun:"status,notnull"`
	WinnerID      *int64    `bun:"winner_id"`
	Notes         string    `bun:"notes,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

// OfficialRow is the officials table.
type OfficialRow struct {
	bun.BaseModel `bun:"table:officials,alias:o"`

	ID            int64  `bun:"id,pk,autoincrement"`
	Name          string `bun:"name,notnull"`
	Certification string `bun:"certification,notnull"`
	Active        bool   `bun:"active,notnull"`
	CompetitorID  *int64 `bun:"competitor_id"`
}

// OfficiatingRow is the bout_officials join table.
type OfficiatingRow struct {
	bun.BaseModel `bun:"table:bout_officials,alias:bo"`

	BoutID     int64     `bun:"bout_id,pk"`
	OfficialID int64     `bun:"official_id,pk"`
	AssignedAt time.Time `bun:"assigned_at,notnull"`
}

// ResultRow is the bout_results table.
type ResultRow struct {
	bun.BaseModel `bun:"table:bout_results,alias:br"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	BoutID      int64     `bun:"bout_id,notnull,unique"`
	OfficialID  int64     `bun:"official_id,notnull"`
	WinnerID    int64     `bun:"winner_id,notnull"`
	ScoreA      int       `bun:"score_a,notnull"`
	ScoreB      int       `bun:"score_b,notnull"`
	Notes       string    `bun:"notes,notnull"`
	SubmittedAt time.Time `bun:"submitted_at,notnull"`
	Locked      bool      `bun:"locked,notnull"`
}

// PointsRow is the points_records table.
type PointsRow struct {
	bun.BaseModel `bun:"table:points_records,alias:pr"`

	CompetitorID int64     `bun:"competitor_id,pk"`
	TotalPoints  int       `bun:"total_points,notnull"`
	Wins         int       `bun:"wins,notnull"`
	Losses       int       `bun:"losses,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// ThresholdRow is the rank_thresholds table.
type ThresholdRow struct {
	bun.BaseModel `bun:"table:rank_thresholds,alias:rt"`

	Rank           string `bun:"rank,pk"`
	PointsRequired int    `bun:"points_required,notnull"`
}

// PromotionRow is the promotion_records table.
type PromotionRow struct {
	bun.BaseModel `bun:"table:promotion_records,alias:pm"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	CompetitorID      int64     `bun:"competitor_id,notnull"`
	FromRank          string    `bun:"from_rank,notnull"`
	ToRank            string    `bun:"to_rank,notnull"`
	PointsAtPromotion int       `bun:"points_at_promotion,notnull"`
	Trigger           string    `bun:"trigger,notnull"`
	Actor             string    `bun:"actor,notnull"`
	Note              string    `bun:"note,notnull"`
	PromotedAt        time.Time `bun:"promoted_at,notnull"`
}

// LeaderboardRow is the leaderboard_entries table. Year and month are 0
// when the timeframe does not use them so the composite key stays unique.
type LeaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard_entries,alias:le"`

	Timeframe    string    `bun:"timeframe,pk"`
	Year         int       `bun:"year,pk"`
	Month        int       `bun:"month,pk"`
	CompetitorID int64     `bun:"competitor_id,pk"`
	Position     int       `bun:"position,notnull"`
	Points       int       `bun:"points,notnull"`
	Rank         string    `bun:"rank,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (r EventRow) toModel() model.Event {
	return model.Event{ID: r.ID, Name: r.Name, Date: r.EventDate}
}

func (r RegistrationRow) toModel() model.Registration {
	return model.Registration{
		ID:           r.ID,
		EventID:      r.EventID,
		CompetitorID: r.CompetitorID,
		Status:       model.RegistrationStatus(r.Status),
		RegisteredAt: r.RegisteredAt,
	}
}

func (r CompetitorRow) toModel() model.Competitor {
	return model.Competitor{
		ID:          r.ID,
		Name:        r.Name,
		Rank:        rank.Rank(r.Rank),
		WeightKg:    r.WeightKg,
		DateOfBirth: r.DateOfBirth,
		Status:      model.CompetitorStatus(r.Status),
	}
}

func boutRow(b model.Bout) BoutRow {
	return BoutRow{
		ID:            b.ID,
		EventID:       b.EventID,
		CompetitorAID: b.CompetitorA,
		CompetitorBID: b.CompetitorB,
		ScheduledAt:   b.ScheduledAt,
		Status:        string(b.Status),
		WinnerID:      b.WinnerID,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
	}
}

func (r BoutRow) toModel() model.Bout {
	return model.Bout{
		ID:          r.ID,
		EventID:     r.EventID,
		CompetitorA: r.CompetitorAID,
		CompetitorB: r.CompetitorBID,
		ScheduledAt: r.ScheduledAt,
		Status:      model.BoutStatus(r.Status),
		WinnerID:    r.WinnerID,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

func (r OfficialRow) toModel() model.Official {
	return model.Official{
		ID:            r.ID,
		Name:          r.Name,
		Certification: model.CertificationLevel(r.Certification),
		Active:        r.Active,
		CompetitorID:  r.CompetitorID,
	}
}

func resultRow(r model.BoutResult) ResultRow {
	return ResultRow{
		ID:          r.ID,
		BoutID:      r.BoutID,
		OfficialID:  r.OfficialID,
		WinnerID:    r.WinnerID,
		ScoreA:      r.ScoreA,
		ScoreB:      r.ScoreB,
		Notes:       r.Notes,
		SubmittedAt: r.SubmittedAt,
		Locked:      r.Locked,
	}
}

func (r ResultRow) toModel() model.BoutResult {
	return model.BoutResult{
		ID:          r.ID,
		BoutID:      r.BoutID,
		OfficialID:  r.OfficialID,
		WinnerID:    r.WinnerID,
		ScoreA:      r.ScoreA,
		ScoreB:      r.ScoreB,
		Notes:       r.Notes,
		SubmittedAt: r.SubmittedAt,
		Locked:      r.Locked,
	}
}

func (r PointsRow) toModel() model.PointsRecord {
	return model.PointsRecord{
		CompetitorID: r.CompetitorID,
		TotalPoints:  r.TotalPoints,
		Wins:         r.Wins,
		Losses:       r.Losses,
		UpdatedAt:    r.UpdatedAt,
	}
}

func promotionRow(p model.PromotionRecord) PromotionRow {
	return PromotionRow{
		ID:                p.ID,
		CompetitorID:      p.CompetitorID,
		FromRank:          string(p.FromRank),
		ToRank:            string(p.ToRank),
		PointsAtPromotion: p.PointsAtPromotion,
		Trigger:           string(p.Trigger),
		Actor:             p.Actor,
		Note:              p.Note,
		PromotedAt:        p.PromotedAt,
	}
}

func (r PromotionRow) toModel() model.PromotionRecord {
	return model.PromotionRecord{
		ID:                r.ID,
		CompetitorID:      r.CompetitorID,
		FromRank:          rank.Rank(r.FromRank),
		ToRank:            rank.Rank(r.ToRank),
		PointsAtPromotion: r.PointsAtPromotion,
		Trigger:           model.PromotionTrigger(r.Trigger),
		Actor:             r.Actor,
		Note:              r.Note,
		PromotedAt:        r.PromotedAt,
	}
}

func (r LeaderboardRow) toModel() model.LeaderboardEntry {
	return model.LeaderboardEntry{
		Key:          model.LeaderboardKey{Timeframe: model.Timeframe(r.Timeframe), Year: r.Year, Month: r.Month},
		CompetitorID: r.CompetitorID,
		Position:     r.Position,
		Points:       r.Points,
		Rank:         rank.Rank(r.Rank),
		UpdatedAt:    r.UpdatedAt,
	}
}
