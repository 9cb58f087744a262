// Package types contains the JSON shapes exchanged over the HTTP API.
package types

import (
	"time"

	"github.com/okian/dojo/internal/domain/matchmaking"
	"github.com/okian/dojo/internal/domain/model"
)

// Competitor is the public view of a competitor.
type Competitor struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Rank        string            `json:"rank"`
	WeightKg    float64           `json:"weight_kg"`
	WeightClass model.WeightClass `json:"weight_class"`
}

// Proposal is one suggested bout.
type Proposal struct {
	A          Competitor `json:"competitor_a"`
	B          Competitor `json:"competitor_b"`
	WeightDiff float64    `json:"weight_diff"`
	RankDiff   int        `json:"rank_diff"`
	AgeDiff    int        `json:"age_diff"`
	Score      float64    `json:"score"`
}

// Selection is one organiser pick in a confirm request.
type Selection struct {
	CompetitorA int64 `json:"competitor_a"`
	CompetitorB int64 `json:"competitor_b"`
}

// ConfirmRequest is the body of a confirm call.
type ConfirmRequest struct {
	Selections []Selection `json:"selections"`
}

// Bout is a persisted bout.
type Bout struct {
	ID          int64     `json:"id"`
	EventID     int64     `json:"event_id"`
	CompetitorA int64     `json:"competitor_a"`
	CompetitorB int64     `json:"competitor_b"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	WinnerID    *int64    `json:"winner_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// PanelRequest is the body of an assign-officials call.
type PanelRequest struct {
	OfficialIDs []int64 `json:"official_ids"`
}

// Assignment is one official on a bout panel.
type Assignment struct {
	BoutID     int64     `json:"bout_id"`
	OfficialID int64     `json:"official_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Eligibility answers whether an official may judge an event.
type Eligibility struct {
	OfficialID int64 `json:"official_id"`
	EventID    int64 `json:"event_id"`
	CanAssign  bool  `json:"can_assign"`
}

// ResultRequest is the body of a result submission.
type ResultRequest struct {
	OfficialID int64  `json:"official_id"`
	WinnerID   int64  `json:"winner_id"`
	ScoreA     int    `json:"score_a"`
	ScoreB     int    `json:"score_b"`
	Notes      string `json:"notes,omitempty"`
}

// Result is a recorded bout outcome.
type Result struct {
	ID          string    `json:"id"`
	BoutID      int64     `json:"bout_id"`
	OfficialID  int64     `json:"official_id"`
	WinnerID    int64     `json:"winner_id"`
	ScoreA      int       `json:"score_a"`
	ScoreB      int       `json:"score_b"`
	Notes       string    `json:"notes,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Locked      bool      `json:"locked"`
}

// Points is a competitor's running tally.
type Points struct {
	CompetitorID int64 `json:"competitor_id"`
	TotalPoints  int   `json:"total_points"`
	Wins         int   `json:"wins"`
	Losses       int   `json:"losses"`
}

// Promotion is one rank change.
type Promotion struct {
	ID                string    `json:"id"`
	CompetitorID      int64     `json:"competitor_id"`
	FromRank          string    `json:"from_rank"`
	ToRank            string    `json:"to_rank"`
	PointsAtPromotion int       `json:"points_at_promotion"`
	Trigger           string    `json:"trigger"`
	Actor             string    `json:"actor,omitempty"`
	Note              string    `json:"note,omitempty"`
	PromotedAt        time.Time `json:"promoted_at"`
}

// RecordedResult is the response to a result submission.
type RecordedResult struct {
	Result     Result      `json:"result"`
	Bout       Bout        `json:"bout"`
	Points     []Points    `json:"points"`
	Promotions []Promotion `json:"promotions"`
}

// PromoteRequest is the body of a manual promotion.
type PromoteRequest struct {
	Rank  string `json:"rank"`
	Actor string `json:"actor"`
	Note  string `json:"note,omitempty"`
}

// Entry is one leaderboard row.
type Entry struct {
	Position     int    `json:"position"`
	CompetitorID int64  `json:"competitor_id"`
	Points       int    `json:"points"`
	Rank         string `json:"rank"`
}

// Leaderboard is one board.
type Leaderboard struct {
	Timeframe string  `json:"timeframe"`
	Year      int     `json:"year,omitempty"`
	Month     int     `json:"month,omitempty"`
	Entries   []Entry `json:"entries"`
}

// FromCompetitor maps c, deriving its weight class.
func FromCompetitor(c model.Competitor) Competitor {
	return Competitor{
		ID:          c.ID,
		Name:        c.Name,
		Rank:        c.Rank.String(),
		WeightKg:    c.WeightKg,
		WeightClass: c.WeightClass(),
	}
}

// FromProposals maps proposed pairs in order.
func FromProposals(pairs []matchmaking.ProposedPair) []Proposal {
	out := make([]Proposal, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Proposal{
			A:          FromCompetitor(p.A),
			B:          FromCompetitor(p.B),
			WeightDiff: p.WeightDiff,
			RankDiff:   p.RankDiff,
			AgeDiff:    p.AgeDiff,
			Score:      p.Score,
		})
	}
	return out
}

// Picks converts the request selections to matchmaking selections.
func (r ConfirmRequest) Picks() []matchmaking.Selection {
	out := make([]matchmaking.Selection, 0, len(r.Selections))
	for _, s := range r.Selections {
		out = append(out, matchmaking.Selection{A: s.CompetitorA, B: s.CompetitorB})
	}
	return out
}

// FromBout maps b.
func FromBout(b model.Bout) Bout {
	return Bout{
		ID:          b.ID,
		EventID:     b.EventID,
		CompetitorA: b.CompetitorA,
		CompetitorB: b.CompetitorB,
		ScheduledAt: b.ScheduledAt,
		Status:      string(b.Status),
		WinnerID:    b.WinnerID,
		Notes:       b.Notes,
	}
}

// FromBouts maps bouts in order.
func FromBouts(bouts []model.Bout) []Bout {
	out := make([]Bout, 0, len(bouts))
	for _, b := range bouts {
		out = append(out, FromBout(b))
	}
	return out
}

// FromAssignments maps panel records in order.
func FromAssignments(as []model.OfficiatingAssignment) []Assignment {
	out := make([]Assignment, 0, len(as))
	for _, a := range as {
		out = append(out, Assignment{BoutID: a.BoutID, OfficialID: a.OfficialID, AssignedAt: a.AssignedAt})
	}
	return out
}

// FromResult maps r.
func FromResult(r model.BoutResult) Result {
	return Result{
		ID:          r.ID.String(),
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

// FromPoints maps tallies in order.
func FromPoints(ps []model.PointsRecord) []Points {
	out := make([]Points, 0, len(ps))
	for _, p := range ps {
		out = append(out, Points{CompetitorID: p.CompetitorID, TotalPoints: p.TotalPoints, Wins: p.Wins, Losses: p.Losses})
	}
	return out
}

// FromPromotion maps p.
func FromPromotion(p model.PromotionRecord) Promotion {
	return Promotion{
		ID:                p.ID.String(),
		CompetitorID:      p.CompetitorID,
		FromRank:          p.FromRank.String(),
		ToRank:            p.ToRank.String(),
		PointsAtPromotion: p.PointsAtPromotion,
		Trigger:           string(p.Trigger),
		Actor:             p.Actor,
		Note:              p.Note,
		PromotedAt:        p.PromotedAt,
	}
}

// FromPromotions maps records in order.
func FromPromotions(ps []model.PromotionRecord) []Promotion {
	out := make([]Promotion, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromPromotion(p))
	}
	return out
}

// FromLeaderboard maps a board's rows, which must already be in position order.
func FromLeaderboard(key model.LeaderboardKey, rows []model.LeaderboardEntry) Leaderboard {
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			Position:     r.Position,
			CompetitorID: r.CompetitorID,
			Points:       r.Points,
			Rank:         r.Rank.String(),
		})
	}
	return Leaderboard{Timeframe: string(key.Timeframe), Year: key.Year, Month: key.Month, Entries: entries}
}
