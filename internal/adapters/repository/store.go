// Package repository defines the transactional store the dojo core reads
// rosters from and writes decisions to.
package repository

import (
	"context"
	"time"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// TxFunc is a unit of work run inside a store transaction.
type TxFunc func(ctx context.Context, tx Tx) error

// Store provides transactional access to club state.
type Store interface {
	// View runs fn against a consistent snapshot. Writes through tx fail.
	View(ctx context.Context, fn TxFunc) error

	// Update runs fn in one atomic transaction. If fn returns an error
	// nothing it wrote is kept.
	Update(ctx context.Context, fn TxFunc) error

	Close() error
}

// Tx is the set of reads and writes available inside a transaction.
//
// Lock* methods take an exclusive lock held until the transaction ends.
// Competitors must be locked in ascending id order.
type Tx interface {
	Event(ctx context.Context, id int64) (model.Event, error)
	// LockEvent serialises bout confirmation for one event.
	LockEvent(ctx context.Context, id int64) error
	// Registrations returns every registration of the event, newest first.
	Registrations(ctx context.Context, eventID int64) ([]model.Registration, error)

	Competitor(ctx context.Context, id int64) (model.Competitor, error)
	LockCompetitor(ctx context.Context, id int64) (model.Competitor, error)
	// Competitors returns the requested competitors keyed by id. Unknown ids are omitted.
	Competitors(ctx context.Context, ids []int64) (map[int64]model.Competitor, error)
	SetCompetitorRank(ctx context.Context, id int64, r rank.Rank) error

	Bout(ctx context.Context, id int64) (model.Bout, error)
	LockBout(ctx context.Context, id int64) (model.Bout, error)
	// EventBouts returns every bout of the event ordered by schedule then id.
	EventBouts(ctx context.Context, eventID int64) ([]model.Bout, error)
	// CreateBout inserts b and sets its ID.
	CreateBout(ctx context.Context, b *model.Bout) error
	UpdateBout(ctx context.Context, b model.Bout) error

	Official(ctx context.Context, id int64) (model.Official, error)
	// Officiating returns the ids of officials on the bout panel, ascending.
	Officiating(ctx context.Context, boutID int64) ([]int64, error)
	// ReplaceOfficiating swaps the whole panel of a bout.
	ReplaceOfficiating(ctx context.Context, boutID int64, officialIDs []int64, at time.Time) error

	// BoutResult returns ErrResultNotFound when no result exists yet.
	BoutResult(ctx context.Context, boutID int64) (model.BoutResult, error)
	// CreateBoutResult returns ErrResultExists when the bout already has one.
	CreateBoutResult(ctx context.Context, r model.BoutResult) error
	UpdateBoutResult(ctx context.Context, r model.BoutResult) error

	// PointsForUpdate returns the competitor's record, creating an empty one
	// when missing, and locks it.
	PointsForUpdate(ctx context.Context, competitorID int64) (model.PointsRecord, error)
	// Points returns ErrPointsNotFound when the competitor has no record.
	Points(ctx context.Context, competitorID int64) (model.PointsRecord, error)
	SavePoints(ctx context.Context, p model.PointsRecord) error
	AllPoints(ctx context.Context) ([]model.PointsRecord, error)

	RankThresholds(ctx context.Context) (rank.Thresholds, error)

	CreatePromotion(ctx context.Context, p model.PromotionRecord) error
	// Promotions returns history newest first. A zero competitorID lists everyone.
	Promotions(ctx context.Context, competitorID int64) ([]model.PromotionRecord, error)

	// LockLeaderboards serialises rebuilds. Take it before reading points.
	LockLeaderboards(ctx context.Context) error
	// UpsertLeaderboard writes one entry per competitor under the key.
	UpsertLeaderboard(ctx context.Context, key model.LeaderboardKey, entries []model.LeaderboardEntry) error
	// Leaderboard returns the board ordered by position.
	Leaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error)
}
