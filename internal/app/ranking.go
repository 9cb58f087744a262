package service

import (
	"context"
	"errors"
	"time"

	repository "github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/leaderboard"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

const (
	opPromote     = "promote"
	opPromotions  = "list promotions"
	opRebuild     = "rebuild leaderboard"
	opLeaderboard = "read leaderboard"
)

// Promote sets a competitor's rank by hand. Thresholds are ignored; the
// record carries the actor and note. Leaderboards pick up the new rank on
// their next rebuild.
func (s *Service) Promote(ctx context.Context, competitorID int64, target rank.Rank, actor, note string) (model.PromotionRecord, error) {
	var rec model.PromotionRecord
	err := s.store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.LockCompetitor(ctx, competitorID)
		if err != nil {
			return classify(opPromote, err, competitorID)
		}
		points := 0
		p, err := tx.Points(ctx, competitorID)
		switch {
		case err == nil:
			points = p.TotalPoints
		case !errors.Is(err, repository.ErrPointsNotFound):
			return err
		}

		rec, err = s.promoter.Override(c, target, points, actor, note)
		if err != nil {
			return err
		}
		if err := tx.SetCompetitorRank(ctx, competitorID, rec.ToRank); err != nil {
			return err
		}
		return tx.CreatePromotion(ctx, rec)
	})
	if err != nil {
		s.logOutcome(ctx, opPromote, err, logger.Int64("competitor_id", competitorID))
		return model.PromotionRecord{}, err
	}

	metrics.RecordPromotion(string(rec.Trigger))
	if err := s.notifier.CompetitorPromoted(ctx, rec); err != nil {
		s.logger.Warn(ctx, "promotion notification failed", logger.Error(err))
	}
	s.logger.Info(ctx, "rank overridden",
		logger.Int64("competitor_id", competitorID),
		logger.String("from", rec.FromRank.String()),
		logger.String("to", rec.ToRank.String()),
		logger.String("actor", actor),
	)
	return rec, nil
}

// Promotions lists rank changes newest first. A zero competitorID lists
// everyone's.
func (s *Service) Promotions(ctx context.Context, competitorID int64) ([]model.PromotionRecord, error) {
	var out []model.PromotionRecord
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		if competitorID != 0 {
			if _, err := tx.Competitor(ctx, competitorID); err != nil {
				return classify(opPromotions, err, competitorID)
			}
		}
		var err error
		out, err = tx.Promotions(ctx, competitorID)
		return err
	})
	if err != nil {
		s.logOutcome(ctx, opPromotions, err, logger.Int64("competitor_id", competitorID))
		return nil, err
	}
	return out, nil
}

// RebuildLeaderboard recomputes one board from every points record. Yearly
// and monthly boards rank the same global totals as the all-time board.
func (s *Service) RebuildLeaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error) {
	if err := key.Validate(); err != nil {
		err = faults.Validation(opRebuild, err)
		s.logOutcome(ctx, opRebuild, err)
		return nil, err
	}

	start := time.Now()
	var entries []model.LeaderboardEntry
	err := s.store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
		boards, err := s.rebuild(ctx, tx, []model.LeaderboardKey{key}, s.now())
		if err != nil {
			return err
		}
		entries = boards[0]
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, opRebuild, err, logger.String("board", key.String()))
		return nil, err
	}

	metrics.RecordLeaderboardRebuild(string(key.Timeframe), float64(time.Since(start).Microseconds())/1000)
	s.logger.Info(ctx, "leaderboard rebuilt",
		logger.String("board", key.String()),
		logger.Int("entries", len(entries)),
	)
	return entries, nil
}

// Leaderboard reads a stored board ordered by position.
func (s *Service) Leaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error) {
	if err := key.Validate(); err != nil {
		return nil, faults.Validation(opLeaderboard, err)
	}
	var out []model.LeaderboardEntry
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		out, err = tx.Leaderboard(ctx, key)
		return err
	})
	if err != nil {
		s.logOutcome(ctx, opLeaderboard, err, logger.String("board", key.String()))
		return nil, err
	}
	return out, nil
}

// rebuild writes every board in keys from one read of the points table.
func (s *Service) rebuild(ctx context.Context, tx repository.Tx, keys []model.LeaderboardKey, at time.Time) ([][]model.LeaderboardEntry, error) {
	if err := tx.LockLeaderboards(ctx); err != nil {
		return nil, err
	}
	records, err := tx.AllPoints(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.CompetitorID)
	}
	competitors, err := tx.Competitors(ctx, ids)
	if err != nil {
		return nil, err
	}
	ranks := make(map[int64]rank.Rank, len(competitors))
	for id, c := range competitors {
		ranks[id] = c.Rank
	}

	boards := make([][]model.LeaderboardEntry, 0, len(keys))
	for _, key := range keys {
		entries := leaderboard.Build(key, records, ranks, at)
		if err := tx.UpsertLeaderboard(ctx, key, entries); err != nil {
			return nil, err
		}
		boards = append(boards, entries)
	}
	return boards, nil
}
