package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/ledger"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/officiating"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

const opRecord = "record result"

// ResultInput is an official's verdict on a bout.
type ResultInput struct {
	BoutID     int64
	OfficialID int64
	WinnerID   int64
	ScoreA     int
	ScoreB     int
	Notes      string
}

// Recorded is what one committed result changed.
type Recorded struct {
	Result     model.BoutResult
	Bout       model.Bout
	Points     []model.PointsRecord
	Promotions []model.PromotionRecord
}

// RecordResult stores the result of a bout and, the first time only, credits
// points, promotes, and refreshes the current leaderboards. All of it
// commits or none of it does.
func (s *Service) RecordResult(ctx context.Context, in ResultInput) (Recorded, error) {
	start := time.Now()

	if in.ScoreA < 0 || in.ScoreB < 0 {
		err := faults.Validation(opRecord, ErrNegativeScore, in.BoutID)
		s.rejectResult(ctx, in, err)
		return Recorded{}, err
	}

	key := fmt.Sprintf("bout-result:%d", in.BoutID)
	if s.guard.SeenAndRecord(ctx, key) {
		metrics.RecordDuplicateSubmission()
		err := faults.Conflict(opRecord, ErrSubmissionInFlight, in.BoutID)
		s.rejectResult(ctx, in, err)
		return Recorded{}, err
	}
	defer s.guard.Unrecord(ctx, key)

	var out Recorded
	var rebuilt []model.LeaderboardKey
	err := s.store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
		out = Recorded{}
		rebuilt = nil

		bout, err := tx.LockBout(ctx, in.BoutID)
		if err != nil {
			return classify(opRecord, err, in.BoutID)
		}
		if bout.Status == model.BoutCancelled {
			return faults.Conflict(opRecord, ErrBoutCancelled, bout.ID)
		}

		existing, err := tx.BoutResult(ctx, bout.ID)
		switch {
		case err == nil && existing.Locked:
			return faults.Conflict(opRecord, ErrResultLocked, bout.ID)
		case err != nil && !errors.Is(err, repository.ErrResultNotFound):
			return err
		}
		first := err != nil

		if err := s.checkOfficial(ctx, tx, bout.ID, in.OfficialID); err != nil {
			return err
		}
		outcome, err := ledger.Decide(bout, in.WinnerID)
		if err != nil {
			return err
		}

		now := s.now()
		res := model.BoutResult{
			ID:          uuid.New(),
			BoutID:      bout.ID,
			OfficialID:  in.OfficialID,
			WinnerID:    outcome.WinnerID,
			ScoreA:      in.ScoreA,
			ScoreB:      in.ScoreB,
			Notes:       in.Notes,
			SubmittedAt: now,
			Locked:      true,
		}
		if first {
			if err := tx.CreateBoutResult(ctx, res); err != nil {
				if errors.Is(err, repository.ErrResultExists) {
					return faults.Conflict(opRecord, ErrResultLocked, bout.ID)
				}
				return err
			}
		} else {
			res.ID = existing.ID
			if err := tx.UpdateBoutResult(ctx, res); err != nil {
				return err
			}
		}

		winner := outcome.WinnerID
		bout.WinnerID = &winner
		bout.Status = model.BoutCompleted
		if err := tx.UpdateBout(ctx, bout); err != nil {
			return err
		}
		out.Result = res
		out.Bout = bout

		// Completing a stored draft never credits points again.
		if !first {
			return nil
		}

		if err := s.credit(ctx, tx, outcome, now, &out); err != nil {
			return err
		}
		rebuilt = model.CurrentKeys(now)
		_, err = s.rebuild(ctx, tx, rebuilt, now)
		return err
	})
	if err != nil {
		s.rejectResult(ctx, in, err)
		return Recorded{}, err
	}

	metrics.RecordResultRecorded()
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	for _, k := range rebuilt {
		metrics.RecordLeaderboardRebuild(string(k.Timeframe), elapsed)
	}
	for _, p := range out.Promotions {
		metrics.RecordPromotion(string(p.Trigger))
	}
	s.publishResult(ctx, out)

	s.logger.Info(ctx, "result recorded",
		logger.Int64("bout_id", out.Bout.ID),
		logger.Int64("winner_id", out.Result.WinnerID),
		logger.Int("promotions", len(out.Promotions)),
		logger.Bool("credited", len(out.Points) > 0),
	)
	return out, nil
}

func (s *Service) checkOfficial(ctx context.Context, tx repository.Tx, boutID, officialID int64) error {
	o, err := tx.Official(ctx, officialID)
	if err != nil {
		return classify(opRecord, err, officialID)
	}
	if !o.Active {
		return faults.Validation(opRecord, officiating.ErrInactiveOfficial, officialID)
	}
	panel, err := tx.Officiating(ctx, boutID)
	if err != nil {
		return err
	}
	for _, id := range panel {
		if id == officialID {
			return nil
		}
	}
	return faults.Conflict(opRecord, ErrOfficialNotAssigned, officialID)
}

// credit applies the ledger to both sides and evaluates promotion for the
// winner and then the loser. Competitors are locked in ascending id order.
func (s *Service) credit(ctx context.Context, tx repository.Tx, o ledger.Outcome, now time.Time, out *Recorded) error {
	ids := []int64{o.WinnerID, o.LoserID}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	competitors := make(map[int64]model.Competitor, 2)
	points := make(map[int64]model.PointsRecord, 2)
	for _, id := range ids {
		c, err := tx.LockCompetitor(ctx, id)
		if err != nil {
			return classify(opRecord, err, id)
		}
		p, err := tx.PointsForUpdate(ctx, id)
		if err != nil {
			return classify(opRecord, err, id)
		}
		competitors[id] = c
		points[id] = p
	}

	points[o.WinnerID] = ledger.Win(points[o.WinnerID], now)
	points[o.LoserID] = ledger.Loss(points[o.LoserID], now)

	thresholds, err := tx.RankThresholds(ctx)
	if err != nil {
		return err
	}
	for _, id := range []int64{o.WinnerID, o.LoserID} {
		p := points[id]
		if err := tx.SavePoints(ctx, p); err != nil {
			return err
		}
		out.Points = append(out.Points, p)

		rec, ok := s.promoter.Evaluate(competitors[id], p.TotalPoints, thresholds)
		if !ok {
			continue
		}
		if err := tx.SetCompetitorRank(ctx, id, rec.ToRank); err != nil {
			return err
		}
		if err := tx.CreatePromotion(ctx, rec); err != nil {
			return err
		}
		out.Promotions = append(out.Promotions, rec)
	}
	return nil
}

func (s *Service) publishResult(ctx context.Context, out Recorded) {
	if err := s.notifier.ResultRecorded(ctx, out.Result, out.Bout); err != nil {
		s.logger.Warn(ctx, "result notification failed", logger.Error(err))
	}
	for _, p := range out.Promotions {
		if err := s.notifier.CompetitorPromoted(ctx, p); err != nil {
			s.logger.Warn(ctx, "promotion notification failed", logger.Error(err))
		}
	}
}

func (s *Service) rejectResult(ctx context.Context, in ResultInput, err error) {
	reason := kindLabel(err)
	switch {
	case errors.Is(err, ErrResultLocked):
		reason = "locked"
	case errors.Is(err, ErrSubmissionInFlight):
		reason = "in_flight"
	case errors.Is(err, ErrOfficialNotAssigned):
		reason = "official_not_assigned"
	case errors.Is(err, ledger.ErrWinnerNotInBout):
		reason = "winner_not_in_bout"
	}
	metrics.RecordResultRejected(reason)
	s.logOutcome(ctx, opRecord, err,
		logger.Int64("bout_id", in.BoutID),
		logger.Int64("official_id", in.OfficialID),
	)
}
