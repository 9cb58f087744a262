package service

import (
	"context"

	repository "github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/matchmaking"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

const (
	opPropose = "propose matches"
	opConfirm = "confirm proposals"
)

// ProposeMatches pairs the competitors registered for an event who are not
// yet booked into a live bout. It writes nothing.
func (s *Service) ProposeMatches(ctx context.Context, eventID int64) ([]matchmaking.ProposedPair, error) {
	var pairs []matchmaking.ProposedPair
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Event(ctx, eventID); err != nil {
			return classify(opPropose, err, eventID)
		}
		regs, err := tx.Registrations(ctx, eventID)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(regs))
		for _, r := range regs {
			ids = append(ids, r.CompetitorID)
		}
		competitors, err := tx.Competitors(ctx, ids)
		if err != nil {
			return err
		}
		bouts, err := tx.EventBouts(ctx, eventID)
		if err != nil {
			return err
		}

		entrants := make([]matchmaking.Entrant, 0, len(regs))
		for _, r := range regs {
			c, ok := competitors[r.CompetitorID]
			if !ok {
				continue
			}
			entrants = append(entrants, matchmaking.Entrant{Competitor: c, Status: r.Status})
		}
		pairs = s.matchmaker.Propose(entrants, bouts)
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, opPropose, err, logger.Int64("event_id", eventID))
		return nil, err
	}

	metrics.RecordMatchProposal(len(pairs))
	s.logger.Debug(ctx, "matches proposed",
		logger.Int64("event_id", eventID),
		logger.Int("pairs", len(pairs)),
	)
	return pairs, nil
}

// ConfirmProposals turns selected pairs into scheduled bouts. Registrations
// and bouts are re-read under the event lock so two concurrent confirmations
// cannot book the same competitor twice.
func (s *Service) ConfirmProposals(ctx context.Context, eventID int64, picks []matchmaking.Selection) ([]model.Bout, error) {
	var created []model.Bout
	err := s.store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockEvent(ctx, eventID); err != nil {
			return classify(opConfirm, err, eventID)
		}
		event, err := tx.Event(ctx, eventID)
		if err != nil {
			return classify(opConfirm, err, eventID)
		}
		regs, err := tx.Registrations(ctx, eventID)
		if err != nil {
			return err
		}
		existing, err := tx.EventBouts(ctx, eventID)
		if err != nil {
			return err
		}

		bouts, err := matchmaking.Plan(event, regs, existing, picks, s.schedule, s.now())
		if err != nil {
			return err
		}
		for i := range bouts {
			if err := tx.CreateBout(ctx, &bouts[i]); err != nil {
				return err
			}
		}
		created = bouts
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, opConfirm, err, logger.Int64("event_id", eventID))
		return nil, err
	}

	metrics.RecordBoutsConfirmed(len(created))
	if err := s.notifier.BoutsConfirmed(ctx, eventID, created); err != nil {
		s.logger.Warn(ctx, "bouts confirmed notification failed", logger.Error(err))
	}
	s.logger.Info(ctx, "bouts confirmed",
		logger.Int64("event_id", eventID),
		logger.Int("bouts", len(created)),
	)
	return created, nil
}
