package service

import (
	"context"
	"errors"

	repository "github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/officiating"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

const (
	opCanAssign = "can assign"
	opAssign    = "assign officials"
)

// CanAssign reports whether the official may judge bouts of the event.
func (s *Service) CanAssign(ctx context.Context, officialID, eventID int64) (bool, error) {
	var ok bool
	err := s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		o, err := tx.Official(ctx, officialID)
		if err != nil {
			return classify(opCanAssign, err, officialID)
		}
		if _, err := tx.Event(ctx, eventID); err != nil {
			return classify(opCanAssign, err, eventID)
		}
		regs, err := tx.Registrations(ctx, eventID)
		if err != nil {
			return err
		}
		bouts, err := tx.EventBouts(ctx, eventID)
		if err != nil {
			return err
		}
		ok = officiating.CanAssign(o, regs, bouts)
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, opCanAssign, err,
			logger.Int64("official_id", officialID),
			logger.Int64("event_id", eventID),
		)
		return false, err
	}
	return ok, nil
}

// AssignOfficials replaces the panel of a bout. Either every official is
// written or none is.
func (s *Service) AssignOfficials(ctx context.Context, boutID int64, officialIDs []int64) ([]model.OfficiatingAssignment, error) {
	if err := officiating.ValidatePanel(officialIDs); err != nil {
		s.rejectPanel(ctx, boutID, err)
		return nil, err
	}

	var panel []model.OfficiatingAssignment
	err := s.store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
		bout, err := tx.LockBout(ctx, boutID)
		if err != nil {
			return classify(opAssign, err, boutID)
		}

		officials := make([]model.Official, 0, len(officialIDs))
		for _, id := range officialIDs {
			o, err := tx.Official(ctx, id)
			if err != nil {
				return classify(opAssign, err, id)
			}
			officials = append(officials, o)
		}

		regs, err := tx.Registrations(ctx, bout.EventID)
		if err != nil {
			return err
		}
		bouts, err := tx.EventBouts(ctx, bout.EventID)
		if err != nil {
			return err
		}
		if err := officiating.CheckPanel(officials, regs, bouts); err != nil {
			return err
		}

		at := s.now()
		if err := tx.ReplaceOfficiating(ctx, boutID, officialIDs, at); err != nil {
			return err
		}
		panel = make([]model.OfficiatingAssignment, 0, len(officialIDs))
		for _, id := range officialIDs {
			panel = append(panel, model.OfficiatingAssignment{BoutID: boutID, OfficialID: id, AssignedAt: at})
		}
		return nil
	})
	if err != nil {
		s.rejectPanel(ctx, boutID, err)
		return nil, err
	}

	metrics.RecordOfficiatingAssigned(len(panel))
	s.logger.Info(ctx, "officials assigned",
		logger.Int64("bout_id", boutID),
		logger.Any("official_ids", officialIDs),
	)
	return panel, nil
}

func (s *Service) rejectPanel(ctx context.Context, boutID int64, err error) {
	reason := kindLabel(err)
	switch {
	case errors.Is(err, officiating.ErrInsufficientOfficials):
		reason = "insufficient"
	case errors.Is(err, officiating.ErrOfficialIsCompetitor):
		reason = "competitor_conflict"
	case errors.Is(err, officiating.ErrInactiveOfficial):
		reason = "inactive"
	}
	metrics.RecordOfficiatingRejection(reason)
	s.logOutcome(ctx, opAssign, err, logger.Int64("bout_id", boutID))
}
