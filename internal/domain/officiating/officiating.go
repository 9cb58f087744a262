// Package officiating guards bout panels: who may judge an event and how many
// officials a bout needs.
package officiating

import (
	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/model"
)

// MinOfficials is the smallest panel a bout may have.
const MinOfficials = 3

const opAssign = "assign officials"

// CanAssign reports whether o may officiate in the event described by regs
// and bouts. An official who is also a competitor is blocked while registered
// for the event or fighting in any of its live bouts.
func CanAssign(o model.Official, regs []model.Registration, bouts []model.Bout) bool {
	if o.CompetitorID == nil {
		return true
	}
	cid := *o.CompetitorID
	for _, r := range regs {
		if r.CompetitorID == cid && r.Active() {
			return false
		}
	}
	for _, b := range bouts {
		if b.Booked() && b.Involves(cid) {
			return false
		}
	}
	return true
}

// ValidatePanel checks the shape of a requested panel before any lookups.
func ValidatePanel(officialIDs []int64) error {
	seen := make(map[int64]struct{}, len(officialIDs))
	for _, id := range officialIDs {
		if id <= 0 {
			return faults.Validation(opAssign, ErrInvalidOfficial, id)
		}
		if _, ok := seen[id]; ok {
			return faults.Validation(opAssign, ErrDuplicateOfficial, id)
		}
		seen[id] = struct{}{}
	}
	if len(seen) < MinOfficials {
		return faults.Validation(opAssign, ErrInsufficientOfficials)
	}
	return nil
}

// CheckPanel runs ValidatePanel and then the conflict check against the
// event. Inactive officials are rejected as a validation failure; conflicted
// officials are all reported together in one conflict.
func CheckPanel(officials []model.Official, regs []model.Registration, bouts []model.Bout) error {
	ids := make([]int64, 0, len(officials))
	for _, o := range officials {
		ids = append(ids, o.ID)
	}
	if err := ValidatePanel(ids); err != nil {
		return err
	}

	var inactive, conflicted []int64
	for _, o := range officials {
		if !o.Active {
			inactive = append(inactive, o.ID)
			continue
		}
		if !CanAssign(o, regs, bouts) {
			conflicted = append(conflicted, o.ID)
		}
	}
	if len(inactive) > 0 {
		return faults.Validation(opAssign, ErrInactiveOfficial, inactive...)
	}
	if len(conflicted) > 0 {
		return faults.Conflict(opAssign, ErrOfficialIsCompetitor, conflicted...)
	}
	return nil
}
