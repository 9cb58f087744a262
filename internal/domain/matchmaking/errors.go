package matchmaking

import "errors"

// Sentinel reasons for rejected confirmations.
var (
	ErrNoSelections       = errors.New("no pairs selected")
	ErrMissingCompetitor  = errors.New("selection is missing a competitor")
	ErrSameCompetitor     = errors.New("a competitor cannot fight themselves")
	ErrDuplicateSelection = errors.New("competitor selected more than once")
	ErrNotRegistered      = errors.New("competitor is not registered for the event")
	ErrDoubleBooking      = errors.New("competitor already has a bout in this event")
)
