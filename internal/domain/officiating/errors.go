package officiating

import "errors"

// Sentinel reasons for rejected panels.
var (
	ErrInsufficientOfficials = errors.New("at least 3 officials are required")
	ErrDuplicateOfficial     = errors.New("official listed more than once")
	ErrInvalidOfficial       = errors.New("invalid official id")
	ErrInactiveOfficial      = errors.New("official is not active")
	ErrOfficialIsCompetitor  = errors.New("official competes in this event")
)
