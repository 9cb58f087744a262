package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("record not found")

	ErrEventNotFound      = errors.New("event not found")
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrBoutNotFound       = errors.New("bout not found")
	ErrOfficialNotFound   = errors.New("official not found")
	ErrResultNotFound     = errors.New("bout result not found")
	ErrPointsNotFound     = errors.New("points record not found")

	ErrResultExists = errors.New("bout result already exists")
	ErrReadOnly     = errors.New("write attempted in a read-only transaction")
)

// IsNotFound reports whether err is any of the not-found kinds.
func IsNotFound(err error) bool {
	for _, k := range []error{
		ErrNotFound, ErrEventNotFound, ErrCompetitorNotFound, ErrBoutNotFound,
		ErrOfficialNotFound, ErrResultNotFound, ErrPointsNotFound,
	} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
