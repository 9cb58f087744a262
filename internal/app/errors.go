package service

import "errors"

// Sentinel reasons for rejected requests.
var (
	ErrNegativeScore       = errors.New("scores must not be negative")
	ErrBoutCancelled       = errors.New("bout is cancelled")
	ErrResultLocked        = errors.New("bout result is locked")
	ErrOfficialNotAssigned = errors.New("official is not assigned to this bout")
	ErrSubmissionInFlight  = errors.New("a result for this bout is already being recorded")
)
