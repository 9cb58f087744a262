package seed

import "errors"

// Sentinel kinds for roster loading.
var (
	ErrLoadFixture   = errors.New("load roster failed")
	ErrInvalidRecord = errors.New("invalid roster record")
)
