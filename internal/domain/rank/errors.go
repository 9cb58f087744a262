package rank

import "errors"

// Sentinel errors for rank parsing and threshold validation.
var (
	ErrUnknownRank         = errors.New("unknown rank")
	ErrLowestRankThreshold = errors.New("lowest rank cannot carry a threshold")
	ErrNegativeThreshold   = errors.New("threshold must not be negative")
	ErrThresholdOrder      = errors.New("thresholds must strictly increase along the ladder")
)
