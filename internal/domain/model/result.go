package model

import (
	"time"

	"github.com/google/uuid"
)

// BoutResult is the outcome an official submits for a bout. Once Locked it
// cannot be changed.
type BoutResult struct {
	ID          uuid.UUID
	BoutID      int64
	OfficialID  int64
	WinnerID    int64
	ScoreA      int
	ScoreB      int
	Notes       string
	SubmittedAt time.Time
	Locked      bool
}

// PointsRecord is a competitor's running tally. There is at most one per competitor.
type PointsRecord struct {
	CompetitorID int64
	TotalPoints  int
	Wins         int
	Losses       int
	UpdatedAt    time.Time
}
