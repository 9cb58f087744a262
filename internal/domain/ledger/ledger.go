// Package ledger keeps per-competitor win/loss point tallies.
package ledger

import (
	"errors"
	"time"

	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/model"
)

// Points awarded per bout.
const (
	WinPoints  = 30
	LossPoints = 10
)

// ErrWinnerNotInBout is returned when the declared winner did not fight.
var ErrWinnerNotInBout = errors.New("winner is not a competitor in this bout")

// Outcome names the two sides of a decided bout.
type Outcome struct {
	WinnerID int64
	LoserID  int64
}

// Decide resolves the loser of b given its winner.
func Decide(b model.Bout, winnerID int64) (Outcome, error) {
	loser, ok := b.Opponent(winnerID)
	if !ok {
		return Outcome{}, faults.Validation("record result", ErrWinnerNotInBout, winnerID)
	}
	return Outcome{WinnerID: winnerID, LoserID: loser}, nil
}

// Win credits a win to r.
func Win(r model.PointsRecord, at time.Time) model.PointsRecord {
	r.TotalPoints += WinPoints
	r.Wins++
	r.UpdatedAt = at
	return r
}

// Loss credits a loss to r.
func Loss(r model.PointsRecord, at time.Time) model.PointsRecord {
	r.TotalPoints += LossPoints
	r.Losses++
	r.UpdatedAt = at
	return r
}
