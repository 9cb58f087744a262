package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/dojo/internal/domain/rank"
)

// Timeframe selects which board an entry belongs to.
type Timeframe string

// Timeframes.
const (
	AllTime Timeframe = "all_time"
	Yearly  Timeframe = "yearly"
	Monthly Timeframe = "monthly"
)

// Sentinel errors for leaderboard keys.
var (
	ErrUnknownTimeframe = errors.New("unknown timeframe")
	ErrInvalidPeriod    = errors.New("invalid leaderboard period")
)

// LeaderboardKey identifies one board. Year and Month are zero when the
// timeframe does not use them.
type LeaderboardKey struct {
	Timeframe Timeframe
	Year      int
	Month     int
}

// AllTimeKey returns the key of the all-time board.
func AllTimeKey() LeaderboardKey { return LeaderboardKey{Timeframe: AllTime} }

// YearlyKey returns the key of the board for year.
func YearlyKey(year int) LeaderboardKey { return LeaderboardKey{Timeframe: Yearly, Year: year} }

// MonthlyKey returns the key of the board for year and month.
func MonthlyKey(year int, month time.Month) LeaderboardKey {
	return LeaderboardKey{Timeframe: Monthly, Year: year, Month: int(month)}
}

// CurrentKeys returns the three boards refreshed at now.
func CurrentKeys(now time.Time) []LeaderboardKey {
	return []LeaderboardKey{AllTimeKey(), YearlyKey(now.Year()), MonthlyKey(now.Year(), now.Month())}
}

// ParseTimeframe validates s.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case AllTime, Yearly, Monthly:
		return tf, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
}

// Validate checks that Year and Month are set exactly when the timeframe needs them.
func (k LeaderboardKey) Validate() error {
	switch k.Timeframe {
	case AllTime:
		if k.Year != 0 || k.Month != 0 {
			return fmt.Errorf("%w: all_time takes no year or month", ErrInvalidPeriod)
		}
	case Yearly:
		if k.Year <= 0 {
			return fmt.Errorf("%w: yearly needs a year", ErrInvalidPeriod)
		}
		if k.Month != 0 {
			return fmt.Errorf("%w: yearly takes no month", ErrInvalidPeriod)
		}
	case Monthly:
		if k.Year <= 0 {
			return fmt.Errorf("%w: monthly needs a year", ErrInvalidPeriod)
		}
		if k.Month < 1 || k.Month > 12 {
			return fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, k.Month)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTimeframe, string(k.Timeframe))
	}
	return nil
}

func (k LeaderboardKey) String() string {
	switch k.Timeframe {
	case Yearly:
		return fmt.Sprintf("%s/%04d", k.Timeframe, k.Year)
	case Monthly:
		return fmt.Sprintf("%s/%04d-%02d", k.Timeframe, k.Year, k.Month)
	default:
		return string(k.Timeframe)
	}
}

// LeaderboardEntry is one competitor's position on one board.
type LeaderboardEntry struct {
	Key          LeaderboardKey
	CompetitorID int64
	Position     int
	Points       int
	Rank         rank.Rank
	UpdatedAt    time.Time
}
