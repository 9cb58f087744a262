// Package leaderboard recomputes ranked standings from the points ledger.
//
// Every board is a full rebuild over all points records. Yearly and monthly
// boards carry the same global ordering as the all-time board; they differ
// only in their key.
package leaderboard

import (
	"sort"
	"time"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// Build orders records by points (highest first, then lowest competitor id)
// and assigns positions 1..N under key. ranks supplies each competitor's
// current belt for the snapshot; missing entries are left empty.
func Build(key model.LeaderboardKey, records []model.PointsRecord, ranks map[int64]rank.Rank, at time.Time) []model.LeaderboardEntry {
	sorted := make([]model.PointsRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalPoints != sorted[j].TotalPoints {
			return sorted[i].TotalPoints > sorted[j].TotalPoints
		}
		return sorted[i].CompetitorID < sorted[j].CompetitorID
	})

	entries := make([]model.LeaderboardEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = model.LeaderboardEntry{
			Key:          key,
			CompetitorID: r.CompetitorID,
			Position:     i + 1,
			Points:       r.TotalPoints,
			Rank:         ranks[r.CompetitorID],
			UpdatedAt:    at,
		}
	}
	return entries
}
