package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	RebuildLeaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error)
	Leaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGet handles GET /leaderboards/{timeframe}?year=Y&month=M.
func (h *LeaderboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key, err := leaderboardKey(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows, err := h.deps.Leaderboard(r.Context(), key)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromLeaderboard(key, rows))
}

// HandleRebuild handles POST /leaderboards/{timeframe}/rebuild?year=Y&month=M.
func (h *LeaderboardHandler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	key, err := leaderboardKey(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows, err := h.deps.RebuildLeaderboard(r.Context(), key)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromLeaderboard(key, rows))
}

// leaderboardKey parses the board address. Period checks are left to the
// service so both routes reject bad periods the same way.
func leaderboardKey(r *http.Request) (model.LeaderboardKey, error) {
	tf, err := model.ParseTimeframe(chi.URLParam(r, "timeframe"))
	if err != nil {
		return model.LeaderboardKey{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	year, err := queryInt(r, "year")
	if err != nil {
		return model.LeaderboardKey{}, err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return model.LeaderboardKey{}, err
	}
	return model.LeaderboardKey{Timeframe: tf, Year: year, Month: month}, nil
}
