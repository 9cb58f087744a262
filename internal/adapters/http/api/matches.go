package api

import (
	"context"
	"net/http"

	"github.com/okian/dojo/internal/domain/matchmaking"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/types"
)

// MatchDependencies defines the matchmaking operations the handler needs.
type MatchDependencies interface {
	ProposeMatches(ctx context.Context, eventID int64) ([]matchmaking.ProposedPair, error)
	ConfirmProposals(ctx context.Context, eventID int64, picks []matchmaking.Selection) ([]model.Bout, error)
}

// MatchHandler serves proposal and confirmation requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandlePropose handles GET /events/{eventID}/proposals.
func (h *MatchHandler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeFailure(w, err)
		return
	}
	pairs, err := h.deps.ProposeMatches(r.Context(), eventID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromProposals(pairs))
}

// HandleConfirm handles POST /events/{eventID}/bouts.
func (h *MatchHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req types.ConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	bouts, err := h.deps.ConfirmProposals(r.Context(), eventID, req.Picks())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromBouts(bouts))
}
