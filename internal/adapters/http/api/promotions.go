package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
	"github.com/okian/dojo/internal/domain/types"
)

// PromotionDependencies defines the promotion operations the handler needs.
type PromotionDependencies interface {
	Promote(ctx context.Context, competitorID int64, target rank.Rank, actor, note string) (model.PromotionRecord, error)
	Promotions(ctx context.Context, competitorID int64) ([]model.PromotionRecord, error)
}

// PromotionHandler serves manual overrides and the promotion audit trail.
type PromotionHandler struct {
	deps PromotionDependencies
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(deps PromotionDependencies) *PromotionHandler {
	return &PromotionHandler{deps: deps}
}

// HandlePromote handles POST /competitors/{competitorID}/promotions.
func (h *PromotionHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	competitorID, err := pathID(r, "competitorID")
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req types.PromoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	// Unknown ranks are passed through so the engine reports them as a
	// validation failure. The actor is optional.
	rec, err := h.deps.Promote(r.Context(), competitorID, rank.Rank(strings.ToLower(req.Rank)), strings.TrimSpace(req.Actor), req.Note)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromPromotion(rec))
}

// HandleList handles GET /promotions?competitor_id=N. Without a filter it
// returns every record.
func (h *PromotionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var competitorID int64
	if raw := r.URL.Query().Get("competitor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeFailure(w, fmt.Errorf("%w: competitor_id must be a positive integer", ErrBadRequest))
			return
		}
		competitorID = id
	}
	recs, err := h.deps.Promotions(r.Context(), competitorID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromPromotions(recs))
}
