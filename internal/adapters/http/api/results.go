package api

import (
	"context"
	"net/http"

	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/types"
)

// ResultDependencies defines the result operation the handler needs.
type ResultDependencies interface {
	RecordResult(ctx context.Context, in service.ResultInput) (service.Recorded, error)
}

// ResultHandler serves result submissions.
type ResultHandler struct {
	deps ResultDependencies
}

// NewResultHandler creates a new result handler.
func NewResultHandler(deps ResultDependencies) *ResultHandler {
	return &ResultHandler{deps: deps}
}

// HandleRecord handles POST /bouts/{boutID}/result.
func (h *ResultHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	boutID, err := pathID(r, "boutID")
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req types.ResultRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	out, err := h.deps.RecordResult(r.Context(), service.ResultInput{
		BoutID:     boutID,
		OfficialID: req.OfficialID,
		WinnerID:   req.WinnerID,
		ScoreA:     req.ScoreA,
		ScoreB:     req.ScoreB,
		Notes:      req.Notes,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.RecordedResult{
		Result:     types.FromResult(out.Result),
		Bout:       types.FromBout(out.Bout),
		Points:     types.FromPoints(out.Points),
		Promotions: types.FromPromotions(out.Promotions),
	})
}
