package api

import (
	"context"
	"net/http"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/types"
)

// OfficialsDependencies defines the panel operations the handler needs.
type OfficialsDependencies interface {
	CanAssign(ctx context.Context, officialID, eventID int64) (bool, error)
	AssignOfficials(ctx context.Context, boutID int64, officialIDs []int64) ([]model.OfficiatingAssignment, error)
}

// OfficialsHandler serves eligibility checks and panel assignment.
type OfficialsHandler struct {
	deps OfficialsDependencies
}

// NewOfficialsHandler creates a new officials handler.
func NewOfficialsHandler(deps OfficialsDependencies) *OfficialsHandler {
	return &OfficialsHandler{deps: deps}
}

// HandleEligibility handles GET /events/{eventID}/officials/{officialID}/eligibility.
func (h *OfficialsHandler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeFailure(w, err)
		return
	}
	officialID, err := pathID(r, "officialID")
	if err != nil {
		writeFailure(w, err)
		return
	}
	ok, err := h.deps.CanAssign(r.Context(), officialID, eventID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Eligibility{OfficialID: officialID, EventID: eventID, CanAssign: ok})
}

// HandleAssign handles PUT /bouts/{boutID}/officials. The panel replaces any
// previous one.
func (h *OfficialsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	boutID, err := pathID(r, "boutID")
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req types.PanelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	assigned, err := h.deps.AssignOfficials(r.Context(), boutID, req.OfficialIDs)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromAssignments(assigned))
}
