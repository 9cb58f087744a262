package api

import (
	"errors"
	"net/http"

	"github.com/okian/dojo/internal/domain/faults"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// writeFailure maps err to a status by its fault kind. Unclassified errors
// are reported as 500 without their message.
func writeFailure(w http.ResponseWriter, err error) {
	if isBadRequest(err) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ids := faults.IDs(err)
	switch faults.KindOf(err) {
	case faults.ErrValidation:
		writeError(w, http.StatusBadRequest, "validation_failed", err, ids...)
	case faults.ErrNotFound:
		writeError(w, http.StatusNotFound, "not_found", err, ids...)
	case faults.ErrConflict:
		writeError(w, http.StatusConflict, "conflict", err, ids...)
	case faults.ErrConsistency:
		writeError(w, http.StatusConflict, "consistency_failed", err, ids...)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
