// Package site serves the landing route of the HTTP server.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DocsPath is where the API reference lives.
const DocsPath = "/api-docs"

// Register attaches the landing route to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / by sending browsers to the API reference.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, DocsPath, http.StatusFound)
}
