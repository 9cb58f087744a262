// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/matchmaking"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProposeMatches(ctx context.Context, eventID int64) ([]matchmaking.ProposedPair, error)
	ConfirmProposals(ctx context.Context, eventID int64, picks []matchmaking.Selection) ([]model.Bout, error)

	CanAssign(ctx context.Context, officialID, eventID int64) (bool, error)
	AssignOfficials(ctx context.Context, boutID int64, officialIDs []int64) ([]model.OfficiatingAssignment, error)

	RecordResult(ctx context.Context, in service.ResultInput) (service.Recorded, error)

	Promote(ctx context.Context, competitorID int64, target rank.Rank, actor, note string) (model.PromotionRecord, error)
	Promotions(ctx context.Context, competitorID int64) ([]model.PromotionRecord, error)

	RebuildLeaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error)
	Leaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error)

	InFlight() int64
}

// Option configures the Server.
type Option func(*Server)

// WithAllowedOrigins restricts CORS to origins. Empty means any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	origins []string

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	matchHandler       *MatchHandler
	officialsHandler   *OfficialsHandler
	resultHandler      *ResultHandler
	promotionHandler   *PromotionHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		matchHandler:       NewMatchHandler(deps),
		officialsHandler:   NewOfficialsHandler(deps),
		resultHandler:      NewResultHandler(deps),
		promotionHandler:   NewPromotionHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/proposals", s.matchHandler.HandlePropose)
		r.Post("/bouts", s.matchHandler.HandleConfirm)
		r.Get("/officials/{officialID}/eligibility", s.officialsHandler.HandleEligibility)
	})
	r.Route("/bouts/{boutID}", func(r chi.Router) {
		r.Put("/officials", s.officialsHandler.HandleAssign)
		r.Post("/result", s.resultHandler.HandleRecord)
	})
	r.Post("/competitors/{competitorID}/promotions", s.promotionHandler.HandlePromote)
	r.Get("/promotions", s.promotionHandler.HandleList)
	r.Route("/leaderboards/{timeframe}", func(r chi.Router) {
		r.Get("/", s.leaderboardHandler.HandleGet)
		r.Post("/rebuild", s.leaderboardHandler.HandleRebuild)
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	IDs     []int64 `json:"ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error, ids ...int64) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, IDs: ids})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// pathID reads a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrBadRequest, name)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter; absent yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
	}
	return n, nil
}

func isBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }
