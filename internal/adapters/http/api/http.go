// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/circlemate/matchmaker/internal/app"
	"github.com/circlemate/matchmaker/internal/adapters/repository"
	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProfileDependencies
	MatchDependencies
	ConnectionDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	profilesHandler    *ProfilesHandler
	matchesHandler     *MatchesHandler
	connectionsHandler *ConnectionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		profilesHandler:    NewProfilesHandler(deps),
		matchesHandler:     NewMatchesHandler(deps),
		connectionsHandler: NewConnectionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /profiles", MetricsMiddleware(s.profilesHandler.HandlePutProfile, "profiles"))
	mux.HandleFunc("GET /profiles/{id}", MetricsMiddleware(s.profilesHandler.HandleGetProfile, "profile"))

	mux.HandleFunc("GET /matches/{id}", MetricsMiddleware(s.matchesHandler.HandleGetMatches, "matches"))
	mux.HandleFunc("GET /matches/{id}/preview", MetricsMiddleware(s.matchesHandler.HandlePreview, "preview"))
	mux.HandleFunc("POST /matches/{id}/recompute", MetricsMiddleware(s.matchesHandler.HandleRecompute, "recompute"))
	mux.HandleFunc("DELETE /matches/{id}/recompute", MetricsMiddleware(s.matchesHandler.HandleCancelRecompute, "recompute"))

	mux.HandleFunc("POST /connections", MetricsMiddleware(s.connectionsHandler.HandlePostConnection, "connections"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates a service error into a status code and body.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, model.ErrInvalidProfile), errors.Is(err, service.ErrSelfConnection):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		logger.Get().Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
