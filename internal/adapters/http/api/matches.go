package api

import (
	"context"
	"net/http"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/internal/domain/types"
)

// MatchDependencies defines the interface for match list operations.
type MatchDependencies interface {
	Matches(ctx context.Context, id string) (types.Matches, error)
	Preview(ctx context.Context, id string) ([]model.MatchResult, error)
	Recompute(ctx context.Context, id string) (types.Recompute, error)
	CancelRecompute(ctx context.Context, id string) (bool, error)
}

// MatchesHandler handles match list requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type previewResponse struct {
	ReferenceID string              `json:"reference_id"`
	Results     []model.MatchResult `json:"results"`
}

type cancelResponse struct {
	ReferenceID string `json:"reference_id"`
	Cancelled   bool   `json:"cancelled"`
}

// HandleGetMatches handles GET /matches/{id} requests.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matches"

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.deps.Matches(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandlePreview handles GET /matches/{id}/preview requests.
func (h *MatchesHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.preview_matches"

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	results, err := h.deps.Preview(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{ReferenceID: id, Results: results})
}

// HandleRecompute handles POST /matches/{id}/recompute requests. A request
// that arrives while a pass is calculating is acknowledged but ignored.
func (h *MatchesHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.recompute"

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.deps.Recompute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}

	status := http.StatusAccepted
	if res.Status == types.RecomputeIgnored {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// HandleCancelRecompute handles DELETE /matches/{id}/recompute requests.
func (h *MatchesHandler) HandleCancelRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.cancel_recompute"

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cancelled, err := h.deps.CancelRecompute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelResponse{ReferenceID: id, Cancelled: cancelled})
}
