package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/circlemate/matchmaker/internal/domain/model"
)

// profileSchema mirrors the Profile schema of openapi.yaml.
const profileSchema = `{
  "type": "object",
  "required": ["interests", "communities"],
  "properties": {
    "id": {"type": "string"},
    "interests": {"type": "array", "items": {"type": "string"}},
    "communities": {"type": "array", "items": {"type": "string"}},
    "display": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "location": {"type": "string"},
        "avatar": {"type": "string"}
      }
    }
  }
}`

var compiledProfileSchema = mustCompileSchema("profile", profileSchema)

// ProfileDependencies defines the interface for profile operations.
type ProfileDependencies interface {
	UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, bool, error)
	Profile(ctx context.Context, id string) (model.Profile, error)
}

// ProfilesHandler handles profile requests.
type ProfilesHandler struct {
	deps ProfileDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

// HandlePutProfile handles POST /profiles requests. A body without an id
// creates a profile with a generated one.
func (h *ProfilesHandler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_profile"

	body, err := readBody(w, r, compiledProfileSchema)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	var p model.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	stored, created, err := h.deps.UpsertProfile(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, stored)
}

// HandleGetProfile handles GET /profiles/{id} requests.
func (h *ProfilesHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.deps.Profile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// pathID extracts the {id} path value, writing a 400 when it is blank.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingID)
		return "", false
	}
	return id, true
}
