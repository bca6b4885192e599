package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/circlemate/matchmaker/internal/domain/types"
)

// ConnectionDependencies defines the interface for connection requests.
type ConnectionDependencies interface {
	Connect(ctx context.Context, from, to string) (types.Connection, error)
}

// ConnectionsHandler handles connection requests.
type ConnectionsHandler struct {
	deps ConnectionDependencies
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(deps ConnectionDependencies) *ConnectionsHandler {
	return &ConnectionsHandler{deps: deps}
}

// connectionSchema mirrors the ConnectionRequest schema of openapi.yaml.
// Both ids must contain a non-space character.
const connectionSchema = `{
  "type": "object",
  "required": ["from", "to"],
  "properties": {
    "from": {"type": "string", "pattern": "\\S"},
    "to": {"type": "string", "pattern": "\\S"}
  }
}`

var compiledConnectionSchema = mustCompileSchema("connection", connectionSchema)

type connectionRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HandlePostConnection handles POST /connections requests.
func (h *ConnectionsHandler) HandlePostConnection(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_connection"

	body, err := readBody(w, r, compiledConnectionSchema)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	var req connectionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	conn, err := h.deps.Connect(r.Context(), req.From, req.To)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}

	status := http.StatusAccepted
	if conn.Status == types.ConnectionDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, conn)
}
