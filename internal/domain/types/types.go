// Package types contains the response shapes shared by the service and the API.
package types

import (
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
)

// RecomputeStatus says what happened to a recompute request.
type RecomputeStatus string

// Recompute request statuses.
const (
	RecomputeAccepted RecomputeStatus = "accepted"
	RecomputeIgnored  RecomputeStatus = "ignored"
)

// ConnectionStatus says what happened to a connection request.
type ConnectionStatus string

// Connection request statuses.
const (
	ConnectionRequested ConnectionStatus = "requested"
	ConnectionDuplicate ConnectionStatus = "duplicate"
)

// Matches is the published match list of a reference profile.
type Matches struct {
	ReferenceID string              `json:"reference_id"`
	State       string              `json:"state"`
	Token       string              `json:"token,omitempty"`
	Generation  uint64              `json:"generation"`
	PublishedAt *time.Time          `json:"published_at,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
	Results     []model.MatchResult `json:"results"`
}

// Recompute is the answer to a recompute request.
type Recompute struct {
	ReferenceID string          `json:"reference_id"`
	Status      RecomputeStatus `json:"status"`
	Token       string          `json:"token"`
	State       string          `json:"state"`
}

// Connection is the answer to a connection request.
type Connection struct {
	From   string           `json:"from"`
	To     string           `json:"to"`
	Status ConnectionStatus `json:"status"`
}

// Stats summarizes the running service.
type Stats struct {
	Started           bool   `json:"started"`
	StoreBackend      string `json:"store_backend"`
	Profiles          int    `json:"profiles"`
	WorkerCount       int    `json:"worker_count"`
	QueueCapacity     int    `json:"queue_capacity"`
	QueueLength       int    `json:"queue_length"`
	RecomputeInFlight int    `json:"recompute_in_flight"`
	RecomputeDelayMS  int64  `json:"recompute_delay_ms"`
	Connections       int64  `json:"connections"`
}
