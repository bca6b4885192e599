// Package testprofiles seeds a running matchmaker with random profiles and
// checks the published ranking against a local one.
package testprofiles

import (
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumProfiles  int           // Number of candidate profiles to generate
	ReferenceID  string        // Existing reference profile; empty generates one
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between match list polls
	WaitTimeout  time.Duration // How long to wait for the recompute to publish
	OutputFile   string        // Output file for generated profiles
	Seed         uint64        // Generator seed; 0 picks one from the clock
	Verbose      bool          // Enable verbose logging
}

// Matches mirrors the GET /matches/{id} response.
type Matches struct {
	ReferenceID string              `json:"reference_id"`
	State       string              `json:"state"`
	Token       string              `json:"token"`
	Generation  uint64              `json:"generation"`
	LastError   string              `json:"last_error"`
	Results     []model.MatchResult `json:"results"`
}

// RecomputeResponse mirrors the POST /matches/{id}/recompute response.
type RecomputeResponse struct {
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
	Token       string `json:"token"`
}

// Stats holds run statistics.
type Stats struct {
	ProfilesGenerated int
	ProfilesSubmitted int
	ProfilesCreated   int
	ProfilesUpdated   int
	ProfilesFailed    int
	ResultsVerified   int
	Mismatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
