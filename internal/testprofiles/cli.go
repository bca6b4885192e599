package testprofiles

import (
	"fmt"
	"os"

	"github.com/circlemate/matchmaker/pkg/logger"
)

// SetupLogging initializes the global logger for the tool.
func SetupLogging(format string, verbose bool) error {
	if err := logger.Init(format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Matchmaker Profile Seeder
=========================

Seeds a running matchmaker with random profiles, triggers a recompute for a
reference profile and checks the published ranking against a local one.

Usage:
  go run ./cmd/seed-profiles [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -profiles int
        Number of candidate profiles to generate (default 200)
  -reference string
        Existing reference profile id (default: generate one)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -wait duration
        How long to wait for the recompute to publish (default 1m)
  -output string
        Output file for generated profiles (default: generated_profiles_TIMESTAMP.json)
  -seed uint
        Generator seed (default: from the clock)
  -log-format string
        json or console (default "console")
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed 1000 profiles against a local service
  go run ./cmd/seed-profiles -profiles 1000

  # Rank the fixture's reference user against new candidates
  go run ./cmd/seed-profiles -reference me -profiles 50
`)
}
