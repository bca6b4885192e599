package testprofiles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes the complete seeding run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if config.Seed == 0 {
		config.Seed = uint64(stats.StartTime.UnixNano())
	}

	logger.Get().Info(ctx, "starting matchmaker profile seeding",
		logger.String("baseURL", config.BaseURL),
		logger.Int("profiles", config.NumProfiles),
		logger.String("reference", config.ReferenceID),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("seed", config.Seed),
	)

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate profiles
	reference, candidates, err := generateProfiles(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("profile generation failed: %w", err)
	}

	// Step 3: Submit the reference first, then candidates concurrently
	if reference.ID != "" {
		if submitProfile(ctx, client, reference) == resultFailed {
			return stats, fmt.Errorf("reference submission failed")
		}
	} else {
		if err := client.getJSON(ctx, "/profiles/"+url.PathEscape(config.ReferenceID), &reference); err != nil {
			return stats, fmt.Errorf("load reference: %w", err)
		}
	}
	if err := submitProfiles(ctx, config, candidates, stats); err != nil {
		return stats, fmt.Errorf("profile submission failed: %w", err)
	}

	// Step 4: Trigger a recompute and wait for it to publish
	var before Matches
	if err := client.getJSON(ctx, "/matches/"+url.PathEscape(reference.ID), &before); err != nil {
		return stats, fmt.Errorf("read matches: %w", err)
	}
	res, err := triggerRecompute(ctx, client, reference.ID)
	if err != nil {
		return stats, err
	}
	logger.Get().Info(ctx, "recompute requested",
		logger.String("status", res.Status),
		logger.String("token", res.Token),
	)
	published, err := waitForMatches(ctx, config, client, reference.ID, before.Generation)
	if err != nil {
		return stats, err
	}

	// Step 5: Verify against the local ranking
	if err := verifyResults(ctx, config, reference, candidates, published.Results, stats); err != nil {
		return stats, err
	}

	// Step 6: Save profiles to file
	all := append([]model.Profile{reference}, candidates...)
	if err := saveProfilesToFile(ctx, config, all); err != nil {
		logger.Get().Warn(ctx, "failed to save profiles to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "seeding completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	status, _, err := client.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveProfilesToFile writes the generated profiles as a JSON array.
func saveProfilesToFile(ctx context.Context, config *Config, profiles []model.Profile) error {
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "generated_profiles_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "profiles saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var profilesPerSecond float64
	if stats.Duration > 0 {
		profilesPerSecond = float64(stats.ProfilesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("profilesGenerated", stats.ProfilesGenerated),
		logger.Int("profilesSubmitted", stats.ProfilesSubmitted),
		logger.Int("profilesCreated", stats.ProfilesCreated),
		logger.Int("profilesUpdated", stats.ProfilesUpdated),
		logger.Int("profilesFailed", stats.ProfilesFailed),
		logger.Int("resultsVerified", stats.ResultsVerified),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("profilesPerSecond", profilesPerSecond),
	)
}
