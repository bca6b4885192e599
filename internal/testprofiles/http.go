package testprofiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/pkg/logger"
)

// Submission outcomes.
const (
	resultCreated = "created"
	resultUpdated = "updated"
	resultFailed  = "failed"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request with an optional JSON body and returns the status
// code and response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// getJSON performs a GET and decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	status, data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, status, bytes.TrimSpace(data))
	}
	return json.Unmarshal(data, v)
}

// submitProfile posts one profile and classifies the outcome.
func submitProfile(ctx context.Context, client *HTTPClient, p model.Profile) string {
	status, _, err := client.do(ctx, http.MethodPost, "/profiles", p)
	switch {
	case err != nil:
		return resultFailed
	case status == http.StatusCreated:
		return resultCreated
	case status == http.StatusOK:
		return resultUpdated
	default:
		return resultFailed
	}
}

// submitProfiles submits profiles concurrently using a worker pool.
func submitProfiles(ctx context.Context, config *Config, profiles []model.Profile, stats *Stats) error {
	logger.Get().Info(ctx, "submitting profiles",
		logger.Int("count", len(profiles)),
		logger.Int("workers", config.Workers),
	)

	client := newHTTPClient(config.BaseURL, config.Timeout)

	var created, updated, failed, submitted int64

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	profileChan := make(chan model.Profile, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range profileChan {
				switch submitProfile(ctx, client, p) {
				case resultCreated:
					atomic.AddInt64(&created, 1)
				case resultUpdated:
					atomic.AddInt64(&updated, 1)
				default:
					atomic.AddInt64(&failed, 1)
					logger.Get().Debug(ctx, "profile submission failed", logger.String("profile_id", p.ID))
				}
				atomic.AddInt64(&submitted, 1)
			}
		}()
	}

	go func() {
		defer close(profileChan)
		for _, p := range profiles {
			select {
			case <-ctx.Done():
				return
			case profileChan <- p:
			}
		}
	}()

	wg.Wait()

	stats.ProfilesSubmitted = int(submitted)
	stats.ProfilesCreated = int(created)
	stats.ProfilesUpdated = int(updated)
	stats.ProfilesFailed = int(failed)

	logger.Get().Info(ctx, "profile submission completed",
		logger.Int("created", stats.ProfilesCreated),
		logger.Int("updated", stats.ProfilesUpdated),
		logger.Int("failed", stats.ProfilesFailed),
	)
	if failed > 0 {
		return fmt.Errorf("%d of %d profiles failed", failed, len(profiles))
	}
	return ctx.Err()
}

// triggerRecompute asks the service to recompute referenceID. An ignored
// request still returns the token of the pass that is running.
func triggerRecompute(ctx context.Context, client *HTTPClient, referenceID string) (RecomputeResponse, error) {
	path := "/matches/" + url.PathEscape(referenceID) + "/recompute"
	status, data, err := client.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return RecomputeResponse{}, err
	}
	if status != http.StatusAccepted && status != http.StatusOK {
		return RecomputeResponse{}, fmt.Errorf("recompute %s: status %d: %s", referenceID, status, bytes.TrimSpace(data))
	}

	var res RecomputeResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return RecomputeResponse{}, fmt.Errorf("decode recompute response: %w", err)
	}
	return res, nil
}

// waitForMatches polls the match list until a generation newer than after
// is published and the reference is idle again.
func waitForMatches(ctx context.Context, config *Config, client *HTTPClient, referenceID string, after uint64) (Matches, error) {
	ctx, cancel := context.WithTimeout(ctx, config.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	path := "/matches/" + url.PathEscape(referenceID)
	for {
		var m Matches
		if err := client.getJSON(ctx, path, &m); err != nil {
			return Matches{}, err
		}
		if m.Generation > after && m.State == "idle" {
			return m, nil
		}
		if m.State == "idle" && m.LastError != "" {
			return Matches{}, fmt.Errorf("recompute failed: %s", m.LastError)
		}

		select {
		case <-ctx.Done():
			return Matches{}, fmt.Errorf("waiting for matches of %s: %w", referenceID, ctx.Err())
		case <-ticker.C:
		}
	}
}
