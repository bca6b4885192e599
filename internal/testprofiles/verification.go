package testprofiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/internal/domain/ranking"
	"github.com/circlemate/matchmaker/pkg/logger"
)

// ErrVerification is returned when the published ranking disagrees with the
// local one.
var ErrVerification = errors.New("ranking verification failed")

// verifyResults checks the published results against ranking.Score for
// every generated candidate. Profiles the run did not create (a fixture,
// earlier runs) are only checked for ordering.
func verifyResults(ctx context.Context, config *Config, reference model.Profile, candidates []model.Profile, published []model.MatchResult, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results", logger.Int("published", len(published)))

	expected := make(map[string]model.MatchResult, len(candidates))
	for i := range candidates {
		expected[candidates[i].ID] = ranking.Score(reference, candidates[i])
	}

	var problems []string
	seen := make(map[string]bool, len(published))
	for i, got := range published {
		if got.CandidateID == reference.ID {
			problems = append(problems, "reference profile ranked against itself")
		}
		if i > 0 && got.Compatibility > published[i-1].Compatibility {
			problems = append(problems, fmt.Sprintf("results not sorted at position %d", i))
		}

		want, ok := expected[got.CandidateID]
		if !ok {
			continue
		}
		seen[got.CandidateID] = true
		stats.ResultsVerified++
		if got.Compatibility != want.Compatibility {
			stats.Mismatches++
			problems = append(problems, fmt.Sprintf("%s: compatibility %d, want %d",
				got.CandidateID, got.Compatibility, want.Compatibility))
		}
	}
	for id := range expected {
		if !seen[id] {
			problems = append(problems, fmt.Sprintf("%s: missing from results", id))
		}
	}

	displayTopMatches(ctx, published, config.Verbose)

	if len(problems) > 0 {
		for _, p := range problems {
			logger.Get().Warn(ctx, "verification problem", logger.String("detail", p))
		}
		return fmt.Errorf("%w: %d problems, first: %s", ErrVerification, len(problems), problems[0])
	}

	logger.Get().Info(ctx, "result verification completed", logger.Int("verified", stats.ResultsVerified))
	return nil
}

// displayTopMatches logs the best matches, and every match when verbose.
func displayTopMatches(ctx context.Context, published []model.MatchResult, verbose bool) {
	topN := 10
	if verbose || len(published) < topN {
		topN = len(published)
	}
	for i := 0; i < topN; i++ {
		m := published[i]
		logger.Get().Info(ctx, "match",
			logger.Int("rank", i+1),
			logger.String("candidate_id", m.CandidateID),
			logger.String("name", m.Display.Name),
			logger.Int("compatibility", m.Compatibility),
			logger.String("tier", string(m.Tier)),
		)
	}
}
