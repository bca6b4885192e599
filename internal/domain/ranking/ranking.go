// Package ranking orders a candidate pool by compatibility with a reference
// profile.
package ranking

import (
	"fmt"
	"sort"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/internal/domain/scoring"
)

// Ranker produces an ordered match list for a reference profile.
type Ranker interface {
	Rank(reference model.Profile, candidates []model.Profile) ([]model.MatchResult, error)
}

// JaccardRanker scores interests and communities with the Jaccard index and
// combines them with fixed 70/30 weights.
type JaccardRanker struct{}

// New returns the default ranker.
func New() JaccardRanker {
	return JaccardRanker{}
}

// Rank scores every candidate against reference and returns them by
// compatibility descending. Candidates with equal scores keep their input
// order. An empty pool yields an empty, non-nil slice.
//
// Every profile is validated first; a malformed one fails the whole call so
// callers keep whatever results they already had.
func (JaccardRanker) Rank(reference model.Profile, candidates []model.Profile) ([]model.MatchResult, error) {
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
	}

	results := make([]model.MatchResult, len(candidates))
	for i := range candidates {
		results[i] = Score(reference, candidates[i])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Compatibility > results[j].Compatibility
	})
	return results, nil
}

// Rank ranks with the default ranker.
func Rank(reference model.Profile, candidates []model.Profile) ([]model.MatchResult, error) {
	return New().Rank(reference, candidates)
}

// Score computes a single candidate's match result. It does not validate.
func Score(reference, candidate model.Profile) model.MatchResult {
	interests := scoring.Measure(reference.Interests, candidate.Interests)
	communities := scoring.Measure(reference.Communities, candidate.Communities)
	compatibility := scoring.Compatibility(interests, communities)

	return model.MatchResult{
		CandidateID:         candidate.ID,
		Compatibility:       compatibility,
		Tier:                model.TierFor(compatibility),
		InterestSimilarity:  interests.Percent(),
		CommunitySimilarity: communities.Percent(),
		SharedInterests:     scoring.Intersect(reference.Interests, candidate.Interests),
		SharedCommunities:   scoring.Intersect(reference.Communities, candidate.Communities),
		Display:             candidate.Display,
	}
}
