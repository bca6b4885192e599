// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile marks a profile that cannot take part in ranking.
var ErrInvalidProfile = errors.New("invalid profile")

// Display carries presentation metadata. It never influences scoring.
type Display struct {
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Profile represents one participant, either the reference user or a candidate.
//
// Interests and Communities are label sets: case-sensitive, order irrelevant,
// duplicates collapse. A nil slice means the field is missing, an empty
// non-nil slice is a valid empty set.
type Profile struct {
	ID          string   `json:"id"`
	Interests   []string `json:"interests"`
	Communities []string `json:"communities"`
	Display     Display  `json:"display"`
}

// Validate reports whether p has everything ranking needs.
func (p Profile) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	case p.Interests == nil:
		return fmt.Errorf("%w: profile %q: missing interests", ErrInvalidProfile, p.ID)
	case p.Communities == nil:
		return fmt.Errorf("%w: profile %q: missing communities", ErrInvalidProfile, p.ID)
	}
	return nil
}

// Clone returns a deep copy so callers can hand profiles across goroutines.
func (p Profile) Clone() Profile {
	out := p
	if p.Interests != nil {
		out.Interests = append(make([]string, 0, len(p.Interests)), p.Interests...)
	}
	if p.Communities != nil {
		out.Communities = append(make([]string, 0, len(p.Communities)), p.Communities...)
	}
	return out
}

// Tier buckets a compatibility score the way the matchmaking view labels it.
type Tier string

// Compatibility tiers.
const (
	TierHigh Tier = "high"
	TierGood Tier = "good"
	TierLow  Tier = "low"
)

// Tier thresholds (inclusive lower bounds).
const (
	highTierMin = 80
	goodTierMin = 60
)

// TierFor maps a compatibility score to its tier.
func TierFor(compatibility int) Tier {
	switch {
	case compatibility >= highTierMin:
		return TierHigh
	case compatibility >= goodTierMin:
		return TierGood
	default:
		return TierLow
	}
}

// MatchResult is one ranked candidate. It is derived on every ranking pass
// and never persisted.
type MatchResult struct {
	CandidateID         string   `json:"candidate_id"`
	Compatibility       int      `json:"compatibility"`
	Tier                Tier     `json:"tier"`
	InterestSimilarity  float64  `json:"interest_similarity"`
	CommunitySimilarity float64  `json:"community_similarity"`
	SharedInterests     []string `json:"shared_interests"`
	SharedCommunities   []string `json:"shared_communities"`
	Display             Display  `json:"display"`
}
