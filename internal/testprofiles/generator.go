package testprofiles

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/pkg/logger"
)

// Label pools drawn from the onboarding choices.
var (
	interestPool = []string{
		"Technology", "Coffee", "Reading", "Travel", "Photography", "Music",
		"Art", "Gaming", "Cooking", "Yoga", "Hiking", "Fitness", "Movies",
		"Writing", "Gardening", "Dancing",
	}
	communityPool = []string{
		"Tech Enthusiasts", "Coffee Lovers", "Book Club", "Photography Club",
		"Gaming Community", "Travel Enthusiasts", "Fitness Crew", "Art Collective",
		"Foodies", "Outdoor Adventures",
	}
	locationPool = []string{
		"San Francisco, CA", "San Jose, CA", "Oakland, CA", "Berkeley, CA", "Palo Alto, CA",
	}
)

// Label count bounds per profile.
const (
	minInterests   = 1
	maxInterests   = 6
	minCommunities = 0
	maxCommunities = 4
)

// generator builds random profiles from a seeded source.
type generator struct {
	rng *rand.Rand
}

func newGenerator(seed uint64) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// pick returns between lo and hi distinct labels of pool in random order.
func (g *generator) pick(pool []string, lo, hi int) []string {
	n := lo + g.rng.IntN(hi-lo+1)
	idx := g.rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

func (g *generator) profile(id, name string) model.Profile {
	return model.Profile{
		ID:          id,
		Interests:   g.pick(interestPool, minInterests, maxInterests),
		Communities: g.pick(communityPool, minCommunities, maxCommunities),
		Display: model.Display{
			Name:     name,
			Location: locationPool[g.rng.IntN(len(locationPool))],
			Avatar:   "/user1.png",
		},
	}
}

// generateProfiles creates config.NumProfiles candidates with UUID ids.
// When config.ReferenceID is empty a reference profile is generated too and
// returned first.
func generateProfiles(ctx context.Context, config *Config, stats *Stats) (model.Profile, []model.Profile, error) {
	if config.NumProfiles < 1 {
		return model.Profile{}, nil, fmt.Errorf("profiles must be positive, got %d", config.NumProfiles)
	}
	logger.Get().Info(ctx, "generating profiles", logger.Int("numProfiles", config.NumProfiles))

	g := newGenerator(config.Seed)

	var reference model.Profile
	if config.ReferenceID == "" {
		reference = g.profile(uuid.NewString(), "Reference")
	}

	candidates := make([]model.Profile, config.NumProfiles)
	for i := range candidates {
		select {
		case <-ctx.Done():
			return model.Profile{}, nil, fmt.Errorf("context cancelled during profile generation: %w", ctx.Err())
		default:
		}
		candidates[i] = g.profile(uuid.NewString(), "Candidate "+strconv.Itoa(i+1))
	}

	stats.ProfilesGenerated = len(candidates)
	if reference.ID != "" {
		stats.ProfilesGenerated++
	}
	logger.Get().Info(ctx, "generated profiles successfully", logger.Int("count", stats.ProfilesGenerated))
	return reference, candidates, nil
}
