// Package scoring computes label-set similarity and the weighted
// compatibility score used to rank candidates.
package scoring

// Score bounds and category weights. Compatibility evaluates the weights as
// integer percentage points derived from the fractions.
const (
	MaxScore = 100

	InterestWeight  = 0.7
	CommunityWeight = 0.3

	interestWeightPct  = int64(InterestWeight * MaxScore)
	communityWeightPct = int64(CommunityWeight * MaxScore)
)

// Overlap holds the set sizes that a Jaccard index is derived from.
type Overlap struct {
	Shared int // |a ∩ b|
	Union  int // |a ∪ b|
}

// Percent returns the Jaccard index scaled to [0,100].
func (o Overlap) Percent() float64 {
	if o.Union == 0 {
		return 0
	}
	return float64(o.Shared) * MaxScore / float64(o.Union)
}

// Measure counts the intersection and union of two label sets. Labels are
// compared by exact string equality and duplicates inside either input are
// collapsed.
func Measure(a, b []string) Overlap {
	setA := toSet(a)
	setB := toSet(b)

	shared := 0
	for label := range setA {
		if _, ok := setB[label]; ok {
			shared++
		}
	}
	return Overlap{
		Shared: shared,
		Union:  len(setA) + len(setB) - shared,
	}
}

// Similarity returns the Jaccard index of a and b as a percentage in [0,100].
// Two empty sets score 0.
func Similarity(a, b []string) float64 {
	return Measure(a, b).Percent()
}

// Intersect returns the labels present in both a and b, in a's order and
// without duplicates. The result is never nil.
func Intersect(a, b []string) []string {
	setB := toSet(b)
	out := make([]string, 0, len(setB))
	emitted := make(map[string]struct{}, len(setB))
	for _, label := range a {
		if _, ok := setB[label]; !ok {
			continue
		}
		if _, dup := emitted[label]; dup {
			continue
		}
		emitted[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// Compatibility combines an interest overlap and a community overlap into an
// integer score in [0,100]:
//
//	round(interests% * 0.7 + communities% * 0.3)
//
// The weighted sum is evaluated as an exact fraction and rounded half away
// from zero, so 52.5 becomes 53 and 37.5 becomes 38.
func Compatibility(interests, communities Overlap) int {
	si, ui := normalize(interests)
	sc, uc := normalize(communities)

	// value = (70*si/ui + 30*sc/uc) = num/den
	num := interestWeightPct*si*uc + communityWeightPct*sc*ui
	den := ui * uc

	// Half-up on a non-negative fraction: floor((2*num + den) / (2*den)).
	score := int((2*num + den) / (2 * den))
	if score > MaxScore {
		score = MaxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// normalize maps an empty union to 0/1 so it contributes nothing without
// dividing by zero.
func normalize(o Overlap) (shared, union int64) {
	if o.Union <= 0 {
		return 0, 1
	}
	return int64(o.Shared), int64(o.Union)
}

func toSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}
