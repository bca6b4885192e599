package ranking_test

import (
	"errors"
	"testing"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func reference() model.Profile {
	return model.Profile{
		ID:          "me",
		Interests:   []string{"Technology", "Coffee", "Reading", "Travel", "Photography"},
		Communities: []string{"Tech Enthusiasts", "Coffee Lovers", "Book Club"},
	}
}

func ids(results []model.MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.CandidateID
	}
	return out
}

func scores(results []model.MatchResult) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Compatibility
	}
	return out
}

func TestRank_Ordering(t *testing.T) {
	Convey("Given a reference and three candidates built to score 85, 78 and 65", t, func() {
		high := model.Profile{
			ID:          "high",
			Interests:   []string{"Technology", "Coffee", "Reading", "Travel", "Photography"},
			Communities: []string{"Tech Enthusiasts", "Coffee Lovers", "Photography Club"},
		}
		mid := model.Profile{
			ID:          "mid",
			Interests:   []string{"Technology", "Coffee", "Reading", "Travel", "Photography", "Gaming"},
			Communities: []string{"Coffee Lovers", "Book Club"},
		}
		low := model.Profile{
			ID:          "low",
			Interests:   []string{"Technology", "Coffee", "Reading", "Travel", "Cooking"},
			Communities: []string{"Tech Enthusiasts", "Coffee Lovers", "Book Club", "Travel Enthusiasts", "Yoga Circle"},
		}

		Convey("When ranked from a shuffled pool", func() {
			results, err := ranking.Rank(reference(), []model.Profile{low, high, mid})

			Convey("Then they come back strictly descending", func() {
				So(err, ShouldBeNil)
				So(ids(results), ShouldResemble, []string{"high", "mid", "low"})
				So(scores(results), ShouldResemble, []int{85, 78, 65})
			})

			Convey("And tiers follow the scores", func() {
				So(results[0].Tier, ShouldEqual, model.TierHigh)
				So(results[1].Tier, ShouldEqual, model.TierGood)
				So(results[2].Tier, ShouldEqual, model.TierGood)
			})
		})

		Convey("When ranked twice with identical inputs", func() {
			pool := []model.Profile{low, high, mid}
			first, err1 := ranking.Rank(reference(), pool)
			second, err2 := ranking.Rank(reference(), pool)

			Convey("Then the outputs are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestRank_MatchmakingFixture(t *testing.T) {
	Convey("Given the matchmaking view's mock candidates", t, func() {
		sarah := model.Profile{
			ID:          "1",
			Interests:   []string{"Technology", "Photography", "Travel", "Music", "Art"},
			Communities: []string{"Tech Enthusiasts", "Photography Club"},
			Display:     model.Display{Name: "Sarah Wilson", Location: "San Francisco, CA", Avatar: "/user1.png"},
		}
		mike := model.Profile{
			ID:          "2",
			Interests:   []string{"Coffee", "Reading", "Technology", "Gaming"},
			Communities: []string{"Coffee Lovers", "Book Club", "Gaming Community"},
			Display:     model.Display{Name: "Mike Chen", Location: "San Jose, CA", Avatar: "/user1.png"},
		}
		emma := model.Profile{
			ID:          "3",
			Interests:   []string{"Reading", "Travel", "Cooking", "Yoga"},
			Communities: []string{"Book Club", "Travel Enthusiasts"},
			Display:     model.Display{Name: "Emma Rodriguez", Location: "Oakland, CA", Avatar: "/user1.png"},
		}

		Convey("When recomputed", func() {
			results, err := ranking.Rank(reference(), []model.Profile{sarah, mike, emma})

			Convey("Then the exact half scores round up, Emma's 27.5 included", func() {
				So(err, ShouldBeNil)
				So(ids(results), ShouldResemble, []string{"2", "1", "3"})
				So(scores(results), ShouldResemble, []int{50, 38, 28})
			})

			Convey("And shared labels follow the reference's order", func() {
				So(results[1].SharedInterests, ShouldResemble, []string{"Technology", "Travel", "Photography"})
				So(results[1].SharedCommunities, ShouldResemble, []string{"Tech Enthusiasts"})
				So(results[0].SharedInterests, ShouldResemble, []string{"Technology", "Coffee", "Reading"})
				So(results[0].SharedCommunities, ShouldResemble, []string{"Coffee Lovers", "Book Club"})
			})

			Convey("And display metadata passes through", func() {
				So(results[0].Display, ShouldResemble, mike.Display)
				So(results[2].Display.Name, ShouldEqual, "Emma Rodriguez")
			})

			Convey("And per-category similarities are reported", func() {
				So(results[0].InterestSimilarity, ShouldEqual, 50)
				So(results[0].CommunitySimilarity, ShouldEqual, 50)
			})
		})
	})
}

func TestRank_Weighting(t *testing.T) {
	Convey("Given a reference with interests {A,B} and communities {X}", t, func() {
		ref := model.Profile{ID: "ref", Interests: []string{"A", "B"}, Communities: []string{"X"}}

		Convey("When a candidate shares every interest and no community", func() {
			cand := model.Profile{ID: "c", Interests: []string{"A", "B"}, Communities: []string{}}
			results, err := ranking.Rank(ref, []model.Profile{cand})

			Convey("Then compatibility is 70", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)
				So(results[0].Compatibility, ShouldEqual, 70)
				So(results[0].InterestSimilarity, ShouldEqual, 100)
				So(results[0].CommunitySimilarity, ShouldEqual, 0)
			})
		})
	})
}

func TestRank_Ties(t *testing.T) {
	Convey("Given candidates that all score the same", t, func() {
		ref := model.Profile{ID: "ref", Interests: []string{"A"}, Communities: []string{"X"}}
		pool := []model.Profile{
			{ID: "c1", Interests: []string{"A"}, Communities: []string{}},
			{ID: "c2", Interests: []string{"A"}, Communities: []string{"Y"}},
			{ID: "c3", Interests: []string{"A"}, Communities: []string{"Z"}},
		}

		Convey("When ranked", func() {
			results, err := ranking.Rank(ref, pool)

			Convey("Then input order is preserved", func() {
				So(err, ShouldBeNil)
				So(scores(results), ShouldResemble, []int{70, 70, 70})
				So(ids(results), ShouldResemble, []string{"c1", "c2", "c3"})
			})
		})

		Convey("When a higher scorer is placed between tied candidates", func() {
			withTop := []model.Profile{pool[0], {ID: "top", Interests: []string{"A"}, Communities: []string{"X"}}, pool[1]}
			results, err := ranking.Rank(ref, withTop)

			Convey("Then the tied candidates keep their relative order", func() {
				So(err, ShouldBeNil)
				So(ids(results), ShouldResemble, []string{"top", "c1", "c2"})
			})
		})
	})
}

func TestRank_EdgeCases(t *testing.T) {
	Convey("Given edge-case inputs", t, func() {
		Convey("When the candidate list is empty", func() {
			results, err := ranking.Rank(reference(), nil)

			Convey("Then an empty sequence is returned without error", func() {
				So(err, ShouldBeNil)
				So(results, ShouldNotBeNil)
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When the reference has no interests and no communities", func() {
			ref := model.Profile{ID: "empty", Interests: []string{}, Communities: []string{}}
			results, err := ranking.Rank(ref, []model.Profile{
				{ID: "a", Interests: []string{"A"}, Communities: []string{"X"}},
				{ID: "b", Interests: []string{}, Communities: []string{}},
			})

			Convey("Then every candidate scores zero in input order", func() {
				So(err, ShouldBeNil)
				So(scores(results), ShouldResemble, []int{0, 0})
				So(ids(results), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When the reference is missing a field", func() {
			_, err := ranking.Rank(model.Profile{ID: "ref", Interests: []string{"A"}}, nil)

			Convey("Then ranking fails fast with a validation error", func() {
				So(errors.Is(err, model.ErrInvalidProfile), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "reference")
			})
		})

		Convey("When a candidate is missing a field", func() {
			_, err := ranking.Rank(reference(), []model.Profile{
				{ID: "ok", Interests: []string{}, Communities: []string{}},
				{ID: "bad", Communities: []string{}},
			})

			Convey("Then the candidate is named in the error", func() {
				So(errors.Is(err, model.ErrInvalidProfile), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "candidate 1")
				So(err.Error(), ShouldContainSubstring, "bad")
			})
		})

		Convey("When every score is checked", func() {
			results, err := ranking.Rank(reference(), []model.Profile{
				{ID: "x", Interests: []string{"Technology"}, Communities: []string{"Book Club"}},
				{ID: "y", Interests: []string{"Knitting"}, Communities: []string{}},
			})

			Convey("Then scores stay within [0,100]", func() {
				So(err, ShouldBeNil)
				for _, r := range results {
					So(r.Compatibility, ShouldBeBetweenOrEqual, 0, 100)
				}
			})
		})
	})
}
