package scoring_test

import (
	"testing"

	"github.com/circlemate/matchmaker/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var sampleSets = [][]string{
	{},
	{"Technology"},
	{"Technology", "Coffee", "Reading"},
	{"Coffee", "Reading", "Gaming", "Yoga"},
	{"technology", "coffee"},
	{"A", "A", "B"},
}

func TestSimilarity(t *testing.T) {
	Convey("Given the Jaccard similarity calculator", t, func() {
		Convey("When both sets are empty", func() {
			Convey("Then the score is zero rather than NaN", func() {
				So(scoring.Similarity(nil, nil), ShouldEqual, 0)
				So(scoring.Similarity([]string{}, []string{}), ShouldEqual, 0)
			})
		})

		Convey("When a set is compared with itself", func() {
			Convey("Then non-empty sets score 100", func() {
				for _, s := range sampleSets[1:] {
					So(scoring.Similarity(s, s), ShouldEqual, 100)
				}
			})
		})

		Convey("When sets partially overlap", func() {
			Convey("Then the score is shared over union scaled to a percentage", func() {
				So(scoring.Similarity([]string{"A", "B", "C"}, []string{"B", "C", "D"}), ShouldEqual, 50)
				So(scoring.Similarity([]string{"A"}, []string{"A", "B", "C", "D"}), ShouldEqual, 25)
				So(scoring.Similarity([]string{"A", "B"}, []string{"C"}), ShouldEqual, 0)
			})
		})

		Convey("When labels differ only by case", func() {
			Convey("Then they are treated as distinct", func() {
				So(scoring.Similarity([]string{"Coffee"}, []string{"coffee"}), ShouldEqual, 0)
				So(scoring.Similarity([]string{"Coffee "}, []string{"Coffee"}), ShouldEqual, 0)
			})
		})

		Convey("When an input repeats a label", func() {
			Convey("Then duplicates collapse into one set member", func() {
				So(scoring.Similarity([]string{"A", "A", "B"}, []string{"A"}), ShouldEqual, 50)
				So(scoring.Measure([]string{"A", "A", "B"}, []string{"A", "A"}), ShouldResemble, scoring.Overlap{Shared: 1, Union: 2})
			})
		})

		Convey("When arguments are swapped or reordered", func() {
			Convey("Then the score is unchanged and bounded", func() {
				for _, a := range sampleSets {
					for _, b := range sampleSets {
						ab := scoring.Similarity(a, b)
						So(ab, ShouldEqual, scoring.Similarity(b, a))
						So(ab, ShouldBeBetweenOrEqual, 0, 100)
					}
				}
				So(scoring.Similarity([]string{"A", "B", "C"}, []string{"C", "D"}),
					ShouldEqual, scoring.Similarity([]string{"C", "B", "A"}, []string{"D", "C"}))
			})
		})
	})
}

func TestOverlap(t *testing.T) {
	Convey("Given overlaps", t, func() {
		Convey("When the union is empty", func() {
			o := scoring.Overlap{}

			Convey("Then the percent is zero", func() {
				So(o.Percent(), ShouldEqual, 0)
			})
		})

		Convey("When one of three labels is shared", func() {
			o := scoring.Overlap{Shared: 1, Union: 3}

			Convey("Then the percent is a third of the maximum", func() {
				So(o.Percent(), ShouldAlmostEqual, 100.0/3.0, 1e-12)
			})
		})
	})
}

func TestIntersect(t *testing.T) {
	Convey("Given two label lists", t, func() {
		a := []string{"Technology", "Coffee", "Reading", "Coffee", "Travel"}
		b := []string{"Travel", "Coffee", "Gaming"}

		Convey("When intersected", func() {
			shared := scoring.Intersect(a, b)

			Convey("Then shared labels follow the first list's order without duplicates", func() {
				So(shared, ShouldResemble, []string{"Coffee", "Travel"})
			})
		})

		Convey("When nothing is shared", func() {
			shared := scoring.Intersect(a, nil)

			Convey("Then the result is empty but not nil", func() {
				So(shared, ShouldNotBeNil)
				So(shared, ShouldBeEmpty)
			})
		})
	})
}

func TestCompatibility(t *testing.T) {
	Convey("Given interest and community overlaps", t, func() {
		Convey("When interests match fully and communities not at all", func() {
			interests := scoring.Measure([]string{"A", "B"}, []string{"A", "B"})
			communities := scoring.Measure([]string{"X"}, []string{})

			Convey("Then only the interest weight counts", func() {
				So(scoring.Compatibility(interests, communities), ShouldEqual, 70)
			})
		})

		Convey("When only one category matches fully", func() {
			full := scoring.Overlap{Shared: 1, Union: 1}
			none := scoring.Overlap{Shared: 0, Union: 1}

			Convey("Then each category contributes its exported weight", func() {
				So(scoring.Compatibility(full, none), ShouldEqual, int(scoring.InterestWeight*scoring.MaxScore))
				So(scoring.Compatibility(none, full), ShouldEqual, int(scoring.CommunityWeight*scoring.MaxScore))
				So(scoring.InterestWeight+scoring.CommunityWeight, ShouldEqual, 1.0)
			})
		})

		Convey("When everything is empty", func() {
			Convey("Then the score is zero", func() {
				So(scoring.Compatibility(scoring.Overlap{}, scoring.Overlap{}), ShouldEqual, 0)
			})
		})

		Convey("When both categories match fully", func() {
			Convey("Then the score is capped at 100", func() {
				So(scoring.Compatibility(scoring.Overlap{Shared: 5, Union: 5}, scoring.Overlap{Shared: 3, Union: 3}), ShouldEqual, 100)
			})
		})

		Convey("When the weighted value lands exactly on a half", func() {
			Convey("Then it rounds half away from zero", func() {
				// 0.7*75 = 52.5
				So(scoring.Compatibility(scoring.Overlap{Shared: 3, Union: 4}, scoring.Overlap{Shared: 0, Union: 1}), ShouldEqual, 53)
				// 0.7*300/7 + 0.3*25 = 37.5
				So(scoring.Compatibility(scoring.Overlap{Shared: 3, Union: 7}, scoring.Overlap{Shared: 1, Union: 4}), ShouldEqual, 38)
				// 0.7*200/7 + 0.3*25 = 27.5 exactly; float64 evaluation lands on 27.4999... and rounds down
				So(scoring.Compatibility(scoring.Overlap{Shared: 2, Union: 7}, scoring.Overlap{Shared: 1, Union: 4}), ShouldEqual, 28)
			})
		})

		Convey("When the weighted value is just off a half", func() {
			Convey("Then it rounds to the nearest integer", func() {
				// 0.7*250/3 + 0.3*200/3 = 78.33
				So(scoring.Compatibility(scoring.Overlap{Shared: 5, Union: 6}, scoring.Overlap{Shared: 2, Union: 3}), ShouldEqual, 78)
				// 0.7*200/3 + 0.3*60 = 64.67
				So(scoring.Compatibility(scoring.Overlap{Shared: 4, Union: 6}, scoring.Overlap{Shared: 3, Union: 5}), ShouldEqual, 65)
				// 0.7*50 + 0.3*50 = 50
				So(scoring.Compatibility(scoring.Overlap{Shared: 3, Union: 6}, scoring.Overlap{Shared: 2, Union: 4}), ShouldEqual, 50)
			})
		})

		Convey("When overlaps are taken from sample sets", func() {
			Convey("Then every score stays within bounds", func() {
				for _, a := range sampleSets {
					for _, b := range sampleSets {
						score := scoring.Compatibility(scoring.Measure(a, b), scoring.Measure(b, a))
						So(score, ShouldBeBetweenOrEqual, 0, 100)
					}
				}
			})
		})
	})
}
