package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
	types "github.com/circlemate/matchmaker/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchesJSON(t *testing.T) {
	Convey("Given a Matches value", t, func() {
		Convey("When nothing has been published yet", func() {
			raw, err := json.Marshal(types.Matches{ReferenceID: "me", State: "idle", Results: []model.MatchResult{}})

			Convey("Then optional fields are omitted and results encode as an empty array", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"reference_id":"me","state":"idle","generation":0,"results":[]}`)
			})
		})

		Convey("When results are published", func() {
			at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			raw, err := json.Marshal(types.Matches{
				ReferenceID: "me",
				State:       "idle",
				Generation:  2,
				PublishedAt: &at,
				Results:     []model.MatchResult{{CandidateID: "2", Compatibility: 50, Tier: model.TierLow}},
			})

			Convey("Then the timestamp and results are present", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"published_at":"2026-03-01T12:00:00Z"`)
				So(string(raw), ShouldContainSubstring, `"candidate_id":"2"`)
				So(string(raw), ShouldContainSubstring, `"compatibility":50`)
			})
		})
	})
}

func TestStatuses(t *testing.T) {
	Convey("Given the status constants", t, func() {
		Convey("Then they use the wire names", func() {
			So(string(types.RecomputeAccepted), ShouldEqual, "accepted")
			So(string(types.RecomputeIgnored), ShouldEqual, "ignored")
			So(string(types.ConnectionRequested), ShouldEqual, "requested")
			So(string(types.ConnectionDuplicate), ShouldEqual, "duplicate")
		})
	})
}
