package testprofiles_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/circlemate/matchmaker/internal/adapters/http/api"
	"github.com/circlemate/matchmaker/internal/adapters/repository"
	service "github.com/circlemate/matchmaker/internal/app"
	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/internal/testprofiles"
)

func TestRun(t *testing.T) {
	convey.Convey("Given a running matchmaker with the fixture loaded", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		_, err := repository.Seed(ctx, store, repository.Fixture())
		convey.So(err, convey.ShouldBeNil)

		svc := service.New(
			service.WithStore(store),
			service.WithWorkerCount(2),
			service.WithRecomputeDelay(10*time.Millisecond),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		output := filepath.Join(t.TempDir(), "out", "profiles.json")
		config := &testprofiles.Config{
			BaseURL:      srv.URL,
			NumProfiles:  30,
			Workers:      4,
			Timeout:      5 * time.Second,
			PollInterval: 10 * time.Millisecond,
			WaitTimeout:  10 * time.Second,
			OutputFile:   output,
			Seed:         1,
		}

		convey.Convey("When seeding with a generated reference", func() {
			stats, err := testprofiles.Run(ctx, config)

			convey.Convey("Then every candidate should verify", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.ProfilesCreated, convey.ShouldEqual, 30)
				convey.So(stats.ProfilesFailed, convey.ShouldEqual, 0)
				convey.So(stats.ResultsVerified, convey.ShouldEqual, 30)
				convey.So(stats.Mismatches, convey.ShouldEqual, 0)
			})

			convey.Convey("And the profiles should be saved", func() {
				raw, err := os.ReadFile(output)
				convey.So(err, convey.ShouldBeNil)

				var saved []model.Profile
				convey.So(json.Unmarshal(raw, &saved), convey.ShouldBeNil)
				convey.So(saved, convey.ShouldHaveLength, 31)
			})
		})

		convey.Convey("When seeding against the fixture's reference user", func() {
			config.ReferenceID = repository.FixtureReferenceID
			stats, err := testprofiles.Run(ctx, config)

			convey.Convey("Then the new candidates should verify", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.ResultsVerified, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When the service is unreachable", func() {
			config.BaseURL = "http://127.0.0.1:1"
			_, err := testprofiles.Run(ctx, config)

			convey.Convey("Then the health check should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "health check")
			})
		})
	})
}
