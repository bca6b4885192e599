package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/circlemate/matchmaker/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.RecomputeDelay(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.RedisPrefix, convey.ShouldEqual, "matchmaker:")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field each", t, func() {
		cases := []struct {
			field  string
			mutate func(*config.Config)
		}{
			{"queue_size", func(c *config.Config) { c.QueueSize = 0 }},
			{"worker_count", func(c *config.Config) { c.WorkerCount = -1 }},
			{"recompute_delay_ms", func(c *config.Config) { c.RecomputeDelayMS = -5 }},
			{"log_format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"redis_addr", func(c *config.Config) { c.StoreBackend = config.BackendRedis; c.RedisAddr = "" }},
		}

		for _, tc := range cases {
			cfg := config.New(context.Background())
			tc.mutate(cfg)

			convey.Convey("Then "+tc.field+" is rejected", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.field)
			})
		}
	})
}
