package logger

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with each supported format", func() {
			Convey("Then Get returns a usable logger", func() {
				So(Init(), ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Init(FormatConsole), ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(func() { _ = Sync() }, ShouldNotPanic)
			})
		})

		Convey("When initialized with an unknown format", func() {
			Convey("Then an error is returned", func() {
				So(Init("xml"), ShouldNotBeNil)
			})
		})

		Convey("When a named logger is requested", func() {
			So(Init(), ShouldBeNil)

			Convey("Then logging through it does not panic", func() {
				So(func() { Named("test").Info(context.Background(), "hello", String("k", "v")) }, ShouldNotPanic)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		defer SetLevel(zapcore.InfoLevel)

		Convey("When a known level is set", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			So(Level(), ShouldEqual, zapcore.DebugLevel)
			So(SetLevelString("WARNING"), ShouldBeNil)
			So(Level(), ShouldEqual, zapcore.WarnLevel)
			So(SetLevelString(""), ShouldBeNil)
			So(Level(), ShouldEqual, zapcore.InfoLevel)
		})

		Convey("When an unknown level is set", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestFields(t *testing.T) {
	Convey("Given a logger backed by an observer core", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		log := New(zap.New(core)).Named("matcher")

		Convey("When logging with typed fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			log.Warn(ctx, "recompute failed",
				String("reference_id", "me"),
				Int("candidates", 3),
				Float64("score", 37.5),
				Error(errors.New("boom")),
			)

			Convey("Then every field is recorded", func() {
				So(logs.Len(), ShouldEqual, 1)
				entry := logs.All()[0]
				So(entry.Message, ShouldEqual, "recompute failed")
				So(entry.LoggerName, ShouldEqual, "matcher")
				So(entry.Level, ShouldEqual, zapcore.WarnLevel)

				fields := entry.ContextMap()
				So(fields["reference_id"], ShouldEqual, "me")
				So(fields["candidates"], ShouldEqual, int64(3))
				So(fields["score"], ShouldEqual, 37.5)
				So(fields["error"], ShouldEqual, "boom")
				So(fields["request_id"], ShouldEqual, "req-1")
			})
		})

		Convey("When the context carries no request id", func() {
			log.Info(context.Background(), "ok")

			Convey("Then no request id field is added", func() {
				_, ok := logs.All()[0].ContextMap()["request_id"]
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestNilLogger(t *testing.T) {
	Convey("Given New with a nil zap logger", t, func() {
		l := New(nil)

		Convey("Then it behaves as a no-op", func() {
			So(func() { l.Debug(context.Background(), "ignored") }, ShouldNotPanic)
		})
	})
}
