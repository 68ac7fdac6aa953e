package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given default initialization", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { _ = Sync() }()

		Convey("Get returns a usable logger", func() {
			l := Get()
			So(l, ShouldNotBeNil)
			l.Info(context.Background(), "test message", String("k", "v"))
		})

		Convey("Named returns a logger", func() {
			So(Named("test"), ShouldNotBeNil)
		})
	})

	Convey("Given an unknown format", t, func() {
		So(InitWithOptions(WithFormat("xml")), ShouldNotBeNil)
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(WithWriter(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug)), ShouldBeNil)
		defer func() { _ = Init() }()

		ctx := context.Background()
		Named("engine").Info(ctx, "scored",
			Float64("score", 81.25),
			Int("rules", 2),
			Bool("adjusted", true),
			Duration("took", time.Millisecond),
			Error(errors.New("boom")),
		)

		Convey("The record carries the message, name and fields", func() {
			var rec map[string]any
			So(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "scored")
			So(rec["logger"], ShouldEqual, "engine")
			So(rec["score"], ShouldEqual, 81.25)
			So(rec["rules"], ShouldEqual, 2)
			So(rec["adjusted"], ShouldBeTrue)
			So(rec["source"], ShouldContainSubstring, "logger_test.go")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given a text logger at info", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()
		ctx := context.Background()

		Convey("Debug is suppressed until the level is lowered", func() {
			Get().Debug(ctx, "hidden")
			So(buf.Len(), ShouldEqual, 0)

			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "shown")
			So(strings.Contains(buf.String(), "shown"), ShouldBeTrue)
		})

		Convey("Warning aliases are accepted", func() {
			So(SetLevelString("warning"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Unknown levels are rejected", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestNop(t *testing.T) {
	Convey("Nop swallows every level", t, func() {
		l := Nop()
		So(func() { l.Error(context.Background(), "ignored") }, ShouldNotPanic)
		So(l.Named("x"), ShouldNotBeNil)
	})
}
