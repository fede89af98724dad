package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autonomy/control"
	"autonomy/simulation"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDemos(t *testing.T) {
	Convey("Given the default config", t, func() {
		cfg := simulation.DefaultConfig()
		var out bytes.Buffer

		Convey("The nav demo starts uniform and reports a best guess per step", func() {
			So(runNav(&out, cfg), ShouldBeNil)
			text := out.String()
			So(text, ShouldContainSubstring, strings.Repeat("0.100 ", 9)+"0.100\n")
			So(strings.Count(text, "Most likely position(s):"), ShouldEqual, len(navMeasurements))
			So(text, ShouldContainSubstring, `Step 4: sensed "G"`)
		})

		Convey("The fsm demo walks through stuck, charge and back to clean", func() {
			So(runFsm(&out, slog.New(slog.NewTextHandler(io.Discard, nil))), ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			So(len(lines), ShouldEqual, vacuumSteps)
			So(lines[3], ShouldEqual, "step  3: CLEAN")
			So(lines[4], ShouldEqual, "step  4: STUCK")
			So(lines[7], ShouldEqual, "step  7: CLEAN")
			So(lines[10], ShouldEqual, "step 10: CHARGE")
			So(lines[14], ShouldEqual, "step 14: CLEAN")
		})

		Convey("The plan demo solves the open grids and reports the sealed one", func() {
			So(runPlan(&out), ShouldBeNil)
			text := out.String()
			So(text, ShouldContainSubstring, "Grid 1:")
			So(text, ShouldContainSubstring, "Path length: 10")
			So(strings.Count(text, "No path found"), ShouldEqual, 1)
			// Everything but the sealed-off right column is reachable.
			So(text, ShouldEndWith, "No path found, 19 cells explored\n")
		})

		Convey("The control demo reports convergence for well damped gains", func() {
			cfg.PID = control.Gains{Kp: 2, Kd: 3}
			cfg.Plant.MaxSteps = 1000
			So(runControl(&out, cfg), ShouldBeNil)
			So(out.String(), ShouldStartWith, "t= 0.00")
			So(out.String(), ShouldContainSubstring, "converged at step")
		})

		Convey("The control demo reports a run that never settles", func() {
			cfg.PID = control.Gains{Kp: 2}
			cfg.Plant.Friction = 0
			So(runControl(&out, cfg), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "did not converge in 100 steps")
		})

		Convey("An invalid plant is an error", func() {
			cfg.Plant.Mass = 0
			So(runControl(&out, cfg), ShouldNotBeNil)
		})
	})
}

func TestLoadConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	Convey("Given a config path", t, func() {
		dir := t.TempDir()

		Convey("A missing file falls back to the defaults", func() {
			cfg, err := loadConfig(filepath.Join(dir, "none.yaml"), logger)
			So(err, ShouldBeNil)
			So(cfg, ShouldResemble, simulation.DefaultConfig())
		})

		Convey("An existing file is loaded", func() {
			path := filepath.Join(dir, "config.yaml")
			So(os.WriteFile(path, []byte("kind: simulation\ndef:\n  seed: 7\n  max_ticks: 12\n"), 0o644), ShouldBeNil)
			cfg, err := loadConfig(path, logger)
			So(err, ShouldBeNil)
			So(cfg.Seed, ShouldEqual, 7)
			So(cfg.MaxTicks, ShouldEqual, 12)
		})
	})
}
