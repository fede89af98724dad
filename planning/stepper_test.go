package planning

import (
	"errors"
	"math/rand"
	"testing"

	"autonomy/grid_world"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStepper(t *testing.T) {
	Convey("Given the demo room", t, func() {
		grid := mustGrid(grid_world.DemoGrids[0])
		start, goal := grid_world.Cell{X: 0, Y: 0}, grid_world.Cell{X: 5, Y: 5}

		stepper, err := NewStepper(grid, start, goal)
		So(err, ShouldBeNil)
		So(stepper.Done(), ShouldBeFalse)

		Convey("The first step expands the start cell", func() {
			snap := stepper.Step()
			So(snap.Current, ShouldResemble, start)
			So(snap.StepIndex, ShouldEqual, 1)
			So(snap.Closed[start], ShouldBeTrue)
			So(snap.Open, ShouldResemble, map[grid_world.Cell]bool{
				{X: 0, Y: 1}: true,
				{X: 1, Y: 0}: true,
			})
			So(snap.Done, ShouldBeFalse)
		})

		Convey("Snapshots are copies", func() {
			snap := stepper.Step()
			snap.Closed[goal] = true
			next := stepper.Step()
			So(next.Closed[goal], ShouldBeFalse)
		})

		Convey("Stepping to completion matches Plan", func() {
			var last StepSnapshot
			for !stepper.Done() {
				last = stepper.Step()
			}
			So(last.Found, ShouldBeTrue)
			So(last.Current, ShouldResemble, goal)

			res, err := Plan(grid, start, goal)
			So(err, ShouldBeNil)
			So(cmp.Diff(res.Path, last.Path), ShouldBeEmpty)

			Convey("Steps after completion return the final state", func() {
				again := stepper.Step()
				So(again.Done, ShouldBeTrue)
				So(again.StepIndex, ShouldEqual, last.StepIndex)
			})
		})
	})

	Convey("Run agrees with Plan on random grids", t, func() {
		r := rand.New(rand.NewSource(11))
		for trial := 0; trial < 100; trial++ {
			width, height := 2+r.Intn(8), 2+r.Intn(8)
			grid := randomGrid(r, width, height, 0.25)
			start := grid_world.Cell{X: r.Intn(width), Y: r.Intn(height)}
			goal := grid_world.Cell{X: r.Intn(width), Y: r.Intn(height)}

			stepper, err := NewStepper(grid, start, goal)
			So(err, ShouldBeNil)
			got := stepper.Run()

			want, err := Plan(grid, start, goal)
			So(err, ShouldBeNil)
			So(got.Found, ShouldEqual, want.Found)
			So(got.Expanded, ShouldEqual, want.Expanded)
			So(cmp.Diff(want.Path, got.Path), ShouldBeEmpty)
		}
	})

	Convey("Stepper validates endpoints like Plan", t, func() {
		grid := mustGrid([]string{"..", ".."})
		_, err := NewStepper(grid, grid_world.Cell{X: 0, Y: 0}, grid_world.Cell{X: 2, Y: 0})
		So(errors.Is(err, ErrOutOfBounds), ShouldBeTrue)

		stepper, err := NewStepper(grid, grid_world.Cell{X: 1, Y: 1}, grid_world.Cell{X: 1, Y: 1})
		So(err, ShouldBeNil)
		So(stepper.Done(), ShouldBeTrue)
		So(stepper.Run().Path, ShouldResemble, Path{{X: 1, Y: 1}})
	})
}
