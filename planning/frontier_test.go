package planning

import (
	"testing"

	"autonomy/grid_world"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFrontier(t *testing.T) {
	Convey("Given a frontier seeded with the start cell", t, func() {
		start, goal := grid_world.Cell{X: 0, Y: 0}, grid_world.Cell{X: 3, Y: 0}
		fr := newFrontier(start, goal)
		So(fr.len(), ShouldEqual, 1)
		So(fr.best[start], ShouldEqual, 0)

		Convey("Equal priorities pop in insertion order", func() {
			_, _ = fr.pop()
			a := grid_world.Cell{X: 0, Y: 1} // f = 1 + 4
			b := grid_world.Cell{X: 1, Y: 1} // f = 2 + 3
			c := grid_world.Cell{X: 2, Y: 1} // f = 3 + 2
			So(fr.relax(start, a, 1), ShouldBeTrue)
			So(fr.relax(a, b, 2), ShouldBeTrue)
			So(fr.relax(b, c, 3), ShouldBeTrue)

			var popped []grid_world.Cell
			for {
				n, ok := fr.pop()
				if !ok {
					break
				}
				popped = append(popped, n.cell)
			}
			So(popped, ShouldResemble, []grid_world.Cell{a, b, c})
		})

		Convey("Lower f pops first regardless of insertion order", func() {
			_, _ = fr.pop()
			far := grid_world.Cell{X: 0, Y: 2}
			near := grid_world.Cell{X: 1, Y: 0}
			fr.relax(start, far, 2)
			fr.relax(start, near, 1)
			n, ok := fr.pop()
			So(ok, ShouldBeTrue)
			So(n.cell, ShouldResemble, near)
		})

		Convey("Only strictly better costs are recorded", func() {
			cell := grid_world.Cell{X: 1, Y: 2}
			So(fr.relax(start, cell, 5), ShouldBeTrue)
			So(fr.relax(start, cell, 5), ShouldBeFalse)
			So(fr.relax(start, cell, 6), ShouldBeFalse)
			So(fr.best[cell], ShouldEqual, 5)
			So(fr.relax(goal, cell, 3), ShouldBeTrue)
			So(fr.best[cell], ShouldEqual, 3)
			So(fr.cameFrom[cell], ShouldResemble, goal)
		})

		Convey("Superseded entries are discarded on pop", func() {
			_, _ = fr.pop()
			cell := grid_world.Cell{X: 1, Y: 0}
			fr.relax(start, cell, 7)
			fr.relax(start, cell, 1)
			So(fr.len(), ShouldEqual, 2)

			n, ok := fr.pop()
			So(ok, ShouldBeTrue)
			So(n.g, ShouldEqual, 1)

			_, ok = fr.pop()
			So(ok, ShouldBeFalse)
			So(fr.len(), ShouldEqual, 0)
		})
	})
}
