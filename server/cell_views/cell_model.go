// cell_views contains views derived from the Frame view-model.
package cell_views

import (
	"fmt"

	"autonomy/grid_world"
	"autonomy/simulation"
)

// Cell is one grid cell reduced to what the svg needs. Cells are indexed [x][y]; grid y
// already grows downward like svg's, so no flip is needed.
type Cell struct {
	X, Y int
	Fill string
}

// Frame is the view-model of a simulation snapshot: the cells plus the status readouts.
// Fields are immediately usable as template parameters.
type Frame struct {
	Cells         [][]Cell
	Width, Height int

	Tick    int
	Mode    string
	Status  string
	Battery string
	Goal    string
	PathLen int
	Replans int
}

const (
	fillFree    = "white"
	fillBlocked = "dimgray"
	fillPath    = "lightblue"
	fillGoal    = "lightgreen"
	fillStation = "gold"
	fillRobot   = "orangered"
)

// Convert transforms a snapshot into a Frame.
func Convert(snap simulation.Snapshot) (frame Frame) {
	grid := snap.Grid
	frame = Frame{
		Tick:    snap.Tick,
		Mode:    snap.Mode,
		Status:  snap.Status,
		Battery: fmt.Sprintf("%.0f%%", snap.Battery),
		Goal:    "-",
		PathLen: len(snap.Path),
		Replans: snap.Replans,
	}
	if snap.HasGoal {
		frame.Goal = snap.Goal.String()
	}
	if grid == nil {
		return
	}

	onPath := make(map[grid_world.Cell]bool, len(snap.Path))
	for _, c := range snap.Path {
		onPath[c] = true
	}

	frame.Width, frame.Height = grid.Width(), grid.Height()
	frame.Cells = make([][]Cell, frame.Width)
	for x := range frame.Cells {
		frame.Cells[x] = make([]Cell, frame.Height)
	}
	grid.Visit(func(c grid_world.Cell, blocked bool) {
		frame.Cells[c.X][c.Y] = Cell{
			X:    c.X,
			Y:    c.Y,
			Fill: getFill(snap, c, blocked, onPath[c]),
		}
	})
	return
}

// getFill layers the robot over the goal, station and path, and those over the map itself.
func getFill(snap simulation.Snapshot, c grid_world.Cell, blocked, onPath bool) string {
	switch {
	case c == snap.Pose:
		return fillRobot
	case snap.HasGoal && c == snap.Goal:
		return fillGoal
	case c == snap.Station:
		return fillStation
	case onPath:
		return fillPath
	case blocked:
		return fillBlocked
	}
	return fillFree
}
