package simulation

import (
	"autonomy/atomic_float"
	"autonomy/grid_world"
	"autonomy/perception"
	"autonomy/planning"
)

const (
	StatusIdle        = "IDLE"
	StatusMoving      = "MOVING"
	StatusArrived     = "ARRIVED"
	StatusCharging    = "CHARGING"
	StatusUnreachable = "UNREACHABLE"
	StatusDepleted    = "DEPLETED"
)

// RobotState is the robot as the simulation tracks it. Battery is shared with readers on
// other goroutines; everything else is owned by the simulation goroutine.
type RobotState struct {
	Pose    grid_world.Cell
	Battery *atomic_float.AtomicFloat64
	Status  string
	Goal    grid_world.Cell
	HasGoal bool
	// Path is the remaining route to Goal, excluding Pose.
	Path planning.Path
}

func (rs *RobotState) clearGoal() {
	rs.Goal = grid_world.Cell{}
	rs.HasGoal = false
	rs.Path = nil
}

// Snapshot is a deep copy of the simulation after a tick, safe to hand to other goroutines.
type Snapshot struct {
	Tick       int                    `json:"tick"`
	Grid       *grid_world.Grid       `json:"-"`
	Rows       []string               `json:"rows"`
	Pose       grid_world.Cell        `json:"pose"`
	Station    grid_world.Cell        `json:"station"`
	Goal       grid_world.Cell        `json:"goal"`
	HasGoal    bool                   `json:"hasGoal"`
	Path       planning.Path          `json:"path"`
	Battery    float64                `json:"battery"`
	Mode       string                 `json:"mode"`
	Status     string                 `json:"status"`
	Detections []perception.Detection `json:"detections"`
	Replans    int                    `json:"replans"`
}
