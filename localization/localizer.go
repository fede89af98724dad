package localization

import (
	"autonomy/grid_world"
)

// PoseLocalizer estimates the robot's grid cell. The simulation trusts its true pose
// after every move, so the estimate is exact; a real system would fuse odometry and perception here.
type PoseLocalizer struct{}

func (PoseLocalizer) Estimate(pose grid_world.Cell) grid_world.Cell {
	return pose
}
