// Package perception simulates the robot's object detector and the obstacles it discovers.
package perception

import (
	"fmt"
	"math/rand"

	"autonomy/grid_world"
)

// Classes are the labels the simulated detector can report.
var Classes = []string{"person", "car", "tree", "sign", "dog"}

const (
	MaxDetections = 3
	MinDistance   = 1.0
	MaxDistance   = 10.0
	// MaxAngle bounds the field of view in degrees either side of the heading.
	MaxAngle = 45.0

	DefaultObstacleProbability = 0.3
)

// Detection is a single object seen in the current frame.
type Detection struct {
	Class    string  `json:"class"`
	Distance float64 `json:"distance"`
	Angle    float64 `json:"angle"`
}

func (d Detection) String() string {
	return fmt.Sprintf("%s at %.1fm, %.1f°", d.Class, d.Distance, d.Angle)
}

// Detector produces random detections and obstacles from an injected source, so runs can be
// replayed from a seed.
type Detector struct {
	rng *rand.Rand
	// ObstacleProbability is the chance per call that DetectObstacles reports a new obstacle.
	ObstacleProbability float64
}

func NewDetector(rng *rand.Rand) *Detector {
	return &Detector{
		rng:                 rng,
		ObstacleProbability: DefaultObstacleProbability,
	}
}

// Detect returns between zero and MaxDetections objects.
func (d *Detector) Detect() []Detection {
	n := d.rng.Intn(MaxDetections + 1)
	detections := make([]Detection, 0, n)
	for i := 0; i < n; i++ {
		detections = append(detections, Detection{
			Class:    Classes[d.rng.Intn(len(Classes))],
			Distance: MinDistance + d.rng.Float64()*(MaxDistance-MinDistance),
			Angle:    -MaxAngle + d.rng.Float64()*2*MaxAngle,
		})
	}
	return detections
}

// DetectObstacles returns the cells of any newly observed obstacles in a width x height map.
// The caller decides whether a cell may actually be blocked.
func (d *Detector) DetectObstacles(width, height int) []grid_world.Cell {
	if width <= 0 || height <= 0 || d.rng.Float64() >= d.ObstacleProbability {
		return nil
	}
	return []grid_world.Cell{{
		X: d.rng.Intn(width),
		Y: d.rng.Intn(height),
	}}
}
