// Package localization estimates the robot's position: a histogram (discrete Bayes) filter
// over a cyclic 1D world of landmarks, and the trivial pose localizer used by the grid simulation.
package localization

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptyWorld is returned when a filter is built over a world with no cells.
	ErrEmptyWorld = errors.New("world has no cells")
	// ErrDegenerateBelief is returned when a measurement leaves no probability mass to normalize.
	ErrDegenerateBelief = errors.New("belief has no probability mass")
)

// SensorModel and MotionModel hold the filter's noise parameters.
type SensorModel struct {
	PHit  float64 `yaml:"p_hit"`
	PMiss float64 `yaml:"p_miss"`
}

type MotionModel struct {
	PExact      float64 `yaml:"p_exact"`
	POvershoot  float64 `yaml:"p_overshoot"`
	PUndershoot float64 `yaml:"p_undershoot"`
}

// DefaultSensor and DefaultMotion are the classic textbook parameters.
var (
	DefaultSensor = SensorModel{PHit: 0.6, PMiss: 0.2}
	DefaultMotion = MotionModel{PExact: 0.8, POvershoot: 0.1, PUndershoot: 0.1}
)

// HistogramFilter tracks a belief distribution over the cells of a cyclic 1D world.
type HistogramFilter struct {
	world  []string
	sensor SensorModel
	motion MotionModel
	p      []float64
}

// NewHistogramFilter returns a filter with a uniform prior over world.
func NewHistogramFilter(world []string, sensor SensorModel, motion MotionModel) (*HistogramFilter, error) {
	if len(world) == 0 {
		return nil, ErrEmptyWorld
	}
	p := make([]float64, len(world))
	for i := range p {
		p[i] = 1.0 / float64(len(world))
	}
	return &HistogramFilter{
		world:  append([]string(nil), world...),
		sensor: sensor,
		motion: motion,
		p:      p,
	}, nil
}

// Sense applies the measurement update (Bayes rule) for landmark z and normalizes.
// If no cell retains any probability the belief is left unchanged and ErrDegenerateBelief returned.
func (hf *HistogramFilter) Sense(z string) error {
	q := make([]float64, len(hf.p))
	for i := range hf.p {
		multiplier := hf.sensor.PMiss
		if hf.world[i] == z {
			multiplier = hf.sensor.PHit
		}
		q[i] = hf.p[i] * multiplier
	}

	s := floats.Sum(q)
	if s <= 0 {
		return fmt.Errorf("sense %q: %w", z, ErrDegenerateBelief)
	}
	floats.Scale(1/s, q)
	hf.p = q
	return nil
}

// Move applies the motion update (total probability) for a shift of u cells, which may
// overshoot or undershoot by one.
func (hf *HistogramFilter) Move(u int) {
	n := len(hf.p)
	q := make([]float64, n)
	for i := range q {
		q[i] = hf.motion.PExact*hf.p[mod(i-u, n)] +
			hf.motion.POvershoot*hf.p[mod(i-u-1, n)] +
			hf.motion.PUndershoot*hf.p[mod(i-u+1, n)]
	}
	hf.p = q
}

// Distribution returns a copy of the current belief.
func (hf *HistogramFilter) Distribution() []float64 {
	return append([]float64(nil), hf.p...)
}

// MostLikely returns every cell index sharing the maximum probability, and that probability.
func (hf *HistogramFilter) MostLikely() (indices []int, p float64) {
	p = floats.Max(hf.p)
	for i, v := range hf.p {
		if v == p {
			indices = append(indices, i)
		}
	}
	return
}

// mod is the non-negative remainder, for cyclic indexing.
func mod(i, n int) int {
	return ((i % n) + n) % n
}
