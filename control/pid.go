// Package control implements a PID controller and the point-mass plant it is demonstrated on.
package control

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTimestep is returned when the controller is stepped with a non-positive dt.
var ErrInvalidTimestep = errors.New("timestep must be positive")

// Gains are the proportional, integral and derivative coefficients.
type Gains struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// PID is a textbook PID controller. The derivative acts on the error, so a setpoint change
// produces a derivative kick on the following update.
type PID struct {
	Gains
	Setpoint float64

	prevError float64
	integral  float64
}

func NewPID(gains Gains, setpoint float64) *PID {
	return &PID{Gains: gains, Setpoint: setpoint}
}

// Update returns the control output for the measured process variable after dt seconds.
func (pid *PID) Update(measurement, dt float64) (float64, error) {
	if dt <= 0 || math.IsNaN(dt) {
		return 0, fmt.Errorf("dt=%v: %w", dt, ErrInvalidTimestep)
	}
	err := pid.Setpoint - measurement

	p := pid.Kp * err

	pid.integral += err * dt
	i := pid.Ki * pid.integral

	derivative := (err - pid.prevError) / dt
	d := pid.Kd * derivative

	pid.prevError = err
	return p + i + d, nil
}

// Reset clears the accumulated integral and derivative state.
func (pid *PID) Reset() {
	pid.prevError = 0
	pid.integral = 0
}

// PlantConfig describes the simulated point mass and when to stop.
type PlantConfig struct {
	Mass      float64 `yaml:"mass"`
	Friction  float64 `yaml:"friction"`
	Dt        float64 `yaml:"dt"`
	MaxSteps  int     `yaml:"max_steps"`
	Tolerance float64 `yaml:"tolerance"`
}

// DefaultPlant is a unit mass with light drag stepped at 10Hz.
var DefaultPlant = PlantConfig{
	Mass:      1.0,
	Friction:  0.1,
	Dt:        0.1,
	MaxSteps:  100,
	Tolerance: 0.01,
}

// Sample is one step of the plant simulation.
type Sample struct {
	T        float64
	Position float64
	Velocity float64
	Force    float64
}

// SimulateMass drives a point mass from position zero toward the controller's setpoint using
// Euler integration. It returns the trajectory and the index of the step at which position
// and velocity both settled within tolerance, or -1 if they never did.
func SimulateMass(pid *PID, plant PlantConfig) (history []Sample, converged int, err error) {
	if plant.Mass <= 0 {
		return nil, -1, fmt.Errorf("mass %v must be positive", plant.Mass)
	}

	pos, vel := 0.0, 0.0
	converged = -1
	for step := 0; step < plant.MaxSteps; step++ {
		var force float64
		if force, err = pid.Update(pos, plant.Dt); err != nil {
			return nil, -1, err
		}

		acc := force/plant.Mass - plant.Friction*vel
		vel += acc * plant.Dt
		pos += vel * plant.Dt

		history = append(history, Sample{
			T:        float64(step) * plant.Dt,
			Position: pos,
			Velocity: vel,
			Force:    force,
		})

		if math.Abs(pos-pid.Setpoint) < plant.Tolerance && math.Abs(vel) < plant.Tolerance {
			converged = step
			break
		}
	}
	return
}
