package behavior

import (
	"log/slog"
)

// VacuumState is a state of the vacuum cleaner machine.
type VacuumState int

const (
	Clean VacuumState = iota
	Charging
	Stuck
)

func (s VacuumState) String() string {
	switch s {
	case Clean:
		return "CLEAN"
	case Charging:
		return "CHARGE"
	case Stuck:
		return "STUCK"
	}
	return "UNKNOWN"
}

// Sensors are the raw inputs to the vacuum machine.
type Sensors struct {
	Battery float64
	Bumper  bool
}

const (
	vacuumLowBattery     = 20
	vacuumCharged        = 90
	maxStuckSteps        = 2
	vacuumDrainPerStep   = 5
	vacuumChargePerStep  = 20
	vacuumBumperStep     = 4
	vacuumForceLowAtStep = 10
)

// Vacuum is the bump-and-charge cleaner: it cleans until the bumper trips (stuck, wiggles
// free after a few steps) or the battery runs low (charge until nearly full).
type Vacuum struct {
	state      VacuumState
	stepsStuck int
	logger     *slog.Logger
}

func NewVacuum(logger *slog.Logger) *Vacuum {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vacuum{state: Clean, logger: logger}
}

func (v *Vacuum) State() VacuumState {
	return v.state
}

// Step applies one transition for the given sensor readings and returns the new state.
func (v *Vacuum) Step(sensors Sensors) VacuumState {
	v.logger.Debug("vacuum step",
		"state", v.state,
		"battery", sensors.Battery,
		"bumper", sensors.Bumper)

	switch v.state {
	case Clean:
		switch {
		case sensors.Bumper:
			v.logger.Info("bumper hit, stuck")
			v.state = Stuck
			v.stepsStuck = 0
		case sensors.Battery < vacuumLowBattery:
			v.logger.Info("low battery, charging")
			v.state = Charging
		}

	case Stuck:
		v.stepsStuck++
		if v.stepsStuck > maxStuckSteps {
			v.logger.Info("wiggled free, cleaning")
			v.state = Clean
		}

	case Charging:
		if sensors.Battery >= vacuumCharged {
			v.logger.Info("fully charged, cleaning")
			v.state = Clean
		}
	}
	return v.state
}

// RunVacuumScenario drives a vacuum through the scripted demo: normal cleaning with the battery
// draining, a bumper hit on step 5, and a forced low battery from step 11.
// It returns the state after each step.
func RunVacuumScenario(v *Vacuum, steps int) []VacuumState {
	states := make([]VacuumState, 0, steps)
	battery := 100.0
	for i := 0; i < steps; i++ {
		if v.State() != Charging {
			battery -= vacuumDrainPerStep
		} else {
			battery += vacuumChargePerStep
		}
		battery = max(0, min(100, battery))

		if i >= vacuumForceLowAtStep && v.State() == Clean {
			battery = 15
		}

		states = append(states, v.Step(Sensors{
			Battery: battery,
			Bumper:  i == vacuumBumperStep,
		}))
	}
	return states
}
