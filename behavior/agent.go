// Package behavior decides what the robot should be doing: a mode-switching agent that picks
// navigation goals, and a small vacuum-cleaner state machine driven by raw sensor flags.
package behavior

import (
	"log/slog"
	"math/rand"

	"autonomy/grid_world"
)

// Mode is the agent's current behavior.
type Mode int

const (
	Idle Mode = iota
	Explore
	Charge
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "IDLE"
	case Explore:
		return "EXPLORE"
	case Charge:
		return "CHARGE"
	}
	return "UNKNOWN"
}

const (
	// LowBattery is the level below which the agent abandons exploring to recharge.
	LowBattery = 20.0
	// FullBattery is the level at which charging is complete.
	FullBattery = 100.0
)

// Observation is what the agent needs to know about the robot to decide.
type Observation struct {
	Pose    grid_world.Cell
	Battery float64
	// Goal is the goal currently being pursued, if HasGoal.
	Goal    grid_world.Cell
	HasGoal bool
}

// Agent chooses navigation goals: explore random targets, and head back to the charging
// station when the battery runs low.
type Agent struct {
	mode     Mode
	station  grid_world.Cell
	targets  []grid_world.Cell
	rejected map[grid_world.Cell]bool
	rng      *rand.Rand
	logger   *slog.Logger
}

// DefaultTargets are the explore targets of the 10x10 simulation room.
var DefaultTargets = []grid_world.Cell{{X: 5, Y: 5}, {X: 8, Y: 2}, {X: 2, Y: 8}, {X: 9, Y: 9}}

// NewAgent returns an idle agent. The random source makes target selection reproducible.
func NewAgent(
	station grid_world.Cell,
	targets []grid_world.Cell,
	rng *rand.Rand,
	logger *slog.Logger,
) *Agent {
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		mode:     Idle,
		station:  station,
		targets:  append([]grid_world.Cell(nil), targets...),
		rejected: make(map[grid_world.Cell]bool),
		rng:      rng,
		logger:   logger,
	}
}

func (a *Agent) Mode() Mode                { return a.mode }
func (a *Agent) Station() grid_world.Cell { return a.station }

// Decide returns the goal to pursue. ok is false when the agent has no goal, meaning stay put.
func (a *Agent) Decide(obs Observation) (goal grid_world.Cell, ok bool) {
	// Critical conditions first.
	if obs.Battery < LowBattery && a.mode != Charge {
		a.logger.Info("battery low, switching to charge", "battery", obs.Battery)
		a.mode = Charge
		return a.station, true
	}

	switch a.mode {
	case Idle:
		a.logger.Info("idle, starting to explore")
		a.mode = Explore
		return a.pickTarget(obs.Pose)

	case Explore:
		if !obs.HasGoal {
			return a.pickTarget(obs.Pose)
		}
		if obs.Pose == obs.Goal {
			a.logger.Info("target reached, picking a new one", "target", obs.Goal)
			return a.pickTarget(obs.Pose)
		}

	case Charge:
		if obs.Pose == a.station {
			if obs.Battery >= FullBattery {
				a.logger.Info("battery full, switching to explore")
				a.mode = Explore
				return a.pickTarget(obs.Pose)
			}
			return a.station, true
		}
		if !obs.HasGoal {
			return a.station, true
		}
	}

	return obs.Goal, obs.HasGoal
}

// Reject tells the agent its goal cannot currently be reached. The target is skipped by
// later picks until every target has been rejected, at which point all are retried.
func (a *Agent) Reject(goal grid_world.Cell) {
	if goal == a.station {
		return
	}
	a.rejected[goal] = true
	a.logger.Debug("goal rejected", "goal", goal)
}

func (a *Agent) pickTarget(pose grid_world.Cell) (grid_world.Cell, bool) {
	candidates := make([]grid_world.Cell, 0, len(a.targets))
	for _, t := range a.targets {
		if !a.rejected[t] && t != pose {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		// Obstacles may have moved on; forget old rejections.
		a.rejected = make(map[grid_world.Cell]bool)
		for _, t := range a.targets {
			if t != pose {
				candidates = append(candidates, t)
			}
		}
	}
	if len(candidates) == 0 {
		return grid_world.Cell{}, false
	}
	return candidates[a.rng.Intn(len(candidates))], true
}
