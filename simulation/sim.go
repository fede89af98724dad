// Package simulation is the robot's sense-plan-act loop over a grid room: perception adds
// obstacles, the behavior agent picks goals, the planner routes to them and the robot steps
// along the route one cell per tick.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"autonomy/atomic_float"
	"autonomy/behavior"
	"autonomy/grid_world"
	"autonomy/localization"
	"autonomy/perception"
	"autonomy/planning"

	channerics "github.com/niceyeti/channerics/channels"
)

// Sim owns the room grid and the robot. Tick and the mutators must be called from a single
// goroutine; Battery may be read from any.
type Sim struct {
	cfg       *Config
	grid      *grid_world.Grid
	robot     RobotState
	agent     *behavior.Agent
	detector  *perception.Detector
	localizer localization.PoseLocalizer
	logger    *slog.Logger

	tick       int
	replans    int
	detections []perception.Detection
}

// NewSim builds a simulation from a validated config.
func NewSim(cfg *Config, logger *slog.Logger) (*Sim, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := grid_world.FromRows(cfg.Grid)
	if err != nil {
		return nil, err
	}
	if grid.IsBlocked(cfg.Start) || grid.IsBlocked(cfg.Station) {
		return nil, fmt.Errorf("start %v and station %v must be free: %w", cfg.Start, cfg.Station, ErrInvalidConfig)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	detector := perception.NewDetector(rng)
	detector.ObstacleProbability = cfg.ObstacleProbability

	return &Sim{
		cfg:  cfg,
		grid: grid,
		robot: RobotState{
			Pose:    cfg.Start,
			Battery: atomic_float.NewAtomicFloat64(cfg.InitialBattery),
			Status:  StatusIdle,
		},
		agent:    behavior.NewAgent(cfg.Station, cfg.Targets, rng, logger),
		detector: detector,
		logger:   logger,
	}, nil
}

// ProgressFunc receives a snapshot after every tick. It runs on the simulation goroutine
// and should return quickly, honoring ctx if it blocks.
type ProgressFunc func(context.Context, Snapshot)

// Run ticks every configured period until ctx is done or MaxTicks is reached.
func (s *Sim) Run(ctx context.Context, progressFn ProgressFunc) error {
	period, err := s.cfg.Period()
	if err != nil {
		return err
	}

	for range channerics.NewTicker(ctx.Done(), period) {
		snap, err := s.Tick()
		if err != nil {
			return err
		}
		if progressFn != nil {
			progressFn(ctx, snap)
		}
		if s.cfg.MaxTicks > 0 && s.tick >= s.cfg.MaxTicks {
			s.logger.Info("simulation finished", "ticks", s.tick, "replans", s.replans)
			return nil
		}
	}
	return ctx.Err()
}

// Tick runs one perception, estimation, behavior, planning and actuation cycle.
func (s *Sim) Tick() (Snapshot, error) {
	s.tick++

	s.perceive()

	pose := s.localizer.Estimate(s.robot.Pose)

	goal, ok := s.agent.Decide(behavior.Observation{
		Pose:    pose,
		Battery: s.robot.Battery.AtomicRead(),
		Goal:    s.robot.Goal,
		HasGoal: s.robot.HasGoal,
	})
	if !ok {
		s.robot.clearGoal()
		s.robot.Status = StatusIdle
	} else {
		goalChanged := !s.robot.HasGoal || goal != s.robot.Goal
		s.robot.Goal, s.robot.HasGoal = goal, true
		if goalChanged || s.pathInvalid(pose) {
			if err := s.replan(pose, goal); err != nil {
				return Snapshot{}, err
			}
		}
	}

	s.actuate()

	s.logger.Debug("tick",
		"tick", s.tick,
		"pose", s.robot.Pose,
		"goal", s.robot.Goal,
		"mode", s.agent.Mode(),
		"battery", s.robot.Battery.AtomicRead(),
		"status", s.robot.Status)
	return s.Snapshot(), nil
}

// AddObstacle blocks c unless it is the robot's cell, the charging station, off the map or
// already blocked. It reports whether the grid changed. Call it between ticks only.
func (s *Sim) AddObstacle(c grid_world.Cell) bool {
	if c == s.robot.Pose || c == s.agent.Station() || !s.grid.InBounds(c) || s.grid.IsBlocked(c) {
		return false
	}
	// InBounds was checked above.
	_ = s.grid.SetBlocked(c)
	s.logger.Info("obstacle detected", "cell", c)
	return true
}

func (s *Sim) perceive() {
	s.detections = s.detector.Detect()
	for _, c := range s.detector.DetectObstacles(s.grid.Width(), s.grid.Height()) {
		s.AddObstacle(c)
	}
}

// pathInvalid reports whether the current route can no longer be followed.
func (s *Sim) pathInvalid(pose grid_world.Cell) bool {
	if len(s.robot.Path) == 0 {
		return pose != s.robot.Goal
	}
	return s.grid.IsBlocked(s.robot.Path[0])
}

func (s *Sim) replan(pose, goal grid_world.Cell) error {
	res, err := planning.Plan(s.grid, pose, goal, planning.WithMaxExpansions(s.cfg.MaxExpansions))
	if err != nil && !errors.Is(err, planning.ErrBudgetExhausted) {
		return fmt.Errorf("plan %v -> %v: %w", pose, goal, err)
	}
	s.replans++

	if !res.Found {
		s.logger.Info("goal unreachable", "goal", goal, "expanded", res.Expanded, "error", err)
		s.agent.Reject(goal)
		s.robot.clearGoal()
		s.robot.Status = StatusUnreachable
		return nil
	}

	s.logger.Info("replanned", "from", pose, "goal", goal, "length", res.Path.Len(), "expanded", res.Expanded)
	// The route starts at the current pose; only the steps ahead are kept.
	s.robot.Path = append(planning.Path(nil), res.Path[1:]...)
	return nil
}

func (s *Sim) actuate() {
	if len(s.robot.Path) > 0 {
		if s.robot.Battery.AtomicRead() <= 0 {
			s.robot.Status = StatusDepleted
			return
		}
		next := s.robot.Path[0]
		if s.grid.IsBlocked(next) || !grid_world.Adjacent(s.robot.Pose, next) {
			// Picked up by pathInvalid on the next tick.
			return
		}
		s.robot.Pose = next
		s.robot.Path = s.robot.Path[1:]
		s.robot.Battery.AtomicClampAdd(-s.cfg.DrainPerStep, 0, behavior.FullBattery)
		s.robot.Status = StatusMoving
		if s.robot.HasGoal && s.robot.Pose == s.robot.Goal {
			s.robot.Status = StatusArrived
		}
	}

	if s.robot.Pose == s.agent.Station() && s.agent.Mode() == behavior.Charge {
		level := s.robot.Battery.AtomicClampAdd(s.cfg.ChargePerTick, 0, behavior.FullBattery)
		s.robot.Status = StatusCharging
		s.logger.Debug("charging", "battery", level)
	}
}

// Battery is the robot's current charge. Safe for concurrent use.
func (s *Sim) Battery() float64 {
	return s.robot.Battery.AtomicRead()
}

// Snapshot copies the current state.
func (s *Sim) Snapshot() Snapshot {
	grid := s.grid.Clone()
	return Snapshot{
		Tick:       s.tick,
		Grid:       grid,
		Rows:       grid.Rows(),
		Pose:       s.robot.Pose,
		Station:    s.agent.Station(),
		Goal:       s.robot.Goal,
		HasGoal:    s.robot.HasGoal,
		Path:       append(planning.Path(nil), s.robot.Path...),
		Battery:    s.robot.Battery.AtomicRead(),
		Mode:       s.agent.Mode().String(),
		Status:     s.robot.Status,
		Detections: append([]perception.Detection(nil), s.detections...),
		Replans:    s.replans,
	}
}
