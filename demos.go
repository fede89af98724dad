package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"autonomy/behavior"
	"autonomy/control"
	"autonomy/grid_world"
	"autonomy/localization"
	"autonomy/planning"
	"autonomy/simulation"
)

var (
	navWorld        = []string{"G", "R", "R", "G", "G", "R", "G", "G", "G", "R"}
	navMeasurements = []string{"G", "R", "R", "G"}
	navMotions      = []int{1, 1, 1, 1}

	planStart = grid_world.Cell{X: 0, Y: 0}
	planGoal  = grid_world.Cell{X: 5, Y: 5}
)

const (
	vacuumSteps    = 15
	pidSetpoint    = 10.0
	controlSamples = 10
)

// runNav localizes a robot in the 1D landmark world by alternating predict and update steps.
func runNav(w io.Writer, cfg *simulation.Config) error {
	hf, err := localization.NewHistogramFilter(navWorld, cfg.Sensor, cfg.Motion)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "World: %v\n", navWorld)
	fmt.Fprintln(w, "Initial distribution:")
	printDistribution(w, hf.Distribution())

	for k, z := range navMeasurements {
		hf.Move(navMotions[k])
		fmt.Fprintf(w, "\nStep %d: moved %d\n", k+1, navMotions[k])
		printDistribution(w, hf.Distribution())

		if err = hf.Sense(z); err != nil {
			return err
		}
		fmt.Fprintf(w, "Step %d: sensed %q\n", k+1, z)
		printDistribution(w, hf.Distribution())

		indices, p := hf.MostLikely()
		fmt.Fprintf(w, "Most likely position(s): %v with prob %.3f\n", indices, p)
	}
	return nil
}

func printDistribution(w io.Writer, p []float64) {
	formatted := make([]string, len(p))
	for i, v := range p {
		formatted[i] = fmt.Sprintf("%.3f", v)
	}
	fmt.Fprintln(w, strings.Join(formatted, " "))
}

// runFsm drives the vacuum through its scripted scenario.
func runFsm(w io.Writer, logger *slog.Logger) error {
	states := behavior.RunVacuumScenario(behavior.NewVacuum(logger), vacuumSteps)
	for i, state := range states {
		fmt.Fprintf(w, "step %2d: %s\n", i, state)
	}
	return nil
}

// runPlan plans across each demo grid, corner to corner.
func runPlan(w io.Writer) error {
	for i, rows := range grid_world.DemoGrids {
		grid, err := grid_world.FromRows(rows)
		if err != nil {
			return err
		}

		res, err := planning.Plan(grid, planStart, planGoal)
		if err != nil {
			return fmt.Errorf("grid %d: %w", i+1, err)
		}

		fmt.Fprintf(w, "\nGrid %d:\n", i+1)
		if !res.Found {
			fmt.Fprint(w, grid.Render(nil, planStart, planGoal))
			explored, err := exploredCells(grid)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "No path found, %d cells explored\n", explored)
			continue
		}
		fmt.Fprint(w, grid.Render(res.Path, planStart, planGoal))
		fmt.Fprintf(w, "Path length: %d, expanded: %d\n", res.Path.Len(), res.Expanded)
	}
	return nil
}

// exploredCells traces the search to exhaustion and counts the cells it closed.
func exploredCells(grid *grid_world.Grid) (int, error) {
	stepper, err := planning.NewStepper(grid, planStart, planGoal)
	if err != nil {
		return 0, err
	}
	var last planning.StepSnapshot
	for !stepper.Done() {
		last = stepper.Step()
	}
	return len(last.Closed), nil
}

// runControl drives the point mass to the setpoint and prints a sample of its trajectory.
func runControl(w io.Writer, cfg *simulation.Config) error {
	pid := control.NewPID(cfg.PID, pidSetpoint)
	history, converged, err := control.SimulateMass(pid, cfg.Plant)
	if err != nil {
		return err
	}

	every := max(1, len(history)/controlSamples)
	for i := 0; i < len(history); i += every {
		s := history[i]
		fmt.Fprintf(w, "t=%5.2f x=%7.3f v=%7.3f u=%8.3f\n", s.T, s.Position, s.Velocity, s.Force)
	}

	if converged < 0 {
		fmt.Fprintf(w, "did not converge in %d steps\n", cfg.Plant.MaxSteps)
		return nil
	}
	fmt.Fprintf(w, "converged at step %d (t=%.2f)\n", converged, history[converged].T)
	return nil
}
