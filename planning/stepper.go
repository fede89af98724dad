package planning

import (
	"autonomy/grid_world"
)

// StepSnapshot exposes the per-iteration state of a search, for views and debugging.
// The maps are copies and may be retained by the caller.
type StepSnapshot struct {
	Current   grid_world.Cell
	Open      map[grid_world.Cell]bool
	Closed    map[grid_world.Cell]bool
	Done      bool
	Found     bool
	Path      Path
	StepIndex int
}

// Stepper runs the same search as Plan one frontier pop at a time, for tracing a search.
type Stepper struct {
	grid        Grid
	start, goal grid_world.Cell
	fr          *frontier
	closed      map[grid_world.Cell]bool
	neighbors   []grid_world.Cell

	stepCount int
	done      bool
	found     bool
	path      Path
}

// NewStepper validates the endpoints as Plan does and returns a stepper positioned before
// the first expansion.
func NewStepper(grid Grid, start, goal grid_world.Cell) (*Stepper, error) {
	s := &Stepper{
		grid:      grid,
		start:     start,
		goal:      goal,
		closed:    make(map[grid_world.Cell]bool),
		neighbors: make([]grid_world.Cell, 0, 4),
	}

	res, done, err := checkEndpoints(grid, start, goal)
	if err != nil {
		return nil, err
	}
	if done {
		s.done = true
		s.found = res.Found
		s.path = res.Path
		return s, nil
	}

	s.fr = newFrontier(start, goal)
	return s, nil
}

// Done reports whether the search has terminated.
func (s *Stepper) Done() bool {
	return s.done
}

// Step advances the search by one node expansion and returns a snapshot.
// Once the search is done, further calls return the final snapshot.
func (s *Stepper) Step() StepSnapshot {
	if s.done {
		return s.snapshot(s.goal)
	}

	current, ok := s.fr.pop()
	if !ok {
		s.done = true
		return s.snapshot(s.start)
	}

	s.stepCount++
	s.closed[current.cell] = true

	if current.cell == s.goal {
		s.done = true
		s.found = true
		s.path = s.fr.path(s.start, s.goal)
		return s.snapshot(current.cell)
	}

	s.neighbors = s.grid.Neighbors(current.cell, s.neighbors)
	for _, next := range s.neighbors {
		s.fr.relax(current.cell, next, current.g+1)
	}
	return s.snapshot(current.cell)
}

// Run steps until the search terminates and returns its result.
func (s *Stepper) Run() Result {
	for !s.done {
		s.Step()
	}
	res := Result{Found: s.found, Path: s.path, Expanded: s.stepCount}
	if s.found && s.stepCount > 0 {
		// The goal pop terminates the search without expanding.
		res.Expanded--
		res.Cost = s.path.Len()
	}
	return res
}

func (s *Stepper) snapshot(current grid_world.Cell) StepSnapshot {
	snap := StepSnapshot{
		Current:   current,
		Open:      s.openSet(),
		Closed:    copyBoolMap(s.closed),
		Done:      s.done,
		Found:     s.found,
		StepIndex: s.stepCount,
	}
	if s.found {
		snap.Path = append(Path(nil), s.path...)
	}
	return snap
}

// openSet returns the cells with a live (non-superseded) frontier entry.
func (s *Stepper) openSet() map[grid_world.Cell]bool {
	open := make(map[grid_world.Cell]bool)
	if s.fr == nil {
		return open
	}
	for _, n := range s.fr.queue {
		if !s.closed[n.cell] && n.g == s.fr.best[n.cell] {
			open[n.cell] = true
		}
	}
	return open
}

func copyBoolMap[T comparable](m map[T]bool) map[T]bool {
	c := make(map[T]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
