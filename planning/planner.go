// Package planning finds shortest 4-connected paths across an occupancy grid using A*
// with a Manhattan heuristic.
//
// Each call to Plan is an independent search over the grid it is given: the planner
// keeps no state between calls, so a caller whose map changes (new obstacles, a new goal)
// simply plans again. Plan does not detect a stale map itself.
package planning

import (
	"errors"
	"fmt"

	"autonomy/grid_world"
)

// Grid is the read-only view of an occupancy grid the planner needs.
// The grid must not be mutated while a search over it is running.
type Grid interface {
	InBounds(c grid_world.Cell) bool
	IsFree(c grid_world.Cell) bool
	Neighbors(c grid_world.Cell, buf []grid_world.Cell) []grid_world.Cell
}

// Path is an ordered sequence of cells from start to goal, inclusive.
type Path []grid_world.Cell

// Len returns the number of moves in the path, one less than its number of cells.
func (p Path) Len() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Contains reports whether c is on the path.
func (p Path) Contains(c grid_world.Cell) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}

// Result is the outcome of a search. Found is false when no route exists, which is an
// expected outcome rather than an error.
type Result struct {
	Path     Path
	Found    bool
	Cost     int
	Expanded int
}

var (
	// ErrOutOfBounds is returned when the start or goal lies outside the grid.
	ErrOutOfBounds = grid_world.ErrOutOfBounds
	// ErrBudgetExhausted is returned when a search exceeds its expansion budget.
	ErrBudgetExhausted = errors.New("search expansion budget exhausted")
)

// Options defines parameters for the search.
type Options struct {
	// MaxExpansions bounds the number of cells expanded; zero means unlimited.
	MaxExpansions int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxExpansions bounds the search cost, checked at each frontier pop.
func WithMaxExpansions(n int) Option {
	return func(options *Options) { options.MaxExpansions = n }
}

// checkEndpoints validates the endpoints and resolves the trivial outcomes. It returns
// done=true when the result is already decided without searching.
func checkEndpoints(grid Grid, start, goal grid_world.Cell) (res Result, done bool, err error) {
	if !grid.InBounds(start) {
		return Result{}, true, fmt.Errorf("start %v: %w", start, ErrOutOfBounds)
	}
	if !grid.InBounds(goal) {
		return Result{}, true, fmt.Errorf("goal %v: %w", goal, ErrOutOfBounds)
	}
	if start == goal {
		return Result{Path: Path{start}, Found: true}, true, nil
	}
	// A blocked start cannot be moved out of and a blocked goal cannot be entered.
	if !grid.IsFree(start) || !grid.IsFree(goal) {
		return Result{}, true, nil
	}
	return Result{}, false, nil
}

// Plan searches for a shortest path from start to goal.
//
// An out-of-bounds start or goal is a caller error and returns ErrOutOfBounds. When
// start == goal the path is [start], whatever the cell holds. Otherwise a blocked start
// or goal, or a goal walled off from start, yields a Result with Found == false and a nil error.
//
// The returned path shares no memory with the grid; later grid mutations do not affect it.
func Plan(
	grid Grid,
	start grid_world.Cell,
	goal grid_world.Cell,
	options ...Option,
) (Result, error) {
	var searchOptions Options
	for _, option := range options {
		option(&searchOptions)
	}

	if res, done, err := checkEndpoints(grid, start, goal); done {
		return res, err
	}

	fr := newFrontier(start, goal)
	neighbors := make([]grid_world.Cell, 0, 4)
	expanded := 0

	for {
		current, ok := fr.pop()
		if !ok {
			return Result{Expanded: expanded}, nil
		}

		if current.cell == goal {
			path := fr.path(start, goal)
			return Result{
				Path:     path,
				Found:    true,
				Cost:     current.g,
				Expanded: expanded,
			}, nil
		}

		if searchOptions.MaxExpansions > 0 && expanded >= searchOptions.MaxExpansions {
			return Result{Expanded: expanded}, fmt.Errorf("after %d expansions: %w", expanded, ErrBudgetExhausted)
		}
		expanded++

		neighbors = grid.Neighbors(current.cell, neighbors)
		for _, next := range neighbors {
			fr.relax(current.cell, next, current.g+1)
		}
	}
}
