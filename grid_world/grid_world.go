package grid_world

import (
	"errors"
	"fmt"
	"strings"
)

// Cell is an x/y grid position. Cells are plain values: equality is by coordinate,
// so they can be used directly as map keys.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Manhattan returns |dx| + |dy| between two cells. This is the planner's heuristic, and is
// consistent for unit-cost 4-connected movement.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Adjacent reports whether the two cells are 4-neighbors.
func Adjacent(a, b Cell) bool {
	return Manhattan(a, b) == 1
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// Grid cell runes, for parsing and rendering grids as text.
const (
	BLOCKED = '#'
	FREE    = '.'
	START   = 'S'
	GOAL    = 'E'
	PATH    = '+'
)

// The fixed 4-connected move order: up, down, left, right. Neighbor order feeds the
// planner's insertion-order tie-breaking, so changing it changes which of several
// equal-cost paths is returned.
var moves = [4]Cell{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

var (
	// ErrMalformedGrid is returned when a grid cannot be built from its input.
	ErrMalformedGrid = errors.New("malformed grid")
	// ErrOutOfBounds is returned when a cell lies outside the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")
)

// Grid is a rectangular occupancy grid of free and blocked cells, stored row-major.
// A Grid is not safe for concurrent mutation; callers that hand a grid to another
// goroutine should pass a Clone.
type Grid struct {
	width, height int
	blocked       []bool
}

// NewGrid returns a width x height grid whose cells are all free.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrMalformedGrid, width, height)
	}
	return &Grid{
		width:   width,
		height:  height,
		blocked: make([]bool, width*height),
	}, nil
}

// FromRows parses a text grid. Row index is y and column index is x, so rows[0][0] is (0,0).
// '#', 'W' and '1' are blocked; '.', 'o', '0', '-' and '+' are free (the latter
// two being the race-track start/finish runes).
func FromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedGrid)
	}

	width := len(rows[0])
	grid, err := NewGrid(width, len(rows))
	if err != nil {
		return nil, err
	}

	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has width %d, expected %d", ErrMalformedGrid, y, len(row), width)
		}
		for x, r := range row {
			switch r {
			case BLOCKED, 'W', '1':
				grid.blocked[grid.index(x, y)] = true
			case FREE, 'o', '0', '-', '+':
			default:
				return nil, fmt.Errorf("%w: unknown cell %q at (%d,%d)", ErrMalformedGrid, r, x, y)
			}
		}
	}
	return grid, nil
}

// FromMatrix builds a grid from m[y][x], where 0 is free and 1 is blocked.
func FromMatrix(m [][]int) (*Grid, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedGrid)
	}

	width := len(m[0])
	grid, err := NewGrid(width, len(m))
	if err != nil {
		return nil, err
	}

	for y, row := range m {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has width %d, expected %d", ErrMalformedGrid, y, len(row), width)
		}
		for x, v := range row {
			switch v {
			case 0:
			case 1:
				grid.blocked[grid.index(x, y)] = true
			default:
				return nil, fmt.Errorf("%w: unknown cell value %d at (%d,%d)", ErrMalformedGrid, v, x, y)
			}
		}
	}
	return grid, nil
}

func (g *Grid) index(x, y int) int {
	return y*g.width + x
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c lies within [0,width) x [0,height).
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// IsFree reports whether c is in bounds and traversable.
func (g *Grid) IsFree(c Cell) bool {
	return g.InBounds(c) && !g.blocked[g.index(c.X, c.Y)]
}

// IsBlocked reports whether c is in bounds and blocked.
func (g *Grid) IsBlocked(c Cell) bool {
	return g.InBounds(c) && g.blocked[g.index(c.X, c.Y)]
}

// SetBlocked marks c as an obstacle.
func (g *Grid) SetBlocked(c Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("block %v: %w", c, ErrOutOfBounds)
	}
	g.blocked[g.index(c.X, c.Y)] = true
	return nil
}

// SetFree clears an obstacle at c.
func (g *Grid) SetFree(c Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("free %v: %w", c, ErrOutOfBounds)
	}
	g.blocked[g.index(c.X, c.Y)] = false
	return nil
}

// Clone returns a deep copy, e.g. a snapshot that later mutations will not affect.
func (g *Grid) Clone() *Grid {
	blocked := make([]bool, len(g.blocked))
	copy(blocked, g.blocked)
	return &Grid{
		width:   g.width,
		height:  g.height,
		blocked: blocked,
	}
}

// Neighbors appends the in-bounds, free 4-neighbors of c to buf in the fixed move order.
// Passing a reused buffer avoids an allocation per expansion.
func (g *Grid) Neighbors(c Cell, buf []Cell) []Cell {
	buf = buf[:0]
	for _, m := range moves {
		n := Cell{X: c.X + m.X, Y: c.Y + m.Y}
		if g.IsFree(n) {
			buf = append(buf, n)
		}
	}
	return buf
}

// Visit calls fn for every cell in row-major order.
func (g *Grid) Visit(fn func(c Cell, blocked bool)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			fn(Cell{X: x, Y: y}, g.blocked[g.index(x, y)])
		}
	}
}

// Rows returns the grid as text, the inverse of FromRows.
func (g *Grid) Rows() []string {
	rows := make([]string, 0, g.height)
	for y := 0; y < g.height; y++ {
		var sb strings.Builder
		for x := 0; x < g.width; x++ {
			if g.blocked[g.index(x, y)] {
				sb.WriteRune(BLOCKED)
			} else {
				sb.WriteRune(FREE)
			}
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// Render draws the grid for console viewing, overlaying the start, goal and path cells.
// The path may be nil.
func (g *Grid) Render(path []Cell, start, goal Cell) string {
	onPath := make(map[Cell]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Cell{X: x, Y: y}
			r := rune(FREE)
			switch {
			case c == start:
				r = START
			case c == goal:
				r = GOAL
			case onPath[c]:
				r = PATH
			case g.blocked[g.index(x, y)]:
				r = BLOCKED
			}
			sb.WriteRune(r)
			sb.WriteRune(' ')
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// ShowGrid prints the grid, for visual reference.
func ShowGrid(g *Grid, path []Cell, start, goal Cell) {
	fmt.Print(g.Render(path, start, goal))
}
