package planning

import (
	"container/heap"

	"autonomy/grid_world"
)

// node is a frontier entry. Entries are never updated in place: a better route to a cell
// pushes a new entry, and the superseded one is dropped when popped (see frontier.pop).
type node struct {
	cell grid_world.Cell
	g    int // cost from start
	f    int // g + heuristic
	seq  uint64
}

// nodeQueue is a min-heap on (f, seq). The insertion sequence makes equal-f pops
// first-in-first-out, which keeps results deterministic.
type nodeQueue []node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) {
	*q = append(*q, x.(node))
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// frontier couples the open queue with the best-cost and predecessor tables for one search.
type frontier struct {
	queue    nodeQueue
	best     map[grid_world.Cell]int
	cameFrom map[grid_world.Cell]grid_world.Cell
	goal     grid_world.Cell
	seq      uint64
}

func newFrontier(start, goal grid_world.Cell) *frontier {
	fr := &frontier{
		queue:    make(nodeQueue, 0, 16),
		best:     map[grid_world.Cell]int{start: 0},
		cameFrom: make(map[grid_world.Cell]grid_world.Cell),
		goal:     goal,
	}
	fr.push(start, 0)
	return fr
}

func (fr *frontier) push(cell grid_world.Cell, g int) {
	heap.Push(&fr.queue, node{
		cell: cell,
		g:    g,
		f:    g + grid_world.Manhattan(cell, fr.goal),
		seq:  fr.seq,
	})
	fr.seq++
}

// relax records a route to cell through from with cost g, if it improves on the best known
// cost. Returns true when the cell was (re)pushed.
func (fr *frontier) relax(from, cell grid_world.Cell, g int) bool {
	if prev, seen := fr.best[cell]; seen && g >= prev {
		return false
	}
	fr.best[cell] = g
	fr.cameFrom[cell] = from
	fr.push(cell, g)
	return true
}

// pop returns the next live entry, discarding stale ones whose cost has since been beaten.
func (fr *frontier) pop() (node, bool) {
	for fr.queue.Len() > 0 {
		n := heap.Pop(&fr.queue).(node)
		if n.g > fr.best[n.cell] {
			continue
		}
		return n, true
	}
	return node{}, false
}

func (fr *frontier) len() int {
	return fr.queue.Len()
}

// path walks predecessors back from the goal and reverses the result.
func (fr *frontier) path(start, goal grid_world.Cell) Path {
	path := Path{goal}
	for cur := goal; cur != start; {
		prev, ok := fr.cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
