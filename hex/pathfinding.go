package hex

import "container/heap"

// MaxPathExpansions bounds A* node expansions so a pathological board cannot
// stall a tick. On hitting the cap the search reports no path.
const MaxPathExpansions = 1000

// pathNode is an entry in the A* open set. order preserves insertion order so
// equal f-costs pop deterministically.
type pathNode struct {
	fCost int
	gCost int
	order int
	pos   Coord
}

type nodeHeap []pathNode

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].fCost != h[j].fCost {
		return h[i].fCost < h[j].fCost
	}
	return h[i].order < h[j].order
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(pathNode)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// FindPath returns the shortest path from start to goal, both inclusive,
// using A* with the hex distance heuristic and unit step cost. Occupants
// whose ids appear in ignore do not block (typically the mover's target).
//
// When the goal itself is occupied by a non-ignored unit, the search replans
// to the goal's walkable neighbour closest to start. An empty slice means no
// path exists.
func FindPath(g *Grid, start, goal Coord, ignore map[string]bool) []Coord {
	if ignore == nil {
		ignore = map[string]bool{}
	}

	if !g.IsValid(start) || !g.IsValid(goal) {
		return nil
	}
	if start == goal {
		return []Coord{start}
	}

	// Approach an occupied goal instead of standing on it.
	if o := g.UnitAt(goal); o != nil && !ignore[o.OccupantID()] {
		var adjacent []Coord
		for _, n := range goal.Neighbors() {
			if g.IsWalkable(n) {
				adjacent = append(adjacent, n)
				continue
			}
			if occ := g.UnitAt(n); occ != nil && ignore[occ.OccupantID()] {
				adjacent = append(adjacent, n)
			}
		}
		if len(adjacent) == 0 {
			return nil
		}
		best := adjacent[0]
		for _, c := range adjacent[1:] {
			if start.Distance(c) < start.Distance(best) {
				best = c
			}
		}
		goal = best
		if start == goal {
			return []Coord{start}
		}
	}

	open := &nodeHeap{}
	heap.Init(open)

	gCosts := map[Coord]int{start: 0}
	closed := map[Coord]bool{}
	parents := map[Coord]Coord{}

	order := 0
	heap.Push(open, pathNode{fCost: start.Distance(goal), gCost: 0, order: order, pos: start})

	expansions := 0
	for open.Len() > 0 && expansions < MaxPathExpansions {
		expansions++

		current := heap.Pop(open).(pathNode)
		if closed[current.pos] {
			continue
		}
		closed[current.pos] = true

		if current.pos == goal {
			return reconstructPath(parents, start, goal)
		}

		for _, neighbor := range g.WalkableNeighbors(current.pos, ignore) {
			if closed[neighbor] {
				continue
			}

			tentative := current.gCost + 1
			if known, ok := gCosts[neighbor]; ok && tentative >= known {
				continue
			}
			gCosts[neighbor] = tentative
			parents[neighbor] = current.pos

			order++
			heap.Push(open, pathNode{
				fCost: tentative + neighbor.Distance(goal),
				gCost: tentative,
				order: order,
				pos:   neighbor,
			})
		}
	}

	return nil
}

func reconstructPath(parents map[Coord]Coord, start, goal Coord) []Coord {
	path := []Coord{goal}
	current := goal
	for current != start {
		current = parents[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NextStep returns only the first move of the path toward goal, or false when
// start is the goal or no path exists. Useful for tick-by-tick movement.
func NextStep(g *Grid, start, goal Coord, ignore map[string]bool) (Coord, bool) {
	path := FindPath(g, start, goal, ignore)
	if len(path) < 2 {
		return Coord{}, false
	}
	return path[1], true
}
