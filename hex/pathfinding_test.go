package hex

import "testing"

func TestFindPathStraight(t *testing.T) {
	g := NewGrid(7, 8)

	path := FindPath(g, Coord{0, 0}, Coord{3, 0}, nil)
	if len(path) != 4 {
		t.Fatalf("expected 4 steps, got %d: %v", len(path), path)
	}
	if path[0] != (Coord{0, 0}) || path[len(path)-1] != (Coord{3, 0}) {
		t.Errorf("path endpoints wrong: %v", path)
	}

	// Every step is one hex.
	for i := 1; i < len(path); i++ {
		if path[i-1].Distance(path[i]) != 1 {
			t.Errorf("non-adjacent step %v -> %v", path[i-1], path[i])
		}
	}
}

func TestFindPathSameCell(t *testing.T) {
	g := NewGrid(7, 8)
	path := FindPath(g, Coord{2, 2}, Coord{2, 2}, nil)
	if len(path) != 1 {
		t.Errorf("expected trivial path, got %v", path)
	}
}

func TestFindPathAroundObstacle(t *testing.T) {
	g := NewGrid(7, 8)
	g.Place(&fakeUnit{id: "wall"}, Coord{1, 0})

	path := FindPath(g, Coord{0, 0}, Coord{3, 0}, nil)
	if len(path) == 0 {
		t.Fatal("no path found around single obstacle")
	}
	for _, pos := range path {
		if pos == (Coord{1, 0}) {
			t.Error("path crosses the obstacle")
		}
	}
}

// TestFindPathOccupiedGoal checks the replan: when the goal holds a
// non-ignored unit, the path ends on the goal's walkable neighbour closest
// to the start.
func TestFindPathOccupiedGoal(t *testing.T) {
	g := NewGrid(7, 8)
	g.Place(&fakeUnit{id: "enemy"}, Coord{4, 3})

	path := FindPath(g, Coord{1, 3}, Coord{4, 3}, nil)
	if len(path) == 0 {
		t.Fatal("no approach path found")
	}

	end := path[len(path)-1]
	if end == (Coord{4, 3}) {
		t.Error("path ends on the occupied goal")
	}
	if end.Distance(Coord{4, 3}) != 1 {
		t.Errorf("path ends at %v, not adjacent to the goal", end)
	}
	if end != (Coord{3, 3}) {
		t.Errorf("expected the neighbour closest to start (3,3), got %v", end)
	}
}

func TestFindPathIgnoresTarget(t *testing.T) {
	g := NewGrid(7, 8)
	g.Place(&fakeUnit{id: "target"}, Coord{2, 0})

	path := FindPath(g, Coord{0, 0}, Coord{2, 0}, map[string]bool{"target": true})
	if len(path) != 3 {
		t.Fatalf("expected direct path through ignored target, got %v", path)
	}
}

func TestFindPathNoPath(t *testing.T) {
	g := NewGrid(3, 1) // single row
	g.Place(&fakeUnit{id: "wall"}, Coord{1, 0})

	path := FindPath(g, Coord{0, 0}, Coord{2, 0}, nil)
	if path != nil {
		t.Errorf("expected no path, got %v", path)
	}
}

func TestNextStep(t *testing.T) {
	g := NewGrid(7, 8)

	step, ok := NextStep(g, Coord{0, 0}, Coord{3, 0}, nil)
	if !ok {
		t.Fatal("expected a step")
	}
	if step.Distance(Coord{0, 0}) != 1 {
		t.Errorf("step %v not adjacent to start", step)
	}

	if _, ok := NextStep(g, Coord{0, 0}, Coord{0, 0}, nil); ok {
		t.Error("expected no step when already at goal")
	}
}
