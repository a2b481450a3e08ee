package hex

import "testing"

type fakeUnit struct {
	id string
}

func (f *fakeUnit) OccupantID() string { return f.id }

func TestGridValidity(t *testing.T) {
	g := NewGrid(7, 8)

	valid := []Coord{{0, 0}, {6, 0}, {0, 7}, {-3, 7}}
	for _, pos := range valid {
		if !g.IsValid(pos) {
			t.Errorf("expected %v valid", pos)
		}
	}

	invalid := []Coord{{-1, 0}, {7, 0}, {0, -1}, {0, 8}, {10, 10}}
	for _, pos := range invalid {
		if g.IsValid(pos) {
			t.Errorf("expected %v invalid", pos)
		}
	}

	if len(g.AllValidPositions()) != 56 {
		t.Errorf("expected 56 cells, got %d", len(g.AllValidPositions()))
	}
}

func TestGridPlaceMoveRemove(t *testing.T) {
	g := NewGrid(7, 8)
	u := &fakeUnit{id: "a"}

	if !g.Place(u, Coord{2, 3}) {
		t.Fatal("place failed")
	}
	if g.UnitAt(Coord{2, 3}) != u {
		t.Error("occupancy map out of sync after place")
	}
	if pos, ok := g.PositionOf("a"); !ok || pos != (Coord{2, 3}) {
		t.Error("position map out of sync after place")
	}

	// Occupied cell refuses a second unit.
	other := &fakeUnit{id: "b"}
	if g.Place(other, Coord{2, 3}) {
		t.Error("place onto occupied cell succeeded")
	}

	if !g.Move(u, Coord{3, 3}) {
		t.Fatal("move failed")
	}
	if g.IsOccupied(Coord{2, 3}) {
		t.Error("old cell still occupied after move")
	}
	if g.UnitAt(Coord{3, 3}) != u {
		t.Error("occupancy map out of sync after move")
	}

	// Moving an unplaced unit fails.
	if g.Move(other, Coord{0, 0}) {
		t.Error("move of unplaced unit succeeded")
	}

	if !g.Remove(u) {
		t.Fatal("remove failed")
	}
	if g.IsOccupied(Coord{3, 3}) || g.OccupantCount() != 0 {
		t.Error("grid not empty after remove")
	}
}

func TestWalkableNeighborsIgnore(t *testing.T) {
	g := NewGrid(7, 8)
	blocker := &fakeUnit{id: "blocker"}
	g.Place(blocker, Coord{1, 3})

	without := g.WalkableNeighbors(Coord{2, 3}, nil)
	for _, pos := range without {
		if pos == (Coord{1, 3}) {
			t.Error("occupied cell reported walkable")
		}
	}

	with := g.WalkableNeighbors(Coord{2, 3}, map[string]bool{"blocker": true})
	found := false
	for _, pos := range with {
		if pos == (Coord{1, 3}) {
			found = true
		}
	}
	if !found {
		t.Error("ignored unit's cell not reported walkable")
	}
}
