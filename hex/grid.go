package hex

// Occupant is anything that can hold a cell on the grid. Units satisfy this;
// the grid only needs a stable identity.
type Occupant interface {
	OccupantID() string
}

// Grid is a width x height hex board with occupancy tracking. Validity is
// decided by the odd-r offset mapping: offsetX = q + r/2 must lie in
// [0, width) and r in [0, height).
//
// The two internal maps (position -> occupant, id -> position) are kept in
// sync by every mutation.
type Grid struct {
	Width  int `bson:"width" json:"width"`
	Height int `bson:"height" json:"height"`

	occupancy map[Coord]Occupant
	positions map[string]Coord
}

// NewGrid creates an empty grid with the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:     width,
		Height:    height,
		occupancy: make(map[Coord]Occupant),
		positions: make(map[string]Coord),
	}
}

// IsValid reports whether the position lies inside the board.
func (g *Grid) IsValid(pos Coord) bool {
	x, y := axialToOffset(pos)
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// IsOccupied reports whether a unit holds the position.
func (g *Grid) IsOccupied(pos Coord) bool {
	_, ok := g.occupancy[pos]
	return ok
}

// IsWalkable reports whether the position is valid and free.
func (g *Grid) IsWalkable(pos Coord) bool {
	return g.IsValid(pos) && !g.IsOccupied(pos)
}

// UnitAt returns the occupant at pos, or nil.
func (g *Grid) UnitAt(pos Coord) Occupant {
	return g.occupancy[pos]
}

// PositionOf returns the recorded position of the occupant with the given id.
func (g *Grid) PositionOf(id string) (Coord, bool) {
	pos, ok := g.positions[id]
	return pos, ok
}

// Place puts an occupant on the grid. It fails when the position is invalid
// or already occupied. If the occupant is already placed elsewhere it is
// moved.
func (g *Grid) Place(o Occupant, pos Coord) bool {
	if !g.IsValid(pos) {
		return false
	}
	if g.IsOccupied(pos) {
		return false
	}

	if old, ok := g.positions[o.OccupantID()]; ok {
		delete(g.occupancy, old)
	}

	g.occupancy[pos] = o
	g.positions[o.OccupantID()] = pos
	return true
}

// Move relocates a placed occupant to a walkable position. It fails when the
// occupant is not on the grid or the destination is invalid or occupied.
func (g *Grid) Move(o Occupant, newPos Coord) bool {
	old, ok := g.positions[o.OccupantID()]
	if !ok {
		return false
	}
	if !g.IsWalkable(newPos) {
		return false
	}

	delete(g.occupancy, old)
	g.occupancy[newPos] = o
	g.positions[o.OccupantID()] = newPos
	return true
}

// Remove takes an occupant off the grid.
func (g *Grid) Remove(o Occupant) bool {
	pos, ok := g.positions[o.OccupantID()]
	if !ok {
		return false
	}
	delete(g.occupancy, pos)
	delete(g.positions, o.OccupantID())
	return true
}

// WalkableNeighbors returns the adjacent positions that can be entered, in
// direction order. Positions held by an occupant whose id is in ignore are
// treated as free.
func (g *Grid) WalkableNeighbors(pos Coord, ignore map[string]bool) []Coord {
	var result []Coord
	for _, n := range pos.Neighbors() {
		if !g.IsValid(n) {
			continue
		}
		if o, ok := g.occupancy[n]; ok && !ignore[o.OccupantID()] {
			continue
		}
		result = append(result, n)
	}
	return result
}

// AllValidPositions enumerates every cell of the board in row-major offset
// order.
func (g *Grid) AllValidPositions() []Coord {
	positions := make([]Coord, 0, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			positions = append(positions, offsetToAxial(x, y))
		}
	}
	return positions
}

// EmptyPositions returns every unoccupied cell in row-major offset order.
func (g *Grid) EmptyPositions() []Coord {
	var result []Coord
	for _, pos := range g.AllValidPositions() {
		if !g.IsOccupied(pos) {
			result = append(result, pos)
		}
	}
	return result
}

// OccupantCount returns how many occupants are placed.
func (g *Grid) OccupantCount() int {
	return len(g.occupancy)
}

// axialToOffset converts axial (q, r) to odd-r offset (x, y).
func axialToOffset(pos Coord) (int, int) {
	return pos.Q + floorDiv(pos.R, 2), pos.R
}

// offsetToAxial converts odd-r offset (x, y) to axial (q, r).
func offsetToAxial(x, y int) Coord {
	return Coord{Q: x - floorDiv(y, 2), R: y}
}

// floorDiv divides rounding toward negative infinity, matching the offset
// mapping for negative rows.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
