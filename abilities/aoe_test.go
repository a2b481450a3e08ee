package abilities

import (
	"testing"

	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

func aoeUnit(id string, q, r int) *units.Unit {
	stats := units.DefaultStats()
	return units.New(id, id, id, 1, 1, hex.Coord{Q: q, R: r}, stats, units.DefaultStarModifiers())
}

func TestUnitsInCircle(t *testing.T) {
	center := hex.Coord{Q: 2, R: 2}
	inside := aoeUnit("inside", 3, 2)
	edge := aoeUnit("edge", 4, 2)
	outside := aoeUnit("outside", 5, 2)
	onCenter := aoeUnit("center", 2, 2)
	candidates := []*units.Unit{inside, edge, outside, onCenter}

	got := UnitsInCircle(center, 2, candidates, true)
	if len(got) != 3 {
		t.Fatalf("expected 3 units in radius 2, got %d", len(got))
	}

	withoutCenter := UnitsInCircle(center, 2, candidates, false)
	for _, u := range withoutCenter {
		if u.ID == "center" {
			t.Error("center unit included despite include_center=false")
		}
	}

	dead := aoeUnit("dead", 2, 3)
	dead.Die()
	got = UnitsInCircle(center, 2, []*units.Unit{dead}, true)
	if len(got) != 0 {
		t.Error("dead unit swept into circle")
	}
}

func TestUnitsInCone(t *testing.T) {
	origin := hex.Coord{Q: 0, R: 0}
	target := hex.Coord{Q: 3, R: 0} // pointing east

	ahead := aoeUnit("ahead", 2, 0)
	behind := aoeUnit("behind", -2, 0)
	tooFar := aoeUnit("far", 6, 0)
	candidates := []*units.Unit{ahead, behind, tooFar}

	got := UnitsInCone(origin, target, 60, 4, candidates)
	if len(got) != 1 || got[0].ID != "ahead" {
		ids := make([]string, 0, len(got))
		for _, u := range got {
			ids = append(ids, u.ID)
		}
		t.Errorf("cone swept %v, want [ahead]", ids)
	}

	// Degenerate direction sweeps nothing.
	if got := UnitsInCone(origin, origin, 60, 4, candidates); len(got) != 0 {
		t.Error("zero-length cone swept units")
	}
}

func TestUnitsInLine(t *testing.T) {
	origin := hex.Coord{Q: 0, R: 0}
	target := hex.Coord{Q: 4, R: 0}

	onLine := aoeUnit("online", 2, 0)
	beside := aoeUnit("beside", 2, 1) // neighbour of the line
	offLine := aoeUnit("offline", 0, 3)
	candidates := []*units.Unit{onLine, beside, offLine}

	narrow := UnitsInLine(origin, target, 0, candidates)
	if len(narrow) != 1 || narrow[0].ID != "online" {
		t.Errorf("width-0 line swept %d units", len(narrow))
	}

	wide := UnitsInLine(origin, target, 1, candidates)
	foundBeside := false
	for _, u := range wide {
		if u.ID == "beside" {
			foundBeside = true
		}
		if u.ID == "offline" {
			t.Error("wide line swept a distant unit")
		}
	}
	if !foundBeside {
		t.Error("width-1 line missed the adjacent unit")
	}
}

func TestResolveAoEPrependsPrimary(t *testing.T) {
	primary := aoeUnit("primary", 3, 3)
	other := aoeUnit("other", 4, 3)

	cfg := &AoEConfig{Shape: AoECircle, Radius: SingleValue(1), IncludesTarget: true}
	got := ResolveAoE(cfg, hex.Coord{Q: 0, R: 3}, primary, 1, []*units.Unit{other})

	if len(got) != 2 {
		t.Fatalf("expected primary + other, got %d", len(got))
	}
	if got[0].ID != "primary" {
		t.Errorf("primary not first: %v", got[0].ID)
	}
}
