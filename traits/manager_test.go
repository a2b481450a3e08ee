package traits

import (
	"testing"

	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

// fakeWorld is the minimal world the manager reads.
type fakeWorld struct {
	units []*units.Unit
	grid  *hex.Grid
}

func (w *fakeWorld) Units() []*units.Unit { return w.units }
func (w *fakeWorld) Grid() *hex.Grid      { return w.grid }

func newUnit(id, baseID string, team int, traitIDs []string, q, r int) *units.Unit {
	stats := units.DefaultStats()
	u := units.New(id, baseID, baseID, team, 1, hex.Coord{Q: q, R: r}, stats, units.DefaultStarModifiers())
	u.Traits = traitIDs
	return u
}

func knightTrait() *Trait {
	trait, err := ParseTrait("knight", map[string]any{
		"name": "Knight",
		"thresholds": map[string]any{
			"2": map[string]any{
				"trigger": "on_battle_start",
				"effects": []any{
					map[string]any{"type": "stat_bonus", "stat": "armor", "value": 20, "target": "holders"},
				},
			},
			"4": map[string]any{
				"trigger": "on_battle_start",
				"effects": []any{
					map[string]any{"type": "stat_bonus", "stat": "armor", "value": 40, "target": "holders"},
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return trait
}

func setupWorld(unitList ...*units.Unit) *fakeWorld {
	grid := hex.NewGrid(7, 8)
	for _, u := range unitList {
		grid.Place(u, u.Position)
	}
	return &fakeWorld{units: unitList, grid: grid}
}

// TestUniqueBaseIDCounting pins the rule that two copies of the same
// champion contribute one to the trait count.
func TestUniqueBaseIDCounting(t *testing.T) {
	world := setupWorld(
		newUnit("w1", "warrior", 0, []string{"knight"}, 0, 0),
		newUnit("w2", "warrior", 0, []string{"knight"}, 1, 0),
		newUnit("p1", "paladin", 0, []string{"knight"}, 2, 0),
	)

	m := NewManager(world, map[string]*Trait{"knight": knightTrait()})
	m.Recount()

	if got := m.Count(0, "knight"); got != 2 {
		t.Errorf("knight count = %d, want 2 unique base ids", got)
	}
}

// TestThresholdReplacement: with the 2-tier active, holders gain exactly
// +20 armor; with the 4-tier active, exactly +40 — never both.
func TestThresholdReplacement(t *testing.T) {
	holders3 := []*units.Unit{
		newUnit("a1", "a", 0, []string{"knight"}, 0, 0),
		newUnit("b1", "b", 0, []string{"knight"}, 1, 0),
		newUnit("c1", "c", 0, []string{"knight"}, 2, 0),
	}
	world := setupWorld(holders3...)

	m := NewManager(world, map[string]*Trait{"knight": knightTrait()})
	base := holders3[0].Stats.Armor()
	m.OnBattleStart()

	if got := m.ActiveThreshold(0, "knight"); got != 2 {
		t.Fatalf("active threshold = %d with 3 holders, want 2", got)
	}
	for _, u := range holders3 {
		if got := u.Stats.Armor(); got != base+20 {
			t.Errorf("holder armor = %v with tier 2, want %v", got, base+20)
		}
	}

	// Fresh world with four unique holders.
	holders4 := []*units.Unit{
		newUnit("a1", "a", 0, []string{"knight"}, 0, 0),
		newUnit("b1", "b", 0, []string{"knight"}, 1, 0),
		newUnit("c1", "c", 0, []string{"knight"}, 2, 0),
		newUnit("d1", "d", 0, []string{"knight"}, 3, 0),
	}
	world4 := setupWorld(holders4...)
	m4 := NewManager(world4, map[string]*Trait{"knight": knightTrait()})
	m4.OnBattleStart()

	if got := m4.ActiveThreshold(0, "knight"); got != 4 {
		t.Fatalf("active threshold = %d with 4 holders, want 4", got)
	}
	for _, u := range holders4 {
		if got := u.Stats.Armor(); got != base+40 {
			t.Errorf("holder armor = %v with tier 4, want %v (not 60)", got, base+40)
		}
	}
}

func TestRecountOnDeath(t *testing.T) {
	a := newUnit("a1", "a", 0, []string{"knight"}, 0, 0)
	b := newUnit("b1", "b", 0, []string{"knight"}, 1, 0)
	world := setupWorld(a, b)

	m := NewManager(world, map[string]*Trait{"knight": knightTrait()})
	m.Recount()
	if m.ActiveThreshold(0, "knight") != 2 {
		t.Fatal("tier 2 not active with two holders")
	}

	b.Die()
	m.OnUnitDeath(b)

	if got := m.Count(0, "knight"); got != 1 {
		t.Errorf("count = %d after death, want 1", got)
	}
	if got := m.ActiveThreshold(0, "knight"); got != 0 {
		t.Errorf("threshold still active at %d after dropping below 2", got)
	}
}

func TestHPThresholdFiresOnce(t *testing.T) {
	trait, err := ParseTrait("reaper", map[string]any{
		"thresholds": map[string]any{
			"1": map[string]any{
				"trigger":        "on_hp_threshold",
				"trigger_params": map[string]any{"threshold": 0.5},
				"effects": []any{
					map[string]any{"type": "shield", "value": 200, "duration": 120, "target": "self"},
				},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	u := newUnit("r1", "reaper", 0, []string{"reaper"}, 0, 0)
	world := setupWorld(u)
	m := NewManager(world, map[string]*Trait{"reaper": trait})
	m.Recount()

	u.Stats.CurrentHP = u.Stats.MaxHP() * 0.4
	m.OnUnitDamaged(u)
	if u.Shield.HP != 200 {
		t.Fatalf("shield = %v after threshold, want 200", u.Shield.HP)
	}

	// Burning the shield and dropping lower must not re-trigger.
	u.Shield.HP = 0
	u.Stats.CurrentHP = u.Stats.MaxHP() * 0.1
	m.OnUnitDamaged(u)
	if u.Shield.HP != 0 {
		t.Error("hp-threshold trigger fired twice for one unit")
	}
}

func TestTeamTargetAffectsWholeTeam(t *testing.T) {
	trait, err := ParseTrait("mystic", map[string]any{
		"thresholds": map[string]any{
			"1": map[string]any{
				"trigger": "on_battle_start",
				"effects": []any{
					map[string]any{"type": "stat_bonus", "stat": "magic_resist", "value": 30, "target": "team"},
				},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	holder := newUnit("m1", "mystic", 0, []string{"mystic"}, 0, 0)
	ally := newUnit("w1", "warrior", 0, nil, 1, 0)
	enemy := newUnit("e1", "enemy", 1, nil, 2, 0)
	world := setupWorld(holder, ally, enemy)

	m := NewManager(world, map[string]*Trait{"mystic": trait})
	mrBefore := ally.Stats.MagicResist()
	enemyBefore := enemy.Stats.MagicResist()
	m.OnBattleStart()

	if got := ally.Stats.MagicResist(); got != mrBefore+30 {
		t.Errorf("ally MR = %v, want %v", got, mrBefore+30)
	}
	if got := enemy.Stats.MagicResist(); got != enemyBefore {
		t.Errorf("enemy MR changed to %v", got)
	}
}

func TestParseTraitRejectsMalformed(t *testing.T) {
	if _, err := ParseTrait("broken", map[string]any{}); err == nil {
		t.Error("trait without thresholds accepted")
	}
	if _, err := ParseTrait("broken", map[string]any{
		"thresholds": map[string]any{"two": map[string]any{}},
	}); err == nil {
		t.Error("non-numeric threshold key accepted")
	}
}
