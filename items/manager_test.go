package items

import (
	"math"
	"testing"

	"github.com/nicoberrocal/arenaCore/combat"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/rng"
	"github.com/nicoberrocal/arenaCore/units"
)

// fakeWorld satisfies items.World with a plain damage pipeline.
type fakeWorld struct {
	units  []*units.Unit
	grid   *hex.Grid
	tick   int
	stream *rng.Stream
}

func (w *fakeWorld) Units() []*units.Unit { return w.units }
func (w *fakeWorld) Grid() *hex.Grid      { return w.grid }
func (w *fakeWorld) CurrentTick() int     { return w.tick }

func (w *fakeWorld) DealDamage(attacker, defender *units.Unit, base float64, damageType combat.DamageType, canCrit, canDodge, isAbility bool) combat.Result {
	result := combat.Calculate(attacker, defender, base, damageType, w.stream, canCrit, canDodge, isAbility, combat.Modifiers{})
	if !result.WasDodged {
		combat.Apply(attacker, defender, result, units.DefaultManaRule(), 1.0)
	}
	return result
}

func (w *fakeWorld) Heal(caster, target *units.Unit, amount float64) float64 {
	return target.ReceiveHeal(amount)
}

func newUnit(id string, team, q, r int) *units.Unit {
	stats := units.DefaultStats()
	return units.New(id, id, id, team, 1, hex.Coord{Q: q, R: r}, stats, units.DefaultStarModifiers())
}

func newWorld(unitList ...*units.Unit) *fakeWorld {
	grid := hex.NewGrid(7, 8)
	for _, u := range unitList {
		grid.Place(u, u.Position)
	}
	return &fakeWorld{units: unitList, grid: grid, stream: rng.New(1)}
}

func mustParse(t *testing.T, id string, rec map[string]any) *Item {
	t.Helper()
	item, err := ParseItem(id, rec)
	if err != nil {
		t.Fatalf("parse %s: %v", id, err)
	}
	return item
}

func TestEquipAppliesStats(t *testing.T) {
	item := mustParse(t, "sword", map[string]any{
		"name": "Sword",
		"stats": map[string]any{
			"attack_damage":      20,
			"attack_speed_percent": 0.10,
		},
	})

	u := newUnit("u1", 0, 0, 0)
	world := newWorld(u)
	m := NewManager(world, map[string]*Item{"sword": item})

	adBefore := u.Stats.AttackDamage()
	asBefore := u.Stats.AttackSpeed()

	if err := m.Equip(u, "sword"); err != nil {
		t.Fatal(err)
	}

	if got := u.Stats.AttackDamage(); math.Abs(got-(adBefore+20)) > 1e-9 {
		t.Errorf("AD = %v after equip, want %v", got, adBefore+20)
	}
	if got := u.Stats.AttackSpeed(); math.Abs(got-asBefore*1.10) > 1e-9 {
		t.Errorf("AS = %v after equip, want %v", got, asBefore*1.10)
	}
}

func TestSlotLimitAndUnique(t *testing.T) {
	plain := mustParse(t, "plain", map[string]any{"stats": map[string]any{"armor": 5}})
	unique := mustParse(t, "relic", map[string]any{"unique": true})

	u := newUnit("u1", 0, 0, 0)
	world := newWorld(u)
	m := NewManager(world, map[string]*Item{"plain": plain, "relic": unique})

	if err := m.Equip(u, "relic"); err != nil {
		t.Fatal(err)
	}
	if err := m.Equip(u, "relic"); err == nil {
		t.Error("duplicate unique equipped")
	}

	m.Equip(u, "plain")
	m.Equip(u, "plain")
	if err := m.Equip(u, "plain"); err == nil {
		t.Error("fourth item equipped past the slot limit")
	}
	if len(m.Equipped(u)) != 3 {
		t.Errorf("equipped count = %d, want 3", len(m.Equipped(u)))
	}
}

func TestGrantedTraitsMerge(t *testing.T) {
	orb := mustParse(t, "orb", map[string]any{
		"grants_traits": []any{"mystic"},
	})

	u := newUnit("u1", 0, 0, 0)
	u.Traits = []string{"knight"}
	world := newWorld(u)
	m := NewManager(world, map[string]*Item{"orb": orb})

	m.Equip(u, "orb")
	m.Equip(u, "orb") // not unique, but the trait merges once

	count := 0
	for _, trait := range u.Traits {
		if trait == "mystic" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("mystic granted %d times, want 1", count)
	}
}

func TestConditionalModifiers(t *testing.T) {
	slayer := mustParse(t, "giant_slayer", map[string]any{
		"conditional_effects": []any{
			map[string]any{
				"condition": map[string]any{"type": "target_max_hp", "operator": ">", "value": 1600},
				"effect":    map[string]any{"type": "damage_amp", "value": 0.2},
			},
		},
	})

	attacker := newUnit("atk", 0, 0, 0)
	small := newUnit("small", 1, 1, 0)
	giant := newUnit("giant", 1, 2, 0)
	giant.Stats.BaseHP = 2000
	giant.Stats.ResetForCombat()

	world := newWorld(attacker, small, giant)
	m := NewManager(world, map[string]*Item{"giant_slayer": slayer})
	m.Equip(attacker, "giant_slayer")

	if mods := m.ConditionalModifiers(attacker, small); mods.DamageAmp != 0 {
		t.Errorf("amp vs small target = %v, want 0", mods.DamageAmp)
	}
	if mods := m.ConditionalModifiers(attacker, giant); math.Abs(mods.DamageAmp-0.2) > 1e-9 {
		t.Errorf("amp vs giant = %v, want 0.2", mods.DamageAmp)
	}
}

func TestOnFirstCastFiresOnce(t *testing.T) {
	buffItem := mustParse(t, "starter", map[string]any{
		"effects": []any{
			map[string]any{
				"trigger": "on_first_cast",
				"effects": []any{
					map[string]any{"type": "mana_grant", "target": "self", "value": 30},
				},
			},
		},
	})

	u := newUnit("u1", 0, 0, 0)
	world := newWorld(u)
	m := NewManager(world, map[string]*Item{"starter": buffItem})
	m.Equip(u, "starter")
	m.OnBattleStart()

	m.OnAbilityCast(u)
	first := u.Stats.CurrentMana
	if first != 30 {
		t.Fatalf("mana = %v after first cast, want 30", first)
	}

	m.OnAbilityCast(u)
	if u.Stats.CurrentMana != first {
		t.Error("on_first_cast fired twice")
	}
}

func TestStackingStatCaps(t *testing.T) {
	titans := mustParse(t, "titans", map[string]any{
		"effects": []any{
			map[string]any{
				"trigger": "on_take_damage",
				"effects": []any{
					map[string]any{"type": "stacking_stat", "target": "self", "stat": "attack_damage", "value": 2, "max_stacks": 3},
				},
			},
		},
	})

	u := newUnit("u1", 0, 0, 0)
	world := newWorld(u)
	m := NewManager(world, map[string]*Item{"titans": titans})
	m.Equip(u, "titans")

	adBefore := u.Stats.AttackDamage()
	for i := 0; i < 10; i++ {
		m.OnTakeDamage(u)
	}

	if got := u.Stats.AttackDamage(); math.Abs(got-(adBefore+6)) > 1e-9 {
		t.Errorf("AD = %v after capped stacking, want %v", got, adBefore+6)
	}
}

func TestOnIntervalRespectsTick(t *testing.T) {
	sunfire := mustParse(t, "sunfire", map[string]any{
		"effects": []any{
			map[string]any{
				"trigger":        "on_interval",
				"trigger_params": map[string]any{"interval": 60},
				"effects": []any{
					map[string]any{"type": "burn", "target": "enemies_in_range", "value": 15, "range": 2, "duration": 60},
				},
			},
		},
	})

	holder := newUnit("holder", 0, 0, 0)
	enemy := newUnit("enemy", 1, 1, 0)
	world := newWorld(holder, enemy)
	m := NewManager(world, map[string]*Item{"sunfire": sunfire})
	m.Equip(holder, "sunfire")

	world.tick = 30
	m.OnTick(30)
	if len(enemy.Burns) != 0 {
		t.Error("interval effect fired off-interval")
	}

	world.tick = 60
	m.OnTick(60)
	if len(enemy.Burns) != 1 {
		t.Errorf("burns = %d after interval tick, want 1", len(enemy.Burns))
	}
}

func TestParseItemRejectsMalformed(t *testing.T) {
	if _, err := ParseItem("broken", map[string]any{
		"effects": []any{
			map[string]any{"trigger": "on_hit"}, // no nested effects
		},
	}); err == nil {
		t.Error("effect group without effects accepted")
	}

	if _, err := ParseItem("broken", map[string]any{
		"conditional_effects": []any{
			map[string]any{"effect": map[string]any{"type": "damage_amp", "value": 0.2}},
		},
	}); err == nil {
		t.Error("conditional effect without condition accepted")
	}
}
