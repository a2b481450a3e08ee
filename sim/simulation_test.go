package sim

import (
	"math"
	"reflect"
	"testing"

	"github.com/nicoberrocal/arenaCore/abilities"
	"github.com/nicoberrocal/arenaCore/events"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/items"
	"github.com/nicoberrocal/arenaCore/traits"
	"github.com/nicoberrocal/arenaCore/units"
)

// duelStats is the reference melee statline used across the kernel tests.
func duelStats(mutate func(*units.Stats)) units.Stats {
	stats := units.DefaultStats()
	stats.BaseHP = 500
	stats.BaseAttackDamage = 100
	stats.BaseAttackSpeed = 1.0
	stats.BaseAttackRange = 1
	stats.BaseArmor = 0
	stats.BaseMagicResist = 0
	stats.BaseCritChance = 0
	stats.BaseDodgeChance = 0
	stats.BaseMaxMana = 999
	if mutate != nil {
		mutate(&stats)
	}
	stats.ResetForCombat()
	return stats
}

func bundle(unitTemplates map[string]*UnitTemplate) *Templates {
	return &Templates{
		Units:     unitTemplates,
		Abilities: map[string]*abilities.Ability{},
		Items:     map[string]*items.Item{},
		Traits:    map[string]*traits.Trait{},
	}
}

func countEvents(trace *events.Trace, eventType events.EventType) int {
	count := 0
	for _, e := range trace.Events {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// TestPureMeleeWipe: two identical melee units close the
// distance, trade blows every second, and the first striker wins.
func TestPureMeleeWipe(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"grunt": {ID: "grunt", Name: "Grunt", Stats: duelStats(nil)},
	})

	rosters := [2][]Placement{
		{{UnitTemplateID: "grunt", Position: [2]int{1, 3}}},
		{{UnitTemplateID: "grunt", Position: [2]int{4, 3}}},
	}

	result, err := Run(rosters, 1, DefaultConfig(), templates)
	if err != nil {
		t.Fatal(err)
	}

	if result.WinnerTeam == nil {
		t.Fatal("melee duel ended in a draw")
	}
	if result.TotalTicks < 50 || result.TotalTicks > 400 {
		t.Errorf("duel length %d ticks, expected roughly 150", result.TotalTicks)
	}
	if len(result.Survivors) != 1 {
		t.Fatalf("survivors = %d, want 1", len(result.Survivors))
	}

	trace := result.Trace
	attacks := countEvents(trace, events.UnitAttack)
	damages := countEvents(trace, events.UnitDamage)
	deaths := countEvents(trace, events.UnitDeath)

	if deaths != 1 {
		t.Errorf("deaths = %d, want 1", deaths)
	}
	// No dodges, no crit modifiers: every attack produces one damage event.
	if attacks == 0 || attacks != damages {
		t.Errorf("attacks = %d, damages = %d, expected balanced pairs", attacks, damages)
	}
	// 100 damage per hit into 500 HP: the loser takes 5 hits, the winner
	// fewer; total landed attacks sit in [9, 10].
	if attacks < 9 || attacks > 10 {
		t.Errorf("attack count = %d, expected 9 or 10", attacks)
	}

	last := trace.Events[len(trace.Events)-1]
	if last.Type != events.SimulationEnd {
		t.Errorf("last event = %s, want SIMULATION_END", last.Type)
	}
}

// TestDeterminism runs the same battle twice and compares the full event
// sequences.
func TestDeterminism(t *testing.T) {
	build := func() *Templates {
		return bundle(map[string]*UnitTemplate{
			"grunt":  {ID: "grunt", Name: "Grunt", Stats: duelStats(nil)},
			"crit": {ID: "crit", Name: "Critter", Stats: duelStats(func(s *units.Stats) {
				s.BaseCritChance = 0.5
				s.BaseDodgeChance = 0.25
			})},
		})
	}

	rosters := [2][]Placement{
		{
			{UnitTemplateID: "grunt", Position: [2]int{1, 6}},
			{UnitTemplateID: "crit", Position: [2]int{3, 6}},
		},
		{
			{UnitTemplateID: "crit", Position: [2]int{2, 1}},
			{UnitTemplateID: "grunt", Position: [2]int{4, 1}},
		},
	}

	first, err := Run(rosters, 77, DefaultConfig(), build())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(rosters, 77, DefaultConfig(), build())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Trace.Events, second.Trace.Events) {
		t.Error("same seed produced different event sequences")
	}
	if !reflect.DeepEqual(first.WinnerTeam, second.WinnerTeam) {
		t.Error("same seed produced different winners")
	}
}

// TestArmorFormula: armor 100 halves every 100-damage hit.
func TestArmorFormula(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"attacker": {ID: "attacker", Name: "Attacker", Stats: duelStats(nil)},
		"tank": {ID: "tank", Name: "Tank", Stats: duelStats(func(s *units.Stats) {
			s.BaseAttackDamage = 1 // negligible return fire
			s.BaseArmor = 100
		})},
	})

	rosters := [2][]Placement{
		{{UnitTemplateID: "attacker", Position: [2]int{1, 3}}},
		{{UnitTemplateID: "tank", Position: [2]int{2, 3}}},
	}

	result, err := Run(rosters, 5, DefaultConfig(), templates)
	if err != nil {
		t.Fatal(err)
	}

	var tankID string
	for _, e := range result.Trace.Events {
		if e.Type == events.UnitSpawn && e.Data["base_id"] == "tank" {
			tankID = e.UnitID
		}
	}
	if tankID == "" {
		t.Fatal("tank spawn event missing")
	}

	prevHP := math.Inf(1)
	checked := 0
	for _, e := range result.Trace.Events {
		if e.Type != events.UnitDamage || e.UnitID != tankID {
			continue
		}
		damage := e.Data["damage"].(float64)
		if math.Abs(damage-50.0) > 0.05 {
			t.Errorf("damage = %v, want 50.0", damage)
		}
		hpAfter := e.Data["hp_after"].(float64)
		if prevHP != math.Inf(1) && math.Abs(prevHP-hpAfter-50.0) > 0.05 {
			t.Errorf("hp dropped %v, want 50 per hit", prevHP-hpAfter)
		}
		prevHP = hpAfter
		checked++
	}
	if checked < 5 {
		t.Errorf("only %d damage events checked", checked)
	}
}

// TestDodgeScenario: a guaranteed dodge produces attack
// events with was_dodged=true and no matching damage events.
func TestDodgeScenario(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"attacker": {ID: "attacker", Name: "Attacker", Stats: duelStats(nil)},
		"evader": {ID: "evader", Name: "Evader", Stats: duelStats(func(s *units.Stats) {
			s.BaseAttackDamage = 1
			s.BaseDodgeChance = 1.0
		})},
	})

	cfg := DefaultConfig()
	cfg.MaxTicks = 300

	rosters := [2][]Placement{
		{{UnitTemplateID: "attacker", Position: [2]int{1, 3}}},
		{{UnitTemplateID: "evader", Position: [2]int{2, 3}}},
	}

	result, err := Run(rosters, 9, cfg, templates)
	if err != nil {
		t.Fatal(err)
	}

	var attackerID, evaderID string
	for _, e := range result.Trace.Events {
		if e.Type == events.UnitSpawn {
			switch e.Data["base_id"] {
			case "attacker":
				attackerID = e.UnitID
			case "evader":
				evaderID = e.UnitID
			}
		}
	}

	attackerAttacks := 0
	for _, e := range result.Trace.Events {
		switch e.Type {
		case events.UnitAttack:
			if e.UnitID == attackerID {
				attackerAttacks++
				if e.Data["was_dodged"] != true {
					t.Error("attack against dodge 1.0 landed")
				}
				if e.Data["damage"].(float64) != 0 {
					t.Errorf("dodged attack carried damage %v", e.Data["damage"])
				}
			}
		case events.UnitDamage:
			if e.UnitID == evaderID {
				t.Error("damage event recorded for the evader")
			}
		}
	}
	if attackerAttacks == 0 {
		t.Error("attacker never attacked")
	}
}

// TestBurnIsTrueDamage: burn ignores massive resistances.
func TestBurnIsTrueDamage(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"wall": {ID: "wall", Name: "Wall", Stats: duelStats(func(s *units.Stats) {
			s.BaseArmor = 1000
			s.BaseMagicResist = 1000
		})},
	})

	s := New(1, DefaultConfig(), templates)
	attacker, err := s.AddUnit(0, Placement{UnitTemplateID: "wall", Position: [2]int{0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	defender, err := s.AddUnit(1, Placement{UnitTemplateID: "wall", Position: [2]int{3, 7}})
	if err != nil {
		t.Fatal(err)
	}

	defender.Stats.CurrentHP = 200
	defender.AddBurn(30, 90, attacker.ID)

	for i := 0; i < 90; i++ {
		s.tick++
		s.phaseStatusTick()
	}

	if math.Abs(defender.Stats.CurrentHP-110) > 0.01 {
		t.Errorf("HP = %v after 90 burn ticks, want 110", defender.Stats.CurrentHP)
	}
}

// TestExecuteThreshold: an execute-threshold hit kills a
// target under the threshold regardless of resistances or base damage.
func TestExecuteThreshold(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"wall": {ID: "wall", Name: "Wall", Stats: duelStats(func(s *units.Stats) {
			s.BaseArmor = 1000
			s.BaseMagicResist = 1000
		})},
	})

	s := New(1, DefaultConfig(), templates)
	attacker, _ := s.AddUnit(0, Placement{UnitTemplateID: "wall", Position: [2]int{0, 0}})
	victim, _ := s.AddUnit(1, Placement{UnitTemplateID: "wall", Position: [2]int{3, 7}})

	victim.Stats.CurrentHP = victim.Stats.MaxHP() * 0.15

	effect, err := abilities.ParseEffect(abilities.Record{
		"type":              "damage",
		"damage_type":       "physical",
		"value":             1,
		"execute_threshold": 0.20,
	})
	if err != nil {
		t.Fatal(err)
	}

	result := s.safeApply(effect, attacker, victim, 1)
	if !result.Success {
		t.Fatal("execute effect reported failure")
	}
	if victim.IsAlive() {
		t.Fatal("target above zero HP after execute")
	}
	if countEvents(s.logger.Trace(), events.UnitDeath) != 1 {
		t.Error("no death event for the executed unit")
	}
}

// TestCastFlow drives a caster with start mana at max through the full
// cast protocol: state change, cast event, effect event, mana consumed.
func TestCastFlow(t *testing.T) {
	nuke, err := abilities.ParseAbility("nuke", abilities.Record{
		"name":      "Nuke",
		"mana_cost": 50,
		"cast_time": 9,
		"effects": []any{
			map[string]any{"type": "damage", "damage_type": "magical", "value": 120},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	templates := bundle(map[string]*UnitTemplate{
		"caster": {ID: "caster", Name: "Caster", Ability: "nuke", Stats: duelStats(func(s *units.Stats) {
			s.BaseAttackDamage = 5
			s.BaseMaxMana = 50
			s.BaseStartMana = 50
		})},
		"dummy": {ID: "dummy", Name: "Dummy", Stats: duelStats(func(s *units.Stats) {
			s.BaseAttackDamage = 1
		})},
	})
	templates.Abilities["nuke"] = nuke

	rosters := [2][]Placement{
		{{UnitTemplateID: "caster", Position: [2]int{1, 3}}},
		{{UnitTemplateID: "dummy", Position: [2]int{2, 3}}},
	}

	cfg := DefaultConfig()
	cfg.MaxTicks = 1500
	result, err := Run(rosters, 3, cfg, templates)
	if err != nil {
		t.Fatal(err)
	}

	if countEvents(result.Trace, events.AbilityCast) == 0 {
		t.Fatal("full-mana caster never cast")
	}
	if countEvents(result.Trace, events.AbilityEffect) == 0 {
		t.Error("cast fired no effect event")
	}

	// The cast must appear as a state change into CASTING.
	sawCasting := false
	for _, e := range result.Trace.Events {
		if e.Type == events.StateChange && e.Data["to_state"] == string(units.StateCasting) {
			sawCasting = true
			break
		}
	}
	if !sawCasting {
		t.Error("no transition into CASTING recorded")
	}
}

// TestGridBijection checks the occupancy invariant after a full battle:
// every living unit is exactly where the grid thinks it is.
func TestGridBijection(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"grunt": {ID: "grunt", Name: "Grunt", Stats: duelStats(nil)},
	})

	s := New(11, DefaultConfig(), templates)
	s.AddUnit(0, Placement{UnitTemplateID: "grunt", Position: [2]int{0, 6}})
	s.AddUnit(0, Placement{UnitTemplateID: "grunt", Position: [2]int{2, 6}})
	s.AddUnit(1, Placement{UnitTemplateID: "grunt", Position: [2]int{1, 1}})
	s.AddUnit(1, Placement{UnitTemplateID: "grunt", Position: [2]int{3, 1}})
	s.Run()

	seen := map[hex.Coord]bool{}
	for _, u := range s.Units() {
		if !u.IsAlive() {
			if pos, ok := s.Grid().PositionOf(u.ID); ok {
				t.Errorf("dead unit %s still on the grid at %v", u.ID, pos)
			}
			continue
		}
		occ := s.Grid().UnitAt(u.Position)
		if occ == nil || occ.OccupantID() != u.ID {
			t.Errorf("grid out of sync for %s at %v", u.ID, u.Position)
		}
		if seen[u.Position] {
			t.Errorf("two living units share %v", u.Position)
		}
		seen[u.Position] = true
	}
}

// TestBadPlacementRefused checks spawn validation: off-grid and duplicate
// positions refuse the unit, an unknown template is a hard error.
func TestBadPlacementRefused(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"grunt": {ID: "grunt", Name: "Grunt", Stats: duelStats(nil)},
	})

	s := New(1, DefaultConfig(), templates)

	if _, err := s.AddUnit(0, Placement{UnitTemplateID: "grunt", Position: [2]int{40, 40}}); err == nil {
		t.Error("off-grid placement accepted")
	}
	if _, err := s.AddUnit(0, Placement{UnitTemplateID: "nobody", Position: [2]int{0, 0}}); err == nil {
		t.Error("unknown template accepted")
	}

	if _, err := s.AddUnit(0, Placement{UnitTemplateID: "grunt", Position: [2]int{0, 0}}); err != nil {
		t.Fatalf("valid placement refused: %v", err)
	}
	if _, err := s.AddUnit(1, Placement{UnitTemplateID: "grunt", Position: [2]int{0, 0}}); err == nil {
		t.Error("occupied placement accepted")
	}
	if _, err := s.AddUnit(0, Placement{UnitTemplateID: "grunt", Position: [2]int{1, 0}, StarLevel: 7}); err == nil {
		t.Error("star level 7 accepted")
	}
}

// TestTickBudget: two pacifists can never finish; the run stops at the
// tick cap with no winner.
func TestTickBudget(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"pacifist": {ID: "pacifist", Name: "Pacifist", Stats: duelStats(func(s *units.Stats) {
			s.BaseAttackDamage = 0
		})},
	})

	cfg := DefaultConfig()
	cfg.MaxTicks = 120

	rosters := [2][]Placement{
		{{UnitTemplateID: "pacifist", Position: [2]int{1, 3}}},
		{{UnitTemplateID: "pacifist", Position: [2]int{4, 3}}},
	}

	result, err := Run(rosters, 1, cfg, templates)
	if err != nil {
		t.Fatal(err)
	}
	if result.WinnerTeam != nil {
		t.Error("timeout produced a winner")
	}
	if result.TotalTicks != 120 {
		t.Errorf("total ticks = %d, want the 120 cap", result.TotalTicks)
	}
}

// TestStunnedCasterKeepsOverflow pins the recorded open-question decision:
// a stun-cancelled cast leaves the pending mana overflow untouched.
func TestStunnedCasterKeepsOverflow(t *testing.T) {
	templates := bundle(map[string]*UnitTemplate{
		"grunt": {ID: "grunt", Name: "Grunt", Stats: duelStats(nil)},
	})

	s := New(1, DefaultConfig(), templates)
	u, _ := s.AddUnit(0, Placement{UnitTemplateID: "grunt", Position: [2]int{0, 0}})

	u.PendingManaOverflow = 12
	u.State.StartCast(20, 10, -1)
	u.State.ApplyStun(10)

	if u.PendingManaOverflow != 12 {
		t.Errorf("overflow = %v after stun cancel, want 12", u.PendingManaOverflow)
	}
	if !u.State.IsManaLocked() {
		t.Error("mana lock dropped by the stun")
	}
}
