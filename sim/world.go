package sim

import (
	"github.com/nicoberrocal/arenaCore/abilities"
	"github.com/nicoberrocal/arenaCore/combat"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/rng"
	"github.com/nicoberrocal/arenaCore/units"
)

// The Simulation is the world every effect registry mutates through. These
// methods satisfy abilities.World, traits.World and items.World.

// Grid returns the board.
func (s *Simulation) Grid() *hex.Grid {
	return s.grid
}

// RNG returns the run's single random stream.
func (s *Simulation) RNG() *rng.Stream {
	return s.stream
}

// CurrentTick returns the tick being processed.
func (s *Simulation) CurrentTick() int {
	return s.tick
}

// TicksPerSecond returns the tick rate.
func (s *Simulation) TicksPerSecond() int {
	return s.cfg.TicksPerSecond
}

// Units returns every unit in insertion order, dead ones included.
func (s *Simulation) Units() []*units.Unit {
	return s.units
}

// UnitByID resolves an id, or nil.
func (s *Simulation) UnitByID(id string) *units.Unit {
	return s.unitsByID[id]
}

// Enemies returns the living opponents of a team in insertion order.
func (s *Simulation) Enemies(team int) []*units.Unit {
	var result []*units.Unit
	for _, u := range s.units {
		if u.IsAlive() && u.Team != team {
			result = append(result, u)
		}
	}
	return result
}

// Allies returns the living members of a team in insertion order.
func (s *Simulation) Allies(team int) []*units.Unit {
	var result []*units.Unit
	for _, u := range s.units {
		if u.IsAlive() && u.Team == team {
			result = append(result, u)
		}
	}
	return result
}

// EnemiesInRadius returns living opponents within radius of a position.
func (s *Simulation) EnemiesInRadius(pos hex.Coord, radius, team int) []*units.Unit {
	var result []*units.Unit
	for _, u := range s.units {
		if u.IsAlive() && u.Team != team && pos.Distance(u.Position) <= radius {
			result = append(result, u)
		}
	}
	return result
}

// DealDamage is the single entry point for HP loss outside auto-attacks:
// it gathers conditional item modifiers and trait amps, runs the pipeline,
// applies the result and does the post-damage bookkeeping (logging, item
// and trait triggers, death).
func (s *Simulation) DealDamage(attacker, defender *units.Unit, base float64, damageType combat.DamageType, canCrit, canDodge, isAbility bool) combat.Result {
	// An ability_crit item flag opts the caster's ability damage into the
	// crit roll.
	if isAbility && !canCrit && s.itemMgr != nil && s.itemMgr.HasFlag(attacker, "ability_crit") {
		canCrit = true
	}

	mods := s.modifiersFor(attacker, defender)
	result := combat.Calculate(attacker, defender, base, damageType, s.stream, canCrit, canDodge, isAbility, mods)

	if !result.WasDodged {
		s.applyHit(attacker, defender, result)
	}
	return result
}

// modifiersFor merges the item conditional dictionary with the battle-long
// trait amps of both sides.
func (s *Simulation) modifiersFor(attacker, defender *units.Unit) combat.Modifiers {
	var mods combat.Modifiers
	if s.itemMgr != nil {
		mods = s.itemMgr.ConditionalModifiers(attacker, defender)
	}
	mods.DamageAmp += attacker.DamageAmp
	mods.DamageReduction += defender.DamageReduction
	return mods
}

// applyHit lands a computed, non-dodged hit: HP/shield, defender mana,
// lifesteal, the damage event, the damage-side triggers, and death.
func (s *Simulation) applyHit(attacker, defender *units.Unit, result combat.Result) float64 {
	classMult := s.templates.Classes.ClassOf(defender).ManaFromDamageMultiplier
	actual := combat.Apply(attacker, defender, result, s.templates.ManaRule, classMult)

	s.logger.UnitDamaged(s.tick, defender.ID, attacker.ID, result.Final, string(result.DamageType), defender.Stats.CurrentHP)

	for _, zone := range s.zones {
		if zone.TrackDamage && zone.Position.Distance(defender.Position) <= zone.Radius {
			zone.DamageTaken += actual
		}
	}

	attacker.TriggerStackingBuffs("on_damage_dealt")
	defender.TriggerStackingBuffs("on_damage_taken")

	if s.itemMgr != nil {
		s.itemMgr.OnTakeDamage(defender)
	}
	if s.traitMgr != nil {
		s.traitMgr.OnUnitDamaged(defender)
	}

	if !defender.IsAlive() {
		s.handleDeath(defender, attacker)
	}
	return actual
}

// Heal restores HP through the recipient's wound reduction and logs it.
func (s *Simulation) Heal(caster, target *units.Unit, amount float64) float64 {
	if !target.IsAlive() {
		return 0
	}
	actual := target.ReceiveHeal(amount)
	if actual > 0 {
		casterID := ""
		if caster != nil {
			casterID = caster.ID
		}
		s.logger.UnitHealed(s.tick, target.ID, casterID, actual, target.Stats.CurrentHP)
	}
	return actual
}

// Kill removes a unit outright, bypassing resistances (executes).
func (s *Simulation) Kill(attacker, victim *units.Unit) {
	if !victim.IsAlive() {
		return
	}
	victim.Stats.CurrentHP = 0
	s.handleDeath(victim, attacker)
}

// MoveUnit relocates a unit, keeping grid and unit position in sync, and
// logs the move. Returns false when the destination refuses the unit.
func (s *Simulation) MoveUnit(u *units.Unit, to hex.Coord) bool {
	from := u.Position
	if !s.grid.Move(u, to) {
		return false
	}
	u.Position = to
	s.logger.UnitMoved(s.tick, u.ID, from.Q, from.R, to.Q, to.R)
	return true
}

// AddZone registers a persistent area for the kernel to tick.
func (s *Simulation) AddZone(z *abilities.Zone) {
	s.zones = append(s.zones, z)
}

// handleDeath finalises a death exactly once: terminal state, grid removal,
// the death event, trait recount and kill triggers.
func (s *Simulation) handleDeath(victim, killer *units.Unit) {
	if victim.State.Current == units.StateDead {
		return
	}

	victim.Die()
	s.grid.Remove(victim)

	killerID := ""
	if killer != nil {
		killerID = killer.ID
	}
	s.logger.UnitDied(s.tick, victim.ID, killerID)

	if s.traitMgr != nil {
		s.traitMgr.OnUnitDeath(victim)
	}
	if killer != nil && killer.IsAlive() {
		if s.itemMgr != nil {
			s.itemMgr.OnKill(killer, victim)
		}
		if s.traitMgr != nil {
			s.traitMgr.OnKill(killer)
		}
	}
}
