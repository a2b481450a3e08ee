package sim

import (
	"github.com/nicoberrocal/arenaCore/abilities"
	"github.com/nicoberrocal/arenaCore/combat"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

// runTick processes one tick in the fixed phase order. Within a phase,
// units are visited in insertion order into the world list.
func (s *Simulation) runTick() {
	s.phaseTraitTriggers()
	s.phasePassives()
	s.phaseStatusTick()
	s.phaseAbilityTriggers()
	s.phaseAIDecision()
	s.phaseEffectPoints()
	s.phaseActions()
	s.phaseProjectiles()
	s.phaseCooldowns()
	s.phaseEndCondition()
}

// --- phase 1: trait time triggers ---

func (s *Simulation) phaseTraitTriggers() {
	if s.traitMgr != nil {
		s.traitMgr.OnTick(s.tick)
	}
}

// --- phase 2: passives and zones ---

func (s *Simulation) phasePassives() {
	for _, u := range s.units {
		if !u.IsAlive() {
			continue
		}
		s.tickHoTs(u)
		s.tickIntervalEffects(u)

		// Passive class mana regen.
		class := s.templates.Classes.ClassOf(u)
		if class.ManaPerSecondBonus > 0 {
			u.GainManaPassive(class.ManaPerSecondBonus, s.cfg.TicksPerSecond)
		}
	}

	if s.itemMgr != nil {
		s.itemMgr.OnTick(s.tick)
	}

	s.tickZones()
}

func (s *Simulation) tickHoTs(u *units.Unit) {
	active := u.HoTs[:0]
	for _, hot := range u.HoTs {
		if s.tick >= hot.NextTick {
			caster := s.unitsByID[hot.CasterID]
			if caster == nil {
				caster = u
			}
			amount := abilities.ScaledValue(abilities.SingleValue(hot.Value), hot.Scaling, u.Star, caster, u)
			if hot.PercentMaxHP > 0 {
				amount += u.Stats.MaxHP() * hot.PercentMaxHP
			}
			s.Heal(caster, u, amount)
			hot.NextTick += hot.TickRate
			hot.RemainingTick -= hot.TickRate
		}
		if hot.RemainingTick > 0 {
			active = append(active, hot)
		}
	}
	u.HoTs = active
}

func (s *Simulation) tickIntervalEffects(u *units.Unit) {
	for _, ie := range u.IntervalEffects {
		if s.tick < ie.NextTick || len(ie.Records) == 0 {
			continue
		}

		rec := ie.Records[ie.AltIndex%len(ie.Records)]
		ie.AltIndex++
		ie.NextTick += ie.Interval

		effect, err := abilities.ParseEffect(abilities.Record(rec))
		if err != nil {
			s.diag.Warn().Err(err).Str("unit", u.ID).Msg("interval effect suppressed")
			continue
		}

		target := s.intervalTarget(u, ie.TargetType)
		if target == nil {
			continue
		}

		result := s.safeApply(effect, u, target, ie.StarLevel)
		if result.Success {
			s.logger.AbilityEffectApplied(s.tick, u.ID, "interval", result.EffectType, result.Value, result.TargetIDs)
		}
	}
}

func (s *Simulation) intervalTarget(u *units.Unit, targetType string) *units.Unit {
	switch targetType {
	case "lowest_hp_ally":
		allies := s.Allies(u.Team)
		var best *units.Unit
		for _, a := range allies {
			if best == nil || a.Stats.HPPercent() < best.Stats.HPPercent() {
				best = a
			}
		}
		return best
	case "highest_damage_ally":
		allies := s.Allies(u.Team)
		var best *units.Unit
		for _, a := range allies {
			if best == nil || a.Stats.AttackDamage() > best.Stats.AttackDamage() {
				best = a
			}
		}
		return best
	default:
		return u
	}
}

func (s *Simulation) tickZones() {
	// Zone effects may spawn further zones; collect those separately so the
	// rebuild below cannot drop them.
	current := s.zones
	s.zones = nil

	var active []*abilities.Zone
	for _, zone := range current {
		zone.Remaining--

		caster := s.unitsByID[zone.CasterID]

		// On-tick effects fire on every whole second of zone life.
		if caster != nil && len(zone.OnTick) > 0 {
			elapsed := zone.Duration - zone.Remaining
			if elapsed > 0 && elapsed%s.cfg.TicksPerSecond == 0 {
				s.applyZoneEffects(zone, caster, zone.OnTick)
			}
		}

		if zone.Remaining <= 0 {
			if caster != nil && len(zone.OnEnd) > 0 {
				s.applyZoneEffects(zone, caster, zone.OnEnd)
			}
			continue
		}
		active = append(active, zone)
	}
	s.zones = append(active, s.zones...)
}

func (s *Simulation) applyZoneEffects(zone *abilities.Zone, caster *units.Unit, records []abilities.Record) {
	enemies := s.EnemiesInRadius(zone.Position, zone.Radius, caster.Team)

	for _, rec := range records {
		effect, err := abilities.ParseEffect(rec)
		if err != nil {
			s.diag.Warn().Err(err).Str("zone_caster", zone.CasterID).Msg("zone effect suppressed")
			continue
		}
		for _, enemy := range enemies {
			if !enemy.IsAlive() {
				continue
			}
			result := s.safeApply(effect, caster, enemy, zone.Star)
			if result.Success {
				s.logger.AbilityEffectApplied(s.tick, caster.ID, "zone", result.EffectType, result.Value, result.TargetIDs)
			}
		}
	}
}

// --- phase 3: status-effect tick ---

func (s *Simulation) phaseStatusTick() {
	for _, u := range s.units {
		if !u.IsAlive() {
			continue
		}

		damage, expired := u.TickStatuses(s.tick, s.cfg.TicksPerSecond)

		for _, layer := range expired {
			s.logger.BuffExpired(s.tick, u.ID, layer.SourceID)
		}

		// Burns are true damage; DoTs are mitigated by their stored type.
		if damage.True > 0 {
			u.AbsorbDamage(damage.True)
			s.logger.UnitDamaged(s.tick, u.ID, statusSource(damage.Sources), damage.True, string(combat.True), u.Stats.CurrentHP)
		}
		if damage.Physical > 0 {
			final := damage.Physical * (1 - combat.Reduction(u.EffectiveArmor()))
			u.AbsorbDamage(final)
			s.logger.UnitDamaged(s.tick, u.ID, statusSource(damage.Sources), final, string(combat.Physical), u.Stats.CurrentHP)
		}
		if damage.Magical > 0 {
			final := damage.Magical * (1 - combat.Reduction(u.EffectiveMagicResist()))
			u.AbsorbDamage(final)
			s.logger.UnitDamaged(s.tick, u.ID, statusSource(damage.Sources), final, string(combat.Magical), u.Stats.CurrentHP)
		}

		if !u.IsAlive() {
			var killer *units.Unit
			if src := statusSource(damage.Sources); src != "" {
				killer = s.unitsByID[src]
			}
			s.handleDeath(u, killer)
		}
	}
}

func statusSource(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	return sources[0]
}

// --- phase 4: ability trigger check ---

func (s *Simulation) phaseAbilityTriggers() {
	for _, u := range s.units {
		if !u.IsAlive() || u.State.Current != units.StateAttacking {
			continue
		}
		if !u.CanCastAbility() {
			continue
		}

		ability := s.abilityOf(u)
		if ability == nil {
			continue
		}

		castTicks := ability.CastTicks(u.Star)
		effectDelay := ability.EffectDelayTicks(u.Star)

		u.State.StartCast(castTicks, effectDelay, -1)
		s.logger.StateChanged(s.tick, u.ID, string(units.StateAttacking), string(units.StateCasting))
	}
}

// --- phase 5: AI decision ---

func (s *Simulation) phaseAIDecision() {
	for _, u := range s.units {
		if !u.IsAlive() || !u.State.CanAct() {
			continue
		}

		switch u.State.Current {
		case units.StateIdle:
			s.aiIdle(u)
		case units.StateMoving:
			s.aiMoving(u)
		case units.StateAttacking:
			s.aiAttacking(u)
		}
	}
}

func (s *Simulation) aiIdle(u *units.Unit) {
	var target *units.Unit

	if u.ForceTargetID != "" {
		if forced := s.unitsByID[u.ForceTargetID]; forced != nil && forced.IsAlive() {
			target = forced
		}
	}
	if target == nil {
		target = s.selectTarget(u)
	}
	if target == nil {
		return // no enemies; stay idle
	}

	u.SetTarget(target)
	s.logger.TargetAcquiredBy(s.tick, u.ID, target.ID)

	if u.InAttackRange(target) {
		s.transition(u, units.StateAttacking)
	} else {
		s.transition(u, units.StateMoving)
	}
}

func (s *Simulation) aiMoving(u *units.Unit) {
	if !u.HasValidTarget() {
		s.dropTarget(u)
		return
	}
	if u.InAttackRange(u.Target) {
		s.transition(u, units.StateAttacking)
	}
}

func (s *Simulation) aiAttacking(u *units.Unit) {
	if !u.HasValidTarget() {
		s.dropTarget(u)
		return
	}
	if !u.InAttackRange(u.Target) {
		s.transition(u, units.StateMoving)
	}
}

func (s *Simulation) dropTarget(u *units.Unit) {
	if u.TargetID != "" {
		s.logger.TargetLostBy(s.tick, u.ID, u.TargetID)
	}
	u.ClearTarget()
	s.transition(u, units.StateIdle)
}

// selectTarget runs the unit's selector: its champion class override when
// set, Nearest otherwise.
func (s *Simulation) selectTarget(u *units.Unit) *units.Unit {
	enemies := s.Enemies(u.Team)
	if len(enemies) == 0 {
		return nil
	}

	class := s.templates.Classes.ClassOf(u)
	selector := combat.Selector(combat.Nearest{})
	if class.DefaultTargetSelector != "" {
		if custom, err := combat.NewSelector(class.DefaultTargetSelector, 0, nil); err == nil {
			selector = custom
		}
	}

	return selector.Select(u, enemies, s.grid, s.stream)
}

func (s *Simulation) transition(u *units.Unit, newState units.State) {
	old := u.State.Current
	if u.State.TransitionTo(newState) {
		s.logger.StateChanged(s.tick, u.ID, string(old), string(newState))
	}
}

// --- phase 6: effect points ---

func (s *Simulation) phaseEffectPoints() {
	for _, u := range s.units {
		if !u.IsAlive() || !u.State.ShouldTriggerEffect() {
			continue
		}
		s.fireAbility(u)
	}
}

func (s *Simulation) fireAbility(u *units.Unit) {
	// Mark first so a mid-dispatch death can never double-fire the cast.
	u.State.MarkEffectTriggered()

	ability := s.abilityOf(u)
	if ability == nil {
		return
	}

	target := u.Target
	if target == nil || !target.IsAlive() {
		target = ability.TargetType.Select(u, s.Enemies(u.Team), s.grid, s.stream)
	}
	if target == nil {
		return
	}

	u.ConsumeManaForCast()

	s.logger.AbilityCasted(s.tick, u.ID, ability.ID, []string{target.ID})

	if s.itemMgr != nil {
		s.itemMgr.OnAbilityCast(u)
	}
	if s.traitMgr != nil {
		s.traitMgr.OnFirstCast(u)
	}

	if ability.IsProjectile() {
		s.projectiles.Spawn(u, target, ability, u.Star)
		return
	}

	s.applyAbilityEffects(u, target, ability, u.Star)
}

// applyAbilityEffects resolves AoE targets and applies every effect to
// every target, logging each non-cosmetic result.
func (s *Simulation) applyAbilityEffects(caster, primary *units.Unit, ability *abilities.Ability, star int) {
	var targets []*units.Unit
	if ability.AoE != nil {
		targets = abilities.ResolveAoE(
			ability.AoE,
			caster.Position,
			primary,
			ability.AoERadius(star),
			s.Enemies(caster.Team),
		)
	} else {
		targets = []*units.Unit{primary}
	}

	for _, effect := range ability.Effects {
		for _, t := range targets {
			if !t.IsAlive() {
				continue
			}
			result := s.safeApply(effect, caster, t, star)
			if result.Success {
				s.logger.AbilityEffectApplied(s.tick, caster.ID, ability.ID, result.EffectType, result.Value, result.TargetIDs)
			}
		}
	}
}

// --- phase 7: action execution ---

func (s *Simulation) phaseActions() {
	for _, u := range s.units {
		if !u.IsAlive() {
			continue
		}

		switch u.State.Current {
		case units.StateMoving:
			s.executeMove(u)
		case units.StateAttacking:
			s.executeAttack(u)
		}
	}
}

func (s *Simulation) executeMove(u *units.Unit) {
	if !u.HasValidTarget() {
		return
	}

	next, ok := hex.NextStep(s.grid, u.Position, u.Target.Position, map[string]bool{u.Target.ID: true})
	if !ok {
		return // no path this tick
	}
	if !s.grid.IsWalkable(next) {
		return
	}

	s.MoveUnit(u, next)
}

func (s *Simulation) executeAttack(u *units.Unit) {
	if u.AttackCooldown > 0 || u.IsDisarmed() {
		return
	}
	if !u.HasValidTarget() {
		return
	}

	target := u.Target
	if !u.InAttackRange(target) {
		return
	}

	// Empowered attacks override the base damage; the Nth strike may carry
	// a bonus multiplier.
	baseDamage := u.Stats.AttackDamage()
	damageType := combat.Physical
	if emp := u.Empowered; emp != nil && emp.Remaining > 0 {
		emp.AttackCount++
		baseDamage = emp.Damage
		if emp.BonusOnAttack > 0 && emp.AttackCount == emp.BonusOnAttack {
			baseDamage *= emp.BonusMultiplier
		}
		damageType = combat.ParseDamageType(emp.DamageType)

		emp.Remaining--
		if emp.Remaining <= 0 {
			u.Empowered = nil
		}
	}

	mods := s.modifiersFor(u, target)
	result := combat.Calculate(u, target, baseDamage, damageType, s.stream, true, true, false, mods)

	s.logger.UnitAttacked(s.tick, u.ID, target.ID, result.Final, result.IsCrit, result.WasDodged)

	if !result.WasDodged {
		s.applyHit(u, target, result)

		u.TriggerStackingBuffs("on_attack")

		// On-hit riders: stacked magic damage and transform bonus damage.
		if target.IsAlive() {
			if bonus := u.OnHitBonusMagicDamage(); bonus > 0 {
				s.DealDamage(u, target, bonus, combat.Magical, false, false, true)
			}
		}
		if target.IsAlive() && u.Transform != nil {
			onHit := u.Transform.Damage()
			if onHit > 0 {
				s.DealDamage(u, target, onHit, combat.ParseDamageType(u.Transform.DamageType), false, false, true)
			}
		}

		if s.itemMgr != nil && target.IsAlive() {
			s.itemMgr.OnHit(u, target)
			if result.IsCrit {
				s.itemMgr.OnCrit(u, target)
			}
		}

		// Mana for a landed attack, class-scaled.
		class := s.templates.Classes.ClassOf(u)
		u.GainManaOnAttack(class.ManaPerAttackMultiplier)

		if !target.IsAlive() {
			s.dropTarget(u)
		}
	}

	u.StartAttackCooldown(s.cfg.TicksPerSecond)
}

// --- phase 8: projectiles ---

func (s *Simulation) phaseProjectiles() {
	for _, proj := range s.projectiles.Tick() {
		target := proj.Target
		if target == nil || !target.IsAlive() {
			continue
		}
		s.applyAbilityEffects(proj.Source, target, proj.Ability, proj.Star)
	}
}

// --- phase 9: cooldowns and state machines ---

func (s *Simulation) phaseCooldowns() {
	for _, u := range s.units {
		if !u.IsAlive() {
			continue
		}
		u.TickCooldowns()

		before := u.State.Current
		if after, changed := u.State.Tick(); changed {
			s.logger.StateChanged(s.tick, u.ID, string(before), string(after))
		}
	}
}

// --- phase 10: end condition ---

func (s *Simulation) phaseEndCondition() {
	alive := map[int]int{}
	for _, u := range s.units {
		if u.IsAlive() {
			alive[u.Team]++
		}
	}

	switch {
	case alive[0] == 0 && alive[1] == 0:
		s.finished = true
		s.winner = nil
	case alive[0] == 0:
		s.finished = true
		team := 1
		s.winner = &team
	case alive[1] == 0:
		s.finished = true
		team := 0
		s.winner = &team
	}
}
