package abilities

import (
	"github.com/nicoberrocal/arenaCore/combat"
	"github.com/nicoberrocal/arenaCore/units"
)

func init() {
	register("effect_group", parseEffectGroup)
	register("multi_strike", parseMultiStrike)
	register("replace_attacks", parseReplaceAttacks)
	register("create_zone", parseCreateZone)
	register("interval_trigger", parseIntervalTrigger)
	register("transform", parseTransform)
	register("accumulator", parseAccumulator)
}

// --- effect_group ---

// EffectGroup executes a list of sub-effects together, optionally fanning
// out over an AoE radius around the primary target.
type EffectGroup struct {
	Delay     int
	AoERadius int
	Effects   []Effect
}

func parseEffectGroup(rec Record) (Effect, error) {
	subs, err := ParseEffects(rec.recordList("effects"))
	if err != nil {
		return nil, err
	}
	return &EffectGroup{
		Delay:     rec.intval("delay", 0),
		AoERadius: rec.intval("aoe_radius", 0),
		Effects:   subs,
	}, nil
}

func (e *EffectGroup) Type() string { return "effect_group" }

func (e *EffectGroup) Apply(caster, target *units.Unit, star int, w World) Result {
	targets := []*units.Unit{target}
	if e.AoERadius > 0 {
		others := w.EnemiesInRadius(target.Position, e.AoERadius, caster.Team)
		sortByDistanceTo(target, others)
		for _, o := range others {
			if o.ID != target.ID {
				targets = append(targets, o)
			}
		}
	}

	applied := 0
	for _, sub := range e.Effects {
		for _, t := range targets {
			if !t.IsAlive() {
				continue
			}
			sub.Apply(caster, t, star, w)
			applied++
		}
	}

	return Result{
		EffectType: "effect_group",
		Success:    applied > 0,
		Value:      float64(applied),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"effects_applied": applied, "aoe_radius": e.AoERadius},
	}
}

// --- multi_strike ---

// MultiStrikeEffect runs a per-hit effect list N times, with an extra list
// on the final strike.
type MultiStrikeEffect struct {
	Hits       int
	PerHit     []Effect
	OnFinalHit []Effect
}

func parseMultiStrike(rec Record) (Effect, error) {
	perHit, err := ParseEffects(rec.recordList("per_hit"))
	if err != nil {
		return nil, err
	}
	onFinal, err := ParseEffects(rec.recordList("on_final_hit"))
	if err != nil {
		return nil, err
	}
	return &MultiStrikeEffect{
		Hits:       rec.intval("hits", 3),
		PerHit:     perHit,
		OnFinalHit: onFinal,
	}, nil
}

func (e *MultiStrikeEffect) Type() string { return "multi_strike" }

func (e *MultiStrikeEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	applied := 0
	for i := 0; i < e.Hits; i++ {
		for _, sub := range e.PerHit {
			if !target.IsAlive() {
				break
			}
			sub.Apply(caster, target, star, w)
			applied++
		}
		if i == e.Hits-1 {
			for _, sub := range e.OnFinalHit {
				if !target.IsAlive() {
					break
				}
				sub.Apply(caster, target, star, w)
				applied++
			}
		}
	}

	return Result{
		EffectType: "multi_strike",
		Success:    applied > 0,
		Value:      float64(e.Hits),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"hits": e.Hits, "effects_applied": applied},
	}
}

// --- replace_attacks ---

// ReplaceAttacksEffect turns the caster's next N auto-attacks into
// empowered strikes with pre-computed hybrid damage and an optional bonus
// on one numbered attack.
type ReplaceAttacksEffect struct {
	Count           int
	DamageType      combat.DamageType
	ADValue         StarValue
	APValue         StarValue
	BonusMultiplier float64
	BonusOnAttack   int
	InfiniteRange   bool
}

func parseReplaceAttacks(rec Record) (Effect, error) {
	return &ReplaceAttacksEffect{
		Count:           rec.intval("count", 4),
		DamageType:      combat.ParseDamageType(rec.str("damage_type", "physical")),
		ADValue:         rec.star("ad_value", 125),
		APValue:         rec.star("ap_value", 15),
		BonusMultiplier: rec.float("bonus_multiplier", 1.0),
		BonusOnAttack:   rec.intval("bonus_on_attack", 0),
		InfiniteRange:   rec.boolean("infinite_range", false),
	}, nil
}

func (e *ReplaceAttacksEffect) Type() string { return "replace_attacks" }

func (e *ReplaceAttacksEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	adPart := e.ADValue.At(star) * caster.Stats.AttackDamage() / 100
	apPart := e.APValue.At(star) * caster.Stats.AbilityPower() / 100
	damage := adPart + apPart

	damageType := "physical"
	if e.DamageType == combat.Magical {
		damageType = "magical"
	} else if e.DamageType == combat.True {
		damageType = "true"
	}

	caster.Empowered = &units.EmpoweredAttacks{
		Remaining:       e.Count,
		Total:           e.Count,
		Damage:          damage,
		DamageType:      damageType,
		BonusMultiplier: e.BonusMultiplier,
		BonusOnAttack:   e.BonusOnAttack,
		InfiniteRange:   e.InfiniteRange,
	}

	return Result{
		EffectType: "replace_attacks",
		Success:    true,
		Value:      float64(e.Count),
		TargetIDs:  []string{caster.ID},
		Details: map[string]any{
			"count":    e.Count,
			"damage":   damage,
			"bonus_on": e.BonusOnAttack,
		},
	}
}

// --- create_zone ---

// CreateZoneEffect drops a persistent area anchored at the target's
// position. Sub-effect records stay unparsed here; the kernel parses and
// dispatches them on the zone's schedule (they were validated at ability
// load).
type CreateZoneEffect struct {
	Radius      int
	Duration    int
	OnTick      []Record
	OnEnd       []Record
	TrackDamage bool
}

func parseCreateZone(rec Record) (Effect, error) {
	onEnd := rec.recordList("on_end_effects")
	if onEnd == nil {
		if single, ok := rec.record("on_end"); ok {
			onEnd = []Record{single}
		} else {
			onEnd = rec.recordList("on_end")
		}
	}

	// Validate sub-effects now so a bad record fails at load.
	if _, err := ParseEffects(rec.recordList("on_tick_effects")); err != nil {
		return nil, err
	}
	if _, err := ParseEffects(onEnd); err != nil {
		return nil, err
	}

	return &CreateZoneEffect{
		Radius:      rec.intval("radius", 1),
		Duration:    rec.intval("duration", 90),
		OnTick:      rec.recordList("on_tick_effects"),
		OnEnd:       onEnd,
		TrackDamage: rec.boolean("track_damage_taken", false),
	}, nil
}

func (e *CreateZoneEffect) Type() string { return "create_zone" }

func (e *CreateZoneEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	w.AddZone(&Zone{
		Position:    target.Position,
		Radius:      e.Radius,
		Duration:    e.Duration,
		Remaining:   e.Duration,
		CasterID:    caster.ID,
		Star:        star,
		OnTick:      e.OnTick,
		OnEnd:       e.OnEnd,
		TrackDamage: e.TrackDamage,
	})

	return Result{
		EffectType: "create_zone",
		Success:    true,
		Value:      float64(e.Duration),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"radius": e.Radius, "duration_ticks": e.Duration},
	}
}

// --- interval_trigger ---

// IntervalTriggerEffect registers a passive on the caster that fires a
// stored effect every N ticks. A list of records alternates between firings.
type IntervalTriggerEffect struct {
	Interval   int
	Records    []Record
	TargetType string
}

func parseIntervalTrigger(rec Record) (Effect, error) {
	var records []Record
	if single, ok := rec.record("effect"); ok {
		records = []Record{single}
	} else {
		records = rec.recordList("effect")
	}
	if _, err := ParseEffects(records); err != nil {
		return nil, err
	}

	return &IntervalTriggerEffect{
		Interval:   rec.intval("interval", 120),
		Records:    records,
		TargetType: rec.str("target_type", "self"),
	}, nil
}

func (e *IntervalTriggerEffect) Type() string { return "interval_trigger" }

func (e *IntervalTriggerEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recs := make([]map[string]any, len(e.Records))
	for i, r := range e.Records {
		recs[i] = map[string]any(r)
	}

	caster.IntervalEffects = append(caster.IntervalEffects, &units.IntervalEffect{
		Interval:   e.Interval,
		NextTick:   w.CurrentTick() + e.Interval,
		Records:    recs,
		TargetType: e.TargetType,
		StarLevel:  star,
	})

	return Result{
		EffectType: "interval_trigger",
		Success:    true,
		Value:      float64(e.Interval),
		TargetIDs:  []string{caster.ID},
	}
}

// --- transform ---

// TransformEffect permanently alters the caster's stats and installs a
// stacking on-hit damage rider.
type TransformEffect struct {
	HPPercentBonus     float64
	AttackSpeedBonus   StarValue
	AttackSpeedScaling string
	OnHitDamage        StarValue
	OnHitDamageType    string
	StackingPerHit     StarValue
}

func parseTransform(rec Record) (Effect, error) {
	statChanges, _ := rec.record("stat_changes")
	if statChanges == nil {
		statChanges = Record{}
	}
	onHit, _ := rec.record("on_hit")
	if onHit == nil {
		onHit = Record{}
	}

	return &TransformEffect{
		HPPercentBonus:     statChanges.float("hp_percent", 0),
		AttackSpeedBonus:   statChanges.star("attack_speed", 0),
		AttackSpeedScaling: statChanges.str("attack_speed_scaling", "flat"),
		OnHitDamage:        onHit.star("value", 0),
		OnHitDamageType:    onHit.str("damage_type", "true"),
		StackingPerHit:     onHit.star("stacking_per_hit", 0),
	}, nil
}

func (e *TransformEffect) Type() string { return "transform" }

func (e *TransformEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	if e.HPPercentBonus > 0 {
		bonus := caster.Stats.MaxHP() * e.HPPercentBonus
		caster.Stats.AddFlat(units.StatHP, bonus)
		caster.Stats.CurrentHP += bonus
	}

	asBonus := e.AttackSpeedBonus.At(star)
	if e.AttackSpeedScaling == "ap" {
		asBonus *= 1 + caster.Stats.AbilityPower()/100
	}
	if asBonus != 0 {
		caster.Stats.AddPercent(units.StatAttackSpeed, asBonus)
	}

	if !e.OnHitDamage.IsZero() || !e.StackingPerHit.IsZero() {
		caster.Transform = &units.TransformOnHit{
			BaseDamage:     e.OnHitDamage.At(star),
			DamageType:     e.OnHitDamageType,
			StackingPerHit: e.StackingPerHit.At(star),
		}
	}

	return Result{
		EffectType: "transform",
		Success:    true,
		Value:      asBonus,
		TargetIDs:  []string{caster.ID},
		Details:    map[string]any{"hp_percent": e.HPPercentBonus, "attack_speed": asBonus},
	}
}

// --- accumulator ---

// AccumulatorEffect adds charges per cast, dealing a small per-charge hit,
// and releases a team heal plus a falloff wave at the threshold. Charges
// reset at the threshold and at battle start.
type AccumulatorEffect struct {
	ChargesPerCast int
	ChargeDamage   StarValue
	Scaling        string
	TriggerAt      int
	TriggerHeal    StarValue
	TriggerDamage  StarValue
	TriggerFalloff float64
}

func parseAccumulator(rec Record) (Effect, error) {
	eff := &AccumulatorEffect{
		ChargesPerCast: rec.intval("notes_per_cast", 3),
		ChargeDamage:   rec.star("note_damage", 0),
		Scaling:        rec.str("scaling", "ap"),
		TriggerAt:      rec.intval("trigger_at", 12),
		TriggerFalloff: 0.30,
	}

	for _, sub := range rec.recordList("on_trigger") {
		switch sub.str("type", "") {
		case "heal":
			eff.TriggerHeal = sub.star("ap_value", sub.float("value", 0))
		case "damage":
			eff.TriggerDamage = sub.star("ap_value", sub.float("value", 0))
			eff.TriggerFalloff = sub.float("falloff_percent", 0.30)
		}
	}
	return eff, nil
}

func (e *AccumulatorEffect) Type() string { return "accumulator" }

func (e *AccumulatorEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	chargeDamage := ScaledValue(e.ChargeDamage, e.Scaling, star, caster, target)

	enemies := w.Enemies(caster.Team)
	sortByDistanceTo(caster, enemies)

	total := 0.0
	for i := 0; i < e.ChargesPerCast && len(enemies) > 0; i++ {
		enemy := enemies[i%len(enemies)]
		if !enemy.IsAlive() {
			continue
		}
		res := w.DealDamage(caster, enemy, chargeDamage, combat.Magical, false, false, true)
		total += res.Final
	}

	caster.AccumulatorCharges += e.ChargesPerCast

	triggered := false
	if caster.AccumulatorCharges >= e.TriggerAt {
		triggered = true
		caster.AccumulatorCharges = 0

		heal := ScaledValue(e.TriggerHeal, e.Scaling, star, caster, caster)
		for _, ally := range w.Allies(caster.Team) {
			w.Heal(caster, ally, heal)
		}

		wave := ScaledValue(e.TriggerDamage, e.Scaling, star, caster, target)
		for i, enemy := range w.Enemies(caster.Team) {
			falloff := 1 - e.TriggerFalloff*float64(i)
			if falloff < 0.1 {
				falloff = 0.1
			}
			w.DealDamage(caster, enemy, wave*falloff, combat.Magical, false, false, true)
		}
	}

	return Result{
		EffectType: "accumulator",
		Success:    true,
		Value:      total,
		Details: map[string]any{
			"charges":   caster.AccumulatorCharges,
			"triggered": triggered,
		},
	}
}
