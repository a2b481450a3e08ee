package abilities

import (
	"sort"

	"github.com/nicoberrocal/arenaCore/combat"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

func init() {
	register("damage", parseDamage)
	register("hybrid_damage", parseHybridDamage)
	register("splash_damage", parseSplashDamage)
	register("ricochet", parseRicochet)
	register("multi_hit", parseMultiHit)
	register("percent_hp_damage", parsePercentHPDamage)
	register("percent_damage_taken", parsePercentHPDamage) // zone damage alias
	register("dash_through", parseDashThrough)
	register("projectile_spread", parseProjectileSpread)
	register("projectile_swarm", parseProjectileSwarm)
	register("execute", parseExecute)
	register("burn", parseBurn)
	register("dot", parseDoT)
	register("sunder", parseSunder)
	register("shred", parseShred)
}

// sortByDistanceTo orders candidates by hex distance to an anchor, ties by
// id, so extra-target picks are deterministic.
func sortByDistanceTo(anchor *units.Unit, candidates []*units.Unit) {
	sort.Slice(candidates, func(i, j int) bool {
		di := anchor.Position.Distance(candidates[i].Position)
		dj := anchor.Position.Distance(candidates[j].Position)
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})
}

// --- damage ---

// DamageEffect is the workhorse single-target hit with optional scaling,
// conditional crit, extra targets by radius or count with falloff, an
// execute threshold and an on-hit sub-effect.
type DamageEffect struct {
	DamageType       combat.DamageType
	Value            StarValue
	Scaling          string
	CritCondition    string
	FalloffPercent   float64
	ExecuteThreshold float64
	TargetCount      int
	TargetRadius     int
	OnHit            Effect
}

func parseDamage(rec Record) (Effect, error) {
	eff := &DamageEffect{
		DamageType:       combat.ParseDamageType(rec.str("damage_type", "magical")),
		Value:            rec.star("value", 100),
		Scaling:          rec.str("scaling", ""),
		CritCondition:    rec.str("crit_condition", ""),
		FalloffPercent:   rec.float("falloff_percent", 0),
		ExecuteThreshold: rec.float("execute_threshold", 0),
		TargetCount:      rec.intval("target_count", 1),
		TargetRadius:     rec.intval("target_radius", 0),
	}

	if sub, ok := rec.record("on_hit"); ok {
		onHit, err := ParseEffect(sub)
		if err != nil {
			return nil, err
		}
		eff.OnHit = onHit
	}
	return eff, nil
}

func (e *DamageEffect) Type() string { return "damage" }

func (e *DamageEffect) targets(caster, target *units.Unit, w World) []*units.Unit {
	targets := []*units.Unit{target}

	if e.TargetRadius > 0 {
		others := w.EnemiesInRadius(target.Position, e.TargetRadius, caster.Team)
		sortByDistanceTo(target, others)
		for _, o := range others {
			if o.ID != target.ID {
				targets = append(targets, o)
			}
		}
	} else if e.TargetCount > 1 {
		others := w.Enemies(caster.Team)
		sortByDistanceTo(target, others)
		for _, o := range others {
			if len(targets) >= e.TargetCount {
				break
			}
			if o.ID != target.ID {
				targets = append(targets, o)
			}
		}
	}
	return targets
}

func (e *DamageEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	base := ScaledValue(e.Value, e.Scaling, star, caster, target)

	total := 0.0
	var hit []string

	for i, t := range e.targets(caster, target, w) {
		damage := base * (1 - e.FalloffPercent*float64(i))
		if damage <= 0 {
			continue
		}

		if e.ExecuteThreshold > 0 && t.Stats.HPPercent() < e.ExecuteThreshold {
			total += t.Stats.CurrentHP
			w.Kill(caster, t)
			hit = append(hit, t.ID)
			continue
		}

		if e.CritCondition != "" && checkCondition(caster, t, e.CritCondition) {
			damage *= caster.Stats.CritDamage()
		}

		res := w.DealDamage(caster, t, damage, e.DamageType, false, false, true)
		total += res.Final
		hit = append(hit, t.ID)

		if e.OnHit != nil && t.IsAlive() {
			e.OnHit.Apply(caster, t, star, w)
		}
	}

	return Result{
		EffectType: "damage",
		Success:    total > 0 || len(hit) > 0,
		Value:      total,
		TargetIDs:  hit,
		Details:    map[string]any{"targets_hit": len(hit)},
	}
}

// --- hybrid_damage ---

// HybridDamageEffect deals combined AD- and AP-scaled damage.
type HybridDamageEffect struct {
	ADValue        StarValue
	APValue        StarValue
	ADIsPercent    bool
	DamageType     combat.DamageType
	TargetCount    int
	TargetRadius   int
	FalloffPercent float64
}

func parseHybridDamage(rec Record) (Effect, error) {
	return &HybridDamageEffect{
		ADValue:        rec.star("ad_value", 0),
		APValue:        rec.star("ap_value", 0),
		ADIsPercent:    rec.boolean("ad_is_percent", false),
		DamageType:     combat.ParseDamageType(rec.str("damage_type", "physical")),
		TargetCount:    rec.intval("target_count", 1),
		TargetRadius:   rec.intval("target_radius", 0),
		FalloffPercent: rec.float("falloff_percent", 0),
	}, nil
}

func (e *HybridDamageEffect) Type() string { return "hybrid_damage" }

func (e *HybridDamageEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	targets := []*units.Unit{target}
	if e.TargetRadius > 0 {
		others := w.EnemiesInRadius(target.Position, e.TargetRadius, caster.Team)
		sortByDistanceTo(target, others)
		for _, o := range others {
			if o.ID != target.ID {
				targets = append(targets, o)
			}
		}
	} else if e.TargetCount > 1 {
		others := w.Enemies(caster.Team)
		sortByDistanceTo(target, others)
		for _, o := range others {
			if len(targets) >= e.TargetCount {
				break
			}
			if o.ID != target.ID {
				targets = append(targets, o)
			}
		}
	}

	total := 0.0
	var hit []string

	for i, t := range targets {
		adVal := e.ADValue.At(star)
		adDamage := adVal
		if e.ADIsPercent {
			adDamage = adVal * caster.Stats.AttackDamage()
		}
		apDamage := ScaledValue(e.APValue, "ap", star, caster, t)

		damage := (adDamage + apDamage) * (1 - e.FalloffPercent*float64(i))
		if damage <= 0 {
			continue
		}

		res := w.DealDamage(caster, t, damage, e.DamageType, false, false, true)
		total += res.Final
		hit = append(hit, t.ID)
	}

	return Result{
		EffectType: "hybrid_damage",
		Success:    total > 0,
		Value:      total,
		TargetIDs:  hit,
		Details:    map[string]any{"targets_hit": len(hit)},
	}
}

// --- splash_damage ---

// SplashDamageEffect hits the primary target for full damage and every
// adjacent enemy for a percentage.
type SplashDamageEffect struct {
	Value         StarValue
	SplashPercent float64
	DamageType    combat.DamageType
	Scaling       string
}

func parseSplashDamage(rec Record) (Effect, error) {
	return &SplashDamageEffect{
		Value:         rec.star("value", 100),
		SplashPercent: rec.float("splash_percent", 0.5),
		DamageType:    combat.ParseDamageType(rec.str("damage_type", "magical")),
		Scaling:       rec.str("scaling", "ap"),
	}, nil
}

func (e *SplashDamageEffect) Type() string { return "splash_damage" }

func (e *SplashDamageEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	main := ScaledValue(e.Value, e.Scaling, star, caster, target)

	res := w.DealDamage(caster, target, main, e.DamageType, false, false, true)
	total := res.Final
	affected := []string{target.ID}

	splash := main * e.SplashPercent
	neighbors := w.EnemiesInRadius(target.Position, 1, caster.Team)
	sortByDistanceTo(target, neighbors)
	for _, u := range neighbors {
		if u.ID == target.ID {
			continue
		}
		r := w.DealDamage(caster, u, splash, e.DamageType, false, false, true)
		total += r.Final
		affected = append(affected, u.ID)
	}

	return Result{
		EffectType: "splash_damage",
		Success:    true,
		Value:      total,
		TargetIDs:  affected,
		Details:    map[string]any{"splash_percent": e.SplashPercent},
	}
}

// --- ricochet ---

// RicochetEffect carries excess damage to a new target whenever it kills,
// up to a bounce cap. Each bounce seeks the farthest untouched enemy.
type RicochetEffect struct {
	Value      StarValue
	DamageType combat.DamageType
	MaxBounces int
	Scaling    string
}

func parseRicochet(rec Record) (Effect, error) {
	return &RicochetEffect{
		Value:      rec.star("value", 500),
		DamageType: combat.ParseDamageType(rec.str("damage_type", "physical")),
		MaxBounces: rec.intval("max_bounces", 3),
		Scaling:    rec.str("scaling", "ad"),
	}, nil
}

func (e *RicochetEffect) Type() string { return "ricochet" }

func (e *RicochetEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	damage := ScaledValue(e.Value, e.Scaling, star, caster, target)

	seen := map[string]bool{}
	var affected []string

	current := target
	remaining := damage
	bounces := 0

	for current != nil && bounces <= e.MaxBounces && remaining > 0 {
		hpBefore := current.Stats.CurrentHP

		w.DealDamage(caster, current, remaining, e.DamageType, true, false, true)
		seen[current.ID] = true
		affected = append(affected, current.ID)

		if current.IsAlive() {
			break
		}

		excess := remaining - hpBefore
		if excess < 0 {
			excess = 0
		}
		remaining = excess
		bounces++

		var next *units.Unit
		bestDist := -1
		for _, u := range w.Enemies(caster.Team) {
			if seen[u.ID] {
				continue
			}
			d := caster.Position.Distance(u.Position)
			if d > bestDist || (d == bestDist && next != nil && u.ID < next.ID) {
				bestDist = d
				next = u
			}
		}
		current = next
	}

	return Result{
		EffectType: "ricochet",
		Success:    len(affected) > 0,
		Value:      damage,
		TargetIDs:  affected,
		Details:    map[string]any{"bounces": bounces},
	}
}

// --- multi_hit ---

// MultiHitEffect strikes the target N times; every hit rolls crit
// independently. The hits are ability damage, so they are never dodged.
type MultiHitEffect struct {
	Value      StarValue
	Hits       StarValue
	DamageType combat.DamageType
	Scaling    string
}

func parseMultiHit(rec Record) (Effect, error) {
	return &MultiHitEffect{
		Value:      rec.star("value", 50),
		Hits:       rec.star("hits", 4),
		DamageType: combat.ParseDamageType(rec.str("damage_type", "physical")),
		Scaling:    rec.str("scaling", "ad"),
	}, nil
}

func (e *MultiHitEffect) Type() string { return "multi_hit" }

func (e *MultiHitEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	perHit := ScaledValue(e.Value, e.Scaling, star, caster, target)
	hits := int(e.Hits.At(star))

	total := 0.0
	landed := 0
	for i := 0; i < hits; i++ {
		if !target.IsAlive() {
			break
		}
		res := w.DealDamage(caster, target, perHit, e.DamageType, true, true, true)
		total += res.Final
		landed++
	}

	return Result{
		EffectType: "multi_hit",
		Success:    landed > 0,
		Value:      total,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"hits": landed, "damage_per_hit": perHit},
	}
}

// --- percent_hp_damage ---

// PercentHPDamageEffect deals a fraction of the target's max (or current)
// HP as damage.
type PercentHPDamageEffect struct {
	Value      StarValue
	DamageType combat.DamageType
	IsCurrent  bool
}

func parsePercentHPDamage(rec Record) (Effect, error) {
	return &PercentHPDamageEffect{
		Value:      rec.star("value", 0.08),
		DamageType: combat.ParseDamageType(rec.str("damage_type", "magical")),
		IsCurrent:  rec.boolean("is_current", false),
	}, nil
}

func (e *PercentHPDamageEffect) Type() string { return "percent_hp_damage" }

func (e *PercentHPDamageEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	percent := e.Value.At(star)

	var base float64
	if e.IsCurrent {
		base = target.Stats.CurrentHP * percent
	} else {
		base = target.Stats.MaxHP() * percent
	}

	res := w.DealDamage(caster, target, base, e.DamageType, false, false, true)

	return Result{
		EffectType: "percent_hp_damage",
		Success:    true,
		Value:      res.Final,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"percent": percent, "is_current": e.IsCurrent},
	}
}

// --- dash_through ---

// DashThroughEffect damages every enemy on the path from caster to target
// and relocates the caster to the far side of the target.
type DashThroughEffect struct {
	Value      StarValue
	DamageType combat.DamageType
	Scaling    string
}

func parseDashThrough(rec Record) (Effect, error) {
	return &DashThroughEffect{
		Value:      rec.star("value", 80),
		DamageType: combat.ParseDamageType(rec.str("damage_type", "physical")),
		Scaling:    rec.str("scaling", "ad"),
	}, nil
}

func (e *DashThroughEffect) Type() string { return "dash_through" }

func (e *DashThroughEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	damage := ScaledValue(e.Value, e.Scaling, star, caster, target)

	line := map[hex.Coord]bool{}
	for _, pos := range caster.Position.LineTo(target.Position) {
		line[pos] = true
	}

	var affected []string
	enemies := w.Enemies(caster.Team)
	sortByDistanceTo(caster, enemies)
	for _, u := range enemies {
		if !line[u.Position] {
			continue
		}
		w.DealDamage(caster, u, damage, e.DamageType, true, true, true)
		affected = append(affected, u.ID)
	}

	// Land past the target when the cell is free; otherwise next to it.
	moved := false
	beyond := target.Position.Add(target.Position.Sub(caster.Position))
	if w.Grid().IsWalkable(beyond) {
		moved = w.MoveUnit(caster, beyond)
	} else {
		for _, n := range target.Position.Neighbors() {
			if n != caster.Position && w.Grid().IsWalkable(n) {
				moved = w.MoveUnit(caster, n)
				break
			}
		}
	}

	return Result{
		EffectType: "dash_through",
		Success:    len(affected) > 0,
		Value:      damage,
		TargetIDs:  affected,
		Details:    map[string]any{"enemies_hit": len(affected), "moved": moved},
	}
}

// --- projectile_spread ---

// ProjectileSpreadEffect fires N projectiles in a fan; each strikes one
// enemy with per-enemy falloff.
type ProjectileSpreadEffect struct {
	ProjectileCount int
	Value           StarValue
	DamageType      combat.DamageType
	Scaling         string
	FalloffPerEnemy float64
}

func parseProjectileSpread(rec Record) (Effect, error) {
	return &ProjectileSpreadEffect{
		ProjectileCount: rec.intval("projectile_count", 3),
		Value:           rec.star("value", 70),
		DamageType:      combat.ParseDamageType(rec.str("damage_type", "magical")),
		Scaling:         rec.str("scaling", "ap"),
		FalloffPerEnemy: rec.float("falloff_per_enemy", 0),
	}, nil
}

func (e *ProjectileSpreadEffect) Type() string { return "projectile_spread" }

func (e *ProjectileSpreadEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	base := ScaledValue(e.Value, e.Scaling, star, caster, target)

	enemies := w.Enemies(caster.Team)
	sortByDistanceTo(caster, enemies)
	if len(enemies) > e.ProjectileCount {
		enemies = enemies[:e.ProjectileCount]
	}

	total := 0.0
	var affected []string
	for i, enemy := range enemies {
		falloff := 1 - e.FalloffPerEnemy*float64(i)
		if falloff < 0.1 {
			falloff = 0.1
		}
		res := w.DealDamage(caster, enemy, base*falloff, e.DamageType, false, false, true)
		total += res.Final
		affected = append(affected, enemy.ID)
	}

	return Result{
		EffectType: "projectile_spread",
		Success:    len(affected) > 0,
		Value:      total,
		TargetIDs:  affected,
		Details:    map[string]any{"projectiles": e.ProjectileCount, "hits": len(affected)},
	}
}

// --- projectile_swarm ---

// ProjectileSwarmEffect launches count x jumps strikes, retargeting the
// nearest enemy whenever the current one dies.
type ProjectileSwarmEffect struct {
	Count      int
	Jumps      int
	Value      StarValue
	Scaling    string
	DamageType combat.DamageType
}

func parseProjectileSwarm(rec Record) (Effect, error) {
	return &ProjectileSwarmEffect{
		Count:      rec.intval("count", 3),
		Jumps:      rec.intval("jumps", 1),
		Value:      rec.star("value", 50),
		Scaling:    rec.str("scaling", "ap"),
		DamageType: combat.ParseDamageType(rec.str("damage_type", "magical")),
	}, nil
}

func (e *ProjectileSwarmEffect) Type() string { return "projectile_swarm" }

func (e *ProjectileSwarmEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	total := 0.0
	var affected []string
	touched := map[string]bool{}

	current := target
	for i := 0; i < e.Count*e.Jumps; i++ {
		if current == nil || !current.IsAlive() {
			current = nearestEnemy(caster, w)
			if current == nil {
				break
			}
		}

		damage := ScaledValue(e.Value, e.Scaling, star, caster, current)
		res := w.DealDamage(caster, current, damage, e.DamageType, false, false, true)
		total += res.Final
		if !touched[current.ID] {
			touched[current.ID] = true
			affected = append(affected, current.ID)
		}
	}

	return Result{
		EffectType: "projectile_swarm",
		Success:    total > 0,
		Value:      total,
		TargetIDs:  affected,
		Details:    map[string]any{"count": e.Count, "jumps": e.Jumps},
	}
}

func nearestEnemy(caster *units.Unit, w World) *units.Unit {
	enemies := w.Enemies(caster.Team)
	if len(enemies) == 0 {
		return nil
	}
	sortByDistanceTo(caster, enemies)
	return enemies[0]
}

// --- execute ---

// ExecuteEffect kills the target outright when its HP fraction is at or
// below the threshold, bypassing resistances entirely.
type ExecuteEffect struct {
	Threshold StarValue
}

func parseExecute(rec Record) (Effect, error) {
	return &ExecuteEffect{Threshold: rec.star("threshold", 15)}, nil
}

func (e *ExecuteEffect) Type() string { return "execute" }

func (e *ExecuteEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	threshold := fractionOf(e.Threshold.At(star))
	hpPercent := target.Stats.HPPercent()

	executed := hpPercent <= threshold
	if executed {
		w.Kill(caster, target)
	}

	var targets []string
	if executed {
		targets = []string{target.ID}
	}
	return Result{
		EffectType: "execute",
		Success:    executed,
		Value:      threshold,
		TargetIDs:  targets,
		Details:    map[string]any{"threshold": threshold, "target_hp_percent": hpPercent},
	}
}

// --- burn ---

// BurnEffect applies true damage per second for a duration.
type BurnEffect struct {
	Value    StarValue
	Duration StarValue
	Scaling  string
}

func parseBurn(rec Record) (Effect, error) {
	return &BurnEffect{
		Value:    rec.star("value", 20),
		Duration: rec.star("duration", 90),
		Scaling:  rec.str("scaling", ""),
	}, nil
}

func (e *BurnEffect) Type() string { return "burn" }

func (e *BurnEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	dps := ScaledValue(e.Value, e.Scaling, star, caster, target)
	duration := int(e.Duration.At(star))

	target.AddBurn(dps, duration, caster.ID)

	return Result{
		EffectType: "burn",
		Success:    true,
		Value:      dps,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"dps": dps, "duration_ticks": duration},
	}
}

// --- dot ---

// DoTEffect applies typed periodic damage.
type DoTEffect struct {
	DamageType combat.DamageType
	Value      StarValue
	Duration   StarValue
	Interval   int
	Scaling    string
}

func parseDoT(rec Record) (Effect, error) {
	return &DoTEffect{
		DamageType: combat.ParseDamageType(rec.str("damage_type", "magical")),
		Value:      rec.star("value", 30),
		Duration:   rec.star("duration", 90),
		Interval:   rec.intval("interval", 30),
		Scaling:    rec.str("scaling", ""),
	}, nil
}

func (e *DoTEffect) Type() string { return "dot" }

func (e *DoTEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	perTick := ScaledValue(e.Value, e.Scaling, star, caster, target)
	duration := int(e.Duration.At(star))

	damageType := "magical"
	if e.DamageType == combat.Physical {
		damageType = "physical"
	}
	target.AddDoT(perTick, damageType, duration, e.Interval, caster.ID)

	return Result{
		EffectType: "dot",
		Success:    true,
		Value:      perTick,
		TargetIDs:  []string{target.ID},
		Details: map[string]any{
			"damage_type":     damageType,
			"damage_per_tick": perTick,
			"duration_ticks":  duration,
			"interval":        e.Interval,
		},
	}
}

// --- sunder / shred ---

// SunderEffect reduces the target's armor, flat or percent.
type SunderEffect struct {
	Value     StarValue
	Duration  StarValue
	IsPercent bool
}

func parseSunder(rec Record) (Effect, error) {
	return &SunderEffect{
		Value:     rec.star("value", 20),
		Duration:  rec.star("duration", 120),
		IsPercent: rec.boolean("is_percent", false),
	}, nil
}

func (e *SunderEffect) Type() string { return "sunder" }

func (e *SunderEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	amount := e.Value.At(star)
	if e.IsPercent {
		amount = fractionOf(amount)
	}
	duration := int(e.Duration.At(star))

	target.AddArmorShred(amount, duration, e.IsPercent)

	return Result{
		EffectType: "sunder",
		Success:    true,
		Value:      amount,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"duration_ticks": duration, "is_percent": e.IsPercent},
	}
}

// ShredEffect reduces the target's magic resist, flat or percent.
type ShredEffect struct {
	Value     StarValue
	Duration  StarValue
	IsPercent bool
}

func parseShred(rec Record) (Effect, error) {
	return &ShredEffect{
		Value:     rec.star("value", 20),
		Duration:  rec.star("duration", 120),
		IsPercent: rec.boolean("is_percent", false),
	}, nil
}

func (e *ShredEffect) Type() string { return "shred" }

func (e *ShredEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	amount := e.Value.At(star)
	if e.IsPercent {
		amount = fractionOf(amount)
	}
	duration := int(e.Duration.At(star))

	target.AddMRShred(amount, duration, e.IsPercent)

	return Result{
		EffectType: "shred",
		Success:    true,
		Value:      amount,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"duration_ticks": duration, "is_percent": e.IsPercent},
	}
}
