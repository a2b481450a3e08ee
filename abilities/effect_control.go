package abilities

import (
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

func init() {
	register("stun", parseStun)
	register("slow", parseSlow)
	register("chill", parseChill)
	register("silence", parseSilence)
	register("disarm", parseDisarm)
	register("taunt", parseTaunt)
	register("knockback", parseKnockback)
	register("pull", parsePull)
	register("dash", parseDash)
}

// displace pushes a unit distance hexes along the normalised (dq, dr)
// direction. Off-grid or occupied destinations suppress the move.
func displace(w World, target *units.Unit, dq, dr, distance int) bool {
	length := intAbs(dq) + intAbs(dr)
	if length < 1 {
		length = 1
	}

	newPos := hex.Coord{
		Q: target.Position.Q + int(float64(dq)/float64(length)*float64(distance)),
		R: target.Position.R + int(float64(dr)/float64(length)*float64(distance)),
	}

	if !w.Grid().IsValid(newPos) || !w.Grid().IsWalkable(newPos) {
		return false
	}
	return w.MoveUnit(target, newPos)
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// --- stun ---

// StunEffect disables the target. A stun landing mid-cast cancels the cast.
type StunEffect struct {
	Duration StarValue
}

func parseStun(rec Record) (Effect, error) {
	return &StunEffect{Duration: rec.star("duration", 30)}, nil
}

func (e *StunEffect) Type() string { return "stun" }

func (e *StunEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	duration := int(e.Duration.At(star))
	target.State.ApplyStun(duration)

	return Result{
		EffectType: "stun",
		Success:    true,
		Value:      float64(duration),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"duration_ticks": duration},
	}
}

// --- slow / chill ---

// SlowEffect reduces the target's attack speed for a duration.
type SlowEffect struct {
	Value    StarValue
	Duration StarValue
	tag      string
}

func parseSlow(rec Record) (Effect, error) {
	return &SlowEffect{Value: rec.star("value", 30), Duration: rec.star("duration", 60), tag: "slow"}, nil
}

// chill is the TFT name for the same attack-speed reduction.
func parseChill(rec Record) (Effect, error) {
	return &SlowEffect{Value: rec.star("value", 0.20), Duration: rec.star("duration", 60), tag: "chill"}, nil
}

func (e *SlowEffect) Type() string { return e.tag }

func (e *SlowEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	fraction := fractionOf(e.Value.At(star))
	duration := int(e.Duration.At(star))

	target.AddSlow(fraction, duration)

	return Result{
		EffectType: e.tag,
		Success:    true,
		Value:      fraction,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"as_reduction": fraction, "duration_ticks": duration},
	}
}

// --- silence / disarm ---

// SilenceEffect blocks casting for a duration.
type SilenceEffect struct {
	Duration StarValue
}

func parseSilence(rec Record) (Effect, error) {
	return &SilenceEffect{Duration: rec.star("duration", 60)}, nil
}

func (e *SilenceEffect) Type() string { return "silence" }

func (e *SilenceEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	duration := int(e.Duration.At(star))
	target.AddSilence(duration)

	return Result{
		EffectType: "silence",
		Success:    true,
		Value:      float64(duration),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"duration_ticks": duration},
	}
}

// DisarmEffect blocks auto-attacks for a duration.
type DisarmEffect struct {
	Duration StarValue
}

func parseDisarm(rec Record) (Effect, error) {
	return &DisarmEffect{Duration: rec.star("duration", 60)}, nil
}

func (e *DisarmEffect) Type() string { return "disarm" }

func (e *DisarmEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	duration := int(e.Duration.At(star))
	target.AddDisarm(duration)

	return Result{
		EffectType: "disarm",
		Success:    true,
		Value:      float64(duration),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"duration_ticks": duration},
	}
}

// --- taunt ---

// TauntEffect forces every enemy within the radius to attack the caster for
// the duration.
type TauntEffect struct {
	Duration  int
	AoERadius int
}

func parseTaunt(rec Record) (Effect, error) {
	return &TauntEffect{
		Duration:  rec.intval("duration", 90),
		AoERadius: rec.intval("aoe_radius", 2),
	}, nil
}

func (e *TauntEffect) Type() string { return "taunt" }

func (e *TauntEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	enemies := w.EnemiesInRadius(caster.Position, e.AoERadius, caster.Team)

	var affected []string
	for _, enemy := range enemies {
		enemy.ApplyTaunt(caster.ID, e.Duration)
		affected = append(affected, enemy.ID)
	}

	return Result{
		EffectType: "taunt",
		Success:    len(affected) > 0,
		Value:      float64(len(affected)),
		TargetIDs:  affected,
		Details:    map[string]any{"duration_ticks": e.Duration, "radius": e.AoERadius},
	}
}

// --- knockback / pull ---

// KnockbackEffect pushes the target away from the caster, optionally gated
// by a range predicate, with a short follow-up stun. The stun applies even
// when terrain suppresses the push.
type KnockbackEffect struct {
	Distance     StarValue
	StunDuration StarValue
	Condition    string
}

func parseKnockback(rec Record) (Effect, error) {
	return &KnockbackEffect{
		Distance:     rec.star("distance", 2),
		StunDuration: rec.star("stun_duration", 15),
		Condition:    rec.str("condition", ""),
	}, nil
}

func (e *KnockbackEffect) Type() string { return "knockback" }

func (e *KnockbackEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	distance := int(e.Distance.At(star))
	stun := int(e.StunDuration.At(star))

	if e.Condition != "" && !checkCondition(caster, target, e.Condition) {
		return Result{
			EffectType: "knockback",
			Success:    false,
			TargetIDs:  []string{target.ID},
			Details:    map[string]any{"reason": "condition_not_met"},
		}
	}

	moved := displace(w, target,
		target.Position.Q-caster.Position.Q,
		target.Position.R-caster.Position.R,
		distance,
	)

	if stun > 0 {
		target.State.ApplyStun(stun)
	}

	return Result{
		EffectType: "knockback",
		Success:    moved,
		Value:      float64(distance),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"distance": distance, "moved": moved, "stun_duration": stun},
	}
}

// PullEffect drags the target toward the caster.
type PullEffect struct {
	Distance StarValue
}

func parsePull(rec Record) (Effect, error) {
	return &PullEffect{Distance: rec.star("distance", 2)}, nil
}

func (e *PullEffect) Type() string { return "pull" }

func (e *PullEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	distance := int(e.Distance.At(star))

	moved := displace(w, target,
		caster.Position.Q-target.Position.Q,
		caster.Position.R-target.Position.R,
		distance,
	)

	return Result{
		EffectType: "pull",
		Success:    moved,
		Value:      float64(distance),
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"distance": distance, "moved": moved},
	}
}

// --- dash ---

// DashEffect relocates the caster toward or away from a target chosen by a
// sub-selector (current / closest / farthest / lowest_hp).
type DashEffect struct {
	Distance   StarValue
	Direction  string
	TargetType string
}

func parseDash(rec Record) (Effect, error) {
	return &DashEffect{
		Distance:   rec.star("distance", 2),
		Direction:  rec.str("direction", "to_target"),
		TargetType: rec.str("target_type", "current"),
	}, nil
}

func (e *DashEffect) Type() string { return "dash" }

func (e *DashEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	distance := int(e.Distance.At(star))

	actual := e.pickTarget(caster, target, w)
	if actual == nil {
		return Result{EffectType: "dash", Success: false, Details: map[string]any{"reason": "no_valid_target"}}
	}

	moved := false
	if e.Direction == "away_from_target" {
		moved = displace(w, caster,
			caster.Position.Q-actual.Position.Q,
			caster.Position.R-actual.Position.R,
			distance,
		)
	} else {
		moved = e.dashToward(caster, actual, distance, w)
		if moved {
			caster.SetTarget(actual)
		}
	}

	return Result{
		EffectType: "dash",
		Success:    moved,
		Value:      float64(distance),
		TargetIDs:  []string{caster.ID},
		Details: map[string]any{
			"distance":  distance,
			"direction": e.Direction,
			"target_id": actual.ID,
			"moved":     moved,
		},
	}
}

// dashToward lands as close to the dash target as the path and occupancy
// allow: positions on the caster-to-target ray first, then the target's free
// neighbours.
func (e *DashEffect) dashToward(caster, target *units.Unit, distance int, w World) bool {
	dq := target.Position.Q - caster.Position.Q
	dr := target.Position.R - caster.Position.R
	length := intAbs(dq) + intAbs(dr)
	if length < 1 {
		length = 1
	}

	var best *hex.Coord
	bestDist := 1 << 30
	for d := distance; d >= 1; d-- {
		candidate := hex.Coord{
			Q: caster.Position.Q + int(float64(dq)/float64(length)*float64(d)),
			R: caster.Position.R + int(float64(dr)/float64(length)*float64(d)),
		}
		if !w.Grid().IsValid(candidate) || !w.Grid().IsWalkable(candidate) {
			continue
		}
		toTarget := candidate.Distance(target.Position)
		if toTarget >= 1 && toTarget < bestDist {
			c := candidate
			best = &c
			bestDist = toTarget
		}
	}

	if best == nil {
		for _, n := range target.Position.Neighbors() {
			if w.Grid().IsValid(n) && w.Grid().IsWalkable(n) {
				c := n
				best = &c
				break
			}
		}
	}

	if best == nil {
		return false
	}
	return w.MoveUnit(caster, *best)
}

func (e *DashEffect) pickTarget(caster, current *units.Unit, w World) *units.Unit {
	if e.TargetType == "current" {
		return current
	}

	enemies := w.Enemies(caster.Team)
	if len(enemies) == 0 {
		return nil
	}
	sortByDistanceTo(caster, enemies)

	switch e.TargetType {
	case "closest":
		return enemies[0]
	case "farthest":
		return enemies[len(enemies)-1]
	case "lowest_hp":
		best := enemies[0]
		for _, u := range enemies[1:] {
			if u.Stats.CurrentHP < best.Stats.CurrentHP {
				best = u
			}
		}
		return best
	case "lowest_hp_percent":
		best := enemies[0]
		for _, u := range enemies[1:] {
			if u.Stats.HPPercent() < best.Stats.HPPercent() {
				best = u
			}
		}
		return best
	}
	return current
}
