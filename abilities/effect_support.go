package abilities

import (
	"github.com/nicoberrocal/arenaCore/units"
)

func init() {
	register("heal", parseHeal)
	register("heal_over_time", parseHealOverTime)
	register("shield", parseShield)
	register("shield_self", parseShieldSelf)
	register("wound", parseWound)
	register("cleanse", parseCleanse)
	register("buff", parseBuff)
	register("buff_team", parseBuffTeam)
	register("mana_grant", parseManaGrant)
	register("mana_reave", parseManaReave)
	register("decaying_buff", parseDecayingBuff)
	register("stacking_buff", parseStackingBuff)
	register("permanent_stack", parsePermanentStack)
}

// pickAlly resolves the self/target switch used by support effects.
func pickAlly(caster, target *units.Unit, who string) *units.Unit {
	if who == "self" {
		return caster
	}
	return target
}

// --- heal ---

// HealEffect restores HP, reduced by any wound on the recipient.
type HealEffect struct {
	Value   StarValue
	Scaling string
	Target  string
}

func parseHeal(rec Record) (Effect, error) {
	return &HealEffect{
		Value:   rec.star("value", 100),
		Scaling: rec.str("scaling", ""),
		Target:  rec.str("target", "target"),
	}, nil
}

func (e *HealEffect) Type() string { return "heal" }

func (e *HealEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recipient := pickAlly(caster, target, e.Target)
	amount := ScaledValue(e.Value, e.Scaling, star, caster, recipient)

	actual := w.Heal(caster, recipient, amount)

	return Result{
		EffectType: "heal",
		Success:    true,
		Value:      actual,
		TargetIDs:  []string{recipient.ID},
		Details:    map[string]any{"intended": amount},
	}
}

// --- heal_over_time ---

// HealOverTimeEffect schedules a periodic heal, optionally adding a
// fraction of the recipient's max HP per tick.
type HealOverTimeEffect struct {
	Value           StarValue
	Scaling         string
	PercentMaxHP    float64
	Duration        int
	TickRate        int
	Target          string
}

func parseHealOverTime(rec Record) (Effect, error) {
	return &HealOverTimeEffect{
		Value:        rec.star("value", 100),
		Scaling:      rec.str("scaling", "ap"),
		PercentMaxHP: rec.float("value_percent_max_hp", 0),
		Duration:     rec.intval("duration", 150),
		TickRate:     rec.intval("tick_rate", 30),
		Target:       rec.str("target", "target"),
	}, nil
}

func (e *HealOverTimeEffect) Type() string { return "heal_over_time" }

func (e *HealOverTimeEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recipient := pickAlly(caster, target, e.Target)

	recipient.HoTs = append(recipient.HoTs, &units.HealOverTime{
		Value:         e.Value.At(star),
		Scaling:       e.Scaling,
		PercentMaxHP:  e.PercentMaxHP,
		RemainingTick: e.Duration,
		TickRate:      e.TickRate,
		NextTick:      w.CurrentTick() + e.TickRate,
		CasterID:      caster.ID,
	})

	return Result{
		EffectType: "heal_over_time",
		Success:    true,
		Value:      e.Value.At(star),
		TargetIDs:  []string{recipient.ID},
		Details:    map[string]any{"duration_ticks": e.Duration, "tick_rate": e.TickRate},
	}
}

// --- shield / shield_self ---

// ShieldEffect grants a temporary HP pool; a bigger shield replaces a
// smaller one, they never stack.
type ShieldEffect struct {
	Value    StarValue
	Duration StarValue
	Scaling  string
	Target   string
	tag      string
}

func parseShield(rec Record) (Effect, error) {
	return &ShieldEffect{
		Value:    rec.star("value", 100),
		Duration: rec.star("duration", 90),
		Scaling:  rec.str("scaling", ""),
		Target:   rec.str("target", "target"),
		tag:      "shield",
	}, nil
}

func parseShieldSelf(rec Record) (Effect, error) {
	return &ShieldEffect{
		Value:    rec.star("value", 300),
		Duration: rec.star("duration", 120),
		Scaling:  rec.str("scaling", "ap"),
		Target:   "self",
		tag:      "shield_self",
	}, nil
}

func (e *ShieldEffect) Type() string { return e.tag }

func (e *ShieldEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recipient := pickAlly(caster, target, e.Target)

	amount := ScaledValue(e.Value, e.Scaling, star, caster, recipient)
	duration := int(e.Duration.At(star))

	recipient.AddShield(amount, duration)

	return Result{
		EffectType: e.tag,
		Success:    true,
		Value:      amount,
		TargetIDs:  []string{recipient.ID},
		Details:    map[string]any{"duration_ticks": duration},
	}
}

// --- wound ---

// WoundEffect reduces healing received by the target.
type WoundEffect struct {
	Value    StarValue
	Duration StarValue
}

func parseWound(rec Record) (Effect, error) {
	return &WoundEffect{
		Value:    rec.star("value", 50),
		Duration: rec.star("duration", 150),
	}, nil
}

func (e *WoundEffect) Type() string { return "wound" }

func (e *WoundEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	fraction := fractionOf(e.Value.At(star))
	duration := int(e.Duration.At(star))

	target.AddWound(fraction, duration)

	return Result{
		EffectType: "wound",
		Success:    true,
		Value:      fraction,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"heal_reduction": fraction, "duration_ticks": duration},
	}
}

// --- cleanse ---

// CleanseEffect strips every debuff from the recipient.
type CleanseEffect struct {
	Target string
}

func parseCleanse(rec Record) (Effect, error) {
	return &CleanseEffect{Target: rec.str("target", "target")}, nil
}

func (e *CleanseEffect) Type() string { return "cleanse" }

func (e *CleanseEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recipient := pickAlly(caster, target, e.Target)
	removed := recipient.Cleanse()

	return Result{
		EffectType: "cleanse",
		Success:    removed > 0,
		Value:      float64(removed),
		TargetIDs:  []string{recipient.ID},
		Details:    map[string]any{"debuffs_removed": removed},
	}
}

// --- buff / buff_team ---

// BuffEffect adds a timed flat or percent stat modifier, tracked in the
// recipient's modifier stack and removed exactly when the duration lapses.
type BuffEffect struct {
	Stat      units.Stat
	Value     StarValue
	Duration  StarValue
	IsPercent bool
	Target    string
}

func parseBuff(rec Record) (Effect, error) {
	return &BuffEffect{
		Stat:      units.Stat(rec.str("stat", "attack_damage")),
		Value:     rec.star("value", 20),
		Duration:  rec.star("duration", 120),
		IsPercent: rec.boolean("is_percent", false),
		Target:    rec.str("target", "self"),
	}, nil
}

func (e *BuffEffect) Type() string { return "buff" }

func (e *BuffEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recipient := pickAlly(caster, target, e.Target)

	value := e.Value.At(star)
	if e.IsPercent {
		value = fractionOf(value)
	}
	duration := int(e.Duration.At(star))

	recipient.Modifiers.Add(units.ModifierLayer{
		Source:    units.SourceAbility,
		SourceID:  "buff_" + string(e.Stat),
		Stat:      e.Stat,
		Value:     value,
		IsPercent: e.IsPercent,
		AppliedAt: w.CurrentTick(),
		ExpiresAt: w.CurrentTick() + duration,
	}, &recipient.Stats)

	return Result{
		EffectType: "buff",
		Success:    true,
		Value:      value,
		TargetIDs:  []string{recipient.ID},
		Details:    map[string]any{"stat": string(e.Stat), "is_percent": e.IsPercent, "duration_ticks": duration},
	}
}

// BuffTeamEffect grants the same timed modifier to every living ally.
type BuffTeamEffect struct {
	Stat      units.Stat
	Value     StarValue
	Duration  StarValue
	IsPercent bool
}

func parseBuffTeam(rec Record) (Effect, error) {
	return &BuffTeamEffect{
		Stat:      units.Stat(rec.str("stat", "attack_speed")),
		Value:     rec.star("value", 0.20),
		Duration:  rec.star("duration", 120),
		IsPercent: rec.boolean("is_percent", true),
	}, nil
}

func (e *BuffTeamEffect) Type() string { return "buff_team" }

func (e *BuffTeamEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	value := e.Value.At(star)
	if e.IsPercent {
		value = fractionOf(value)
	}
	duration := int(e.Duration.At(star))

	var affected []string
	for _, ally := range w.Allies(caster.Team) {
		ally.Modifiers.Add(units.ModifierLayer{
			Source:    units.SourceAbility,
			SourceID:  "buff_team_" + string(e.Stat),
			Stat:      e.Stat,
			Value:     value,
			IsPercent: e.IsPercent,
			AppliedAt: w.CurrentTick(),
			ExpiresAt: w.CurrentTick() + duration,
		}, &ally.Stats)
		affected = append(affected, ally.ID)
	}

	return Result{
		EffectType: "buff_team",
		Success:    len(affected) > 0,
		Value:      value,
		TargetIDs:  affected,
		Details:    map[string]any{"stat": string(e.Stat), "is_percent": e.IsPercent, "duration_ticks": duration},
	}
}

// --- mana_grant / mana_reave ---

// ManaGrantEffect gives the target mana immediately.
type ManaGrantEffect struct {
	Value StarValue
}

func parseManaGrant(rec Record) (Effect, error) {
	return &ManaGrantEffect{Value: rec.star("value", 20)}, nil
}

func (e *ManaGrantEffect) Type() string { return "mana_grant" }

func (e *ManaGrantEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	amount := e.Value.At(star)
	target.Stats.AddMana(amount)

	return Result{
		EffectType: "mana_grant",
		Success:    true,
		Value:      amount,
		TargetIDs:  []string{target.ID},
	}
}

// ManaReaveEffect raises the target's next cast threshold; the surcharge is
// consumed by that cast.
type ManaReaveEffect struct {
	Value StarValue
}

func parseManaReave(rec Record) (Effect, error) {
	return &ManaReaveEffect{Value: rec.star("value", 20)}, nil
}

func (e *ManaReaveEffect) Type() string { return "mana_reave" }

func (e *ManaReaveEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	amount := e.Value.At(star)
	target.ManaReave += amount

	return Result{
		EffectType: "mana_reave",
		Success:    true,
		Value:      amount,
		TargetIDs:  []string{target.ID},
		Details:    map[string]any{"mana_increase": amount},
	}
}

// --- decaying_buff ---

// DecayingBuffEffect grants an initial stat bonus that decays linearly to
// zero over its duration.
type DecayingBuffEffect struct {
	Stat      units.Stat
	Value     StarValue
	Duration  StarValue
	IsPercent bool
	Target    string
}

func parseDecayingBuff(rec Record) (Effect, error) {
	return &DecayingBuffEffect{
		Stat:      units.Stat(rec.str("stat", "attack_speed")),
		Value:     rec.star("value", 3.0),
		Duration:  rec.star("duration", 120),
		IsPercent: rec.boolean("is_percent", true),
		Target:    rec.str("target", "self"),
	}, nil
}

func (e *DecayingBuffEffect) Type() string { return "decaying_buff" }

func (e *DecayingBuffEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recipient := pickAlly(caster, target, e.Target)

	initial := e.Value.At(star)
	duration := int(e.Duration.At(star))

	buff := &units.DecayingBuff{
		Stat:          e.Stat,
		Initial:       initial,
		Current:       initial,
		RemainingTick: duration,
		TotalDuration: duration,
		IsPercent:     e.IsPercent,
	}
	recipient.DecayingBuffs = append(recipient.DecayingBuffs, buff)

	if e.IsPercent {
		recipient.Stats.AddPercent(e.Stat, initial)
	} else {
		recipient.Stats.AddFlat(e.Stat, initial)
	}

	return Result{
		EffectType: "decaying_buff",
		Success:    true,
		Value:      initial,
		TargetIDs:  []string{recipient.ID},
		Details:    map[string]any{"stat": string(e.Stat), "initial": initial, "duration_ticks": duration},
	}
}

// --- stacking_buff ---

// StackingBuffEffect installs (or advances) a stacking buff keyed by
// (stat, trigger). An on_cast trigger counts this very cast.
type StackingBuffEffect struct {
	Stat      units.Stat
	Value     StarValue
	Trigger   string
	Frequency int
	Permanent bool
	MaxStacks int
	Target    string
}

func parseStackingBuff(rec Record) (Effect, error) {
	return &StackingBuffEffect{
		Stat:      units.Stat(rec.str("stat", string(units.OnHitMagicDamage))),
		Value:     rec.star("value", 24),
		Trigger:   rec.str("trigger", "on_cast"),
		Frequency: rec.intval("frequency", 1),
		Permanent: rec.boolean("permanent", true),
		MaxStacks: rec.intval("max_stacks", 0),
		Target:    rec.str("target", "self"),
	}, nil
}

func (e *StackingBuffEffect) Type() string { return "stacking_buff" }

func (e *StackingBuffEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	recipient := pickAlly(caster, target, e.Target)

	buff := recipient.StackingBuffFor(e.Stat, e.Trigger, e.Value.At(star), e.Frequency, e.MaxStacks, e.Permanent)

	if e.Trigger == "on_cast" {
		buff.AddTrigger(&recipient.Stats)
	}

	return Result{
		EffectType: "stacking_buff",
		Success:    true,
		Value:      buff.Total,
		TargetIDs:  []string{recipient.ID},
		Details: map[string]any{
			"stat":    string(e.Stat),
			"stacks":  buff.Stacks,
			"trigger": e.Trigger,
		},
	}
}

// --- permanent_stack ---

// PermanentStackEffect adds a one-shot permanent stat gain, typically fired
// from an external trigger like a kill.
type PermanentStackEffect struct {
	Stat    units.Stat
	Trigger string
	Value   StarValue
}

func parsePermanentStack(rec Record) (Effect, error) {
	return &PermanentStackEffect{
		Stat:    units.Stat(rec.str("stat", "hp")),
		Trigger: rec.str("trigger", "on_kill"),
		Value:   rec.star("value", 20),
	}, nil
}

func (e *PermanentStackEffect) Type() string { return "permanent_stack" }

func (e *PermanentStackEffect) Apply(caster, target *units.Unit, star int, w World) Result {
	value := e.Value.At(star)
	total := caster.AddPermanentStack(e.Stat, value)

	return Result{
		EffectType: "permanent_stack",
		Success:    true,
		Value:      total,
		TargetIDs:  []string{caster.ID},
		Details:    map[string]any{"stat": string(e.Stat), "added": value, "trigger": e.Trigger},
	}
}
