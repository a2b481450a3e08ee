package units

import (
	"fmt"

	"github.com/nicoberrocal/arenaCore/hex"
)

// ManaRule holds the coefficients of the TFT damage-to-mana formula.
type ManaRule struct {
	PreMitigationPercent  float64 `bson:"preMitigationPercent" yaml:"pre_mitigation_percent" json:"preMitigationPercent"`
	PostMitigationPercent float64 `bson:"postMitigationPercent" yaml:"post_mitigation_percent" json:"postMitigationPercent"`
	Cap                   float64 `bson:"cap" yaml:"cap" json:"cap"`
}

// DefaultManaRule returns the standard 1% pre + 3% post, capped at 42.5.
func DefaultManaRule() ManaRule {
	return ManaRule{PreMitigationPercent: 0.01, PostMitigationPercent: 0.03, Cap: 42.5}
}

// Unit is a durable battlefield entity. The world owns every unit for the
// whole run; death flips the state machine to Dead and frees the grid cell
// but the unit stays addressable by id so the trace can reference it.
//
// Target references are weak: TargetID plus a pointer snapshot that every
// consumer re-validates with IsAlive before use.
type Unit struct {
	ID     string `bson:"id" json:"id"`
	BaseID string `bson:"baseId" json:"baseId"`
	Name   string `bson:"name" json:"name"`
	Team   int    `bson:"team" json:"team"`
	Star   int    `bson:"star" json:"star"`

	Position hex.Coord     `bson:"position" json:"position"`
	Stats    Stats         `bson:"stats" json:"stats"`
	State    *StateMachine `bson:"state" json:"state"`

	Target   *Unit  `bson:"-" json:"-"`
	TargetID string `bson:"targetId,omitempty" json:"targetId,omitempty"`

	Abilities []string `bson:"abilities,omitempty" json:"abilities,omitempty"`
	Items     []string `bson:"items,omitempty" json:"items,omitempty"`
	Traits    []string `bson:"traits,omitempty" json:"traits,omitempty"`

	AttackCooldown float64 `bson:"attackCooldown" json:"attackCooldown"`
	ManaPerAttack  float64 `bson:"manaPerAttack" json:"manaPerAttack"`
	ManaClass      string  `bson:"manaClass,omitempty" json:"manaClass,omitempty"`

	// Tracked temporary stat modifiers (buff / buff_team / trait / item
	// layers) with tick expiry.
	Modifiers ModifierStack `bson:"modifiers" json:"modifiers"`

	// Status bag.
	Shield        Shield          `bson:"shield" json:"shield"`
	Burns         []Burn          `bson:"burns,omitempty" json:"burns,omitempty"`
	DoTs          []DoT           `bson:"dots,omitempty" json:"dots,omitempty"`
	Slow          TimedFraction   `bson:"slow" json:"slow"`
	Wound         TimedFraction   `bson:"wound" json:"wound"`
	ArmorShred    ResistShred     `bson:"armorShred" json:"armorShred"`
	MRShred       ResistShred     `bson:"mrShred" json:"mrShred"`
	SilenceTicks  int             `bson:"silenceTicks,omitempty" json:"silenceTicks,omitempty"`
	DisarmTicks   int             `bson:"disarmTicks,omitempty" json:"disarmTicks,omitempty"`
	TauntTicks    int             `bson:"tauntTicks,omitempty" json:"tauntTicks,omitempty"`
	ForceTargetID string          `bson:"forceTargetId,omitempty" json:"forceTargetId,omitempty"`
	StackingBuffs map[string]*StackingBuff `bson:"stackingBuffs,omitempty" json:"stackingBuffs,omitempty"`
	DecayingBuffs []*DecayingBuff `bson:"decayingBuffs,omitempty" json:"decayingBuffs,omitempty"`

	// Battle-long outgoing/incoming damage fractions granted by traits.
	DamageAmp       float64 `bson:"damageAmp,omitempty" json:"damageAmp,omitempty"`
	DamageReduction float64 `bson:"damageReduction,omitempty" json:"damageReduction,omitempty"`

	// Runtime scratch, reset at battle start.
	PendingManaOverflow float64           `bson:"pendingManaOverflow,omitempty" json:"pendingManaOverflow,omitempty"`
	ManaReave           float64           `bson:"manaReave,omitempty" json:"manaReave,omitempty"`
	Empowered           *EmpoweredAttacks `bson:"empowered,omitempty" json:"empowered,omitempty"`
	IntervalEffects     []*IntervalEffect `bson:"intervalEffects,omitempty" json:"intervalEffects,omitempty"`
	HoTs                []*HealOverTime   `bson:"hots,omitempty" json:"hots,omitempty"`
	Transform           *TransformOnHit   `bson:"transform,omitempty" json:"transform,omitempty"`
	AccumulatorCharges  int               `bson:"accumulatorCharges,omitempty" json:"accumulatorCharges,omitempty"`
	PermanentStacks     map[Stat]float64  `bson:"permanentStacks,omitempty" json:"permanentStacks,omitempty"`
	StackingItemStats   map[Stat]float64  `bson:"stackingItemStats,omitempty" json:"stackingItemStats,omitempty"`
	stackingItemLimits  map[Stat]float64
}

// New constructs a unit at a position with stats already merged from the
// template and defaults. Star scaling is applied here.
func New(id, baseID, name string, team, star int, pos hex.Coord, stats Stats, starMods map[int]StarModifiers) *Unit {
	u := &Unit{
		ID:            id,
		BaseID:        baseID,
		Name:          name,
		Team:          team,
		Star:          star,
		Position:      pos,
		Stats:         stats,
		State:         NewStateMachine(),
		ManaPerAttack: 10,
		StackingBuffs: make(map[string]*StackingBuff),
	}
	u.Stats.ApplyStarLevel(star, starMods)
	u.Stats.ResetForCombat()
	return u
}

// OccupantID satisfies hex.Occupant.
func (u *Unit) OccupantID() string {
	return u.ID
}

// IsAlive reports whether both HP and the state machine agree the unit
// lives.
func (u *Unit) IsAlive() bool {
	return u.Stats.IsAlive() && u.State.IsAlive()
}

// IsEnemy reports whether other fights for the opposing team.
func (u *Unit) IsEnemy(other *Unit) bool {
	return u.Team != other.Team
}

// IsAlly reports whether other is a distinct unit on the same team.
func (u *Unit) IsAlly(other *Unit) bool {
	return u.Team == other.Team && u.ID != other.ID
}

// Die zeroes HP, moves the state machine to Dead and drops the target.
func (u *Unit) Die() {
	u.Stats.CurrentHP = 0
	u.State.Die()
	u.ClearTarget()
}

// ResetForCombat restores HP/mana, clears the state machine, the status bag
// and every piece of runtime scratch. Called once before tick 0.
func (u *Unit) ResetForCombat() {
	u.Modifiers.Clear(&u.Stats)
	u.Stats.ResetForCombat()
	u.State.Reset()
	u.ClearTarget()
	u.AttackCooldown = 0

	u.Shield = Shield{}
	u.Burns = nil
	u.DoTs = nil
	u.Slow = TimedFraction{}
	u.Wound = TimedFraction{}
	u.ArmorShred = ResistShred{}
	u.MRShred = ResistShred{}
	u.SilenceTicks = 0
	u.DisarmTicks = 0
	u.TauntTicks = 0
	u.ForceTargetID = ""
	u.StackingBuffs = make(map[string]*StackingBuff)
	u.DecayingBuffs = nil

	u.DamageAmp = 0
	u.DamageReduction = 0
	u.PendingManaOverflow = 0
	u.ManaReave = 0
	u.Empowered = nil
	u.IntervalEffects = nil
	u.HoTs = nil
	u.Transform = nil
	u.AccumulatorCharges = 0
	u.PermanentStacks = nil
	u.StackingItemStats = nil
	u.stackingItemLimits = nil
}

// --- Targeting ---

// SetTarget records a weak reference to the new target.
func (u *Unit) SetTarget(target *Unit) {
	u.Target = target
	if target != nil {
		u.TargetID = target.ID
	} else {
		u.TargetID = ""
	}
}

// ClearTarget drops the target reference.
func (u *Unit) ClearTarget() {
	u.Target = nil
	u.TargetID = ""
}

// HasValidTarget reports whether the referenced target is still alive.
func (u *Unit) HasValidTarget() bool {
	return u.Target != nil && u.Target.IsAlive()
}

// --- Combat accessors ---

// AttackRange returns the unit's attack range in hexes. Empowered attacks
// with infinite range override it.
func (u *Unit) AttackRange() int {
	if u.Empowered != nil && u.Empowered.Remaining > 0 && u.Empowered.InfiniteRange {
		return 999
	}
	return u.Stats.AttackRange()
}

// InAttackRange reports whether the target sits within attack range.
func (u *Unit) InAttackRange(target *Unit) bool {
	return u.Position.Distance(target.Position) <= u.AttackRange()
}

// EffectiveAttackSpeed applies the active slow on top of the stat value.
func (u *Unit) EffectiveAttackSpeed() float64 {
	speed := u.Stats.AttackSpeed()
	if u.Slow.RemainingTicks > 0 {
		speed *= 1 - u.Slow.Fraction
	}
	if speed < attackSpeedFloor {
		speed = attackSpeedFloor
	}
	return speed
}

// EffectiveArmor applies the active armor shred. May go negative, which the
// damage formula treats as amplification.
func (u *Unit) EffectiveArmor() float64 {
	armor := u.Stats.Armor()
	if u.ArmorShred.RemainingTicks > 0 {
		if u.ArmorShred.IsPercent {
			armor *= 1 - u.ArmorShred.Amount
		} else {
			armor -= u.ArmorShred.Amount
		}
	}
	return armor
}

// EffectiveMagicResist applies the active MR shred.
func (u *Unit) EffectiveMagicResist() float64 {
	mr := u.Stats.MagicResist()
	if u.MRShred.RemainingTicks > 0 {
		if u.MRShred.IsPercent {
			mr *= 1 - u.MRShred.Amount
		} else {
			mr -= u.MRShred.Amount
		}
	}
	return mr
}

// AttackCooldownTicks computes the gap between auto-attacks at the current
// (slow-adjusted) attack speed.
func (u *Unit) AttackCooldownTicks(ticksPerSecond int) float64 {
	speed := u.EffectiveAttackSpeed()
	return float64(ticksPerSecond) / speed
}

// StartAttackCooldown arms the cooldown after a strike.
func (u *Unit) StartAttackCooldown(ticksPerSecond int) {
	u.AttackCooldown = u.AttackCooldownTicks(ticksPerSecond)
}

// TickCooldowns decrements the attack cooldown one tick.
func (u *Unit) TickCooldowns() {
	if u.AttackCooldown > 0 {
		u.AttackCooldown--
	}
}

// IsSilenced reports whether casting is blocked.
func (u *Unit) IsSilenced() bool {
	return u.SilenceTicks > 0
}

// IsDisarmed reports whether auto-attacks are blocked.
func (u *Unit) IsDisarmed() bool {
	return u.DisarmTicks > 0
}

// --- Mana ---

// IsManaLocked reports whether mana gain is blocked (during and possibly
// after a cast).
func (u *Unit) IsManaLocked() bool {
	return u.State.IsManaLocked()
}

// GainManaOnAttack grants the per-attack mana, scaled by the class
// multiplier. Overflow above max accumulates for the next cast. Returns 0
// while mana-locked.
func (u *Unit) GainManaOnAttack(classMultiplier float64) float64 {
	if u.IsManaLocked() {
		return 0
	}
	gain := u.ManaPerAttack * classMultiplier
	u.PendingManaOverflow += u.Stats.AddMana(gain)
	return gain
}

// GainManaOnDamage grants mana for damage taken via the TFT rule:
// min(cap, pre*preCoef + post*postCoef), class-scaled. Returns 0 while
// mana-locked.
func (u *Unit) GainManaOnDamage(preMitigation, postMitigation float64, rule ManaRule, classMultiplier float64) float64 {
	if u.IsManaLocked() {
		return 0
	}

	gain := preMitigation*rule.PreMitigationPercent + postMitigation*rule.PostMitigationPercent
	if gain > rule.Cap {
		gain = rule.Cap
	}
	gain *= classMultiplier

	u.PendingManaOverflow += u.Stats.AddMana(gain)
	return gain
}

// GainManaPassive grants the per-tick share of a class's passive regen.
func (u *Unit) GainManaPassive(manaPerSecond float64, ticksPerSecond int) float64 {
	if u.IsManaLocked() || manaPerSecond <= 0 {
		return 0
	}
	gain := manaPerSecond / float64(ticksPerSecond)
	u.PendingManaOverflow += u.Stats.AddMana(gain)
	return gain
}

// CastThreshold is the mana needed before the next cast: max mana plus any
// outstanding mana reave.
func (u *Unit) CastThreshold() float64 {
	return u.Stats.MaxMana() + u.ManaReave
}

// CanCastAbility reports whether the unit has an ability, is not silenced
// and has reached its (possibly reaved) cast threshold.
func (u *Unit) CanCastAbility() bool {
	return len(u.Abilities) > 0 && !u.IsSilenced() && u.Stats.CurrentMana >= u.CastThreshold()
}

// ConsumeManaForCast spends the cast: current mana drops to the accumulated
// overflow, the overflow clears, and any mana reave is consumed. Returns the
// carried-over mana.
func (u *Unit) ConsumeManaForCast() float64 {
	overflow := u.Stats.CurrentMana - u.Stats.MaxMana()
	if overflow < 0 {
		overflow = 0
	}
	overflow += u.PendingManaOverflow

	u.Stats.CurrentMana = overflow
	u.PendingManaOverflow = 0
	u.ManaReave = 0
	return overflow
}

// --- Damage intake and healing ---

// AbsorbDamage routes post-mitigation damage through the shield pool first,
// then HP. Returns the HP actually lost.
func (u *Unit) AbsorbDamage(amount float64) float64 {
	if amount <= 0 {
		return 0
	}

	if u.Shield.RemainingTicks > 0 && u.Shield.HP > 0 {
		if u.Shield.HP >= amount {
			u.Shield.HP -= amount
			return 0
		}
		amount -= u.Shield.HP
		u.Shield.HP = 0
	}

	return u.Stats.TakeDamage(amount)
}

// ReceiveHeal applies the active wound reduction and heals up to max HP.
// Returns the HP actually restored.
func (u *Unit) ReceiveHeal(amount float64) float64 {
	if u.Wound.RemainingTicks > 0 {
		amount *= 1 - u.Wound.Fraction
	}
	return u.Stats.Heal(amount)
}

// --- Status application ---

// AddShield sets the shield pool, keeping the larger of old and new, and
// extends the expiry likewise.
func (u *Unit) AddShield(amount float64, duration int) {
	if amount > u.Shield.HP {
		u.Shield.HP = amount
	}
	if duration > u.Shield.RemainingTicks {
		u.Shield.RemainingTicks = duration
	}
}

// AddBurn appends a burn entry.
func (u *Unit) AddBurn(dps float64, duration int, sourceID string) {
	u.Burns = append(u.Burns, Burn{DPS: dps, RemainingTicks: duration, SourceID: sourceID})
}

// AddDoT appends a typed damage-over-time entry.
func (u *Unit) AddDoT(damage float64, damageType string, duration, interval int, sourceID string) {
	u.DoTs = append(u.DoTs, DoT{
		DamagePerTick:  damage,
		DamageType:     damageType,
		RemainingTicks: duration,
		Interval:       interval,
		NextTick:       interval,
		SourceID:       sourceID,
	})
}

// AddSlow refreshes the attack-speed slow to the max of old and new.
func (u *Unit) AddSlow(fraction float64, duration int) {
	if fraction > u.Slow.Fraction {
		u.Slow.Fraction = fraction
	}
	if duration > u.Slow.RemainingTicks {
		u.Slow.RemainingTicks = duration
	}
}

// AddWound refreshes the healing reduction to the max of old and new.
func (u *Unit) AddWound(fraction float64, duration int) {
	if fraction > u.Wound.Fraction {
		u.Wound.Fraction = fraction
	}
	if duration > u.Wound.RemainingTicks {
		u.Wound.RemainingTicks = duration
	}
}

// AddArmorShred refreshes the armor reduction to the max of old and new.
func (u *Unit) AddArmorShred(amount float64, duration int, isPercent bool) {
	if amount > u.ArmorShred.Amount || u.ArmorShred.RemainingTicks <= 0 {
		u.ArmorShred.Amount = amount
		u.ArmorShred.IsPercent = isPercent
	}
	if duration > u.ArmorShred.RemainingTicks {
		u.ArmorShred.RemainingTicks = duration
	}
}

// AddMRShred refreshes the magic-resist reduction to the max of old and new.
func (u *Unit) AddMRShred(amount float64, duration int, isPercent bool) {
	if amount > u.MRShred.Amount || u.MRShred.RemainingTicks <= 0 {
		u.MRShred.Amount = amount
		u.MRShred.IsPercent = isPercent
	}
	if duration > u.MRShred.RemainingTicks {
		u.MRShred.RemainingTicks = duration
	}
}

// AddSilence refreshes the silence duration.
func (u *Unit) AddSilence(duration int) {
	if duration > u.SilenceTicks {
		u.SilenceTicks = duration
	}
}

// AddDisarm refreshes the disarm duration.
func (u *Unit) AddDisarm(duration int) {
	if duration > u.DisarmTicks {
		u.DisarmTicks = duration
	}
}

// ApplyTaunt forces this unit to attack the taunter for the duration.
func (u *Unit) ApplyTaunt(taunterID string, duration int) {
	u.ForceTargetID = taunterID
	if duration > u.TauntTicks {
		u.TauntTicks = duration
	}
}

// StackingBuffFor returns the stacking buff keyed by (stat, trigger),
// creating it from the template values when absent.
func (u *Unit) StackingBuffFor(stat Stat, trigger string, valuePerStack float64, frequency, maxStacks int, permanent bool) *StackingBuff {
	key := fmt.Sprintf("%s_%s", stat, trigger)
	if b, ok := u.StackingBuffs[key]; ok {
		return b
	}

	freq := frequency
	if freq <= 0 {
		freq = 1
	}
	b := &StackingBuff{
		Stat:          stat,
		ValuePerStack: valuePerStack,
		Trigger:       trigger,
		Frequency:     freq,
		MaxStacks:     maxStacks,
		Permanent:     permanent,
	}
	u.StackingBuffs[key] = b
	return b
}

// TriggerStackingBuffs counts one occurrence of the trigger on every
// matching stacking buff and returns how many stacks were added.
func (u *Unit) TriggerStackingBuffs(trigger string) int {
	added := 0
	for _, b := range u.StackingBuffs {
		if b.Trigger != trigger {
			continue
		}
		if b.AddTrigger(&u.Stats) {
			added++
		}
	}
	return added
}

// OnHitBonusMagicDamage returns the accumulated on-hit magic damage from
// stacking buffs.
func (u *Unit) OnHitBonusMagicDamage() float64 {
	total := 0.0
	for _, b := range u.StackingBuffs {
		if b.Stat == OnHitMagicDamage {
			total += b.Total
		}
	}
	return total
}

// AddPermanentStack records a permanent stat gain and writes it straight
// into the stats.
func (u *Unit) AddPermanentStack(stat Stat, value float64) float64 {
	if u.PermanentStacks == nil {
		u.PermanentStacks = make(map[Stat]float64)
	}
	u.PermanentStacks[stat] += value
	u.Stats.AddFlat(stat, value)
	return u.PermanentStacks[stat]
}

// AddStackingItemStat accumulates an item stacking stat up to its cap.
// Returns false once the cap is reached.
func (u *Unit) AddStackingItemStat(stat Stat, value, limit float64) bool {
	if u.StackingItemStats == nil {
		u.StackingItemStats = make(map[Stat]float64)
		u.stackingItemLimits = make(map[Stat]float64)
	}
	if _, ok := u.stackingItemLimits[stat]; !ok {
		u.stackingItemLimits[stat] = limit
	}

	current := u.StackingItemStats[stat]
	cap := u.stackingItemLimits[stat]
	if current >= cap {
		return false
	}

	add := value
	if current+add > cap {
		add = cap - current
	}
	u.StackingItemStats[stat] = current + add
	u.Stats.AddFlat(stat, add)
	return true
}

// Cleanse removes every debuff: wound, slow, shreds, burns, DoTs, silence
// and disarm. Returns how many conditions were stripped.
func (u *Unit) Cleanse() int {
	removed := 0

	if u.Wound.Fraction > 0 {
		u.Wound = TimedFraction{}
		removed++
	}
	if u.Slow.Fraction > 0 {
		u.Slow = TimedFraction{}
		removed++
	}
	if u.ArmorShred.Amount > 0 {
		u.ArmorShred = ResistShred{}
		removed++
	}
	if u.MRShred.Amount > 0 {
		u.MRShred = ResistShred{}
		removed++
	}
	removed += len(u.Burns)
	u.Burns = nil
	removed += len(u.DoTs)
	u.DoTs = nil
	if u.SilenceTicks > 0 {
		u.SilenceTicks = 0
		removed++
	}
	if u.DisarmTicks > 0 {
		u.DisarmTicks = 0
		removed++
	}
	return removed
}

// TickStatuses advances every timed condition one tick: expiry countdowns
// for shield/slow/wound/shreds/silence/disarm, decaying buffs, and the
// tracked modifier layers. It returns the damage owed by burns and DoTs,
// split by type, for the kernel to mitigate and apply.
func (u *Unit) TickStatuses(now, ticksPerSecond int) (StatusDamage, []ModifierLayer) {
	var damage StatusDamage

	if u.Shield.RemainingTicks > 0 {
		u.Shield.RemainingTicks--
		if u.Shield.RemainingTicks <= 0 {
			u.Shield.HP = 0
		}
	}
	if u.Wound.RemainingTicks > 0 {
		u.Wound.RemainingTicks--
		if u.Wound.RemainingTicks <= 0 {
			u.Wound.Fraction = 0
		}
	}
	if u.Slow.RemainingTicks > 0 {
		u.Slow.RemainingTicks--
		if u.Slow.RemainingTicks <= 0 {
			u.Slow.Fraction = 0
		}
	}
	if u.ArmorShred.RemainingTicks > 0 {
		u.ArmorShred.RemainingTicks--
		if u.ArmorShred.RemainingTicks <= 0 {
			u.ArmorShred.Amount = 0
		}
	}
	if u.MRShred.RemainingTicks > 0 {
		u.MRShred.RemainingTicks--
		if u.MRShred.RemainingTicks <= 0 {
			u.MRShred.Amount = 0
		}
	}
	if u.SilenceTicks > 0 {
		u.SilenceTicks--
	}
	if u.DisarmTicks > 0 {
		u.DisarmTicks--
	}
	if u.TauntTicks > 0 {
		u.TauntTicks--
		if u.TauntTicks <= 0 {
			u.ForceTargetID = ""
		}
	}

	// Burns: true damage spread across the second.
	activeBurns := u.Burns[:0]
	for _, burn := range u.Burns {
		burn.RemainingTicks--
		damage.True += burn.DPS / float64(ticksPerSecond)
		damage.Sources = append(damage.Sources, burn.SourceID)
		if burn.RemainingTicks > 0 {
			activeBurns = append(activeBurns, burn)
		}
	}
	u.Burns = activeBurns

	// DoTs: typed damage on their interval.
	activeDoTs := u.DoTs[:0]
	for _, dot := range u.DoTs {
		dot.RemainingTicks--
		dot.NextTick--
		if dot.NextTick <= 0 {
			switch dot.DamageType {
			case "physical":
				damage.Physical += dot.DamagePerTick
			default:
				damage.Magical += dot.DamagePerTick
			}
			damage.Sources = append(damage.Sources, dot.SourceID)
			dot.NextTick = dot.Interval
		}
		if dot.RemainingTicks > 0 {
			activeDoTs = append(activeDoTs, dot)
		}
	}
	u.DoTs = activeDoTs

	// Decaying buffs retune every tick.
	activeDecay := u.DecayingBuffs[:0]
	for _, buff := range u.DecayingBuffs {
		if !buff.tick(&u.Stats) {
			activeDecay = append(activeDecay, buff)
		}
	}
	u.DecayingBuffs = activeDecay

	expired := u.Modifiers.Tick(now, &u.Stats)

	return damage, expired
}

// Snapshot returns the compact unit document used in event payloads and the
// survivor list.
func (u *Unit) Snapshot() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"base_id":    u.BaseID,
		"team":       u.Team,
		"position":   []int{u.Position.Q, u.Position.R},
		"star_level": u.Star,
		"hp":         round1(u.Stats.CurrentHP),
		"max_hp":     round1(u.Stats.MaxHP()),
		"mana":       round1(u.Stats.CurrentMana),
		"max_mana":   round1(u.Stats.MaxMana()),
		"state":      string(u.State.Current),
		"target_id":  u.TargetID,
	}
}

// FullSnapshot extends Snapshot with the effective stat block, items and
// abilities. Used for the trace's initial state.
func (u *Unit) FullSnapshot() map[string]any {
	snap := u.Snapshot()
	snap["stats"] = map[string]any{
		"attack_damage": u.Stats.AttackDamage(),
		"ability_power": u.Stats.AbilityPower(),
		"armor":         u.Stats.Armor(),
		"magic_resist":  u.Stats.MagicResist(),
		"attack_speed":  u.Stats.AttackSpeed(),
		"attack_range":  u.Stats.AttackRange(),
		"crit_chance":   u.Stats.CritChance(),
		"crit_damage":   u.Stats.CritDamage(),
	}
	snap["items"] = u.Items
	snap["abilities"] = u.Abilities
	snap["traits"] = u.Traits
	return snap
}

func round1(v float64) float64 {
	if v >= 0 {
		return float64(int(v*10+0.5)) / 10
	}
	return float64(int(v*10-0.5)) / 10
}
