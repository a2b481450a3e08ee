// Package combat implements the damage pipeline and the targeting
// selectors.
//
// Damage resolution runs in a strict order: crit roll, dodge roll,
// resistance reduction, conditional item modifiers, lifesteal. Crit and
// dodge apply to auto-attacks only; abilities crit only when the caller
// explicitly allows it (an item granting ability_crit).
package combat

import (
	"github.com/nicoberrocal/arenaCore/rng"
	"github.com/nicoberrocal/arenaCore/units"
)

// DamageType decides which resistance mitigates a hit.
type DamageType string

const (
	Physical DamageType = "PHYSICAL" // reduced by armor
	Magical  DamageType = "MAGICAL"  // reduced by magic resist
	True     DamageType = "TRUE"     // never reduced
)

// ParseDamageType maps template strings onto a DamageType, defaulting to
// magical.
func ParseDamageType(s string) DamageType {
	switch s {
	case "physical", "PHYSICAL":
		return Physical
	case "true", "TRUE":
		return True
	default:
		return Magical
	}
}

// Modifiers is the conditional-modifier dictionary produced by the item
// manager and consumed between mitigation and the final total. Amp and
// reduction are fractions; the penetrations shave a fraction off the
// defender's effective resistance.
type Modifiers struct {
	DamageAmp       float64 `bson:"damageAmp,omitempty" json:"damageAmp,omitempty"`
	DamageReduction float64 `bson:"damageReduction,omitempty" json:"damageReduction,omitempty"`
	ArmorPen        float64 `bson:"armorPen,omitempty" json:"armorPen,omitempty"`
	MagicPen        float64 `bson:"magicPen,omitempty" json:"magicPen,omitempty"`
}

// Result is the full record of one damage computation. PreMitigation feeds
// the defender's mana formula; Final is what reaches the HP/shield pool.
type Result struct {
	Raw             float64    `bson:"raw" json:"raw"`
	PreMitigation   float64    `bson:"preMitigation" json:"preMitigation"`
	Final           float64    `bson:"final" json:"final"`
	DamageType      DamageType `bson:"damageType" json:"damageType"`
	IsCrit          bool       `bson:"isCrit" json:"isCrit"`
	WasDodged       bool       `bson:"wasDodged" json:"wasDodged"`
	Reduction       float64    `bson:"reduction" json:"reduction"`
	LifestealAmount float64    `bson:"lifesteal" json:"lifesteal"`
}

// Reduction computes the fraction of damage a resistance removes:
// resistance / (resistance + 100). Negative resistance yields a negative
// reduction, i.e. amplified damage.
func Reduction(resistance float64) float64 {
	return resistance / (resistance + 100)
}

// Calculate runs the damage pipeline without mutating either unit.
//
// canCrit and canDodge gate the auto-attack rolls; both are ignored for
// abilities unless the caller opts an ability into critting (isAbility with
// canCrit true, the ability_crit item flag).
func Calculate(
	attacker, defender *units.Unit,
	baseDamage float64,
	damageType DamageType,
	stream *rng.Stream,
	canCrit, canDodge, isAbility bool,
	mods Modifiers,
) Result {
	damage := baseDamage
	isCrit := false

	// canCrit is the caller's choice: auto-attacks and the multi_hit,
	// ricochet and dash_through effects pass true; other ability damage
	// passes false unless the attacker has the ability_crit item flag.
	if canCrit {
		if stream.RollCrit(attacker.Stats.CritChance()) {
			isCrit = true
			damage *= attacker.Stats.CritDamage()
		}
	}

	raw := damage

	if canDodge && !isAbility {
		if stream.RollDodge(defender.Stats.DodgeChance()) {
			return Result{
				Raw:           raw,
				PreMitigation: raw,
				DamageType:    damageType,
				IsCrit:        isCrit,
				WasDodged:     true,
			}
		}
	}

	reduction := 0.0
	switch damageType {
	case Physical:
		armor := defender.EffectiveArmor() * (1 - mods.ArmorPen)
		reduction = Reduction(armor)
	case Magical:
		mr := defender.EffectiveMagicResist() * (1 - mods.MagicPen)
		reduction = Reduction(mr)
	case True:
		reduction = 0
	}

	final := damage * (1 - reduction)
	final *= 1 + mods.DamageAmp
	final *= 1 - mods.DamageReduction
	if final < 0 {
		final = 0
	}

	lifesteal := 0.0
	if isAbility {
		if vamp := attacker.Stats.SpellVamp(); vamp > 0 {
			lifesteal = final * vamp
		}
	} else if damageType == Physical {
		if ls := attacker.Stats.Lifesteal(); ls > 0 {
			lifesteal = final * ls
		}
	}
	if omni := attacker.Stats.Omnivamp(); omni > 0 {
		lifesteal += final * omni
	}

	return Result{
		Raw:             raw,
		PreMitigation:   raw,
		Final:           final,
		DamageType:      damageType,
		IsCrit:          isCrit,
		Reduction:       reduction,
		LifestealAmount: lifesteal,
	}
}

// Apply mutates both sides with a computed result: the defender loses HP
// (shield first), gains mana per the TFT rule, and the attacker heals the
// lifesteal amount. Returns the HP actually removed. Death handling is the
// caller's job so it can log and unhook the grid.
func Apply(attacker, defender *units.Unit, result Result, rule units.ManaRule, defenderClassMult float64) float64 {
	if result.WasDodged {
		return 0
	}

	actual := defender.AbsorbDamage(result.Final)

	defender.GainManaOnDamage(result.PreMitigation, result.Final, rule, defenderClassMult)

	if result.LifestealAmount > 0 {
		attacker.Stats.Heal(result.LifestealAmount)
	}

	return actual
}
