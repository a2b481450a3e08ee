package units

// Stat names a modifiable attribute. Modifier layers, item stat blocks and
// trait bonuses all address stats through these keys.
type Stat string

const (
	StatHP           Stat = "hp"
	StatAttackDamage Stat = "attack_damage"
	StatAbilityPower Stat = "ability_power"
	StatArmor        Stat = "armor"
	StatMagicResist  Stat = "magic_resist"
	StatAttackSpeed  Stat = "attack_speed"
	StatCritChance   Stat = "crit_chance"
	StatCritDamage   Stat = "crit_damage"
	StatDodgeChance  Stat = "dodge_chance"
	StatLifesteal    Stat = "lifesteal"
	StatSpellVamp    Stat = "spell_vamp"
	StatOmnivamp     Stat = "omnivamp"
	StatMana         Stat = "mana"
	StatStartMana    Stat = "start_mana"
)

// CanonicalStat maps template aliases (ad, ap, mr, as, max_hp) onto the
// canonical stat keys.
func CanonicalStat(name string) Stat {
	switch name {
	case "ad":
		return StatAttackDamage
	case "ap":
		return StatAbilityPower
	case "mr":
		return StatMagicResist
	case "as":
		return StatAttackSpeed
	case "max_hp":
		return StatHP
	default:
		return Stat(name)
	}
}

// Attack speed is clamped to the TFT-style window; crit damage never drops
// below a plain hit.
const (
	attackSpeedFloor = 0.2
	attackSpeedCap   = 5.0
	critDamageFloor  = 1.0
)

// Stats carries a unit's base values and the flat/percent modifier sums
// stacked on top of them. Effective value = (base + flat) * (1 + percent)
// except for the clamped stats documented on each getter.
//
// CurrentHP and CurrentMana are the only fields that move every tick.
type Stats struct {
	BaseHP           float64 `bson:"baseHp" json:"baseHp"`
	BaseAttackDamage float64 `bson:"baseAttackDamage" json:"baseAttackDamage"`
	BaseAbilityPower float64 `bson:"baseAbilityPower" json:"baseAbilityPower"`
	BaseArmor        float64 `bson:"baseArmor" json:"baseArmor"`
	BaseMagicResist  float64 `bson:"baseMagicResist" json:"baseMagicResist"`
	BaseAttackSpeed  float64 `bson:"baseAttackSpeed" json:"baseAttackSpeed"`
	BaseAttackRange  int     `bson:"baseAttackRange" json:"baseAttackRange"`
	BaseCritChance   float64 `bson:"baseCritChance" json:"baseCritChance"`
	BaseCritDamage   float64 `bson:"baseCritDamage" json:"baseCritDamage"`
	BaseDodgeChance  float64 `bson:"baseDodgeChance" json:"baseDodgeChance"`
	BaseLifesteal    float64 `bson:"baseLifesteal" json:"baseLifesteal"`
	BaseSpellVamp    float64 `bson:"baseSpellVamp" json:"baseSpellVamp"`
	BaseOmnivamp     float64 `bson:"baseOmnivamp" json:"baseOmnivamp"`
	BaseMaxMana      float64 `bson:"baseMaxMana" json:"baseMaxMana"`
	BaseStartMana    float64 `bson:"baseStartMana" json:"baseStartMana"`

	CurrentHP   float64 `bson:"currentHp" json:"currentHp"`
	CurrentMana float64 `bson:"currentMana" json:"currentMana"`

	FlatHP           float64 `bson:"flatHp,omitempty" json:"flatHp,omitempty"`
	FlatAttackDamage float64 `bson:"flatAttackDamage,omitempty" json:"flatAttackDamage,omitempty"`
	FlatAbilityPower float64 `bson:"flatAbilityPower,omitempty" json:"flatAbilityPower,omitempty"`
	FlatArmor        float64 `bson:"flatArmor,omitempty" json:"flatArmor,omitempty"`
	FlatMagicResist  float64 `bson:"flatMagicResist,omitempty" json:"flatMagicResist,omitempty"`
	FlatAttackSpeed  float64 `bson:"flatAttackSpeed,omitempty" json:"flatAttackSpeed,omitempty"`
	FlatCritChance   float64 `bson:"flatCritChance,omitempty" json:"flatCritChance,omitempty"`
	FlatCritDamage   float64 `bson:"flatCritDamage,omitempty" json:"flatCritDamage,omitempty"`
	FlatDodgeChance  float64 `bson:"flatDodgeChance,omitempty" json:"flatDodgeChance,omitempty"`
	FlatLifesteal    float64 `bson:"flatLifesteal,omitempty" json:"flatLifesteal,omitempty"`
	FlatSpellVamp    float64 `bson:"flatSpellVamp,omitempty" json:"flatSpellVamp,omitempty"`
	FlatOmnivamp     float64 `bson:"flatOmnivamp,omitempty" json:"flatOmnivamp,omitempty"`
	FlatMana         float64 `bson:"flatMana,omitempty" json:"flatMana,omitempty"`

	PercentHP           float64 `bson:"percentHp,omitempty" json:"percentHp,omitempty"`
	PercentAttackDamage float64 `bson:"percentAttackDamage,omitempty" json:"percentAttackDamage,omitempty"`
	PercentAbilityPower float64 `bson:"percentAbilityPower,omitempty" json:"percentAbilityPower,omitempty"`
	PercentArmor        float64 `bson:"percentArmor,omitempty" json:"percentArmor,omitempty"`
	PercentMagicResist  float64 `bson:"percentMagicResist,omitempty" json:"percentMagicResist,omitempty"`
	PercentAttackSpeed  float64 `bson:"percentAttackSpeed,omitempty" json:"percentAttackSpeed,omitempty"`
}

// DefaultStats returns the baseline used when a template leaves values out.
// The config loader overrides these from unit_defaults before unit creation.
func DefaultStats() Stats {
	s := Stats{
		BaseHP:           500,
		BaseAttackDamage: 50,
		BaseArmor:        20,
		BaseMagicResist:  20,
		BaseAttackSpeed:  0.7,
		BaseAttackRange:  1,
		BaseCritChance:   0.25,
		BaseCritDamage:   1.4,
		BaseMaxMana:      100,
	}
	s.ResetForCombat()
	return s
}

func effective(base, flat, percent float64) float64 {
	return (base + flat) * (1 + percent)
}

// MaxHP returns the effective maximum HP.
func (s *Stats) MaxHP() float64 {
	return effective(s.BaseHP, s.FlatHP, s.PercentHP)
}

// AttackDamage returns the effective attack damage.
func (s *Stats) AttackDamage() float64 {
	return effective(s.BaseAttackDamage, s.FlatAttackDamage, s.PercentAttackDamage)
}

// AbilityPower returns the effective ability power.
func (s *Stats) AbilityPower() float64 {
	return effective(s.BaseAbilityPower, s.FlatAbilityPower, s.PercentAbilityPower)
}

// Armor returns the effective armor, before any shred debuffs.
func (s *Stats) Armor() float64 {
	return effective(s.BaseArmor, s.FlatArmor, s.PercentArmor)
}

// MagicResist returns the effective magic resist, before any shred debuffs.
func (s *Stats) MagicResist() float64 {
	return effective(s.BaseMagicResist, s.FlatMagicResist, s.PercentMagicResist)
}

// AttackSpeed returns the effective attack speed clamped to [0.2, 5.0].
func (s *Stats) AttackSpeed() float64 {
	raw := effective(s.BaseAttackSpeed, s.FlatAttackSpeed, s.PercentAttackSpeed)
	return clamp(raw, attackSpeedFloor, attackSpeedCap)
}

// AttackRange returns the attack range in hexes. Range is an unscaled
// integer; no modifier stack applies.
func (s *Stats) AttackRange() int {
	return s.BaseAttackRange
}

// CritChance returns the crit probability clamped to [0, 1].
func (s *Stats) CritChance() float64 {
	return clamp(s.BaseCritChance+s.FlatCritChance, 0, 1)
}

// CritDamage returns the crit multiplier, never below 1.0.
func (s *Stats) CritDamage() float64 {
	raw := s.BaseCritDamage + s.FlatCritDamage
	if raw < critDamageFloor {
		return critDamageFloor
	}
	return raw
}

// DodgeChance returns the dodge probability clamped to [0, 1].
func (s *Stats) DodgeChance() float64 {
	return clamp(s.BaseDodgeChance+s.FlatDodgeChance, 0, 1)
}

// Lifesteal returns the physical-damage heal fraction. Not clamped; items
// can push it past 1.
func (s *Stats) Lifesteal() float64 {
	return s.BaseLifesteal + s.FlatLifesteal
}

// SpellVamp returns the ability-damage heal fraction.
func (s *Stats) SpellVamp() float64 {
	return s.BaseSpellVamp + s.FlatSpellVamp
}

// Omnivamp returns the all-damage heal fraction clamped to [0, 1].
func (s *Stats) Omnivamp() float64 {
	return clamp(s.BaseOmnivamp+s.FlatOmnivamp, 0, 1)
}

// MaxMana returns the cast threshold.
func (s *Stats) MaxMana() float64 {
	return s.BaseMaxMana + s.FlatMana
}

// AddFlat adds a flat modifier to the named stat. Unknown stats are ignored
// so a bad template record cannot corrupt the struct.
func (s *Stats) AddFlat(stat Stat, value float64) {
	switch CanonicalStat(string(stat)) {
	case StatHP:
		s.FlatHP += value
	case StatAttackDamage:
		s.FlatAttackDamage += value
	case StatAbilityPower:
		s.FlatAbilityPower += value
	case StatArmor:
		s.FlatArmor += value
	case StatMagicResist:
		s.FlatMagicResist += value
	case StatAttackSpeed:
		s.FlatAttackSpeed += value
	case StatCritChance:
		s.FlatCritChance += value
	case StatCritDamage:
		s.FlatCritDamage += value
	case StatDodgeChance:
		s.FlatDodgeChance += value
	case StatLifesteal:
		s.FlatLifesteal += value
	case StatSpellVamp:
		s.FlatSpellVamp += value
	case StatOmnivamp:
		s.FlatOmnivamp += value
	case StatMana:
		s.FlatMana += value
	}
}

// AddPercent adds a percent modifier (0.1 = +10%) to the named stat. Stats
// without a percent track fall back to flat.
func (s *Stats) AddPercent(stat Stat, value float64) {
	switch CanonicalStat(string(stat)) {
	case StatHP:
		s.PercentHP += value
	case StatAttackDamage:
		s.PercentAttackDamage += value
	case StatAbilityPower:
		s.PercentAbilityPower += value
	case StatArmor:
		s.PercentArmor += value
	case StatMagicResist:
		s.PercentMagicResist += value
	case StatAttackSpeed:
		s.PercentAttackSpeed += value
	default:
		s.AddFlat(stat, value)
	}
}

// RemoveFlat reverses AddFlat.
func (s *Stats) RemoveFlat(stat Stat, value float64) {
	s.AddFlat(stat, -value)
}

// RemovePercent reverses AddPercent.
func (s *Stats) RemovePercent(stat Stat, value float64) {
	s.AddPercent(stat, -value)
}

// ApplyStarLevel scales base HP and damage by the star multipliers and
// refills current HP.
func (s *Stats) ApplyStarLevel(star int, mods map[int]StarModifiers) {
	m, ok := mods[star]
	if !ok {
		return
	}

	s.BaseHP *= m.HPMultiplier
	s.BaseAttackDamage *= m.DamageMultiplier
	s.BaseAbilityPower *= m.DamageMultiplier
	s.CurrentHP = s.MaxHP()
}

// StarModifiers are the per-star scaling factors from the defaults record.
type StarModifiers struct {
	HPMultiplier     float64 `bson:"hpMultiplier" yaml:"hp_multiplier" json:"hpMultiplier"`
	DamageMultiplier float64 `bson:"damageMultiplier" yaml:"damage_multiplier" json:"damageMultiplier"`
}

// DefaultStarModifiers returns the standard 1/1.8/3.24 scaling table.
func DefaultStarModifiers() map[int]StarModifiers {
	return map[int]StarModifiers{
		1: {HPMultiplier: 1.0, DamageMultiplier: 1.0},
		2: {HPMultiplier: 1.8, DamageMultiplier: 1.8},
		3: {HPMultiplier: 3.24, DamageMultiplier: 3.24},
	}
}

// TakeDamage reduces current HP and returns the amount actually removed.
func (s *Stats) TakeDamage(amount float64) float64 {
	actual := amount
	if actual > s.CurrentHP {
		actual = s.CurrentHP
	}
	s.CurrentHP -= actual
	return actual
}

// Heal restores HP up to the effective maximum and returns the amount
// actually restored.
func (s *Stats) Heal(amount float64) float64 {
	room := s.MaxHP() - s.CurrentHP
	actual := amount
	if actual > room {
		actual = room
	}
	if actual < 0 {
		actual = 0
	}
	s.CurrentHP += actual
	return actual
}

// AddMana raises current mana, capped at max, and returns the overflow
// above the cap.
func (s *Stats) AddMana(amount float64) float64 {
	maxMana := s.MaxMana()
	newMana := s.CurrentMana + amount
	if newMana > maxMana {
		s.CurrentMana = maxMana
		return newMana - maxMana
	}
	s.CurrentMana = newMana
	return 0
}

// SpendMana deducts the cost if available.
func (s *Stats) SpendMana(amount float64) bool {
	if s.CurrentMana < amount {
		return false
	}
	s.CurrentMana -= amount
	return true
}

// IsManaFull reports whether the cast threshold is reached.
func (s *Stats) IsManaFull() bool {
	return s.CurrentMana >= s.MaxMana()
}

// IsAlive reports whether the unit still has HP.
func (s *Stats) IsAlive() bool {
	return s.CurrentHP > 0
}

// HPPercent returns current HP as a fraction of max in [0, 1].
func (s *Stats) HPPercent() float64 {
	maxHP := s.MaxHP()
	if maxHP <= 0 {
		return 0
	}
	return s.CurrentHP / maxHP
}

// ManaPercent returns current mana as a fraction of max.
func (s *Stats) ManaPercent() float64 {
	maxMana := s.MaxMana()
	if maxMana <= 0 {
		return 1
	}
	return s.CurrentMana / maxMana
}

// ResetForCombat refills HP and sets mana to the starting value.
func (s *Stats) ResetForCombat() {
	s.CurrentHP = s.MaxHP()
	s.CurrentMana = s.BaseStartMana
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
