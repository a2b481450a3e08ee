package items

import (
	"fmt"

	"github.com/nicoberrocal/arenaCore/combat"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

// MaxSlots is the equipment limit per unit.
const MaxSlots = 3

// World is the slice of the simulation item effects act through. The
// kernel's DealDamage/Heal keep logging and death handling consistent with
// ability effects.
type World interface {
	Units() []*units.Unit
	Grid() *hex.Grid
	CurrentTick() int
	DealDamage(attacker, defender *units.Unit, base float64, damageType combat.DamageType, canCrit, canDodge, isAbility bool) combat.Result
	Heal(caster, target *units.Unit, amount float64) float64
}

// Manager owns item definitions and per-unit equipment state for one
// simulation.
type Manager struct {
	world World
	items map[string]*Item

	equipped  map[string][]*Item // unit id -> equipped items
	firstCast map[string]bool    // unit id -> first cast consumed
}

// NewManager builds a manager over loaded item definitions.
func NewManager(world World, items map[string]*Item) *Manager {
	return &Manager{
		world:     world,
		items:     items,
		equipped:  map[string][]*Item{},
		firstCast: map[string]bool{},
	}
}

// Item returns a definition by id.
func (m *Manager) Item(id string) (*Item, bool) {
	item, ok := m.items[id]
	return item, ok
}

// Equipped returns the unit's current equipment.
func (m *Manager) Equipped(u *units.Unit) []*Item {
	return m.equipped[u.ID]
}

// HasFlag reports whether any equipped item sets the flag.
func (m *Manager) HasFlag(u *units.Unit, flag string) bool {
	for _, item := range m.equipped[u.ID] {
		if item.HasFlag(flag) {
			return true
		}
	}
	return false
}

// Equip attaches an item to the unit: stat block folded into the unit's
// flat/percent stacks, granted traits merged. Fails on an unknown id, a
// full slot row, or a duplicate unique.
func (m *Manager) Equip(u *units.Unit, itemID string) error {
	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("unknown item %q", itemID)
	}

	current := m.equipped[u.ID]
	if len(current) >= MaxSlots {
		return fmt.Errorf("unit %s has no free item slot", u.ID)
	}
	if item.Unique {
		for _, equipped := range current {
			if equipped.ID == item.ID {
				return fmt.Errorf("item %q is unique", item.ID)
			}
		}
	}

	m.equipped[u.ID] = append(current, item)
	u.Items = append(u.Items, item.ID)

	for stat, value := range item.FlatStats() {
		canonical := units.CanonicalStat(stat)
		u.Stats.AddFlat(canonical, value)
		if canonical == units.StatHP {
			u.Stats.CurrentHP += value
		}
		if canonical == units.StatStartMana {
			u.Stats.BaseStartMana += value
		}
	}
	for stat, value := range item.PercentStats() {
		u.Stats.AddPercent(units.CanonicalStat(stat), value)
	}

	for _, traitID := range item.GrantsTraits {
		if !containsString(u.Traits, traitID) {
			u.Traits = append(u.Traits, traitID)
		}
	}

	return nil
}

// EquipAll equips up to the slot limit, reporting the first failure.
func (m *Manager) EquipAll(u *units.Unit, itemIDs []string) error {
	for i, id := range itemIDs {
		if i >= MaxSlots {
			break
		}
		if err := m.Equip(u, id); err != nil {
			return err
		}
	}
	return nil
}

// --- trigger handlers ---

// OnBattleStart fires every on_equip effect. Called once at tick 0.
func (m *Manager) OnBattleStart() {
	m.firstCast = map[string]bool{}

	for _, u := range m.world.Units() {
		if u.IsAlive() {
			m.fire(u, OnEquip, nil)
		}
	}
}

// OnTick fires on_interval effects whose interval divides the tick.
func (m *Manager) OnTick(tick int) {
	if tick == 0 {
		return
	}
	for _, u := range m.world.Units() {
		if !u.IsAlive() {
			continue
		}
		for _, item := range m.equipped[u.ID] {
			for _, effect := range item.Effects {
				if effect.Trigger != OnInterval {
					continue
				}
				interval := effect.Interval
				if interval <= 0 {
					interval = 120
				}
				if tick%interval == 0 {
					m.applyEffect(u, effect, nil)
				}
			}
		}
	}
}

// OnHit fires on_hit effects after a landed auto-attack.
func (m *Manager) OnHit(attacker, defender *units.Unit) {
	if attacker.IsAlive() {
		m.fire(attacker, OnHit, defender)
	}
}

// OnCrit fires on_crit effects after a critical auto-attack.
func (m *Manager) OnCrit(attacker, defender *units.Unit) {
	if attacker.IsAlive() {
		m.fire(attacker, OnCrit, defender)
	}
}

// OnAbilityCast fires cast-triggered effects; the first cast of the battle
// additionally fires on_first_cast.
func (m *Manager) OnAbilityCast(caster *units.Unit) {
	if !caster.IsAlive() {
		return
	}
	if !m.firstCast[caster.ID] {
		m.firstCast[caster.ID] = true
		m.fire(caster, OnFirstCast, nil)
	}
	m.fire(caster, OnAbilityCast, nil)
}

// OnTakeDamage fires on_take_damage effects on the victim.
func (m *Manager) OnTakeDamage(u *units.Unit) {
	if u.IsAlive() {
		m.fire(u, OnTakeDamage, nil)
	}
}

// OnKill fires on_kill effects on the killer.
func (m *Manager) OnKill(killer, victim *units.Unit) {
	if killer.IsAlive() {
		m.fire(killer, OnKill, victim)
	}
}

func (m *Manager) fire(u *units.Unit, trigger TriggerType, attackTarget *units.Unit) {
	for _, item := range m.equipped[u.ID] {
		for _, effect := range item.Effects {
			if effect.Trigger == trigger {
				m.applyEffect(u, effect, attackTarget)
			}
		}
	}
}

// --- conditional modifiers ---

// ConditionalModifiers collects the modifier dictionary the damage pipeline
// consumes: every conditional effect whose condition holds contributes.
func (m *Manager) ConditionalModifiers(attacker, defender *units.Unit) combat.Modifiers {
	var mods combat.Modifiers
	for _, item := range m.equipped[attacker.ID] {
		for _, cond := range item.Conditional {
			if !cond.Condition.Check(attacker, defender) {
				continue
			}
			switch cond.Type {
			case "damage_amp":
				mods.DamageAmp += cond.Value
			case "damage_reduction":
				mods.DamageReduction += cond.Value
			case "armor_pen":
				mods.ArmorPen += cond.Value
			case "magic_pen":
				mods.MagicPen += cond.Value
			}
		}
	}
	return mods
}

// --- effect application ---

func (m *Manager) applyEffect(owner *units.Unit, effect Effect, attackTarget *units.Unit) int {
	targets := m.targetUnits(owner, effect, attackTarget)

	applied := 0
	for _, u := range targets {
		if !u.IsAlive() {
			continue
		}

		switch effect.Type {
		case "stat_bonus":
			stat := units.CanonicalStat(effect.strParam("stat", "attack_damage"))
			u.Stats.AddFlat(stat, effect.Value)
			if stat == units.StatHP {
				u.Stats.CurrentHP += effect.Value
			}
		case "stacking_stat":
			stat := units.CanonicalStat(effect.strParam("stat", "attack_damage"))
			maxStacks := effect.intParam("max_stacks", 25)
			if !u.AddStackingItemStat(stat, effect.Value, float64(maxStacks)*effect.Value) {
				continue
			}
		case "mana_grant":
			u.Stats.AddMana(effect.Value)
		case "heal":
			m.world.Heal(owner, u, effect.Value)
		case "shield":
			duration := effect.intParam("duration", 30000)
			u.AddShield(effect.Value, duration)
		case "slow":
			duration := effect.intParam("duration", 60)
			fraction := effect.Value
			if fraction > 1 {
				fraction /= 100
			}
			u.AddSlow(fraction, duration)
		case "damage":
			damageType := combat.Magical
			if effect.strParam("damage_type", "magic") == "physical" {
				damageType = combat.Physical
			}
			m.world.DealDamage(owner, u, effect.Value, damageType, false, false, true)
		case "burn":
			duration := effect.intParam("duration", 90)
			u.AddBurn(effect.Value, duration, owner.ID)
		case "wound":
			duration := effect.intParam("duration", 150)
			fraction := effect.floatParam("percent", effect.Value)
			if fraction > 1 {
				fraction /= 100
			}
			u.AddWound(fraction, duration)
		default:
			continue
		}
		applied++
	}
	return applied
}

func (m *Manager) targetUnits(owner *units.Unit, effect Effect, attackTarget *units.Unit) []*units.Unit {
	rangeParam := effect.intParam("range", 2)
	var result []*units.Unit

	switch effect.Target {
	case TargetSelf:
		if owner.IsAlive() {
			result = append(result, owner)
		}
	case TargetTarget:
		if attackTarget != nil && attackTarget.IsAlive() {
			result = append(result, attackTarget)
		}
	case TargetEnemies:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team != owner.Team {
				result = append(result, u)
			}
		}
	case TargetAllies:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team == owner.Team {
				result = append(result, u)
			}
		}
	case TargetEnemiesInRange:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team != owner.Team && owner.Position.Distance(u.Position) <= rangeParam {
				result = append(result, u)
			}
		}
	case TargetAlliesInRange:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team == owner.Team && owner.Position.Distance(u.Position) <= rangeParam {
				result = append(result, u)
			}
		}
	case TargetAlliesInRow:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team == owner.Team && u.Position.R == owner.Position.R {
				result = append(result, u)
			}
		}
	case TargetAdjacent:
		for _, pos := range owner.Position.Neighbors() {
			if occ := m.world.Grid().UnitAt(pos); occ != nil {
				if u, ok := occ.(*units.Unit); ok && u.IsAlive() {
					result = append(result, u)
				}
			}
		}
	}

	return result
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
