// Package items implements equipment: stat aggregation at equip time,
// triggered effects keyed by battle events, and conditional modifiers the
// damage pipeline consumes.
package items

import (
	"fmt"
	"strings"

	"github.com/nicoberrocal/arenaCore/units"
)

// TriggerType names the event that fires an item effect.
type TriggerType string

const (
	OnEquip       TriggerType = "on_equip"
	OnHit         TriggerType = "on_hit"
	OnCrit        TriggerType = "on_crit"
	OnAbilityCast TriggerType = "on_ability_cast"
	OnFirstCast   TriggerType = "on_first_cast"
	OnTakeDamage  TriggerType = "on_take_damage"
	OnKill        TriggerType = "on_kill"
	OnInterval    TriggerType = "on_interval"
)

// EffectTarget names who receives a triggered item effect.
type EffectTarget string

const (
	TargetSelf           EffectTarget = "self"
	TargetTarget         EffectTarget = "target"
	TargetEnemies        EffectTarget = "enemies"
	TargetAllies         EffectTarget = "allies"
	TargetEnemiesInRange EffectTarget = "enemies_in_range"
	TargetAlliesInRange  EffectTarget = "allies_in_range"
	TargetAlliesInRow    EffectTarget = "allies_in_row"
	TargetAdjacent       EffectTarget = "adjacent"
)

// Effect is one triggered item effect.
type Effect struct {
	Type    string         `bson:"type" json:"type"`
	Target  EffectTarget   `bson:"target" json:"target"`
	Value   float64        `bson:"value" json:"value"`
	Params  map[string]any `bson:"params,omitempty" json:"params,omitempty"`
	Trigger TriggerType    `bson:"trigger" json:"trigger"`
	// Interval ticks for on_interval triggers.
	Interval int `bson:"interval,omitempty" json:"interval,omitempty"`
}

func (e Effect) strParam(key, fallback string) string {
	if v, ok := e.Params[key].(string); ok {
		return v
	}
	return fallback
}

func (e Effect) floatParam(key string, fallback float64) float64 {
	switch v := e.Params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

func (e Effect) intParam(key string, fallback int) int {
	switch v := e.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// ConditionOperator compares a measured value against a condition value.
type ConditionOperator string

// Check applies the operator.
func (op ConditionOperator) Check(a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	case "==":
		return a == b
	case "!=":
		return a != b
	default: // ">"
		return a > b
	}
}

// Condition gates a conditional effect during damage calculation.
type Condition struct {
	Type     string            `bson:"type" json:"type"`
	Operator ConditionOperator `bson:"operator" json:"operator"`
	Value    float64           `bson:"value" json:"value"`
	Trait    string            `bson:"trait,omitempty" json:"trait,omitempty"`
}

// Check evaluates the condition for an attacker/defender pair.
func (c Condition) Check(attacker, defender *units.Unit) bool {
	switch c.Type {
	case "target_max_hp":
		return c.Operator.Check(defender.Stats.MaxHP(), c.Value)
	case "target_hp_percent":
		return c.Operator.Check(defender.Stats.HPPercent(), c.Value)
	case "target_current_hp":
		return c.Operator.Check(defender.Stats.CurrentHP, c.Value)
	case "self_max_hp":
		return c.Operator.Check(attacker.Stats.MaxHP(), c.Value)
	case "self_hp_percent":
		return c.Operator.Check(attacker.Stats.HPPercent(), c.Value)
	case "self_current_hp":
		return c.Operator.Check(attacker.Stats.CurrentHP, c.Value)
	case "target_has_shield":
		return c.Operator.Check(defender.Shield.HP, c.Value)
	case "target_has_trait":
		for _, trait := range defender.Traits {
			if trait == c.Trait {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ConditionalEffect is evaluated inside the damage pipeline: when its
// condition holds it contributes to the modifier dictionary (damage_amp,
// damage_reduction, armor_pen, magic_pen).
type ConditionalEffect struct {
	Condition Condition `bson:"condition" json:"condition"`
	Type      string    `bson:"type" json:"type"`
	Value     float64   `bson:"value" json:"value"`
}

// Item is one equipment definition.
type Item struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Stats       map[string]float64 `bson:"stats,omitempty" json:"stats,omitempty"`
	Components  []string           `bson:"components,omitempty" json:"components,omitempty"`
	Effects     []Effect           `bson:"effects,omitempty" json:"effects,omitempty"`
	Conditional []ConditionalEffect `bson:"conditionalEffects,omitempty" json:"conditionalEffects,omitempty"`
	Flags       map[string]bool    `bson:"flags,omitempty" json:"flags,omitempty"`
	GrantsTraits []string          `bson:"grantsTraits,omitempty" json:"grantsTraits,omitempty"`
	Unique      bool               `bson:"unique" json:"unique"`
}

// FlatStats returns the stat entries without the _percent suffix.
func (i *Item) FlatStats() map[string]float64 {
	result := map[string]float64{}
	for k, v := range i.Stats {
		if !strings.HasSuffix(k, "_percent") {
			result[k] = v
		}
	}
	return result
}

// PercentStats returns the _percent entries keyed by their base stat.
func (i *Item) PercentStats() map[string]float64 {
	result := map[string]float64{}
	for k, v := range i.Stats {
		if strings.HasSuffix(k, "_percent") {
			result[strings.TrimSuffix(k, "_percent")] = v
		}
	}
	return result
}

// HasFlag reports whether a special flag (ability_crit, ...) is set.
func (i *Item) HasFlag(flag string) bool {
	return i.Flags[flag]
}

// ParseItem builds an item from its template record. Effect groups in the
// record carry a trigger plus a nested effect list.
func ParseItem(id string, rec map[string]any) (*Item, error) {
	item := &Item{
		ID:     id,
		Name:   strField(rec, "name", id),
		Stats:  map[string]float64{},
		Flags:  map[string]bool{},
		Unique: boolField(rec, "unique"),
	}
	if desc, ok := rec["description"].(string); ok {
		item.Description = desc
	}

	if stats, ok := rec["stats"].(map[string]any); ok {
		for k, v := range stats {
			switch n := v.(type) {
			case float64:
				item.Stats[k] = n
			case int:
				item.Stats[k] = float64(n)
			}
		}
	}

	if flags, ok := rec["flags"].(map[string]any); ok {
		for k, v := range flags {
			if b, ok := v.(bool); ok {
				item.Flags[k] = b
			}
		}
	}

	if traits, ok := rec["grants_traits"].([]any); ok {
		for _, t := range traits {
			if s, ok := t.(string); ok {
				item.GrantsTraits = append(item.GrantsTraits, s)
			}
		}
	}
	if comps, ok := rec["components"].([]any); ok {
		for _, c := range comps {
			if s, ok := c.(string); ok {
				item.Components = append(item.Components, s)
			}
		}
	}

	if groups, ok := rec["effects"].([]any); ok {
		for _, g := range groups {
			group, ok := g.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %q: effect group is not a record", id)
			}

			trigger := TriggerType(strField(group, "trigger", "on_equip"))
			interval := 0
			if params, ok := group["trigger_params"].(map[string]any); ok {
				interval = intField(params, "interval", 0)
			}

			subs, ok := group["effects"].([]any)
			if !ok {
				return nil, fmt.Errorf("item %q: trigger %s has no effects", id, trigger)
			}
			for _, s := range subs {
				sub, ok := s.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("item %q: effect is not a record", id)
				}
				item.Effects = append(item.Effects, parseItemEffect(sub, trigger, interval))
			}
		}
	}

	if conds, ok := rec["conditional_effects"].([]any); ok {
		for _, c := range conds {
			cond, ok := c.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %q: conditional effect is not a record", id)
			}
			parsed, err := parseConditionalEffect(cond)
			if err != nil {
				return nil, fmt.Errorf("item %q: %w", id, err)
			}
			item.Conditional = append(item.Conditional, parsed)
		}
	}

	return item, nil
}

func parseItemEffect(rec map[string]any, trigger TriggerType, interval int) Effect {
	eff := Effect{
		Type:     strField(rec, "type", "stat_bonus"),
		Target:   EffectTarget(strField(rec, "target", "self")),
		Trigger:  trigger,
		Interval: interval,
		Params:   map[string]any{},
	}

	switch v := rec["value"].(type) {
	case float64:
		eff.Value = v
	case int:
		eff.Value = float64(v)
	}

	for k, v := range rec {
		if k == "type" || k == "target" || k == "value" {
			continue
		}
		eff.Params[k] = v
	}
	return eff
}

func parseConditionalEffect(rec map[string]any) (ConditionalEffect, error) {
	condRec, ok := rec["condition"].(map[string]any)
	if !ok {
		return ConditionalEffect{}, fmt.Errorf("conditional effect missing condition")
	}
	effRec, ok := rec["effect"].(map[string]any)
	if !ok {
		return ConditionalEffect{}, fmt.Errorf("conditional effect missing effect")
	}

	cond := Condition{
		Type:     strField(condRec, "type", "target_max_hp"),
		Operator: ConditionOperator(strField(condRec, "operator", ">")),
	}
	switch v := condRec["value"].(type) {
	case float64:
		cond.Value = v
	case int:
		cond.Value = float64(v)
	}
	if trait, ok := condRec["trait"].(string); ok {
		cond.Trait = trait
	}

	eff := ConditionalEffect{
		Condition: cond,
		Type:      strField(effRec, "type", "damage_amp"),
	}
	switch v := effRec["value"].(type) {
	case float64:
		eff.Value = v
	case int:
		eff.Value = float64(v)
	}
	return eff, nil
}

func strField(rec map[string]any, key, fallback string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return fallback
}

func boolField(rec map[string]any, key string) bool {
	v, _ := rec[key].(bool)
	return v
}

func intField(rec map[string]any, key string, fallback int) int {
	switch v := rec[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
