package abilities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicoberrocal/arenaCore/units"
)

// Effect is one atomic rule an ability applies: damage, heal, stun, zone
// creation. Variants are small copyable structs built from template records.
type Effect interface {
	// Type returns the registry tag of this variant.
	Type() string
	// Apply mutates the battle through the world and reports what happened.
	Apply(caster, target *units.Unit, star int, w World) Result
}

// Result reports one effect application for logging.
type Result struct {
	EffectType string         `bson:"effectType" json:"effectType"`
	Success    bool           `bson:"success" json:"success"`
	Value      float64        `bson:"value" json:"value"`
	TargetIDs  []string       `bson:"targets,omitempty" json:"targets,omitempty"`
	Details    map[string]any `bson:"details,omitempty" json:"details,omitempty"`
}

// parser builds an effect variant from its record.
type parser func(Record) (Effect, error)

// registry maps effect-type tags to parsers. New variants extend the map;
// dispatch stays flat.
var registry = map[string]parser{}

func register(tag string, p parser) {
	registry[tag] = p
}

// ParseEffect builds one effect from a record. An unknown or malformed type
// is a load-time error — the simulation must never start with a template it
// cannot dispatch.
func ParseEffect(rec Record) (Effect, error) {
	tag := rec.str("type", "damage")
	p, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("unknown effect type %q", tag)
	}
	eff, err := p(rec)
	if err != nil {
		return nil, fmt.Errorf("effect %q: %w", tag, err)
	}
	return eff, nil
}

// ParseEffects builds an ability's effect list.
func ParseEffects(records []Record) ([]Effect, error) {
	effects := make([]Effect, 0, len(records))
	for _, rec := range records {
		eff, err := ParseEffect(rec)
		if err != nil {
			return nil, err
		}
		effects = append(effects, eff)
	}
	return effects, nil
}

// EffectTypes lists the registered tags, for diagnostics.
func EffectTypes() []string {
	types := make([]string, 0, len(registry))
	for tag := range registry {
		types = append(types, tag)
	}
	return types
}

// checkCondition evaluates the small predicate language used by crit
// conditions and knockback gates: "scope_condition[_value]" with scopes
// target, caster and range.
//
//	target_has_chill    target_below_hp_50    caster_above_hp_80
//	range_above_4       target_stunned        target_burned
func checkCondition(caster, target *units.Unit, condition string) bool {
	if condition == "" {
		return true
	}

	parts := strings.Split(condition, "_")
	if len(parts) < 2 {
		return false
	}

	scope := parts[0]

	if scope == "range" {
		if len(parts) < 3 {
			return false
		}
		threshold, err := strconv.Atoi(parts[2])
		if err != nil {
			return false
		}
		distance := caster.Position.Distance(target.Position)
		switch parts[1] {
		case "above":
			return distance > threshold
		case "below":
			return distance < threshold
		}
		return false
	}

	var subject *units.Unit
	switch scope {
	case "target":
		subject = target
	case "caster":
		subject = caster
	default:
		return false
	}

	cond := strings.Join(parts[1:], "_")

	switch {
	case cond == "has_chill" || cond == "slowed":
		return subject.Slow.RemainingTicks > 0
	case cond == "stunned":
		return subject.State.Current == units.StateStunned
	case cond == "silenced":
		return subject.IsSilenced()
	case cond == "burned":
		return len(subject.Burns) > 0
	case strings.HasPrefix(cond, "below_hp_"):
		threshold, err := strconv.Atoi(cond[len("below_hp_"):])
		if err != nil {
			return false
		}
		return subject.Stats.HPPercent() < float64(threshold)/100
	case strings.HasPrefix(cond, "above_hp_"):
		threshold, err := strconv.Atoi(cond[len("above_hp_"):])
		if err != nil {
			return false
		}
		return subject.Stats.HPPercent() > float64(threshold)/100
	case strings.HasPrefix(cond, "armor_above_"):
		threshold, err := strconv.Atoi(cond[len("armor_above_"):])
		if err != nil {
			return false
		}
		return subject.Stats.Armor() > float64(threshold)
	case strings.HasPrefix(cond, "mr_above_"):
		threshold, err := strconv.Atoi(cond[len("mr_above_"):])
		if err != nil {
			return false
		}
		return subject.Stats.MagicResist() > float64(threshold)
	}

	return false
}

// fractionOf normalises template percent values: 30 means 30%, 0.3 means
// 30% too. Values above 1 are treated as whole percents.
func fractionOf(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}
