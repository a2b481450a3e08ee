package abilities

import (
	"fmt"

	"github.com/nicoberrocal/arenaCore/units"
)

// StarValue is a value that may vary by star level: either a single scalar
// or a [1-star, 2-star, 3-star] list. Out-of-range star levels clamp to the
// ends of the list.
type StarValue struct {
	Values []float64 `bson:"values" json:"values"`
}

// SingleValue wraps a scalar that is the same at every star level.
func SingleValue(v float64) StarValue {
	return StarValue{Values: []float64{v}}
}

// ParseStarValue decodes a scalar or list template value.
func ParseStarValue(v any) (StarValue, error) {
	switch val := v.(type) {
	case float64:
		return SingleValue(val), nil
	case int:
		return SingleValue(float64(val)), nil
	case int64:
		return SingleValue(float64(val)), nil
	case []any:
		values := make([]float64, 0, len(val))
		for _, item := range val {
			switch n := item.(type) {
			case float64:
				values = append(values, n)
			case int:
				values = append(values, float64(n))
			case int64:
				values = append(values, float64(n))
			default:
				return StarValue{}, fmt.Errorf("star value list holds non-number %T", item)
			}
		}
		if len(values) == 0 {
			return StarValue{}, fmt.Errorf("empty star value list")
		}
		return StarValue{Values: values}, nil
	default:
		return StarValue{}, fmt.Errorf("bad star value %T", v)
	}
}

// At returns the value for a star level (1-based).
func (s StarValue) At(star int) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	idx := star - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.Values) {
		idx = len(s.Values) - 1
	}
	return s.Values[idx]
}

// IsZero reports whether the value is absent or uniformly zero.
func (s StarValue) IsZero() bool {
	for _, v := range s.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// ScalingStat returns the stat a scaling key reads: the caster's offensive
// stats, or HP figures of either side. Unknown keys return the neutral 100
// so the scaled value passes through unchanged.
func ScalingStat(scaling string, caster, target *units.Unit) float64 {
	switch scaling {
	case "ad":
		return caster.Stats.AttackDamage()
	case "ap":
		return caster.Stats.AbilityPower()
	case "armor":
		return caster.Stats.Armor()
	case "mr":
		return caster.Stats.MagicResist()
	case "caster_hp", "caster_max_hp":
		return caster.Stats.MaxHP()
	case "caster_missing_hp":
		return caster.Stats.MaxHP() - caster.Stats.CurrentHP
	case "max_hp", "target_max_hp":
		if target != nil {
			return target.Stats.MaxHP()
		}
	case "missing_hp", "target_missing_hp":
		if target != nil {
			return target.Stats.MaxHP() - target.Stats.CurrentHP
		}
	case "target_hp":
		if target != nil {
			return target.Stats.CurrentHP
		}
	}
	return 100
}

// ScaledValue resolves a star value and applies its scaling:
// final = value[star] * (stat / 100). An empty scaling key passes the star
// value through.
func ScaledValue(value StarValue, scaling string, star int, caster, target *units.Unit) float64 {
	v := value.At(star)
	if scaling == "" || scaling == "none" {
		return v
	}
	return v * (ScalingStat(scaling, caster, target) / 100)
}
