package combat

import (
	"fmt"
	"sort"

	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/rng"
	"github.com/nicoberrocal/arenaCore/units"
)

// Selector picks a target from a candidate list. Candidates are the living
// enemies of the source; the selector filters by its own max range and
// breaks ties deterministically (sort by id, then one RNG draw) so upstream
// list order cannot change outcomes.
type Selector interface {
	Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit
}

// MaxRange is embedded by selectors that honour a range limit. Zero means
// unlimited.
type MaxRange struct {
	Range int
}

func (m MaxRange) filter(source *units.Unit, candidates []*units.Unit) []*units.Unit {
	if m.Range <= 0 {
		return candidates
	}
	var result []*units.Unit
	for _, c := range candidates {
		if source.Position.Distance(c.Position) <= m.Range {
			result = append(result, c)
		}
	}
	return result
}

// tiebreak canonicalises order by unit id before the RNG draw.
func tiebreak(candidates []*units.Unit, stream *rng.Stream) *units.Unit {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return rng.Choice(stream, candidates)
}

// pickByScore keeps the candidates sharing the best score under best and
// tie-breaks among them.
func pickByScore(candidates []*units.Unit, stream *rng.Stream, score func(*units.Unit) float64, best func(a, b float64) bool) *units.Unit {
	if len(candidates) == 0 {
		return nil
	}

	bestScore := score(candidates[0])
	for _, c := range candidates[1:] {
		if s := score(c); best(s, bestScore) {
			bestScore = s
		}
	}

	var top []*units.Unit
	for _, c := range candidates {
		if score(c) == bestScore {
			top = append(top, c)
		}
	}
	return tiebreak(top, stream)
}

func lower(a, b float64) bool { return a < b }

func higher(a, b float64) bool { return a > b }

// Nearest picks the closest enemy by hex distance. The default selector.
type Nearest struct{ MaxRange }

func (s Nearest) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	return pickByScore(s.filter(source, candidates), stream, func(u *units.Unit) float64 {
		return float64(source.Position.Distance(u.Position))
	}, lower)
}

// Farthest picks the most distant enemy.
type Farthest struct{ MaxRange }

func (s Farthest) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	return pickByScore(s.filter(source, candidates), stream, func(u *units.Unit) float64 {
		return float64(source.Position.Distance(u.Position))
	}, higher)
}

// LowestHPPercent picks the enemy with the lowest HP fraction.
type LowestHPPercent struct{ MaxRange }

func (s LowestHPPercent) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	return pickByScore(s.filter(source, candidates), stream, func(u *units.Unit) float64 {
		return u.Stats.HPPercent()
	}, lower)
}

// LowestHPFlat picks the enemy with the least absolute HP.
type LowestHPFlat struct{ MaxRange }

func (s LowestHPFlat) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	return pickByScore(s.filter(source, candidates), stream, func(u *units.Unit) float64 {
		return u.Stats.CurrentHP
	}, lower)
}

// HighestStat picks the enemy with the highest value of one stat.
type HighestStat struct {
	MaxRange
	Stat string
}

func (s HighestStat) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	return pickByScore(s.filter(source, candidates), stream, func(u *units.Unit) float64 {
		return statValue(u, s.Stat)
	}, higher)
}

func statValue(u *units.Unit, stat string) float64 {
	switch units.CanonicalStat(stat) {
	case units.StatAttackDamage:
		return u.Stats.AttackDamage()
	case units.StatAbilityPower:
		return u.Stats.AbilityPower()
	case units.StatAttackSpeed:
		return u.Stats.AttackSpeed()
	case units.StatHP:
		return u.Stats.MaxHP()
	case units.StatArmor:
		return u.Stats.Armor()
	case units.StatMagicResist:
		return u.Stats.MagicResist()
	case units.StatCritChance:
		return u.Stats.CritChance()
	case units.StatCritDamage:
		return u.Stats.CritDamage()
	default:
		if stat == "current_hp" {
			return u.Stats.CurrentHP
		}
		return 0
	}
}

// Cluster picks the enemy with the most other candidates within its radius,
// the natural anchor for AoE casts.
type Cluster struct {
	MaxRange
	Radius int
}

func (s Cluster) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	filtered := s.filter(source, candidates)
	radius := s.Radius
	if radius <= 0 {
		radius = 2
	}

	return pickByScore(filtered, stream, func(u *units.Unit) float64 {
		count := 0
		for _, other := range filtered {
			if other.ID != u.ID && u.Position.Distance(other.Position) <= radius {
				count++
			}
		}
		return float64(count)
	}, higher)
}

// Random picks uniformly among the in-range candidates.
type Random struct{ MaxRange }

func (s Random) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	filtered := s.filter(source, candidates)
	if len(filtered) == 0 {
		return nil
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return rng.Choice(stream, filtered)
}

// Frontline picks the enemy row closest to the source's own side. Team 0
// owns the low-r rows.
type Frontline struct{ MaxRange }

func (s Frontline) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	score := func(u *units.Unit) float64 { return float64(u.Position.R) }
	if source.Team == 0 {
		return pickByScore(s.filter(source, candidates), stream, score, lower)
	}
	return pickByScore(s.filter(source, candidates), stream, score, higher)
}

// Backline picks the enemy row farthest from the source's own side, the
// assassin jump target.
type Backline struct{ MaxRange }

func (s Backline) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	score := func(u *units.Unit) float64 { return float64(u.Position.R) }
	if source.Team == 0 {
		return pickByScore(s.filter(source, candidates), stream, score, higher)
	}
	return pickByScore(s.filter(source, candidates), stream, score, lower)
}

// CurrentTarget keeps the source's existing target while it lives and stays
// in range, falling back to Nearest.
type CurrentTarget struct{ MaxRange }

func (s CurrentTarget) Select(source *units.Unit, candidates []*units.Unit, grid *hex.Grid, stream *rng.Stream) *units.Unit {
	if source.HasValidTarget() {
		if s.Range <= 0 || source.Position.Distance(source.Target.Position) <= s.Range {
			return source.Target
		}
	}
	return Nearest{MaxRange{Range: s.Range}}.Select(source, candidates, grid, stream)
}

// NewSelector builds a selector by name. Extra parameters (stat, radius)
// come from the template record.
func NewSelector(name string, maxRange int, params map[string]any) (Selector, error) {
	mr := MaxRange{Range: maxRange}

	switch name {
	case "nearest", "":
		return Nearest{mr}, nil
	case "farthest":
		return Farthest{mr}, nil
	case "lowest_hp_percent", "lowest_hp":
		return LowestHPPercent{mr}, nil
	case "lowest_hp_flat":
		return LowestHPFlat{mr}, nil
	case "highest_stat":
		stat, _ := params["stat"].(string)
		if stat == "" {
			stat = "attack_damage"
		}
		return HighestStat{MaxRange: mr, Stat: stat}, nil
	case "cluster":
		radius := intParam(params, "radius", 2)
		return Cluster{MaxRange: mr, Radius: radius}, nil
	case "random":
		return Random{mr}, nil
	case "frontline":
		return Frontline{mr}, nil
	case "backline":
		return Backline{mr}, nil
	case "current_target":
		return CurrentTarget{mr}, nil
	default:
		return nil, fmt.Errorf("unknown target selector %q", name)
	}
}

// ParseSelector accepts the two template forms: a bare selector name, or a
// record {selector, max_range, ...params}.
func ParseSelector(value any) (Selector, error) {
	switch v := value.(type) {
	case nil:
		return Nearest{}, nil
	case string:
		return NewSelector(v, 0, nil)
	case map[string]any:
		name, _ := v["selector"].(string)
		maxRange := intParam(v, "max_range", 0)
		return NewSelector(name, maxRange, v)
	default:
		return nil, fmt.Errorf("bad target selector record %T", value)
	}
}

func intParam(params map[string]any, key string, fallback int) int {
	if params == nil {
		return fallback
	}
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}
