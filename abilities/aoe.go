package abilities

import (
	"math"

	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

// UnitsInCircle returns the living candidates within radius of center.
// includeCenter controls whether a unit standing exactly on center counts.
func UnitsInCircle(center hex.Coord, radius int, candidates []*units.Unit, includeCenter bool) []*units.Unit {
	var result []*units.Unit
	for _, u := range candidates {
		if !u.IsAlive() {
			continue
		}
		d := center.Distance(u.Position)
		if d == 0 {
			if includeCenter {
				result = append(result, u)
			}
			continue
		}
		if d <= radius {
			result = append(result, u)
		}
	}
	return result
}

// UnitsInCone returns the living candidates inside a caster-anchored cone
// pointed at target: angular distance from the base direction at most
// angle/2 degrees, hex distance at most rangeHexes.
func UnitsInCone(origin, target hex.Coord, angle float64, rangeHexes int, candidates []*units.Unit) []*units.Unit {
	dq := float64(target.Q - origin.Q)
	dr := float64(target.R - origin.R)
	if dq == 0 && dr == 0 {
		return nil
	}

	baseAngle := math.Atan2(dr, dq)
	halfCone := angle / 2 * math.Pi / 180

	var result []*units.Unit
	for _, u := range candidates {
		if !u.IsAlive() {
			continue
		}

		distance := origin.Distance(u.Position)
		if distance == 0 || distance > rangeHexes {
			continue
		}

		uq := float64(u.Position.Q - origin.Q)
		ur := float64(u.Position.R - origin.R)
		unitAngle := math.Atan2(ur, uq)

		diff := math.Abs(unitAngle - baseAngle)
		if diff > math.Pi {
			diff = 2*math.Pi - diff
		}

		if diff <= halfCone {
			result = append(result, u)
		}
	}
	return result
}

// UnitsInLine returns the living candidates standing on the hex line from
// origin to target; width > 0 widens the line by the neighbouring hexes.
func UnitsInLine(origin, target hex.Coord, width int, candidates []*units.Unit) []*units.Unit {
	lineHexes := origin.LineTo(target)
	line := make(map[hex.Coord]bool, len(lineHexes))
	for _, pos := range lineHexes {
		line[pos] = true
	}

	if width > 0 {
		limit := origin.Distance(target) + 1
		widened := make(map[hex.Coord]bool, len(line)*3)
		for pos := range line {
			widened[pos] = true
			for _, n := range pos.Neighbors() {
				if origin.Distance(n) <= limit {
					widened[n] = true
				}
			}
		}
		line = widened
	}

	var result []*units.Unit
	for _, u := range candidates {
		if u.IsAlive() && line[u.Position] {
			result = append(result, u)
		}
	}
	return result
}

// ResolveAoE returns every unit an AoE ability touches: the shape decides
// the sweep, and the primary target is prepended when the config includes
// it.
func ResolveAoE(cfg *AoEConfig, origin hex.Coord, primary *units.Unit, radius int, candidates []*units.Unit) []*units.Unit {
	if cfg == nil {
		return []*units.Unit{primary}
	}

	var result []*units.Unit
	switch cfg.Shape {
	case AoECircle:
		result = UnitsInCircle(primary.Position, radius, candidates, cfg.IncludesTarget)
	case AoECone:
		result = UnitsInCone(origin, primary.Position, cfg.Angle, radius, candidates)
	case AoELine:
		result = UnitsInLine(origin, primary.Position, cfg.Width, candidates)
	default:
		result = []*units.Unit{primary}
	}

	if cfg.IncludesTarget && primary.IsAlive() {
		found := false
		for _, u := range result {
			if u.ID == primary.ID {
				found = true
				break
			}
		}
		if !found {
			result = append([]*units.Unit{primary}, result...)
		}
	}

	if len(result) == 0 && primary.IsAlive() {
		result = []*units.Unit{primary}
	}
	return result
}
