package abilities

import (
	"fmt"

	"github.com/nicoberrocal/arenaCore/combat"
)

// ProjectileConfig tunes a projectile delivery.
type ProjectileConfig struct {
	Speed   float64 `bson:"speed" json:"speed"`     // hexes per tick
	Homing  bool    `bson:"homing" json:"homing"`   // track the live target
	CanMiss bool    `bson:"canMiss" json:"canMiss"` // fizzle when the target dies
}

func parseProjectileConfig(rec Record) *ProjectileConfig {
	return &ProjectileConfig{
		Speed:   rec.float("speed", 2.0),
		Homing:  rec.boolean("homing", true),
		CanMiss: rec.boolean("can_miss", true),
	}
}

// AoEShape selects the area interpretation.
type AoEShape string

const (
	AoECircle AoEShape = "circle"
	AoECone   AoEShape = "cone"
	AoELine   AoEShape = "line"
)

// AoEConfig describes an ability's area of effect.
type AoEConfig struct {
	Shape          AoEShape  `bson:"shape" json:"shape"`
	Radius         StarValue `bson:"radius" json:"radius"` // circle radius / cone range
	Angle          float64   `bson:"angle" json:"angle"`   // cone opening, degrees
	Width          int       `bson:"width" json:"width"`   // line width
	IncludesTarget bool      `bson:"includesTarget" json:"includesTarget"`
}

func parseAoEConfig(rec Record) *AoEConfig {
	return &AoEConfig{
		Shape:          AoEShape(rec.str("type", "circle")),
		Radius:         rec.star("radius", 1),
		Angle:          rec.float("angle", 60),
		Width:          rec.intval("width", 1),
		IncludesTarget: rec.boolean("includes_target", true),
	}
}

// Ability is a fully parsed ability template: targeting, delivery and the
// effect list.
type Ability struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	ManaCost int    `bson:"manaCost" json:"manaCost"`

	CastTime    StarValue `bson:"castTime" json:"castTime"`
	EffectDelay StarValue `bson:"effectDelay" json:"effectDelay"`

	TargetType combat.Selector `bson:"-" json:"-"`

	Delivery   string            `bson:"delivery" json:"delivery"` // "instant" | "projectile"
	Projectile *ProjectileConfig `bson:"projectile,omitempty" json:"projectile,omitempty"`
	AoE        *AoEConfig        `bson:"aoe,omitempty" json:"aoe,omitempty"`

	Effects []Effect `bson:"-" json:"-"`
}

// CastTicks returns the full animation length at a star level.
func (a *Ability) CastTicks(star int) int {
	return int(a.CastTime.At(star))
}

// EffectDelayTicks returns the ticks from cast start until the effect point.
func (a *Ability) EffectDelayTicks(star int) int {
	return int(a.EffectDelay.At(star))
}

// AoERadius resolves the area radius at a star level; 0 without AoE config.
func (a *Ability) AoERadius(star int) int {
	if a.AoE == nil {
		return 0
	}
	return int(a.AoE.Radius.At(star))
}

// IsProjectile reports whether the ability resolves through a projectile.
func (a *Ability) IsProjectile() bool {
	return a.Delivery == "projectile" && a.Projectile != nil
}

// ParseAbility builds an ability from its template record. Effect parsing
// failures surface here, at load time.
func ParseAbility(id string, rec Record) (*Ability, error) {
	effects, err := ParseEffects(rec.recordList("effects"))
	if err != nil {
		return nil, fmt.Errorf("ability %q: %w", id, err)
	}

	selector, err := combat.ParseSelector(rec["target_type"])
	if err != nil {
		return nil, fmt.Errorf("ability %q: %w", id, err)
	}

	a := &Ability{
		ID:          id,
		Name:        rec.str("name", id),
		ManaCost:    rec.intval("mana_cost", 100),
		CastTime:    rec.star("cast_time", 15),
		EffectDelay: rec.star("effect_delay", 0),
		TargetType:  selector,
		Delivery:    rec.str("delivery", "instant"),
		Effects:     effects,
	}

	if proj, ok := rec.record("projectile"); ok {
		a.Projectile = parseProjectileConfig(proj)
		a.Delivery = "projectile"
	}
	if aoe, ok := rec.record("aoe"); ok {
		a.AoE = parseAoEConfig(aoe)
	}

	return a, nil
}
