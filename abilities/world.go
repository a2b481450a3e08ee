package abilities

import (
	"github.com/nicoberrocal/arenaCore/combat"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/rng"
	"github.com/nicoberrocal/arenaCore/units"
)

// World is the narrow surface effects mutate the battle through. The
// simulation kernel implements it; effects never see the kernel directly.
//
// DealDamage and Heal are the only paths that change HP: the kernel keeps
// conditional item modifiers, mana gain, event logging and death handling
// behind them.
type World interface {
	Grid() *hex.Grid
	RNG() *rng.Stream
	CurrentTick() int
	TicksPerSecond() int

	Units() []*units.Unit
	UnitByID(id string) *units.Unit
	Enemies(team int) []*units.Unit
	Allies(team int) []*units.Unit
	EnemiesInRadius(pos hex.Coord, radius, team int) []*units.Unit

	// DealDamage runs the damage pipeline and applies the result, with all
	// bookkeeping (mana, lifesteal, logging, death) included.
	DealDamage(attacker, defender *units.Unit, base float64, damageType combat.DamageType, canCrit, canDodge, isAbility bool) combat.Result

	// Heal restores HP on the target (wound-reduced) attributed to caster.
	Heal(caster, target *units.Unit, amount float64) float64

	// Kill executes a unit outright (execute effects), attributing the kill.
	Kill(attacker, victim *units.Unit)

	// MoveUnit relocates a unit for displacement effects. Returns false when
	// the destination is off-grid or occupied; the move is then suppressed.
	MoveUnit(u *units.Unit, to hex.Coord) bool

	// AddZone registers a persistent area effect.
	AddZone(z *Zone)
}

// Zone is a persistent position-anchored area. The kernel ticks it: on-tick
// effect records fire on every whole second of its life, on-end records fire
// once when it lapses.
type Zone struct {
	Position    hex.Coord `bson:"position" json:"position"`
	Radius      int       `bson:"radius" json:"radius"`
	Duration    int       `bson:"duration" json:"duration"`
	Remaining   int       `bson:"remaining" json:"remaining"`
	CasterID    string    `bson:"casterId" json:"casterId"`
	Star        int       `bson:"star" json:"star"`
	OnTick      []Record  `bson:"onTick,omitempty" json:"onTick,omitempty"`
	OnEnd       []Record  `bson:"onEnd,omitempty" json:"onEnd,omitempty"`
	TrackDamage bool      `bson:"trackDamage" json:"trackDamage"`
	DamageTaken float64   `bson:"damageTaken" json:"damageTaken"`
}
