package abilities

import (
	"math"

	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

// projectileTimeout deactivates projectiles that never connect.
const projectileTimeout = 300

// Projectile is one in-flight delivery. Position is fractional axial so
// sub-hex movement accumulates between ticks. Source and target are weak
// references; resolution re-validates them on impact.
type Projectile struct {
	SourceID string `bson:"sourceId" json:"sourceId"`
	Source   *units.Unit
	Target   *units.Unit
	TargetID string `bson:"targetId,omitempty" json:"targetId,omitempty"`

	// The target's cell at launch. Non-homing shots always fly here; homing
	// shots follow the target's current position instead.
	TargetPos hex.Coord `bson:"targetPos" json:"targetPos"`

	Ability *Ability `bson:"-" json:"-"`
	Star    int      `bson:"star" json:"star"`

	PosQ    float64 `bson:"posQ" json:"posQ"`
	PosR    float64 `bson:"posR" json:"posR"`
	Speed   float64 `bson:"speed" json:"speed"`
	Homing  bool    `bson:"homing" json:"homing"`
	CanMiss bool    `bson:"canMiss" json:"canMiss"`

	Active     bool `bson:"active" json:"active"`
	TicksAlive int  `bson:"ticksAlive" json:"ticksAlive"`
	MaxTicks   int  `bson:"maxTicks" json:"maxTicks"`
}

// destination returns where the projectile is heading this tick.
func (p *Projectile) destination() (float64, float64) {
	if p.Homing && p.Target != nil && p.Target.IsAlive() {
		return float64(p.Target.Position.Q), float64(p.Target.Position.R)
	}
	if p.Target != nil && !p.Homing {
		return float64(p.TargetPos.Q), float64(p.TargetPos.R)
	}
	if p.Target != nil {
		// Homing but target dead: finish on the last known spot.
		return float64(p.Target.Position.Q), float64(p.Target.Position.R)
	}
	return float64(p.TargetPos.Q), float64(p.TargetPos.R)
}

// tick advances the projectile and reports arrival.
func (p *Projectile) tick() bool {
	if !p.Active {
		return false
	}

	p.TicksAlive++
	if p.TicksAlive > p.MaxTicks {
		p.Active = false
		return false
	}

	if p.CanMiss && p.Target != nil && !p.Target.IsAlive() {
		p.Active = false
		return false
	}

	destQ, destR := p.destination()
	dq := destQ - p.PosQ
	dr := destR - p.PosR
	distance := math.Sqrt(dq*dq + dr*dr)

	if distance <= p.Speed {
		p.PosQ = destQ
		p.PosR = destR
		return true
	}

	p.PosQ += dq / distance * p.Speed
	p.PosR += dr / distance * p.Speed
	return false
}

// ProjectileManager owns every projectile currently in flight.
type ProjectileManager struct {
	projectiles []*Projectile
}

// NewProjectileManager returns an empty manager.
func NewProjectileManager() *ProjectileManager {
	return &ProjectileManager{}
}

// Spawn launches a projectile from source toward target carrying the
// ability at the caster's star level.
func (m *ProjectileManager) Spawn(source, target *units.Unit, ability *Ability, star int) *Projectile {
	cfg := ability.Projectile

	p := &Projectile{
		SourceID:  source.ID,
		Source:    source,
		Target:    target,
		TargetID:  target.ID,
		TargetPos: target.Position,
		Ability:   ability,
		Star:      star,
		PosQ:      float64(source.Position.Q),
		PosR:      float64(source.Position.R),
		Speed:     2.0,
		Homing:    true,
		CanMiss:   true,
		Active:    true,
		MaxTicks:  projectileTimeout,
	}
	if cfg != nil {
		p.Speed = cfg.Speed
		p.Homing = cfg.Homing
		p.CanMiss = cfg.CanMiss
	}

	m.projectiles = append(m.projectiles, p)
	return p
}

// Tick advances every projectile one step and returns those that arrived
// this tick, in spawn order.
func (m *ProjectileManager) Tick() []*Projectile {
	var arrived []*Projectile
	stillActive := m.projectiles[:0]

	for _, p := range m.projectiles {
		if p.tick() {
			arrived = append(arrived, p)
			continue
		}
		if p.Active {
			stillActive = append(stillActive, p)
		}
	}

	m.projectiles = stillActive
	return arrived
}

// ActiveCount returns how many projectiles are in flight.
func (m *ProjectileManager) ActiveCount() int {
	return len(m.projectiles)
}

// Clear drops every projectile, for battle reset.
func (m *ProjectileManager) Clear() {
	m.projectiles = nil
}
