package abilities

import (
	"testing"

	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

func projUnit(id string, q, r int) *units.Unit {
	stats := units.DefaultStats()
	return units.New(id, id, id, 0, 1, hex.Coord{Q: q, R: r}, stats, units.DefaultStarModifiers())
}

func projAbility(speed float64, homing, canMiss bool) *Ability {
	return &Ability{
		ID:       "bolt",
		Name:     "Bolt",
		Delivery: "projectile",
		Projectile: &ProjectileConfig{
			Speed:   speed,
			Homing:  homing,
			CanMiss: canMiss,
		},
	}
}

func TestProjectileArrives(t *testing.T) {
	m := NewProjectileManager()
	source := projUnit("src", 0, 0)
	target := projUnit("dst", 4, 0)

	m.Spawn(source, target, projAbility(2, true, true), 1)

	var arrived []*Projectile
	for tick := 0; tick < 10 && len(arrived) == 0; tick++ {
		arrived = m.Tick()
	}

	if len(arrived) != 1 {
		t.Fatal("projectile never arrived")
	}
	if m.ActiveCount() != 0 {
		t.Error("arrived projectile still tracked")
	}
	if arrived[0].Star != 1 {
		t.Errorf("star level lost in flight: %d", arrived[0].Star)
	}
}

// TestProjectileHomingTracksMovedTarget verifies the homing flag: the shot
// follows the live position, not the launch snapshot.
func TestProjectileHomingTracksMovedTarget(t *testing.T) {
	m := NewProjectileManager()
	source := projUnit("src", 0, 0)
	target := projUnit("dst", 3, 0)

	m.Spawn(source, target, projAbility(1, true, true), 1)
	m.Tick()

	// Target repositions mid-flight.
	target.Position = hex.Coord{Q: 3, R: 3}

	arrived := false
	for tick := 0; tick < 20 && !arrived; tick++ {
		arrived = len(m.Tick()) > 0
	}
	if !arrived {
		t.Fatal("homing projectile never caught the target")
	}
}

func TestProjectileFizzlesOnDeadTarget(t *testing.T) {
	m := NewProjectileManager()
	source := projUnit("src", 0, 0)
	target := projUnit("dst", 6, 0)

	m.Spawn(source, target, projAbility(1, true, true), 1)
	m.Tick()
	target.Die()

	for tick := 0; tick < 10; tick++ {
		if arrived := m.Tick(); len(arrived) > 0 {
			t.Fatal("can-miss projectile connected with a dead target")
		}
	}
	if m.ActiveCount() != 0 {
		t.Error("fizzled projectile still tracked")
	}
}

func TestProjectileTimeout(t *testing.T) {
	m := NewProjectileManager()
	source := projUnit("src", 0, 0)
	target := projUnit("dst", 6, 0)

	p := m.Spawn(source, target, projAbility(0.001, true, false), 1)
	p.MaxTicks = 5

	for tick := 0; tick < 10; tick++ {
		m.Tick()
	}
	if m.ActiveCount() != 0 {
		t.Error("timed-out projectile still tracked")
	}
}
