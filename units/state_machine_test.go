package units

import "testing"

func TestCastProtocol(t *testing.T) {
	m := NewStateMachine()

	m.StartCast(15, 8, -1)

	if m.Current != StateCasting {
		t.Fatalf("state = %v, want CASTING", m.Current)
	}
	if !m.IsManaLocked() {
		t.Error("mana not locked at cast start")
	}
	if m.ShouldTriggerEffect() {
		t.Error("effect point reached before the delay elapsed")
	}

	// Effect point fires exactly once after the delay.
	for i := 0; i < 8; i++ {
		m.Tick()
	}
	if !m.ShouldTriggerEffect() {
		t.Fatal("effect point not reached after delay ticks")
	}
	m.MarkEffectTriggered()
	if m.ShouldTriggerEffect() {
		t.Error("effect point offered twice for one cast")
	}

	// Cast ends back in Idle with the lock released.
	for i := 0; i < 7; i++ {
		m.Tick()
	}
	if m.Current != StateIdle {
		t.Errorf("state = %v after cast end, want IDLE", m.Current)
	}
	if m.IsManaLocked() {
		t.Error("mana still locked after the cast-length lock elapsed")
	}
}

func TestManaLockOutlastsCast(t *testing.T) {
	m := NewStateMachine()
	m.StartCast(10, 0, 5)

	for i := 0; i < 10; i++ {
		m.Tick()
	}
	if m.Current != StateIdle {
		t.Fatalf("state = %v, want IDLE", m.Current)
	}
	if !m.IsManaLocked() {
		t.Error("configured extra mana lock did not outlast the cast")
	}

	for i := 0; i < 5; i++ {
		m.Tick()
	}
	if m.IsManaLocked() {
		t.Error("mana lock never released")
	}
}

// TestStunCancelsCast checks the hardest interaction: a stun mid-cast
// cancels the effect but leaves the mana lock counting.
func TestStunCancelsCast(t *testing.T) {
	m := NewStateMachine()
	m.StartCast(20, 10, -1)

	for i := 0; i < 5; i++ {
		m.Tick()
	}
	m.ApplyStun(6)

	if m.Current != StateStunned {
		t.Fatalf("state = %v, want STUNNED", m.Current)
	}
	if m.CastRemaining != 0 || m.EffectDelayRemaining != 0 {
		t.Error("cast timers not cleared by the stun")
	}
	if m.ShouldTriggerEffect() {
		t.Error("cancelled cast still offers its effect point")
	}
	if !m.IsManaLocked() {
		t.Error("stun cleared the mana lock")
	}
}

func TestStunRestoresPreviousState(t *testing.T) {
	m := NewStateMachine()
	m.TransitionTo(StateAttacking)
	m.ApplyStun(3)

	for i := 0; i < 3; i++ {
		m.Tick()
	}
	if m.Current != StateAttacking {
		t.Errorf("state = %v after stun, want ATTACKING restored", m.Current)
	}
}

func TestDeadIsTerminal(t *testing.T) {
	m := NewStateMachine()
	m.Die()

	if m.TransitionTo(StateIdle) {
		t.Error("transition out of DEAD allowed")
	}
	m.ApplyStun(10)
	if m.Current != StateDead {
		t.Error("stun moved a dead unit out of DEAD")
	}
	m.StartCast(10, 0, -1)
	if m.Current != StateDead {
		t.Error("cast moved a dead unit out of DEAD")
	}
}

func TestEffectNotTriggeredWithoutCast(t *testing.T) {
	m := NewStateMachine()
	if m.ShouldTriggerEffect() {
		t.Error("idle machine offers an effect point")
	}
}
