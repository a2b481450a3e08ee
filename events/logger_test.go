package events

import "testing"

func TestTraceAssembly(t *testing.T) {
	logger := NewLogger(42, 7, 8, 30)

	logger.SimulationStarted(0, []map[string]any{{"id": "a"}, {"id": "b"}})
	logger.UnitMoved(1, "a", 0, 0, 1, 0)
	logger.UnitAttacked(2, "a", "b", 55.5, true, false)
	logger.UnitDamaged(2, "b", "a", 55.5, "PHYSICAL", 444.5)
	logger.UnitDied(3, "b", "a")
	winner := 0
	logger.SimulationEnded(3, &winner, []string{"a"})

	trace := logger.Trace()

	if trace.Metadata.Seed != 42 || trace.Metadata.TicksPerSecond != 30 {
		t.Errorf("metadata wrong: %+v", trace.Metadata)
	}
	if trace.Metadata.Grid.Width != 7 || trace.Metadata.Grid.Height != 8 {
		t.Errorf("grid metadata wrong: %+v", trace.Metadata.Grid)
	}
	if len(trace.InitialState.Units) != 2 {
		t.Errorf("initial state holds %d units", len(trace.InitialState.Units))
	}
	if trace.FinalState.WinnerTeam == nil || *trace.FinalState.WinnerTeam != 0 {
		t.Errorf("final state winner wrong: %+v", trace.FinalState)
	}
	if len(trace.FinalState.Survivors) != 1 || trace.FinalState.Survivors[0] != "a" {
		t.Errorf("survivors wrong: %v", trace.FinalState.Survivors)
	}
	if trace.ID.IsZero() {
		t.Error("trace id not assigned")
	}

	if logger.EventCount() != 6 {
		t.Errorf("event count = %d, want 6", logger.EventCount())
	}
}

func TestEventPayloads(t *testing.T) {
	logger := NewLogger(1, 7, 8, 30)

	logger.UnitMoved(5, "u", 1, 3, 2, 3)
	moves := logger.EventsOfType(UnitMove)
	if len(moves) != 1 {
		t.Fatalf("move events = %d", len(moves))
	}
	from, ok := moves[0].Data["from"].([]int)
	if !ok || from[0] != 1 || from[1] != 3 {
		t.Errorf("move from payload wrong: %v", moves[0].Data["from"])
	}

	logger.UnitAttacked(6, "u", "v", 100.04, false, true)
	attacks := logger.EventsOfType(UnitAttack)
	if attacks[0].Data["was_dodged"] != true {
		t.Error("dodge flag lost")
	}
	if attacks[0].Data["damage"] != 100.0 {
		t.Errorf("damage not rounded: %v", attacks[0].Data["damage"])
	}

	logger.UnitDied(7, "v", "")
	death := logger.EventsOfType(UnitDeath)[0]
	if _, present := death.Data["killer_id"]; present {
		t.Error("empty killer id serialised")
	}
}

func TestEventFilters(t *testing.T) {
	logger := NewLogger(1, 7, 8, 30)
	logger.UnitMoved(1, "a", 0, 0, 1, 0)
	logger.UnitMoved(2, "b", 0, 1, 1, 1)
	logger.UnitMoved(3, "a", 1, 0, 2, 0)

	if got := len(logger.EventsForUnit("a")); got != 2 {
		t.Errorf("events for a = %d, want 2", got)
	}
	if got := len(logger.EventsOfType(UnitMove)); got != 3 {
		t.Errorf("move events = %d, want 3", got)
	}
}
