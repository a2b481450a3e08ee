// Package events holds the battle trace: an append-only buffer of typed
// events between an initial and a final snapshot. The trace is a
// self-describing document a viewer replays frame by frame; structs carry
// bson and json tags so the same shape lands in storage and over HTTP.
package events

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TraceVersion stamps the document format.
const TraceVersion = "1.0"

// EventType enumerates everything that can appear in a trace.
type EventType string

const (
	SimulationStart EventType = "SIMULATION_START"
	SimulationEnd   EventType = "SIMULATION_END"
	TickStart       EventType = "TICK_START"

	UnitSpawn    EventType = "UNIT_SPAWN"
	UnitMove     EventType = "UNIT_MOVE"
	UnitAttack   EventType = "UNIT_ATTACK"
	UnitDamage   EventType = "UNIT_DAMAGE"
	UnitHeal     EventType = "UNIT_HEAL"
	UnitDeath    EventType = "UNIT_DEATH"
	UnitManaGain EventType = "UNIT_MANA_GAIN"

	AbilityCast   EventType = "ABILITY_CAST"
	AbilityEffect EventType = "ABILITY_EFFECT"

	BuffApply  EventType = "BUFF_APPLY"
	BuffExpire EventType = "BUFF_EXPIRE"
	BuffStack  EventType = "BUFF_STACK"

	StateChange    EventType = "STATE_CHANGE"
	TargetAcquired EventType = "TARGET_ACQUIRED"
	TargetLost     EventType = "TARGET_LOST"
)

// Event is one trace entry.
type Event struct {
	Tick     int            `bson:"tick" json:"tick"`
	Type     EventType      `bson:"type" json:"type"`
	UnitID   string         `bson:"unit_id,omitempty" json:"unit_id,omitempty"`
	TargetID string         `bson:"target_id,omitempty" json:"target_id,omitempty"`
	Data     map[string]any `bson:"data,omitempty" json:"data,omitempty"`
}

// Metadata describes the run the trace came from.
type Metadata struct {
	Version        string    `bson:"version" json:"version"`
	Seed           int64     `bson:"seed" json:"seed"`
	TicksPerSecond int       `bson:"ticks_per_second" json:"ticks_per_second"`
	Grid           GridSize  `bson:"grid" json:"grid"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// GridSize is the board dimensions block of the metadata.
type GridSize struct {
	Width  int `bson:"width" json:"width"`
	Height int `bson:"height" json:"height"`
}

// InitialState is the pre-battle roster snapshot.
type InitialState struct {
	Units []map[string]any `bson:"units" json:"units"`
}

// FinalState is the outcome block.
type FinalState struct {
	WinnerTeam *int     `bson:"winner_team" json:"winner_team"`
	TotalTicks int      `bson:"total_ticks" json:"total_ticks"`
	Survivors  []string `bson:"survivors" json:"survivors"`
}

// Trace is the complete battle document.
type Trace struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Metadata     Metadata      `bson:"metadata" json:"metadata"`
	InitialState InitialState  `bson:"initial_state" json:"initial_state"`
	Events       []Event       `bson:"events" json:"events"`
	FinalState   FinalState    `bson:"final_state" json:"final_state"`
}

// Logger accumulates events in memory during a run. Nothing is serialised
// until the simulation returns.
type Logger struct {
	metadata Metadata
	initial  InitialState
	final    FinalState
	events   []Event
}

// NewLogger starts an empty trace for a run.
func NewLogger(seed int64, gridWidth, gridHeight, ticksPerSecond int) *Logger {
	return &Logger{
		metadata: Metadata{
			Version:        TraceVersion,
			Seed:           seed,
			TicksPerSecond: ticksPerSecond,
			Grid:           GridSize{Width: gridWidth, Height: gridHeight},
			Timestamp:      time.Now().UTC(),
		},
	}
}

// Log appends one event.
func (l *Logger) Log(e Event) {
	l.events = append(l.events, e)
}

// Emit builds and appends an event in place.
func (l *Logger) Emit(tick int, eventType EventType, unitID, targetID string, data map[string]any) {
	l.Log(Event{Tick: tick, Type: eventType, UnitID: unitID, TargetID: targetID, Data: data})
}

// --- typed helpers ---

// SimulationStarted records the initial roster snapshot.
func (l *Logger) SimulationStarted(tick int, unitSnapshots []map[string]any) {
	l.initial = InitialState{Units: unitSnapshots}
	l.Emit(tick, SimulationStart, "", "", map[string]any{"units": len(unitSnapshots)})
}

// SimulationEnded records the outcome and the final-state block.
func (l *Logger) SimulationEnded(tick int, winnerTeam *int, survivorIDs []string) {
	l.final = FinalState{WinnerTeam: winnerTeam, TotalTicks: tick, Survivors: survivorIDs}
	data := map[string]any{"total_ticks": tick, "survivors": survivorIDs}
	if winnerTeam != nil {
		data["winner_team"] = *winnerTeam
	} else {
		data["winner_team"] = nil
	}
	l.Emit(tick, SimulationEnd, "", "", data)
}

// UnitSpawned records a placed unit.
func (l *Logger) UnitSpawned(tick int, snapshot map[string]any) {
	id, _ := snapshot["id"].(string)
	l.Emit(tick, UnitSpawn, id, "", snapshot)
}

// UnitMoved records one step.
func (l *Logger) UnitMoved(tick int, unitID string, fromQ, fromR, toQ, toR int) {
	l.Emit(tick, UnitMove, unitID, "", map[string]any{
		"from": []int{fromQ, fromR},
		"to":   []int{toQ, toR},
	})
}

// UnitAttacked records an auto-attack, landed or dodged.
func (l *Logger) UnitAttacked(tick int, unitID, targetID string, damage float64, isCrit, wasDodged bool) {
	l.Emit(tick, UnitAttack, unitID, targetID, map[string]any{
		"damage":     round1(damage),
		"is_crit":    isCrit,
		"was_dodged": wasDodged,
	})
}

// UnitDamaged records damage reaching a unit.
func (l *Logger) UnitDamaged(tick int, unitID, sourceID string, damage float64, damageType string, hpAfter float64) {
	l.Emit(tick, UnitDamage, unitID, "", map[string]any{
		"source_id":   sourceID,
		"damage":      round1(damage),
		"damage_type": damageType,
		"hp_after":    round1(hpAfter),
	})
}

// UnitHealed records restored HP.
func (l *Logger) UnitHealed(tick int, unitID, sourceID string, amount, hpAfter float64) {
	l.Emit(tick, UnitHeal, unitID, "", map[string]any{
		"source_id": sourceID,
		"amount":    round1(amount),
		"hp_after":  round1(hpAfter),
	})
}

// UnitDied records a death with its killer when known.
func (l *Logger) UnitDied(tick int, unitID, killerID string) {
	data := map[string]any{}
	if killerID != "" {
		data["killer_id"] = killerID
	}
	l.Emit(tick, UnitDeath, unitID, "", data)
}

// ManaGained records a mana change worth tracing.
func (l *Logger) ManaGained(tick int, unitID string, amount, manaAfter float64) {
	l.Emit(tick, UnitManaGain, unitID, "", map[string]any{
		"amount":     round1(amount),
		"mana_after": round1(manaAfter),
	})
}

// AbilityCasted records a cast firing its effect point.
func (l *Logger) AbilityCasted(tick int, unitID, abilityID string, targets []string) {
	l.Emit(tick, AbilityCast, unitID, "", map[string]any{
		"ability_id": abilityID,
		"targets":    targets,
	})
}

// AbilityEffectApplied records one non-cosmetic effect application.
func (l *Logger) AbilityEffectApplied(tick int, unitID, abilityID, effectType string, value float64, targets []string) {
	l.Emit(tick, AbilityEffect, unitID, "", map[string]any{
		"ability_id":  abilityID,
		"effect_type": effectType,
		"value":       round1(value),
		"targets":     targets,
	})
}

// BuffApplied records a modifier layer landing.
func (l *Logger) BuffApplied(tick int, unitID, buffID string, duration int) {
	l.Emit(tick, BuffApply, unitID, "", map[string]any{
		"buff_id":  buffID,
		"duration": duration,
	})
}

// BuffExpired records a modifier layer lapsing.
func (l *Logger) BuffExpired(tick int, unitID, buffID string) {
	l.Emit(tick, BuffExpire, unitID, "", map[string]any{"buff_id": buffID})
}

// BuffStacked records a stacking buff gaining a stack.
func (l *Logger) BuffStacked(tick int, unitID, buffID string, stacks int) {
	l.Emit(tick, BuffStack, unitID, "", map[string]any{
		"buff_id": buffID,
		"stacks":  stacks,
	})
}

// StateChanged records a state machine transition.
func (l *Logger) StateChanged(tick int, unitID, fromState, toState string) {
	l.Emit(tick, StateChange, unitID, "", map[string]any{
		"from_state": fromState,
		"to_state":   toState,
	})
}

// TargetAcquiredBy records a target pick.
func (l *Logger) TargetAcquiredBy(tick int, unitID, targetID string) {
	l.Emit(tick, TargetAcquired, unitID, targetID, nil)
}

// TargetLostBy records a target reference going stale.
func (l *Logger) TargetLostBy(tick int, unitID, targetID string) {
	l.Emit(tick, TargetLost, unitID, targetID, nil)
}

// --- output ---

// Trace assembles the finished document.
func (l *Logger) Trace() *Trace {
	return &Trace{
		ID:           bson.NewObjectID(),
		Metadata:     l.metadata,
		InitialState: l.initial,
		Events:       l.events,
		FinalState:   l.final,
	}
}

// EventCount returns how many events have been logged.
func (l *Logger) EventCount() int {
	return len(l.events)
}

// EventsOfType filters the buffer by type.
func (l *Logger) EventsOfType(t EventType) []Event {
	var result []Event
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// EventsForUnit filters the buffer by acting unit.
func (l *Logger) EventsForUnit(unitID string) []Event {
	var result []Event
	for _, e := range l.events {
		if e.UnitID == unitID {
			result = append(result, e)
		}
	}
	return result
}

func round1(v float64) float64 {
	if v >= 0 {
		return float64(int(v*10+0.5)) / 10
	}
	return float64(int(v*10-0.5)) / 10
}
