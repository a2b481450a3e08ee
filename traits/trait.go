// Package traits implements team synergies: counting unique holders per
// team, activating the highest reached threshold, and firing threshold
// effects on their triggers.
package traits

import (
	"fmt"
	"sort"
)

// TriggerType names the moment a threshold's effects fire.
type TriggerType string

const (
	OnBattleStart TriggerType = "on_battle_start"
	OnHPThreshold TriggerType = "on_hp_threshold"
	OnTime        TriggerType = "on_time"
	OnDeath       TriggerType = "on_death"
	OnInterval    TriggerType = "on_interval"
	OnFirstCast   TriggerType = "on_first_cast"
	OnKill        TriggerType = "on_kill"
)

// EffectTarget names who receives a threshold effect.
type EffectTarget string

const (
	TargetHolders     EffectTarget = "holders"
	TargetTeam        EffectTarget = "team"
	TargetSelf        EffectTarget = "self"
	TargetAdjacent    EffectTarget = "adjacent"
	TargetEnemies     EffectTarget = "enemies"
	TargetNearestAlly EffectTarget = "nearest_ally"
)

// Trigger is a threshold's firing condition with its parameters (hp
// threshold fraction, tick time, interval).
type Trigger struct {
	Type   TriggerType    `bson:"type" json:"type"`
	Params map[string]any `bson:"params,omitempty" json:"params,omitempty"`
}

func (t Trigger) floatParam(key string, fallback float64) float64 {
	switch v := t.Params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

func (t Trigger) intParam(key string, fallback int) int {
	switch v := t.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// Effect is one threshold effect: a typed bonus aimed at a target group.
type Effect struct {
	Type   string         `bson:"type" json:"type"`
	Target EffectTarget   `bson:"target" json:"target"`
	Value  float64        `bson:"value" json:"value"`
	Params map[string]any `bson:"params,omitempty" json:"params,omitempty"`
}

func (e Effect) strParam(key, fallback string) string {
	if v, ok := e.Params[key].(string); ok {
		return v
	}
	return fallback
}

func (e Effect) intParam(key string, fallback int) int {
	switch v := e.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// Threshold is one activation tier. Higher tiers replace lower ones.
type Threshold struct {
	Count   int      `bson:"count" json:"count"`
	Trigger Trigger  `bson:"trigger" json:"trigger"`
	Effects []Effect `bson:"effects" json:"effects"`
}

// Trait is one synergy definition.
type Trait struct {
	ID          string            `bson:"id" json:"id"`
	Name        string            `bson:"name" json:"name"`
	Description string            `bson:"description,omitempty" json:"description,omitempty"`
	Thresholds  map[int]Threshold `bson:"thresholds" json:"thresholds"`
}

// ActiveThreshold returns the highest threshold whose count requirement is
// met, or nil. Thresholds replace each other, they never stack.
func (t *Trait) ActiveThreshold(count int) *Threshold {
	var active *Threshold
	for _, c := range t.ThresholdCounts() {
		if count >= c {
			th := t.Thresholds[c]
			active = &th
		}
	}
	return active
}

// ThresholdCounts returns the sorted tier counts.
func (t *Trait) ThresholdCounts() []int {
	counts := make([]int, 0, len(t.Thresholds))
	for c := range t.Thresholds {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	return counts
}

// ParseTrait builds a trait from its template record. Malformed thresholds
// are load-time errors.
func ParseTrait(id string, rec map[string]any) (*Trait, error) {
	t := &Trait{
		ID:         id,
		Name:       strField(rec, "name", id),
		Thresholds: map[int]Threshold{},
	}
	if desc, ok := rec["description"].(string); ok {
		t.Description = desc
	}

	thresholds, ok := rec["thresholds"].(map[string]any)
	if !ok {
		if alt, ok2 := rec["thresholds"].(map[int]any); ok2 {
			thresholds = make(map[string]any, len(alt))
			for k, v := range alt {
				thresholds[fmt.Sprintf("%d", k)] = v
			}
		} else if alt, ok2 := rec["thresholds"].(map[any]any); ok2 {
			thresholds = make(map[string]any, len(alt))
			for k, v := range alt {
				thresholds[fmt.Sprint(k)] = v
			}
		} else {
			return nil, fmt.Errorf("trait %q: missing thresholds", id)
		}
	}

	for key, raw := range thresholds {
		var count int
		if _, err := fmt.Sscanf(key, "%d", &count); err != nil {
			return nil, fmt.Errorf("trait %q: bad threshold key %q", id, key)
		}

		data, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("trait %q: threshold %d is not a record", id, count)
		}

		threshold, err := parseThreshold(count, data)
		if err != nil {
			return nil, fmt.Errorf("trait %q: %w", id, err)
		}
		t.Thresholds[count] = threshold
	}

	return t, nil
}

func parseThreshold(count int, rec map[string]any) (Threshold, error) {
	trigger := Trigger{Type: OnBattleStart}
	if s, ok := rec["trigger"].(string); ok {
		trigger.Type = TriggerType(s)
	}
	if params, ok := rec["trigger_params"].(map[string]any); ok {
		trigger.Params = params
	}

	var effects []Effect
	if raw, ok := rec["effects"].([]any); ok {
		for _, item := range raw {
			data, ok := item.(map[string]any)
			if !ok {
				return Threshold{}, fmt.Errorf("threshold %d: effect is not a record", count)
			}
			effects = append(effects, parseTraitEffect(data))
		}
	}

	return Threshold{Count: count, Trigger: trigger, Effects: effects}, nil
}

func parseTraitEffect(rec map[string]any) Effect {
	eff := Effect{
		Type:   strField(rec, "type", "stat_bonus"),
		Target: EffectTarget(strField(rec, "target", "holders")),
		Params: map[string]any{},
	}

	switch v := rec["value"].(type) {
	case float64:
		eff.Value = v
	case int:
		eff.Value = float64(v)
	}

	for k, v := range rec {
		if k == "type" || k == "target" || k == "value" {
			continue
		}
		eff.Params[k] = v
	}
	return eff
}

func strField(rec map[string]any, key, fallback string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return fallback
}
