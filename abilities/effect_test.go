package abilities

import (
	"testing"
)

// TestEffectDispatchTotality checks the load-time contract: every declared
// effect type parses, unknown types are rejected before a battle starts.
func TestEffectDispatchTotality(t *testing.T) {
	known := []string{
		"damage", "hybrid_damage", "splash_damage", "ricochet", "multi_hit",
		"percent_hp_damage", "percent_damage_taken", "dash_through",
		"projectile_spread", "projectile_swarm", "execute", "burn", "dot",
		"sunder", "shred",
		"stun", "slow", "chill", "silence", "disarm", "taunt", "knockback",
		"pull", "dash",
		"heal", "heal_over_time", "shield", "shield_self", "wound", "cleanse",
		"buff", "buff_team", "mana_grant", "mana_reave", "decaying_buff",
		"stacking_buff", "permanent_stack",
		"effect_group", "multi_strike", "replace_attacks", "create_zone",
		"interval_trigger", "transform", "accumulator",
	}

	for _, tag := range known {
		if _, err := ParseEffect(Record{"type": tag}); err != nil {
			t.Errorf("declared effect %q failed to parse: %v", tag, err)
		}
	}

	if _, err := ParseEffect(Record{"type": "does_not_exist"}); err == nil {
		t.Error("unknown effect type accepted at load")
	}
}

func TestParseEffectsPropagatesNestedErrors(t *testing.T) {
	// A group carrying a bad sub-effect must fail at load, not at runtime.
	_, err := ParseEffect(Record{
		"type": "effect_group",
		"effects": []any{
			map[string]any{"type": "no_such_thing"},
		},
	})
	if err == nil {
		t.Error("effect group swallowed an unknown sub-effect")
	}

	_, err = ParseEffect(Record{
		"type": "create_zone",
		"on_tick_effects": []any{
			map[string]any{"type": "no_such_thing"},
		},
	})
	if err == nil {
		t.Error("zone swallowed an unknown on-tick effect")
	}
}

func TestParseAbility(t *testing.T) {
	rec := Record{
		"name":        "Fireball",
		"mana_cost":   80,
		"cast_time":   []any{20, 18, 15},
		"target_type": "current_target",
		"projectile": map[string]any{
			"speed":  3,
			"homing": true,
		},
		"aoe": map[string]any{
			"type":   "circle",
			"radius": []any{1, 1, 2},
		},
		"effects": []any{
			map[string]any{"type": "damage", "damage_type": "magical", "value": []any{200, 350, 600}, "scaling": "ap"},
			map[string]any{"type": "burn", "value": 20, "duration": 90},
		},
	}

	ability, err := ParseAbility("fireball", rec)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if ability.ManaCost != 80 {
		t.Errorf("mana cost = %d", ability.ManaCost)
	}
	if ability.CastTicks(1) != 20 || ability.CastTicks(3) != 15 {
		t.Errorf("cast ticks wrong: %d / %d", ability.CastTicks(1), ability.CastTicks(3))
	}
	if !ability.IsProjectile() {
		t.Error("projectile config lost")
	}
	if ability.AoERadius(3) != 2 {
		t.Errorf("AoE radius at 3 stars = %d, want 2", ability.AoERadius(3))
	}
	if len(ability.Effects) != 2 {
		t.Errorf("effect count = %d", len(ability.Effects))
	}
}

func TestParseAbilityRejectsBadEffect(t *testing.T) {
	rec := Record{
		"effects": []any{
			map[string]any{"type": "frobnicate"},
		},
	}
	if _, err := ParseAbility("broken", rec); err == nil {
		t.Error("ability with unknown effect type accepted")
	}
}

func TestConditionPredicates(t *testing.T) {
	caster := scalingUnit(0, 0)
	target := scalingUnit(0, 0)
	target.Position.Q = 5

	if !checkCondition(caster, target, "range_above_4") {
		t.Error("range_above_4 false at distance 5")
	}
	if checkCondition(caster, target, "range_below_3") {
		t.Error("range_below_3 true at distance 5")
	}

	target.Stats.CurrentHP = target.Stats.MaxHP() * 0.3
	if !checkCondition(caster, target, "target_below_hp_50") {
		t.Error("target_below_hp_50 false at 30% HP")
	}
	if checkCondition(caster, target, "target_above_hp_50") {
		t.Error("target_above_hp_50 true at 30% HP")
	}

	target.AddSlow(0.3, 60)
	if !checkCondition(caster, target, "target_has_chill") {
		t.Error("target_has_chill false while slowed")
	}

	if !checkCondition(caster, target, "") {
		t.Error("empty condition should always hold")
	}
	if checkCondition(caster, target, "garbage") {
		t.Error("malformed condition held")
	}
}
