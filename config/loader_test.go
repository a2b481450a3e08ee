package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const minimalDefaults = `
simulation:
  ticks_per_second: 30
  max_ticks: 900
unit_defaults:
  hp: 500
  attack_damage: 50
  crit_chance: 0.25
  crit_damage: 1.4
star_modifiers:
  2:
    hp_multiplier: 1.8
    damage_multiplier: 1.8
mana:
  mana_from_damage:
    pre_mitigation_percent: 0.01
    post_mitigation_percent: 0.03
    cap: 42.5
`

func TestDefaultsMergeIntoUnits(t *testing.T) {
	dir := writeDataDir(t, map[string]string{
		"defaults.yaml": minimalDefaults,
		"units.yaml": `
units:
  warrior:
    name: "Warrior"
    hp: 700
    traits: [knight]
`,
	})

	loader := NewLoader(dir)
	templates, err := loader.Templates()
	require.NoError(t, err)

	warrior := templates.Units["warrior"]
	require.NotNil(t, warrior)

	// hp overridden, crit values inherited from unit_defaults.
	assert.Equal(t, 700.0, warrior.Stats.BaseHP)
	assert.Equal(t, 0.25, warrior.Stats.BaseCritChance)
	assert.Equal(t, 1.4, warrior.Stats.BaseCritDamage)
	assert.Equal(t, []string{"knight"}, warrior.Traits)
}

func TestSimulationConfigOverrides(t *testing.T) {
	dir := writeDataDir(t, map[string]string{
		"defaults.yaml": minimalDefaults,
		"units.yaml":    "units: {}\n",
	})

	cfg, err := NewLoader(dir).SimulationConfig()
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.MaxTicks)
	assert.Equal(t, 30, cfg.TicksPerSecond)
	// Unset values keep the kernel defaults.
	assert.Equal(t, 7, cfg.GridWidth)
	assert.Equal(t, 8, cfg.GridHeight)
}

func TestUnknownEffectTypeFailsLoad(t *testing.T) {
	dir := writeDataDir(t, map[string]string{
		"units.yaml": "units: {}\n",
		"abilities.yaml": `
abilities:
  broken:
    effects:
      - type: frobnicate
        value: 10
`,
	})

	_, err := NewLoader(dir).Templates()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestUnknownAbilityReferenceFailsLoad(t *testing.T) {
	dir := writeDataDir(t, map[string]string{
		"units.yaml": `
units:
  caster:
    ability: missing_spell
`,
	})

	_, err := NewLoader(dir).Templates()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_spell")
}

func TestStarModifiersAndManaRule(t *testing.T) {
	dir := writeDataDir(t, map[string]string{
		"defaults.yaml": minimalDefaults,
		"units.yaml":    "units: {}\n",
	})

	templates, err := NewLoader(dir).Templates()
	require.NoError(t, err)

	assert.Equal(t, 1.8, templates.StarModifiers[2].HPMultiplier)
	// Untouched tiers keep the engine defaults.
	assert.Equal(t, 3.24, templates.StarModifiers[3].HPMultiplier)
	assert.Equal(t, 42.5, templates.ManaRule.Cap)
}

func TestFullBundleLoads(t *testing.T) {
	dir := writeDataDir(t, map[string]string{
		"defaults.yaml": minimalDefaults,
		"units.yaml": `
units:
  pyro:
    name: "Pyro"
    ability: fireball
    mana_class: sorcerer
`,
		"abilities.yaml": `
abilities:
  fireball:
    mana_cost: 80
    cast_time: [20, 18, 15]
    effects:
      - type: damage
        damage_type: magical
        value: [200, 350, 600]
        scaling: ap
`,
		"items.yaml": `
items:
  sword:
    stats:
      attack_damage: 20
`,
		"traits.yaml": `
traits:
  knight:
    thresholds:
      2:
        trigger: on_battle_start
        effects:
          - type: stat_bonus
            stat: armor
            value: 20
            target: holders
`,
		"classes.yaml": `
classes:
  sorcerer:
    mana_from_damage_multiplier: 1.3
`,
	})

	templates, err := NewLoader(dir).Templates()
	require.NoError(t, err)

	assert.Len(t, templates.Abilities, 1)
	assert.Len(t, templates.Items, 1)
	assert.Len(t, templates.Traits, 1)
	assert.Equal(t, 1.3, templates.Classes.Get("sorcerer").ManaFromDamageMultiplier)
	assert.Equal(t, 18, templates.Abilities["fireball"].CastTicks(2))
}

func TestMissingUnitsFileFails(t *testing.T) {
	dir := writeDataDir(t, map[string]string{})
	_, err := NewLoader(dir).Templates()
	require.Error(t, err)
}
