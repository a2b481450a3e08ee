// Package config loads the on-disk template set (defaults, units,
// abilities, items, traits, classes) and assembles the parsed bundle the
// kernel consumes. Every template error surfaces here, before a simulation
// starts.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nicoberrocal/arenaCore/abilities"
	"github.com/nicoberrocal/arenaCore/items"
	"github.com/nicoberrocal/arenaCore/sim"
	"github.com/nicoberrocal/arenaCore/traits"
	"github.com/nicoberrocal/arenaCore/units"
)

// Loader reads the YAML files of a data directory and caches the raw
// documents. Build templates with Templates.
type Loader struct {
	dataPath string

	defaults  map[string]any
	units     map[string]any
	abilities map[string]any
	items     map[string]any
	traits    map[string]any
	classes   map[string]any
}

// NewLoader points a loader at a data directory.
func NewLoader(dataPath string) *Loader {
	return &Loader{dataPath: dataPath}
}

func (l *Loader) loadFile(name string, optional bool) (map[string]any, error) {
	path := filepath.Join(l.dataPath, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (l *Loader) load() error {
	var err error
	if l.defaults == nil {
		if l.defaults, err = l.loadFile("defaults.yaml", true); err != nil {
			return err
		}
	}
	if l.units == nil {
		if l.units, err = l.loadFile("units.yaml", false); err != nil {
			return err
		}
	}
	if l.abilities == nil {
		if l.abilities, err = l.loadFile("abilities.yaml", true); err != nil {
			return err
		}
	}
	if l.items == nil {
		if l.items, err = l.loadFile("items.yaml", true); err != nil {
			return err
		}
	}
	if l.traits == nil {
		if l.traits, err = l.loadFile("traits.yaml", true); err != nil {
			return err
		}
	}
	if l.classes == nil {
		if l.classes, err = l.loadFile("classes.yaml", true); err != nil {
			return err
		}
	}
	return nil
}

// Reload clears every cached document.
func (l *Loader) Reload() {
	l.defaults = nil
	l.units = nil
	l.abilities = nil
	l.items = nil
	l.traits = nil
	l.classes = nil
}

// Templates parses everything into the kernel's bundle. The first
// malformed record aborts the load.
func (l *Loader) Templates() (*sim.Templates, error) {
	if err := l.load(); err != nil {
		return nil, err
	}

	templates := &sim.Templates{
		Units:         map[string]*sim.UnitTemplate{},
		Abilities:     map[string]*abilities.Ability{},
		Items:         map[string]*items.Item{},
		Traits:        map[string]*traits.Trait{},
		StarModifiers: l.starModifiers(),
		ManaRule:      l.manaRule(),
	}

	unitDefaults, _ := l.defaults["unit_defaults"].(map[string]any)

	for id, raw := range section(l.units, "units") {
		rec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unit %q: record is not a mapping", id)
		}
		merged := deepMerge(unitDefaults, rec)
		tmpl, err := unitTemplateFromRecord(id, merged)
		if err != nil {
			return nil, err
		}
		templates.Units[id] = tmpl
	}

	for id, raw := range section(l.abilities, "abilities") {
		rec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ability %q: record is not a mapping", id)
		}
		ability, err := abilities.ParseAbility(id, abilities.Record(rec))
		if err != nil {
			return nil, err
		}
		templates.Abilities[id] = ability
	}

	for id, raw := range section(l.items, "items") {
		rec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %q: record is not a mapping", id)
		}
		item, err := items.ParseItem(id, rec)
		if err != nil {
			return nil, err
		}
		templates.Items[id] = item
	}

	for id, raw := range section(l.traits, "traits") {
		rec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("trait %q: record is not a mapping", id)
		}
		trait, err := traits.ParseTrait(id, rec)
		if err != nil {
			return nil, err
		}
		templates.Traits[id] = trait
	}

	classes := map[string]units.ChampionClass{}
	for id, raw := range section(l.classes, "classes") {
		rec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("class %q: record is not a mapping", id)
		}
		classes[id] = classFromRecord(rec)
	}
	templates.Classes = units.NewClassRegistry(classes)

	// Every unit's ability must resolve.
	for id, tmpl := range templates.Units {
		if tmpl.Ability != "" {
			if _, ok := templates.Abilities[tmpl.Ability]; !ok {
				return nil, fmt.Errorf("unit %q references unknown ability %q", id, tmpl.Ability)
			}
		}
	}

	return templates, nil
}

// SimulationConfig returns the kernel overrides from the defaults file.
func (l *Loader) SimulationConfig() (sim.Config, error) {
	if err := l.load(); err != nil {
		return sim.Config{}, err
	}

	cfg := sim.DefaultConfig()
	rec, ok := l.defaults["simulation"].(map[string]any)
	if !ok {
		return cfg, nil
	}

	if v := intField(rec, "ticks_per_second"); v > 0 {
		cfg.TicksPerSecond = v
	}
	if v := intField(rec, "max_ticks"); v > 0 {
		cfg.MaxTicks = v
	}
	if v := intField(rec, "grid_width"); v > 0 {
		cfg.GridWidth = v
	}
	if v := intField(rec, "grid_height"); v > 0 {
		cfg.GridHeight = v
	}
	return cfg, nil
}

// UnitIDs lists the loaded unit template ids.
func (l *Loader) UnitIDs() ([]string, error) {
	if err := l.load(); err != nil {
		return nil, err
	}
	var ids []string
	for id := range section(l.units, "units") {
		ids = append(ids, id)
	}
	return ids, nil
}

func (l *Loader) starModifiers() map[int]units.StarModifiers {
	mods := units.DefaultStarModifiers()
	rec, ok := l.defaults["star_modifiers"].(map[string]any)
	if !ok {
		alt, ok2 := l.defaults["star_modifiers"].(map[any]any)
		if !ok2 {
			return mods
		}
		rec = make(map[string]any, len(alt))
		for k, v := range alt {
			rec[fmt.Sprint(k)] = v
		}
	}

	for key, raw := range rec {
		var star int
		if _, err := fmt.Sscanf(key, "%d", &star); err != nil {
			continue
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		m := mods[star]
		if v := floatField(entry, "hp_multiplier"); v > 0 {
			m.HPMultiplier = v
		}
		if v := floatField(entry, "damage_multiplier"); v > 0 {
			m.DamageMultiplier = v
		}
		mods[star] = m
	}
	return mods
}

func (l *Loader) manaRule() units.ManaRule {
	rule := units.DefaultManaRule()
	mana, ok := l.defaults["mana"].(map[string]any)
	if !ok {
		return rule
	}
	fromDamage, ok := mana["mana_from_damage"].(map[string]any)
	if !ok {
		return rule
	}

	if v := floatField(fromDamage, "pre_mitigation_percent"); v > 0 {
		rule.PreMitigationPercent = v
	}
	if v := floatField(fromDamage, "post_mitigation_percent"); v > 0 {
		rule.PostMitigationPercent = v
	}
	if v := floatField(fromDamage, "cap"); v > 0 {
		rule.Cap = v
	}
	return rule
}

// --- record parsing ---

func unitTemplateFromRecord(id string, rec map[string]any) (*sim.UnitTemplate, error) {
	tmpl := &sim.UnitTemplate{
		ID:    id,
		Name:  strField(rec, "name", id),
		Cost:  intField(rec, "cost"),
		Stats: statsFromRecord(rec),
	}

	if ability, ok := rec["ability"].(string); ok {
		tmpl.Ability = ability
	}
	if class, ok := rec["mana_class"].(string); ok {
		tmpl.ManaClass = class
	}
	if v := floatField(rec, "mana_per_attack"); v > 0 {
		tmpl.ManaPerAttack = v
	}

	switch traits := rec["traits"].(type) {
	case []any:
		for _, t := range traits {
			if s, ok := t.(string); ok {
				tmpl.Traits = append(tmpl.Traits, s)
			}
		}
	case string:
		tmpl.Traits = []string{traits}
	}

	return tmpl, nil
}

// statsFromRecord maps template keys onto the stat block. Missing keys keep
// the engine defaults.
func statsFromRecord(rec map[string]any) units.Stats {
	s := units.DefaultStats()

	assign := map[string]*float64{
		"hp":            &s.BaseHP,
		"attack_damage": &s.BaseAttackDamage,
		"ability_power": &s.BaseAbilityPower,
		"armor":         &s.BaseArmor,
		"magic_resist":  &s.BaseMagicResist,
		"attack_speed":  &s.BaseAttackSpeed,
		"crit_chance":   &s.BaseCritChance,
		"crit_damage":   &s.BaseCritDamage,
		"dodge_chance":  &s.BaseDodgeChance,
		"lifesteal":     &s.BaseLifesteal,
		"spell_vamp":    &s.BaseSpellVamp,
		"omnivamp":      &s.BaseOmnivamp,
		"max_mana":      &s.BaseMaxMana,
		"mana":          &s.BaseMaxMana, // common shorthand in unit files
		"start_mana":    &s.BaseStartMana,
	}

	for key, dst := range assign {
		if v, ok := numField(rec, key); ok {
			*dst = v
		}
	}
	if v, ok := numField(rec, "attack_range"); ok {
		s.BaseAttackRange = int(v)
	}

	s.ResetForCombat()
	return s
}

func classFromRecord(rec map[string]any) units.ChampionClass {
	c := units.ChampionClass{
		Name:                     strField(rec, "name", ""),
		ManaPerAttackMultiplier:  1.0,
		ManaFromDamageMultiplier: 1.0,
	}
	if desc, ok := rec["description"].(string); ok {
		c.Description = desc
	}
	if v, ok := numField(rec, "mana_per_attack_multiplier"); ok {
		c.ManaPerAttackMultiplier = v
	}
	if v, ok := numField(rec, "mana_from_damage_multiplier"); ok {
		c.ManaFromDamageMultiplier = v
	}
	if v, ok := numField(rec, "mana_per_second_bonus"); ok {
		c.ManaPerSecondBonus = v
	}
	if sel, ok := rec["default_target_selector"].(string); ok {
		c.DefaultTargetSelector = sel
	}
	if locked, ok := rec["starts_mana_locked"].(bool); ok {
		c.StartsManaLocked = locked
	}
	if v, ok := numField(rec, "mana_lock_duration_start"); ok {
		c.ManaLockDurationStart = int(v)
	}
	return c
}

// --- helpers ---

// deepMerge combines two mappings value-wise: override wins, nested
// mappings merge recursively.
func deepMerge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		if baseMap, ok := result[k].(map[string]any); ok {
			if overrideMap, ok2 := v.(map[string]any); ok2 {
				result[k] = deepMerge(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

func section(doc map[string]any, key string) map[string]any {
	if inner, ok := doc[key].(map[string]any); ok {
		return inner
	}
	return map[string]any{}
}

func strField(rec map[string]any, key, fallback string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return fallback
}

func intField(rec map[string]any, key string) int {
	if v, ok := numField(rec, key); ok {
		return int(v)
	}
	return 0
}

func floatField(rec map[string]any, key string) float64 {
	v, _ := numField(rec, key)
	return v
}

func numField(rec map[string]any, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
