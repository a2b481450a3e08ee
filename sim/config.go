// Package sim is the simulation kernel: the fixed-order tick pipeline over
// the grid, the unit state machines and the effect registries. One
// Simulation owns all state for one battle; the whole run is
// single-threaded and deterministic for a given seed.
package sim

import (
	"github.com/nicoberrocal/arenaCore/abilities"
	"github.com/nicoberrocal/arenaCore/events"
	"github.com/nicoberrocal/arenaCore/items"
	"github.com/nicoberrocal/arenaCore/traits"
	"github.com/nicoberrocal/arenaCore/units"
)

// Config carries the kernel knobs a caller may override.
type Config struct {
	TicksPerSecond int `bson:"ticksPerSecond" yaml:"ticks_per_second" json:"ticksPerSecond"`
	MaxTicks       int `bson:"maxTicks" yaml:"max_ticks" json:"maxTicks"`
	GridWidth      int `bson:"gridWidth" yaml:"grid_width" json:"gridWidth"`
	GridHeight     int `bson:"gridHeight" yaml:"grid_height" json:"gridHeight"`
}

// DefaultConfig is 30 ticks per second for up to 100 simulated seconds on
// the standard 7x8 board.
func DefaultConfig() Config {
	return Config{
		TicksPerSecond: 30,
		MaxTicks:       3000,
		GridWidth:      7,
		GridHeight:     8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TicksPerSecond <= 0 {
		c.TicksPerSecond = d.TicksPerSecond
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = d.MaxTicks
	}
	if c.GridWidth <= 0 {
		c.GridWidth = d.GridWidth
	}
	if c.GridHeight <= 0 {
		c.GridHeight = d.GridHeight
	}
	return c
}

// UnitTemplate is one already-parsed unit definition, defaults merged in.
type UnitTemplate struct {
	ID            string      `bson:"id" json:"id"`
	Name          string      `bson:"name" json:"name"`
	Traits        []string    `bson:"traits,omitempty" json:"traits,omitempty"`
	Ability       string      `bson:"ability,omitempty" json:"ability,omitempty"`
	ManaClass     string      `bson:"manaClass,omitempty" json:"manaClass,omitempty"`
	Cost          int         `bson:"cost" json:"cost"`
	Stats         units.Stats `bson:"stats" json:"stats"`
	ManaPerAttack float64     `bson:"manaPerAttack" json:"manaPerAttack"`
}

// Templates bundles everything a simulation reads: unit, ability, item,
// trait and class records plus the defaults-derived scaling tables. The
// kernel never touches disk; the config package (or any other caller)
// assembles this.
type Templates struct {
	Units         map[string]*UnitTemplate
	Abilities     map[string]*abilities.Ability
	Items         map[string]*items.Item
	Traits        map[string]*traits.Trait
	Classes       *units.ClassRegistry
	StarModifiers map[int]units.StarModifiers
	ManaRule      units.ManaRule
}

// Placement is one roster entry.
type Placement struct {
	UnitTemplateID string   `bson:"unit_id" json:"unit_id" yaml:"unit_id"`
	Position       [2]int   `bson:"position" json:"position" yaml:"position"`
	StarLevel      int      `bson:"star_level" json:"star_level" yaml:"star_level"`
	ItemIDs        []string `bson:"items,omitempty" json:"items,omitempty" yaml:"items"`
}

// Result is what a finished run reports. WinnerTeam is nil on a draw or a
// tick-budget timeout.
type Result struct {
	WinnerTeam      *int             `bson:"winner_team" json:"winner_team"`
	TotalTicks      int              `bson:"total_ticks" json:"total_ticks"`
	DurationSeconds float64          `bson:"duration_seconds" json:"duration_seconds"`
	Survivors       []map[string]any `bson:"survivors" json:"survivors"`
	Trace           *events.Trace    `bson:"-" json:"-"`
}
