package sim

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nicoberrocal/arenaCore/abilities"
	"github.com/nicoberrocal/arenaCore/events"
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/items"
	"github.com/nicoberrocal/arenaCore/rng"
	"github.com/nicoberrocal/arenaCore/traits"
	"github.com/nicoberrocal/arenaCore/units"
)

// Simulation owns all state for one battle. Construct with New, place
// rosters with AddUnit, then Run to completion. Not safe for concurrent
// use; run independent simulations on independent instances.
type Simulation struct {
	seed      int64
	cfg       Config
	templates *Templates

	grid   *hex.Grid
	stream *rng.Stream
	logger *events.Logger
	diag   zerolog.Logger

	units     []*units.Unit
	unitsByID map[string]*units.Unit
	spawned   map[string]int // base id -> instance counter

	projectiles *abilities.ProjectileManager
	zones       []*abilities.Zone

	traitMgr *traits.Manager
	itemMgr  *items.Manager

	tick     int
	finished bool
	winner   *int
}

// New builds an empty simulation for a seed, config and template bundle.
func New(seed int64, cfg Config, templates *Templates) *Simulation {
	cfg = cfg.withDefaults()
	if templates.Classes == nil {
		templates.Classes = units.NewClassRegistry(nil)
	}
	if templates.StarModifiers == nil {
		templates.StarModifiers = units.DefaultStarModifiers()
	}
	if templates.ManaRule == (units.ManaRule{}) {
		templates.ManaRule = units.DefaultManaRule()
	}

	s := &Simulation{
		seed:        seed,
		cfg:         cfg,
		templates:   templates,
		grid:        hex.NewGrid(cfg.GridWidth, cfg.GridHeight),
		stream:      rng.New(seed),
		logger:      events.NewLogger(seed, cfg.GridWidth, cfg.GridHeight, cfg.TicksPerSecond),
		diag:        zerolog.Nop(),
		unitsByID:   map[string]*units.Unit{},
		spawned:     map[string]int{},
		projectiles: abilities.NewProjectileManager(),
	}

	s.traitMgr = traits.NewManager(s, templates.Traits)
	s.itemMgr = items.NewManager(s, templates.Items)
	return s
}

// SetDiagnostics points effect-dispatch suppression warnings at a logger.
// The kernel emits nothing else through it; the trace stays the only
// battle output.
func (s *Simulation) SetDiagnostics(logger zerolog.Logger) {
	s.diag = logger
}

// AddUnit spawns one roster entry. A bad placement (unknown template,
// invalid or occupied hex, bad star level) refuses the spawn.
func (s *Simulation) AddUnit(team int, placement Placement) (*units.Unit, error) {
	tmpl, ok := s.templates.Units[placement.UnitTemplateID]
	if !ok {
		return nil, fmt.Errorf("unknown unit template %q", placement.UnitTemplateID)
	}

	star := placement.StarLevel
	if star == 0 {
		star = 1
	}
	if star < 1 || star > 3 {
		return nil, fmt.Errorf("unit %q: star level %d out of range", placement.UnitTemplateID, star)
	}

	pos := hex.Coord{Q: placement.Position[0], R: placement.Position[1]}
	if !s.grid.IsValid(pos) {
		return nil, fmt.Errorf("unit %q: position (%d,%d) outside grid", placement.UnitTemplateID, pos.Q, pos.R)
	}
	if s.grid.IsOccupied(pos) {
		return nil, fmt.Errorf("unit %q: position (%d,%d) occupied", placement.UnitTemplateID, pos.Q, pos.R)
	}

	if tmpl.Ability != "" {
		if _, ok := s.templates.Abilities[tmpl.Ability]; !ok {
			return nil, fmt.Errorf("unit %q: unknown ability %q", tmpl.ID, tmpl.Ability)
		}
	}

	s.spawned[tmpl.ID]++
	id := fmt.Sprintf("%s_%d_%d", tmpl.ID, team, s.spawned[tmpl.ID])

	u := units.New(id, tmpl.ID, tmpl.Name, team, star, pos, tmpl.Stats, s.templates.StarModifiers)
	if tmpl.Ability != "" {
		u.Abilities = []string{tmpl.Ability}
	}
	u.Traits = append(u.Traits, tmpl.Traits...)
	u.ManaClass = tmpl.ManaClass
	if tmpl.ManaPerAttack > 0 {
		u.ManaPerAttack = tmpl.ManaPerAttack
	}

	if !s.grid.Place(u, pos) {
		return nil, fmt.Errorf("unit %q: grid refused placement", tmpl.ID)
	}

	s.units = append(s.units, u)
	s.unitsByID[u.ID] = u

	if err := s.itemMgr.EquipAll(u, placement.ItemIDs); err != nil {
		return u, fmt.Errorf("unit %s: %w", u.ID, err)
	}

	return u, nil
}

// abilityOf resolves a unit's (single) assigned ability.
func (s *Simulation) abilityOf(u *units.Unit) *abilities.Ability {
	if len(u.Abilities) == 0 {
		return nil
	}
	return s.templates.Abilities[u.Abilities[0]]
}

// Run drives the battle to a terminal state: one team wiped, a simultaneous
// wipe (draw), or the tick budget. Returns the outcome with the trace.
func (s *Simulation) Run() Result {
	s.logStart()

	if s.traitMgr != nil {
		s.traitMgr.OnBattleStart()
	}
	if s.itemMgr != nil {
		s.itemMgr.OnBattleStart()
	}

	// Classes that open the fight mana-locked.
	for _, u := range s.units {
		class := s.templates.Classes.ClassOf(u)
		if class.StartsManaLocked && class.ManaLockDurationStart > 0 {
			u.State.LockMana(class.ManaLockDurationStart)
		}
	}

	for !s.finished && s.tick < s.cfg.MaxTicks {
		s.runTick()
		s.tick++
	}

	s.logEnd()
	return s.result()
}

// Winner returns the winning team, or nil for a draw/timeout.
func (s *Simulation) Winner() *int {
	return s.winner
}

// Tick returns the current tick counter.
func (s *Simulation) Tick() int {
	return s.tick
}

// Logger exposes the trace buffer, mainly for tests.
func (s *Simulation) Logger() *events.Logger {
	return s.logger
}

// TraitManager exposes the trait aggregator for previews and tests.
func (s *Simulation) TraitManager() *traits.Manager {
	return s.traitMgr
}

// ItemManager exposes the item manager for setup and tests.
func (s *Simulation) ItemManager() *items.Manager {
	return s.itemMgr
}

func (s *Simulation) logStart() {
	snapshots := make([]map[string]any, 0, len(s.units))
	for _, u := range s.units {
		snapshots = append(snapshots, u.FullSnapshot())
	}
	s.logger.SimulationStarted(s.tick, snapshots)
	for _, u := range s.units {
		s.logger.UnitSpawned(s.tick, u.Snapshot())
	}
}

func (s *Simulation) logEnd() {
	var survivorIDs []string
	for _, u := range s.units {
		if u.IsAlive() {
			survivorIDs = append(survivorIDs, u.ID)
		}
	}
	s.logger.SimulationEnded(s.tick, s.winner, survivorIDs)
}

func (s *Simulation) result() Result {
	var survivors []map[string]any
	for _, u := range s.units {
		if u.IsAlive() {
			survivors = append(survivors, u.Snapshot())
		}
	}

	return Result{
		WinnerTeam:      s.winner,
		TotalTicks:      s.tick,
		DurationSeconds: float64(s.tick) / float64(s.cfg.TicksPerSecond),
		Survivors:       survivors,
		Trace:           s.logger.Trace(),
	}
}

// Run is the headless entry point: two rosters, a seed, config overrides
// and the template bundle in; outcome and trace out. Bad placements refuse
// the spawn and omit the unit; template errors are fatal.
func Run(rosters [2][]Placement, seed int64, cfg Config, templates *Templates) (Result, error) {
	s := New(seed, cfg, templates)

	// Template references are load errors and fatal; placement problems
	// below only refuse the one spawn.
	for _, roster := range rosters {
		for _, placement := range roster {
			for _, itemID := range placement.ItemIDs {
				if _, ok := templates.Items[itemID]; !ok {
					return Result{}, fmt.Errorf("unknown item %q", itemID)
				}
			}
		}
	}

	for team, roster := range rosters {
		for _, placement := range roster {
			if _, err := s.AddUnit(team, placement); err != nil {
				if _, known := templates.Units[placement.UnitTemplateID]; !known {
					return Result{}, err
				}
				// Placement refused: omit the unit, keep the battle. An
				// item-equip error comes after the unit is placed, so that
				// unit stays in play with the items equipped before it.
				s.diag.Warn().Err(err).Msg("placement refused")
				continue
			}
		}
	}

	return s.Run(), nil
}

// safeApply dispatches one effect with the runtime guard of the effect
// boundary: a panicking effect is suppressed (and reported through the
// diagnostics logger) instead of taking the battle down.
func (s *Simulation) safeApply(effect abilities.Effect, caster, target *units.Unit, star int) (result abilities.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.diag.Warn().
				Str("effect", effect.Type()).
				Str("caster", caster.ID).
				Interface("panic", r).
				Msg("effect dispatch suppressed")
			result = abilities.Result{EffectType: effect.Type(), Success: false}
		}
	}()
	return effect.Apply(caster, target, star, s)
}

var _ abilities.World = (*Simulation)(nil)
var _ traits.World = (*Simulation)(nil)
var _ items.World = (*Simulation)(nil)
