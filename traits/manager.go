package traits

import (
	"github.com/nicoberrocal/arenaCore/hex"
	"github.com/nicoberrocal/arenaCore/units"
)

// World is the slice of the simulation the trait manager reads.
type World interface {
	Units() []*units.Unit
	Grid() *hex.Grid
}

// teamState tracks one team's trait bookkeeping.
type teamState struct {
	// trait id -> set of unique base unit ids
	counts map[string]map[string]bool
	// trait id -> active threshold count
	activeThresholds map[string]int
}

func newTeamState() *teamState {
	return &teamState{
		counts:           map[string]map[string]bool{},
		activeThresholds: map[string]int{},
	}
}

// Manager aggregates traits per team and fires threshold effects on their
// triggers. Unit counting is by unique base id: two copies of the same
// champion contribute one.
type Manager struct {
	world  World
	traits map[string]*Trait

	teams map[int]*teamState

	// unit id -> trait ids whose hp-threshold trigger already fired
	hpTriggered map[string]map[string]bool
	// unit id -> first cast consumed
	firstCastDone map[string]bool
}

// NewManager builds a manager over loaded trait definitions.
func NewManager(world World, traits map[string]*Trait) *Manager {
	return &Manager{
		world:  world,
		traits: traits,
		teams: map[int]*teamState{
			0: newTeamState(),
			1: newTeamState(),
		},
		hpTriggered:   map[string]map[string]bool{},
		firstCastDone: map[string]bool{},
	}
}

// Recount rebuilds the unique-holder counts and the active thresholds for
// both teams.
func (m *Manager) Recount() {
	for _, state := range m.teams {
		state.counts = map[string]map[string]bool{}
		state.activeThresholds = map[string]int{}
	}

	for _, u := range m.world.Units() {
		if !u.IsAlive() {
			continue
		}
		state := m.teams[u.Team]
		if state == nil {
			continue
		}
		for _, traitID := range u.Traits {
			if state.counts[traitID] == nil {
				state.counts[traitID] = map[string]bool{}
			}
			state.counts[traitID][u.BaseID] = true
		}
	}

	for _, state := range m.teams {
		for traitID, baseIDs := range state.counts {
			trait, ok := m.traits[traitID]
			if !ok {
				continue
			}
			if threshold := trait.ActiveThreshold(len(baseIDs)); threshold != nil {
				state.activeThresholds[traitID] = threshold.Count
			}
		}
	}
}

// Count returns the unique-holder count of a trait on a team.
func (m *Manager) Count(team int, traitID string) int {
	state := m.teams[team]
	if state == nil {
		return 0
	}
	return len(state.counts[traitID])
}

// ActiveThreshold returns the active tier count for a trait on a team, or 0.
func (m *Manager) ActiveThreshold(team int, traitID string) int {
	state := m.teams[team]
	if state == nil {
		return 0
	}
	return state.activeThresholds[traitID]
}

// TeamSummary reports each counted trait with its active tier, for the
// synergy preview and CLI output.
func (m *Manager) TeamSummary(team int) map[string]map[string]any {
	state := m.teams[team]
	result := map[string]map[string]any{}
	if state == nil {
		return result
	}

	for traitID, baseIDs := range state.counts {
		if len(baseIDs) == 0 {
			continue
		}
		entry := map[string]any{
			"count":            len(baseIDs),
			"active_threshold": state.activeThresholds[traitID],
		}
		if trait, ok := m.traits[traitID]; ok {
			entry["name"] = trait.Name
			entry["thresholds"] = trait.ThresholdCounts()
		}
		result[traitID] = entry
	}
	return result
}

// --- trigger handlers ---

// OnBattleStart counts traits and applies every on_battle_start threshold.
// Called once at tick 0.
func (m *Manager) OnBattleStart() {
	m.Recount()

	for team, state := range m.teams {
		for traitID, count := range state.activeThresholds {
			threshold := m.threshold(traitID, count)
			if threshold == nil {
				continue
			}
			if threshold.Trigger.Type == OnBattleStart {
				m.applyThreshold(team, traitID, threshold, nil)
			}
		}
	}
}

// OnTick fires on_time thresholds at their exact tick and on_interval
// thresholds every interval ticks.
func (m *Manager) OnTick(tick int) {
	for team, state := range m.teams {
		for traitID, count := range state.activeThresholds {
			threshold := m.threshold(traitID, count)
			if threshold == nil {
				continue
			}

			switch threshold.Trigger.Type {
			case OnTime:
				if tick == threshold.Trigger.intParam("ticks", 300) {
					m.applyThreshold(team, traitID, threshold, nil)
				}
			case OnInterval:
				interval := threshold.Trigger.intParam("interval", 120)
				if interval > 0 && tick > 0 && tick%interval == 0 {
					m.applyThreshold(team, traitID, threshold, nil)
				}
			}
		}
	}
}

// OnUnitDamaged checks hp-threshold triggers; each fires at most once per
// unit per battle.
func (m *Manager) OnUnitDamaged(u *units.Unit) {
	if !u.IsAlive() {
		return
	}

	hpPercent := u.Stats.HPPercent()

	for _, traitID := range u.Traits {
		if m.hpTriggered[u.ID][traitID] {
			continue
		}

		count := m.ActiveThreshold(u.Team, traitID)
		if count == 0 {
			continue
		}
		threshold := m.threshold(traitID, count)
		if threshold == nil || threshold.Trigger.Type != OnHPThreshold {
			continue
		}

		if hpPercent <= threshold.Trigger.floatParam("threshold", 0.5) {
			if m.hpTriggered[u.ID] == nil {
				m.hpTriggered[u.ID] = map[string]bool{}
			}
			m.hpTriggered[u.ID][traitID] = true
			m.applyThreshold(u.Team, traitID, threshold, u)
		}
	}
}

// OnUnitDeath fires on_death thresholds the dead unit held, then recounts.
func (m *Manager) OnUnitDeath(u *units.Unit) {
	state := m.teams[u.Team]
	if state != nil {
		for traitID, count := range state.activeThresholds {
			threshold := m.threshold(traitID, count)
			if threshold == nil || threshold.Trigger.Type != OnDeath {
				continue
			}
			if containsString(u.Traits, traitID) {
				m.applyThreshold(u.Team, traitID, threshold, u)
			}
		}
	}

	m.Recount()
}

// OnFirstCast fires on_first_cast thresholds once per unit per battle.
func (m *Manager) OnFirstCast(u *units.Unit) {
	if m.firstCastDone[u.ID] {
		return
	}
	m.firstCastDone[u.ID] = true

	for _, traitID := range u.Traits {
		count := m.ActiveThreshold(u.Team, traitID)
		if count == 0 {
			continue
		}
		threshold := m.threshold(traitID, count)
		if threshold == nil || threshold.Trigger.Type != OnFirstCast {
			continue
		}
		m.applyThreshold(u.Team, traitID, threshold, u)
	}
}

// OnKill fires on_kill thresholds for the killer's traits.
func (m *Manager) OnKill(killer *units.Unit) {
	for _, traitID := range killer.Traits {
		count := m.ActiveThreshold(killer.Team, traitID)
		if count == 0 {
			continue
		}
		threshold := m.threshold(traitID, count)
		if threshold == nil || threshold.Trigger.Type != OnKill {
			continue
		}
		m.applyThreshold(killer.Team, traitID, threshold, killer)
	}
}

// --- effect application ---

func (m *Manager) threshold(traitID string, count int) *Threshold {
	trait, ok := m.traits[traitID]
	if !ok {
		return nil
	}
	th, ok := trait.Thresholds[count]
	if !ok {
		return nil
	}
	return &th
}

func (m *Manager) applyThreshold(team int, traitID string, threshold *Threshold, triggerUnit *units.Unit) {
	for _, effect := range threshold.Effects {
		m.applyEffect(team, traitID, effect, triggerUnit)
	}
}

func (m *Manager) applyEffect(team int, traitID string, effect Effect, triggerUnit *units.Unit) int {
	targets := m.targetUnits(team, traitID, effect.Target, triggerUnit)

	applied := 0
	for _, u := range targets {
		if !u.IsAlive() {
			continue
		}

		switch effect.Type {
		case "stat_bonus":
			stat := units.CanonicalStat(effect.strParam("stat", "armor"))
			u.Stats.AddFlat(stat, effect.Value)
			if stat == units.StatHP {
				u.Stats.CurrentHP += effect.Value
			}
		case "shield":
			duration := effect.intParam("duration", 30000)
			u.AddShield(effect.Value, duration)
		case "damage_amp":
			u.DamageAmp += effect.Value
		case "damage_reduction":
			u.DamageReduction += effect.Value
		default:
			continue
		}
		applied++
	}
	return applied
}

func (m *Manager) targetUnits(team int, traitID string, target EffectTarget, triggerUnit *units.Unit) []*units.Unit {
	var result []*units.Unit

	switch target {
	case TargetHolders:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team == team && containsString(u.Traits, traitID) {
				result = append(result, u)
			}
		}
	case TargetTeam:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team == team {
				result = append(result, u)
			}
		}
	case TargetSelf:
		if triggerUnit != nil && triggerUnit.IsAlive() {
			result = append(result, triggerUnit)
		}
	case TargetAdjacent:
		if triggerUnit != nil && triggerUnit.IsAlive() {
			for _, pos := range triggerUnit.Position.Neighbors() {
				if occ := m.world.Grid().UnitAt(pos); occ != nil {
					if u, ok := occ.(*units.Unit); ok && u.IsAlive() && u.Team == team {
						result = append(result, u)
					}
				}
			}
		}
	case TargetEnemies:
		for _, u := range m.world.Units() {
			if u.IsAlive() && u.Team != team {
				result = append(result, u)
			}
		}
	case TargetNearestAlly:
		if triggerUnit != nil {
			var closest *units.Unit
			closestDist := 1 << 30
			for _, u := range m.world.Units() {
				if !u.IsAlive() || u.Team != team || u.ID == triggerUnit.ID {
					continue
				}
				d := triggerUnit.Position.Distance(u.Position)
				if d < closestDist || (d == closestDist && closest != nil && u.ID < closest.ID) {
					closestDist = d
					closest = u
				}
			}
			if closest != nil {
				result = append(result, closest)
			}
		}
	}

	return result
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
