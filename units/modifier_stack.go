package units

// ModifierSource identifies where a temporary stat modifier comes from and
// what lifetime it carries.
type ModifierSource string

const (
	SourceAbility ModifierSource = "ability" // buff / buff_team effects
	SourceItem    ModifierSource = "item"    // item triggered effects
	SourceTrait   ModifierSource = "trait"   // trait threshold effects
	SourceDebuff  ModifierSource = "debuff"  // enemy-applied stat debuffs
)

// ModifierLayer is one tracked stat modification. Layers with ExpiresAt == 0
// last the whole combat; every other layer is reverted the tick its expiry
// is reached.
type ModifierLayer struct {
	Source    ModifierSource `bson:"source" json:"source"`
	SourceID  string         `bson:"sourceId" json:"sourceId"`
	Stat      Stat           `bson:"stat" json:"stat"`
	Value     float64        `bson:"value" json:"value"`
	IsPercent bool           `bson:"isPercent" json:"isPercent"`
	AppliedAt int            `bson:"appliedAt" json:"appliedAt"`
	ExpiresAt int            `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

// ModifierStack tracks every temporary modifier applied to a unit's stats so
// expiry can reverse exactly what was added. Permanent additions (star
// scaling, item base stats, permanent stacks) bypass the stack and write to
// Stats directly.
type ModifierStack struct {
	Layers []ModifierLayer `bson:"layers" json:"layers"`
}

// Add applies the layer to the stats and records it for later removal.
func (ms *ModifierStack) Add(layer ModifierLayer, stats *Stats) {
	if layer.IsPercent {
		stats.AddPercent(layer.Stat, layer.Value)
	} else {
		stats.AddFlat(layer.Stat, layer.Value)
	}
	ms.Layers = append(ms.Layers, layer)
}

// Tick reverts and removes every layer whose expiry has been reached,
// returning the expired layers for event logging.
func (ms *ModifierStack) Tick(now int, stats *Stats) []ModifierLayer {
	var expired []ModifierLayer
	active := ms.Layers[:0]

	for _, layer := range ms.Layers {
		if layer.ExpiresAt > 0 && now >= layer.ExpiresAt {
			revert(layer, stats)
			expired = append(expired, layer)
			continue
		}
		active = append(active, layer)
	}

	ms.Layers = active
	return expired
}

// RemoveBySourceID reverts and drops every layer with the given source id.
func (ms *ModifierStack) RemoveBySourceID(sourceID string, stats *Stats) int {
	removed := 0
	active := ms.Layers[:0]

	for _, layer := range ms.Layers {
		if layer.SourceID == sourceID {
			revert(layer, stats)
			removed++
			continue
		}
		active = append(active, layer)
	}

	ms.Layers = active
	return removed
}

// Clear reverts and drops every layer.
func (ms *ModifierStack) Clear(stats *Stats) {
	for _, layer := range ms.Layers {
		revert(layer, stats)
	}
	ms.Layers = nil
}

// LayersBySource returns the active layers from one source, in application
// order.
func (ms *ModifierStack) LayersBySource(source ModifierSource) []ModifierLayer {
	var result []ModifierLayer
	for _, layer := range ms.Layers {
		if layer.Source == source {
			result = append(result, layer)
		}
	}
	return result
}

func revert(layer ModifierLayer, stats *Stats) {
	if layer.IsPercent {
		stats.RemovePercent(layer.Stat, layer.Value)
	} else {
		stats.RemoveFlat(layer.Stat, layer.Value)
	}
}
