// Package rng provides the deterministic random stream used by a simulation.
//
// Every stochastic decision in a battle (crit, dodge, tie-breaks, random
// selectors) draws from a single Stream so that one seed reproduces one
// event sequence exactly. Never share a Stream between two simulations.
package rng

import "math/rand/v2"

// Stream is a seeded pseudo-random generator with game-flavoured helpers.
// One Stream per simulation; the zero value is not usable, construct with
// New.
type Stream struct {
	seed int64
	src  *rand.Rand
}

// New creates a Stream from a seed. The same seed always yields the same
// sequence.
func New(seed int64) *Stream {
	return &Stream{
		seed: seed,
		src:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the stream was created with.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Float64 returns a value in [0.0, 1.0).
func (s *Stream) Float64() float64 {
	return s.src.Float64()
}

// IntN returns a value in [0, n).
func (s *Stream) IntN(n int) int {
	return s.src.IntN(n)
}

// IntRange returns a value in [lo, hi], both inclusive.
func (s *Stream) IntRange(lo, hi int) int {
	return lo + s.src.IntN(hi-lo+1)
}

// Uniform returns a value in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + s.src.Float64()*(hi-lo)
}

// Chance rolls against a probability in [0, 1].
func (s *Stream) Chance(p float64) bool {
	return s.src.Float64() < p
}

// RollCrit reports whether an attack crits. Alias of Chance named for the
// combat call sites.
func (s *Stream) RollCrit(critChance float64) bool {
	return s.Chance(critChance)
}

// RollDodge reports whether an attack is dodged.
func (s *Stream) RollDodge(dodgeChance float64) bool {
	return s.Chance(dodgeChance)
}

// Choice picks one element. Panics on an empty slice, matching the caller
// contract that candidates were already checked.
func Choice[T any](s *Stream, options []T) T {
	return options[s.src.IntN(len(options))]
}

// WeightedChoice picks one element with the given weights. Weights need not
// sum to one. Falls back to the last element on degenerate weights.
func WeightedChoice[T any](s *Stream, options []T, weights []float64) T {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return options[len(options)-1]
	}

	roll := s.src.Float64() * total
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return options[i]
		}
	}
	return options[len(options)-1]
}

// Shuffle permutes the slice in place.
func Shuffle[T any](s *Stream, items []T) {
	s.src.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// Variance returns base scaled by a random factor in [1-percent, 1+percent].
func (s *Stream) Variance(base, percent float64) float64 {
	return base * s.Uniform(1-percent, 1+percent)
}

// Fork derives an independent Stream seeded from this one. Useful for
// isolating a subsystem's draws from the main sequence.
func (s *Stream) Fork() *Stream {
	return New(int64(s.src.Uint64() >> 1))
}
