// Package rng constructs the seeded *rand.Rand handles that roster.Model,
// aco.Search and tabu.Search require explicitly, rather than drawing from
// math/rand's package-level global source.
package rng

import "math/rand"

// New returns a *rand.Rand seeded with seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
