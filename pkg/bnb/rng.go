package bnb

import "math/rand"

// defaultSeed is used when a configuration leaves the seed at zero.
const defaultSeed int64 = 1

// NewRand returns a deterministic generator. Seed 0 selects defaultSeed.
// The generator is not safe for concurrent use; give every solver its own.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}
