// Package randutil builds the replayable random streams the server
// hands to deck shuffles and rule agents. Everything derives from the
// game seed, so a logged seed reproduces a full game.
package randutil

import rand "math/rand/v2"

// New returns a generator for the given seed. Equal seeds yield equal
// streams across runs and platforms.
func New(seed int64) *rand.Rand {
	return Derive(seed, 0)
}

// Derive returns an independent generator for one stream of a seed, so
// separate consumers (the deck, each seat) never perturb each other's
// sequences.
func Derive(seed int64, stream uint64) *rand.Rand {
	base := scramble(uint64(seed))
	return rand.New(rand.NewPCG(base, scramble(base^stream)))
}

// scramble is the splitmix64 finalizer. PCG wants two well-spread
// 64-bit values even when callers pass small seeds like 1 or 2.
func scramble(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ x>>30) * 0xbf58476d1ce4e5b9
	x = (x ^ x>>27) * 0x94d049bb133111eb
	return x ^ x>>31
}
