package bot

import "lukechampine.com/frand"

// RandSource supplies the noise added to root move scores. Float64 must
// return values in [0, 1).
type RandSource interface {
	Float64() float64
}

// NewSeededRand returns a deterministic source: the same seed always yields
// the same sequence.
func NewSeededRand(seed [32]byte) *frand.RNG {
	return frand.NewCustom(seed[:], 1024, 12)
}

// NewRand returns a source seeded from the operating system.
func NewRand() *frand.RNG {
	return frand.New()
}

// SeedFromString copies the bytes of s into a seed, zero padded and
// truncated to 32 bytes. The shell and tests use it for typed seeds.
func SeedFromString(s string) [32]byte {
	var seed [32]byte
	copy(seed[:], s)
	return seed
}
