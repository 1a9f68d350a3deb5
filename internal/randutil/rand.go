package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Rooms and decks built from the same seed deal identical cards.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewFromTime seeds from the wall clock.
func NewFromTime() *rand.Rand {
	return New(time.Now().UnixNano())
}

// Derive draws a child seed from parent so each room gets its own stream
// while the whole server stays reproducible from one seed.
func Derive(parent *rand.Rand) *rand.Rand {
	return New(parent.Int64())
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
