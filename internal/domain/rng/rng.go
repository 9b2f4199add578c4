// Package rng provides the random sources injected into the ranking engine.
package rng

import (
	"math/rand"
	"time"
)

const (
	lehmerModulus    = 2147483647 // 2^31 - 1
	lehmerMultiplier = 16807
)

// Source yields uniformly distributed values in [0, 1).
// *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Lehmer is a deterministic 32-bit Lehmer LCG. Not safe for concurrent use.
type Lehmer struct {
	state int64
}

// NewLehmer seeds a Lehmer generator. Negative seeds are mirrored after
// reduction, so math.MinInt64 is safe. Zero (after reduction) becomes 1.
func NewLehmer(seed int64) *Lehmer {
	state := seed % lehmerModulus
	if state < 0 {
		state = -state
	}
	if state == 0 {
		state = 1
	}
	return &Lehmer{state: state}
}

// Float64 advances the generator and returns a value in [0, 1).
func (l *Lehmer) Float64() float64 {
	l.state = (l.state * lehmerMultiplier) % lehmerModulus
	return float64(l.state-1) / float64(lehmerModulus-1)
}

// System returns a time-seeded source for callers without a seed.
func System() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // ranking shuffles are not security sensitive
}

// Index maps a draw from src onto [0, n). n must be positive.
func Index(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	switch {
	case i < 0:
		i = 0
	case i >= n:
		i = n - 1
	}
	return i
}
