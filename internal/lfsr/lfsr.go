// Package lfsr enumerates the register states of a linear-feedback shift
// register driven by a tap mask.
package lfsr

import (
	"iter"
	"math/bits"
)

const (
	// StepBits is the width of a step index.
	StepBits = 17

	// Period is the number of states emitted by a full-length generator.
	Period = 1 << StepBits

	// DefaultSeed is the initial register value used by the index builder.
	DefaultSeed = uint32(1)
)

// Step advances reg by one position: the register shifts left and the parity
// of the tapped bits enters at bit 0. Bits shifted past bit 31 are dropped.
func Step(reg, poly uint32) uint32 {
	return reg<<1 | uint32(bits.OnesCount32(reg&poly)&1)
}

// Generator emits (step, state) pairs for one tap mask. It is not safe for
// concurrent use; create one generator per goroutine.
type Generator struct {
	poly  uint32
	reg   uint32
	step  uint32
	limit uint32
}

// New returns a generator that emits steps pairs starting at (0, seed).
// steps is clamped to [0, Period].
func New(poly, seed uint32, steps int) *Generator {
	limit := uint32(Period)
	if steps < 0 {
		limit = 0
	} else if steps < Period {
		limit = uint32(steps)
	}
	return &Generator{poly: poly, reg: seed, limit: limit}
}

// Next returns the current step and register value, then advances the
// register. Once the generator is exhausted it returns ok=false on every call.
func (g *Generator) Next() (step, state uint32, ok bool) {
	if g.step >= g.limit {
		return 0, 0, false
	}
	step, state = g.step, g.reg
	g.reg = Step(g.reg, g.poly)
	g.step++
	return step, state, true
}

// Len returns the total number of pairs the generator emits.
func (g *Generator) Len() int {
	return int(g.limit)
}

// All returns an iterator over the remaining pairs.
func (g *Generator) All() iter.Seq2[uint32, uint32] {
	return func(yield func(uint32, uint32) bool) {
		for {
			step, state, ok := g.Next()
			if !ok || !yield(step, state) {
				return
			}
		}
	}
}

// StateAt returns the register value emitted at the given step.
func StateAt(poly, seed, step uint32) uint32 {
	reg := seed
	for i := uint32(0); i < step; i++ {
		reg = Step(reg, poly)
	}
	return reg
}

// Fill writes the first len(dst) states of the sequence into dst, so that
// dst[i] is the state emitted at step i. len(dst) must not exceed Period.
func Fill(dst []uint32, poly, seed uint32) {
	reg := seed
	for i := range dst {
		dst[i] = reg
		reg = Step(reg, poly)
	}
}
