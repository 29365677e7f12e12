package lfsrindex

import "github.com/tamirms/lfsrindex/internal/lfsr"

const (
	// StateBits is the number of significant bits in a state value.
	StateBits = 25

	// StepBits is the number of significant bits in a step index.
	StepBits = lfsr.StepBits

	// MaxChannels is the largest polynomial set an index can describe.
	// The channel id occupies the bits of the origin code above the step index,
	// and the builder caps it at 32 channels.
	MaxChannels = 32

	stateMask = uint32(1)<<StateBits - 1
	stepMask  = uint32(1)<<StepBits - 1

	// recordSize is the size of one data-region record: state then origin code.
	recordSize = 8
)

// MaskState reduces a register value to its significant 25 bits.
func MaskState(state uint32) uint32 {
	return state & stateMask
}

// MaskStep reduces a step counter to its significant 17 bits.
func MaskStep(step uint32) uint32 {
	return step & stepMask
}

// Origin identifies where a state came from: the channel (position of the
// polynomial in the set) and the step index within that channel's sequence.
type Origin struct {
	Channel uint32
	Step    uint32
}

// Code packs the origin into its 32-bit wire form, (channel << 17) | step.
func (o Origin) Code() uint32 {
	return o.Channel<<StepBits | MaskStep(o.Step)
}

// OriginFromCode unpacks a 32-bit origin code.
func OriginFromCode(code uint32) Origin {
	return Origin{
		Channel: code >> StepBits,
		Step:    code & stepMask,
	}
}
