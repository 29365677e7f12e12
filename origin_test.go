package lfsrindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskState(t *testing.T) {
	require.Equal(t, uint32(0x1FFFFFF), MaskState(0xFFFFFFFF))
	require.Equal(t, uint32(0x01A6CAD2), MaskState(0x2BA6CAD2))
	require.Equal(t, uint32(1), MaskState(1))

	rng := newTestRNG(t)
	for i := 0; i < 1000; i++ {
		v := rng.Uint32()
		require.Equal(t, MaskState(v), MaskState(MaskState(v)))
		require.Less(t, MaskState(v), uint32(1)<<StateBits)
	}
}

func TestOriginCode(t *testing.T) {
	tests := []struct {
		origin Origin
		code   uint32
	}{
		{Origin{0, 0}, 0},
		{Origin{0, 9999}, 9999},
		{Origin{10, 9999}, 10<<17 | 9999},
		{Origin{31, 1<<17 - 1}, 0x3FFFFF},
		{Origin{1, 0}, 0x20000},
	}
	for _, tt := range tests {
		require.Equalf(t, tt.code, tt.origin.Code(), "%+v", tt.origin)
		require.Equal(t, tt.origin, OriginFromCode(tt.code))
	}

	// Steps past 17 bits do not bleed into the channel.
	require.Equal(t, Origin{2, 5}.Code(), Origin{2, 1<<17 | 5}.Code())
}

func TestOriginCodeRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	for i := 0; i < 1000; i++ {
		o := Origin{Channel: uint32(rng.IntN(MaxChannels)), Step: uint32(rng.IntN(1 << StepBits))}
		require.Equal(t, o, OriginFromCode(o.Code()))
	}
}
