package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResampleIdentityAtTargetRate(t *testing.T) {
	input := []float32{0.1, -0.2, 0.3}
	out := Resample(input, TargetSampleRate)
	assert.Equal(t, input, out)
}

func TestResampleDownsampleLength(t *testing.T) {
	tests := []struct {
		name      string
		inputRate int
		inputLen  int
		wantLen   int
	}{
		{"48k to 16k", 48000, 4800, 1600},
		{"44.1k to 16k", 44100, 4410, 1600},
		{"8k to 16k", 8000, 800, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make([]float32, tt.inputLen)
			out := Resample(input, tt.inputRate)
			if len(out) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(out), tt.wantLen)
			}
		})
	}
}

func TestResampleInterpolatesLinearly(t *testing.T) {
	// 32 kHz ramp halves to 16 kHz: every second sample survives exactly.
	input := []float32{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}
	out := Resample(input, 32000)

	assert.Len(t, out, 4)
	assert.InDelta(t, 0.0, float64(out[0]), 1e-6)
	assert.InDelta(t, 0.2, float64(out[1]), 1e-6)
	assert.InDelta(t, 0.4, float64(out[2]), 1e-6)
	assert.InDelta(t, 0.6, float64(out[3]), 1e-6)
}

func TestEncodePCM16Endpoints(t *testing.T) {
	pcm := EncodePCM16([]float32{-1, 0, 1})
	got := DecodePCM16(pcm)
	assert.Equal(t, []int16{-32768, 0, 32767}, got)
}

func TestEncodePCM16ClampsOutOfRange(t *testing.T) {
	pcm := EncodePCM16([]float32{-2.5, 3})
	got := DecodePCM16(pcm)
	assert.Equal(t, []int16{-32768, 32767}, got)
}

func TestEncodePCM16LittleEndian(t *testing.T) {
	pcm := EncodePCM16([]float32{1})
	// 32767 = 0x7FFF, low byte first.
	assert.Equal(t, []byte{0xFF, 0x7F}, pcm)
}
