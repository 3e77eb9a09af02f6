package audio

import "encoding/binary"

// EncodePCM16 converts float samples in [-1, 1] to little-endian signed
// 16-bit PCM, two bytes per sample. Out-of-range samples are clamped.
// Negative values scale by 0x8000 and non-negative by 0x7FFF, so -1 maps to
// -32768 and 1 to 32767.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// DecodePCM16 is the inverse used by tests and the simulation tooling.
func DecodePCM16(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}
