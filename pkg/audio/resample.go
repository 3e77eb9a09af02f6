package audio

// TargetSampleRate is the fixed output rate expected by the transcription
// backend.
const TargetSampleRate = 16000

// Resample converts a mono block of float samples from inputRate to
// TargetSampleRate using linear interpolation. Identity when the rates
// already match. Deterministic and cheap; sufficient for speech, not for
// broadcast audio.
func Resample(input []float32, inputRate int) []float32 {
	if inputRate == TargetSampleRate {
		return input
	}
	ratio := float64(inputRate) / float64(TargetSampleRate)
	outLen := int(float64(len(input)) / ratio)
	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		srcIndex := float64(i) * ratio
		j := int(srcIndex)
		frac := srcIndex - float64(j)
		var s float32
		if j < len(input) {
			s = input[j]
		}
		if frac > 0 && j+1 < len(input) {
			s = s*float32(1-frac) + input[j+1]*float32(frac)
		}
		out[i] = s
	}
	return out
}
