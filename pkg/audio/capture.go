package audio

import (
	"context"
	"errors"
)

// ErrDeviceUnavailable is returned when the capture device cannot be
// acquired: permission denied or no hardware present. The encoder does not
// retry; the caller stays in a safe not-capturing state.
var ErrDeviceUnavailable = errors.New("audio: capture device unavailable")

// Frame is one block of captured mono samples at the device's native rate.
type Frame struct {
	Samples    []float32
	SampleRate int
}

// Capture abstracts a microphone-like source. Start acquires the device and
// returns a frame stream that closes when the context is canceled or Close
// is called. Implementations deliver frames on their own cadence.
type Capture interface {
	Name() string
	Start(ctx context.Context) (<-chan Frame, error)
	Close() error
}
