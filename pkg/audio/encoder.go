package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"video-consulta-sync/pkg/clock"
)

const (
	// ChunkDuration is the fixed transport chunk length.
	ChunkDuration = 120 * time.Millisecond

	// SamplesPerChunk at the target rate: 16000 * 0.120.
	SamplesPerChunk = TargetSampleRate * int(ChunkDuration/time.Millisecond) / 1000
)

// Wire message types emitted by the encoder.
const (
	MsgAudioStreamStart = "audio_stream_start"
	MsgAudioChunk       = "audio_chunk"
	MsgAudioStreamEnd   = "audio_stream_end"
)

// SendFunc ships one typed message; the channel's Send primitive satisfies
// it directly.
type SendFunc func(msgType string, payload interface{})

// ChunkPayload is the audio_chunk payload: base64-framed PCM16 bytes.
type ChunkPayload struct {
	Data string `json:"data"`
}

// StreamStartPayload is the audio_stream_start payload.
type StreamStartPayload struct {
	Participant string `json:"participant"`
}

// Encoder pulls frames from a Capture, resamples them to the target rate,
// and flushes fixed-size PCM16 chunks on a periodic timer decoupled from the
// capture callback cadence. The sample queue is the only hand-off point
// between the capture goroutine and the flush timer.
type Encoder struct {
	capture     Capture
	clk         clock.Clock
	send        SendFunc
	participant string

	mu     sync.Mutex
	queue  []float32
	ticker clock.Ticker
	cancel context.CancelFunc
	active bool
}

func NewEncoder(capture Capture, clk clock.Clock, send SendFunc, participant string) *Encoder {
	return &Encoder{
		capture:     capture,
		clk:         clk,
		send:        send,
		participant: participant,
	}
}

// Start acquires the capture device, announces audio_stream_start, and
// begins the chunk-flush timer. No-op when already active.
func (e *Encoder) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	frames, err := e.capture.Start(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("acquire capture %q: %w", e.capture.Name(), err)
	}

	e.mu.Lock()
	e.active = true
	e.cancel = cancel
	e.queue = e.queue[:0]
	e.ticker = e.clk.Ticker(ChunkDuration, e.flush)
	e.mu.Unlock()

	e.send(MsgAudioStreamStart, StreamStartPayload{Participant: e.participant})

	go func() {
		for frame := range frames {
			resampled := Resample(frame.Samples, frame.SampleRate)
			e.mu.Lock()
			if e.active {
				e.queue = append(e.queue, resampled...)
			}
			e.mu.Unlock()
		}
	}()

	return nil
}

// flush drains every complete chunk currently queued and ships each one as
// an audio_chunk message.
func (e *Encoder) flush() {
	for {
		e.mu.Lock()
		if !e.active || len(e.queue) < SamplesPerChunk {
			e.mu.Unlock()
			return
		}
		chunk := make([]float32, SamplesPerChunk)
		copy(chunk, e.queue[:SamplesPerChunk])
		e.queue = e.queue[SamplesPerChunk:]
		e.mu.Unlock()

		pcm := EncodePCM16(chunk)
		e.send(MsgAudioChunk, ChunkPayload{Data: base64.StdEncoding.EncodeToString(pcm)})
	}
}

// Stop releases the device and announces audio_stream_end. Idempotent.
// Trailing samples short of a full chunk are dropped rather than flushed, so
// shutdown never produces an unbounded dispatch tail.
func (e *Encoder) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	ticker := e.ticker
	cancel := e.cancel
	e.ticker = nil
	e.cancel = nil
	e.queue = nil
	e.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	if cancel != nil {
		cancel()
	}
	e.capture.Close()
	e.send(MsgAudioStreamEnd, struct{}{})
}

// Active reports whether capture is running.
func (e *Encoder) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}
