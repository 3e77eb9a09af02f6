package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"video-consulta-sync/internal/config"
	"video-consulta-sync/internal/pkg/logger"
	"video-consulta-sync/pkg/audio"
	"video-consulta-sync/pkg/engine"
	"video-consulta-sync/pkg/historia"
)

// Headless consult session against a running relay. Drives a medico client
// through a scripted dictation so the full round-trip (transcription,
// debounce, agent proposal, section action) can be observed from a terminal.

var script = []string{
	"Paciente refiere cefalea intensa",
	"Paciente refiere cefalea intensa desde hace tres dias",
	"Sin fiebre, sin nauseas",
	"Antecedente de migrana en la madre",
}

func main() {
	baseURL := flag.String("url", "ws://localhost:3000/ws", "relay websocket URL")
	roomID := flag.String("room", "sim-room", "room identifier")
	role := flag.String("role", engine.RoleMedico, "participant role (medico|paciente)")
	patientID := flag.String("patient", "", "patient identifier")
	withAudio := flag.Bool("audio", false, "stream a synthetic tone alongside the dictation")
	flag.Parse()

	header := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	header.Printf("▶ Consult simulation: room=%s role=%s\n", *roomID, *role)

	// Engine tuning comes from the same env knobs the relay reads.
	appCfg := config.Load()
	cfg := engine.Config{
		BaseURL:       *baseURL,
		RoomID:        *roomID,
		Role:          *role,
		PatientID:     *patientID,
		Debounce:      time.Duration(appCfg.Sync.DebounceMs) * time.Millisecond,
		TranscriptCap: appCfg.Sync.TranscriptCap,
	}
	if *withAudio {
		cfg.Capture = newToneCapture(440)
	}

	eng := engine.New(cfg, logger.Nop{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Connect(ctx); err != nil {
		log.Fatalf("connect: %v", err)
	}
	ok.Println("✓ connected")
	defer eng.Close()

	if *withAudio {
		if err := eng.StartAudio(ctx); err != nil {
			warn.Printf("audio unavailable: %v\n", err)
		} else {
			ok.Println("✓ audio streaming")
			defer eng.StopAudio()
		}
	}

	for i, line := range script {
		select {
		case <-ctx.Done():
			return
		case <-time.After(1200 * time.Millisecond):
		}
		isPartial := i < len(script)-1
		eng.SubmitTranscription(line, isPartial)
		fmt.Printf("  dictated %q (partial=%v)\n", line, isPartial)
	}

	// Wait past the debounce window for the agent round-trip.
	select {
	case <-ctx.Done():
		return
	case <-time.After(4 * time.Second):
	}

	header.Println("▶ Document")
	for _, sec := range historia.Secciones {
		state, _ := eng.SectionState(sec)
		if state.Contenido == "" && state.PropuestaPendiente == "" {
			continue
		}
		fmt.Printf("  %-22s [%s] %s\n", historia.Labels[sec], state.Estado, firstLine(state.Contenido))
		if state.PropuestaPendiente != "" {
			warn.Printf("    pending: %s\n", firstLine(state.PropuestaPendiente))
		}
	}
	ok.Printf("agent=%s transcript=%d segments\n", eng.AgentStatus(), eng.Transcript().Len())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "…"
	}
	return s
}

// toneCapture produces a steady sine wave at 16 kHz so the encoder path can
// be exercised without a microphone.
type toneCapture struct {
	freq   float64
	cancel context.CancelFunc
}

func newToneCapture(freq float64) *toneCapture {
	return &toneCapture{freq: freq}
}

func (t *toneCapture) Name() string { return fmt.Sprintf("tone-%.0fhz", t.freq) }

func (t *toneCapture) Start(ctx context.Context) (<-chan audio.Frame, error) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	frames := make(chan audio.Frame)
	go func() {
		defer close(frames)
		const frameSize = 1920 // 120ms at 16kHz
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		var phase float64
		step := 2 * math.Pi * t.freq / float64(audio.TargetSampleRate)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			samples := make([]float32, frameSize)
			for i := range samples {
				samples[i] = float32(0.2 * math.Sin(phase))
				phase += step
			}
			select {
			case frames <- audio.Frame{Samples: samples, SampleRate: audio.TargetSampleRate}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames, nil
}

func (t *toneCapture) Close() error {
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}
