package transcript

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"video-consulta-sync/pkg/clock"
)

type dispatchRecorder struct {
	mu       sync.Mutex
	requests []DispatchRequest
}

func (r *dispatchRecorder) dispatch(req DispatchRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *dispatchRecorder) all() []DispatchRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DispatchRequest(nil), r.requests...)
}

func emptySnapshot() (map[string]string, string) {
	return map[string]string{}, "informacionGeneral"
}

func TestDebounceFiresAfterQuietWindow(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	rec := &dispatchRecorder{}
	agg := NewAggregator(clk, 2*time.Second, 0, emptySnapshot, rec.dispatch)

	// Updates at t=0, 500ms, 1000ms, 1800ms keep resetting the window.
	agg.Observe(Segment{Text: "paciente refiere", IsPartial: true})
	clk.Advance(500 * time.Millisecond)
	agg.Observe(Segment{Text: "paciente refiere dolor", IsPartial: true})
	clk.Advance(500 * time.Millisecond)
	agg.Observe(Segment{Text: "paciente refiere dolor toracico", IsPartial: true})
	clk.Advance(800 * time.Millisecond)
	agg.Observe(Segment{Text: "desde ayer", IsPartial: false})

	// 1999ms after the last update: still quiet.
	clk.Advance(1999 * time.Millisecond)
	assert.Empty(t, rec.all())

	// One more millisecond completes the window, t=3800ms.
	clk.Advance(1 * time.Millisecond)
	reqs := rec.all()
	if assert.Len(t, reqs, 1) {
		assert.Contains(t, reqs[0].Transcription, "paciente refiere")
		assert.Contains(t, reqs[0].Transcription, "desde ayer")
		assert.False(t, reqs[0].IsPartial)
		assert.Equal(t, "informacionGeneral", reqs[0].ActiveSection)
	}
}

func TestDebounceDedupsIdenticalContent(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	rec := &dispatchRecorder{}
	agg := NewAggregator(clk, 2*time.Second, 0, emptySnapshot, rec.dispatch)

	agg.Observe(Segment{Text: "sin cambios"})
	clk.Advance(3 * time.Second)
	assert.Len(t, rec.all(), 1)

	// Blank-only additions leave the concatenation unchanged after the
	// first dispatch, so the second firing is suppressed.
	agg.Observe(Segment{Text: ""})
	clk.Advance(3 * time.Second)
	assert.Len(t, rec.all(), 1)
}

func TestObserveIgnoresBlankOnlyLog(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	rec := &dispatchRecorder{}
	agg := NewAggregator(clk, 2*time.Second, 0, emptySnapshot, rec.dispatch)

	agg.Observe(Segment{Text: "   "})
	clk.Advance(time.Minute)
	assert.Empty(t, rec.all())
	assert.Zero(t, agg.Log().Len())
}

func TestDispatchNowBypassesTimerAndMarksSent(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	rec := &dispatchRecorder{}

	sections := map[string]string{"motivoAtencion": "cefalea"}
	agg := NewAggregator(clk, 2*time.Second, 0, func() (map[string]string, string) {
		return sections, "motivoAtencion"
	}, rec.dispatch)

	agg.Observe(Segment{Text: "cefalea intensa"})
	agg.DispatchNow("cefalea intensa")

	reqs := rec.all()
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, "cefalea intensa", reqs[0].Transcription)
		assert.False(t, reqs[0].IsPartial)
		assert.Equal(t, sections, reqs[0].CurrentSections)
	}

	// The pending debounce firing sees the same text and stays quiet.
	clk.Advance(3 * time.Second)
	assert.Len(t, rec.all(), 1)
}

func TestDispatchNowIgnoresBlank(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	rec := &dispatchRecorder{}
	agg := NewAggregator(clk, 2*time.Second, 0, emptySnapshot, rec.dispatch)

	agg.DispatchNow("  ")
	assert.Empty(t, rec.all())
}

func TestCancelSuppressesPendingDispatch(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	rec := &dispatchRecorder{}
	agg := NewAggregator(clk, 2*time.Second, 0, emptySnapshot, rec.dispatch)

	agg.Observe(Segment{Text: "texto pendiente"})
	agg.Cancel()
	clk.Advance(time.Minute)
	assert.Empty(t, rec.all())
}

func TestLogEvictsOldestBeyondCapacity(t *testing.T) {
	l := NewLog(100)
	for i := 0; i < 150; i++ {
		l.Append(Segment{Text: string(rune('a' + i%26))})
	}
	assert.Equal(t, 100, l.Len())

	last, ok := l.Last()
	assert.True(t, ok)
	assert.Equal(t, string(rune('a'+149%26)), last.Text)
}

func TestConcatPrefixesParticipant(t *testing.T) {
	l := NewLog(10)
	l.Append(Segment{Text: "buenos dias", Participant: "medico"})
	l.Append(Segment{Text: "me duele la cabeza", Participant: "paciente"})
	l.Append(Segment{Text: "entendido"})

	assert.Equal(t, "[medico]: buenos dias\n[paciente]: me duele la cabeza\nentendido", l.Concat())
}
