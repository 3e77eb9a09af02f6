package transcript

import (
	"strings"
	"sync"
	"time"

	"video-consulta-sync/pkg/clock"
)

// DefaultDebounce is the quiet window that must elapse after the last
// transcript update before the agent is asked to re-evaluate.
const DefaultDebounce = 2000 * time.Millisecond

// DispatchRequest is the content of one process_with_agent request.
type DispatchRequest struct {
	Transcription   string
	IsPartial       bool
	CurrentSections map[string]string
	ActiveSection   string
}

// SnapshotFunc returns the non-empty section contents and the active section
// id at dispatch time. Supplied by the owning engine so the aggregator never
// holds a reference back into the document.
type SnapshotFunc func() (sections map[string]string, active string)

// DispatchFunc ships one request to the agent.
type DispatchFunc func(DispatchRequest)

// Aggregator accumulates transcript segments and decides when to forward the
// accumulated text to the agent: trailing-edge debounce with dedup against
// the last dispatched string.
type Aggregator struct {
	mu       sync.Mutex
	log      *Log
	clk      clock.Clock
	debounce time.Duration
	timer    clock.Timer
	lastSent string
	snapshot SnapshotFunc
	dispatch DispatchFunc
}

func NewAggregator(clk clock.Clock, debounce time.Duration, capacity int, snapshot SnapshotFunc, dispatch DispatchFunc) *Aggregator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Aggregator{
		log:      NewLog(capacity),
		clk:      clk,
		debounce: debounce,
		snapshot: snapshot,
		dispatch: dispatch,
	}
}

// Observe appends a segment to the log and (re)starts the debounce timer.
// Each update cancels any pending timer, so dispatch only happens after a
// full quiet window. Blank segments are ignored: appending one would grow
// Concat without adding text and defeat the dedup against lastSent.
func (a *Aggregator) Observe(seg Segment) {
	if strings.TrimSpace(seg.Text) == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.log.Append(seg)

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = a.clk.AfterFunc(a.debounce, a.fire)
}

// fire runs on timer expiry: dedup against the last dispatched string, then
// snapshot and dispatch.
func (a *Aggregator) fire() {
	a.mu.Lock()
	a.timer = nil
	full := a.log.Concat()
	if full == a.lastSent || strings.TrimSpace(full) == "" {
		a.mu.Unlock()
		return
	}
	a.lastSent = full
	isPartial := false
	if last, ok := a.log.Last(); ok {
		isPartial = last.IsPartial
	}
	sections, active := a.snapshot()
	dispatch := a.dispatch
	a.mu.Unlock()

	dispatch(DispatchRequest{
		Transcription:   full,
		IsPartial:       isPartial,
		CurrentSections: sections,
		ActiveSection:   active,
	})
}

// DispatchNow is the direct path for operator-submitted final entries: the
// text is forwarded immediately, bypassing the debounce timer, and the
// last-sent marker is updated so a subsequent debounce firing with identical
// content is suppressed.
func (a *Aggregator) DispatchNow(text string) {
	a.mu.Lock()
	if strings.TrimSpace(text) == "" {
		a.mu.Unlock()
		return
	}
	a.lastSent = text
	sections, active := a.snapshot()
	dispatch := a.dispatch
	a.mu.Unlock()

	dispatch(DispatchRequest{
		Transcription:   text,
		IsPartial:       false,
		CurrentSections: sections,
		ActiveSection:   active,
	})
}

// Cancel invalidates any pending debounce timer. Called on disconnect or
// when the section context changes so a stale dispatch cannot leak into the
// new context.
func (a *Aggregator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Log exposes the underlying bounded log (read-side: Len, Last, Concat).
func (a *Aggregator) Log() *Log {
	return a.log
}
