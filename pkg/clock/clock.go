package clock

import (
	"sync"
	"time"
)

// Clock abstracts time so that debounce and flush timers can be driven by
// virtual time in tests instead of wall-clock timers.
type Clock interface {
	Now() time.Time

	// AfterFunc schedules fn to run once d has elapsed. The returned Timer
	// can be stopped before it fires; Stop after firing is a no-op.
	AfterFunc(d time.Duration, fn func()) Timer

	// Ticker fires fn repeatedly every d until stopped.
	Ticker(d time.Duration, fn func()) Ticker
}

// Timer is a cancelable one-shot scheduled task.
type Timer interface {
	// Stop cancels the timer. Reports whether the call prevented the
	// function from running.
	Stop() bool
}

// Ticker is a cancelable repeating scheduled task.
type Ticker interface {
	Stop()
}

// Real is the wall-clock implementation backed by the time package.
type Real struct{}

func NewReal() *Real {
	return &Real{}
}

func (*Real) Now() time.Time {
	return time.Now()
}

func (*Real) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{time.AfterFunc(d, fn)}
}

func (*Real) Ticker(d time.Duration, fn func()) Ticker {
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	return &realTicker{ticker: t, done: done}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}

type realTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (r *realTicker) Stop() {
	r.once.Do(func() {
		r.ticker.Stop()
		close(r.done)
	})
}

// Manual is a test clock advanced explicitly with Advance. Scheduled
// functions run synchronously on the goroutine calling Advance, in due-time
// order, which keeps tests deterministic.
type Manual struct {
	mu   sync.Mutex
	now  time.Time
	seq  int
	jobs map[int]*manualJob
}

type manualJob struct {
	clock  *Manual
	id     int
	due    time.Time
	period time.Duration // 0 for one-shot
	fn     func()
}

func NewManual(start time.Time) *Manual {
	return &Manual{
		now:  start,
		jobs: make(map[int]*manualJob),
	}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.schedule(d, 0, fn)
}

func (m *Manual) Ticker(d time.Duration, fn func()) Ticker {
	return manualTicker{m.schedule(d, d, fn)}
}

type manualTicker struct {
	job *manualJob
}

func (t manualTicker) Stop() {
	t.job.Stop()
}

func (m *Manual) schedule(d, period time.Duration, fn func()) *manualJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	job := &manualJob{
		clock:  m,
		id:     m.seq,
		due:    m.now.Add(d),
		period: period,
		fn:     fn,
	}
	m.jobs[job.id] = job
	return job
}

// Advance moves the clock forward by d, firing every job that comes due in
// the interval, in order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var next *manualJob
		for _, j := range m.jobs {
			if j.due.After(target) {
				continue
			}
			if next == nil || j.due.Before(next.due) || (j.due.Equal(next.due) && j.id < next.id) {
				next = j
			}
		}
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		if next.period > 0 {
			next.due = next.due.Add(next.period)
		} else {
			delete(m.jobs, next.id)
		}
		fn := next.fn
		m.mu.Unlock()
		fn()
	}
}

func (j *manualJob) Stop() bool {
	j.clock.mu.Lock()
	defer j.clock.mu.Unlock()
	if _, ok := j.clock.jobs[j.id]; !ok {
		return false
	}
	delete(j.clock.jobs, j.id)
	return true
}
