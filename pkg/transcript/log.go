package transcript

import (
	"strings"
	"time"
)

// DefaultCapacity bounds the rolling transcript log; the oldest segments are
// evicted first.
const DefaultCapacity = 100

// Segment is one transcript entry, immutable once appended. Partial segments
// represent in-progress recognition output that a later segment finalizes.
type Segment struct {
	Text        string
	IsPartial   bool
	Participant string
	Timestamp   time.Time
}

// Log is the ordered, bounded segment log.
type Log struct {
	segments []Segment
	capacity int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append adds a segment, evicting the oldest when the log is full.
func (l *Log) Append(seg Segment) {
	l.segments = append(l.segments, seg)
	if len(l.segments) > l.capacity {
		l.segments = l.segments[len(l.segments)-l.capacity:]
	}
}

// Len returns the number of retained segments.
func (l *Log) Len() int {
	return len(l.segments)
}

// Last returns the most recent segment, if any.
func (l *Log) Last() (Segment, bool) {
	if len(l.segments) == 0 {
		return Segment{}, false
	}
	return l.segments[len(l.segments)-1], true
}

// Concat joins all segments into one string, one line per segment, each
// prefixed with its participant label when present.
func (l *Log) Concat() string {
	var b strings.Builder
	for i, seg := range l.segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		if seg.Participant != "" {
			b.WriteString("[" + seg.Participant + "]: ")
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
