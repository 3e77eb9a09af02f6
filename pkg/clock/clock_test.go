package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualAfterFuncFiresInDueOrder(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	var order []string

	clk.AfterFunc(300*time.Millisecond, func() { order = append(order, "late") })
	clk.AfterFunc(100*time.Millisecond, func() { order = append(order, "early") })

	clk.Advance(time.Second)
	assert.Equal(t, []string{"early", "late"}, order)
}

func TestManualAdvanceMovesNow(t *testing.T) {
	start := time.Unix(1000, 0)
	clk := NewManual(start)

	clk.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clk.Now())
}

func TestManualTimerStop(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	fired := false

	timer := clk.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	clk.Advance(time.Minute)
	assert.False(t, fired)
}

func TestManualTickerRepeats(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	ticks := 0

	ticker := clk.Ticker(100*time.Millisecond, func() { ticks++ })
	clk.Advance(350 * time.Millisecond)
	assert.Equal(t, 3, ticks)

	ticker.Stop()
	clk.Advance(time.Second)
	assert.Equal(t, 3, ticks)
}

func TestManualSeesNowInsideCallback(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	var at time.Time

	clk.AfterFunc(250*time.Millisecond, func() { at = clk.Now() })
	clk.Advance(time.Second)
	assert.Equal(t, time.Unix(0, 0).Add(250*time.Millisecond), at)
}
