package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(clk, time.Second)

	var runs atomic.Int32
	var last atomic.Int32
	for i := int32(1); i <= 5; i++ {
		v := i
		d.Schedule("links", func() {
			runs.Add(1)
			last.Store(v)
		})
		clk.Add(40 * time.Millisecond)
	}

	assert.Equal(t, []string{"links"}, d.Pending())
	clk.Add(time.Second)

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, waitFor, tick)
	assert.Equal(t, int32(5), last.Load())
	assert.Empty(t, d.Pending())
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(clk, time.Second)

	var links, prefs atomic.Int32
	d.Schedule("links", func() { links.Add(1) })
	clk.Add(500 * time.Millisecond)
	d.Schedule("preferences", func() { prefs.Add(1) })

	clk.Add(600 * time.Millisecond)
	assert.Eventually(t, func() bool { return links.Load() == 1 }, waitFor, tick)
	assert.Equal(t, int32(0), prefs.Load())

	clk.Add(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return prefs.Load() == 1 }, waitFor, tick)
}

func TestDebouncer_DoesNotFireBeforeWindow(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(clk, time.Second)

	var runs atomic.Int32
	d.Schedule("background", func() { runs.Add(1) })
	clk.Add(999 * time.Millisecond)

	assert.Never(t, func() bool { return runs.Load() > 0 }, 50*time.Millisecond, tick)
}

func TestDebouncer_Cancel(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(clk, time.Second)

	var runs atomic.Int32
	d.Schedule("links", func() { runs.Add(1) })

	assert.True(t, d.Cancel("links"))
	assert.False(t, d.Cancel("links"))

	clk.Add(2 * time.Second)
	assert.Never(t, func() bool { return runs.Load() > 0 }, 50*time.Millisecond, tick)
}

func TestDebouncer_CancelAllAndStop(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(clk, 0)
	assert.Equal(t, DefaultWindow, d.Window())

	var runs atomic.Int32
	d.Schedule("preferences", func() { runs.Add(1) })
	d.Schedule("links", func() { runs.Add(1) })

	assert.Equal(t, []string{"links", "preferences"}, d.CancelAll())

	d.Stop()
	d.Schedule("links", func() { runs.Add(1) })
	assert.Empty(t, d.Pending())

	clk.Add(5 * time.Second)
	assert.Never(t, func() bool { return runs.Load() > 0 }, 50*time.Millisecond, tick)
}
