// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package scheduler provides cancelable delayed tasks keyed by name.
//
// Time comes from an injected [clock.Clock], so tests drive timers with
// clock.NewMock instead of sleeping.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultWindow is the debounce window used when none is configured.
const DefaultWindow = time.Second

type pending struct {
	timer *clock.Timer
	gen   uint64
}

// Debouncer runs at most one pending task per key. Scheduling a key that
// already has a pending task cancels it and restarts the window, so only the
// last task of a burst runs.
type Debouncer struct {
	clock  clock.Clock
	window time.Duration

	mu      sync.Mutex
	gen     uint64
	pending map[string]pending
	stopped bool
}

// NewDebouncer creates a debouncer. A nil clock means the wall clock; a
// non-positive window means [DefaultWindow].
func NewDebouncer(clk clock.Clock, window time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		clock:   clk,
		window:  window,
		pending: make(map[string]pending),
	}
}

// Window returns the debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Schedule arranges for fn to run after the window unless key is scheduled
// again or canceled first. fn runs on its own goroutine.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}

	d.gen++
	gen := d.gen
	timer := d.clock.AfterFunc(d.window, func() {
		d.mu.Lock()
		// A timer that lost the race with Stop must not run a superseded task.
		if p, ok := d.pending[key]; !ok || p.gen != gen {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		fn()
	})
	d.pending[key] = pending{timer: timer, gen: gen}
}

// Cancel drops the pending task of key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// CancelAll drops every pending task and returns their keys in sorted order.
func (d *Debouncer) CancelAll() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		keys = append(keys, key)
	}
	clear(d.pending)
	sort.Strings(keys)
	return keys
}

// Pending returns the keys with a scheduled task in sorted order.
func (d *Debouncer) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(d.pending))
	for key := range d.pending {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Stop cancels all pending tasks and makes further Schedule calls no-ops.
func (d *Debouncer) Stop() {
	d.CancelAll()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
