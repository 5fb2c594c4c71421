// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package events provides the typed observer used by the sync engine to tell
// the presentation layer about slice changes, sync status, notices and
// session transitions.
//
// Delivery is synchronous and totally ordered: every subscriber sees events
// in publish order. A handler may publish again; the nested event is queued
// and delivered after the current one finishes, never interleaved with it.
package events

import (
	"fmt"
	"sync"

	"github.com/MKhiriev/navdash/internal/logger"
)

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Bus is a synchronous publish/subscribe hub. The zero value is not usable;
// create one with [NewBus].
type Bus struct {
	mu       sync.Mutex
	subs     []subscription
	nextID   uint64
	queue    []Event
	draining bool

	logger *logger.Logger
}

// NewBus creates an empty bus. Panics raised by handlers are recovered and
// logged through log.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{logger: log}
}

// Subscribe registers fn for every event and returns a function that removes
// the subscription. Calling the returned function more than once is safe.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// On subscribes fn to events of type T only.
func On[T Event](b *Bus, fn func(T)) (unsubscribe func()) {
	return b.Subscribe(func(e Event) {
		if v, ok := e.(T); ok {
			fn(v)
		}
	})
}

// Publish delivers e to all current subscribers.
//
// If another Publish is already draining the queue (on this goroutine through
// a nested call, or on another goroutine), e is appended and will be
// delivered by that drainer in order.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true

	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		subs := make([]subscription, len(b.subs))
		copy(subs, b.subs)
		b.mu.Unlock()

		for _, s := range subs {
			b.deliver(s.fn, next)
		}

		b.mu.Lock()
	}

	b.draining = false
	b.mu.Unlock()
}

func (b *Bus) deliver(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("func", "Bus.deliver").
				Str("event", fmt.Sprintf("%T", e)).
				Msgf("event handler panicked: %v", r)
		}
	}()
	fn(e)
}
