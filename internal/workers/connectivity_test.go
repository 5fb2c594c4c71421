package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/mock"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const probeEvery = 10 * time.Second

var errOffline = errors.New("connection refused")

// scriptedProber answers each Ping with the next scripted result and
// repeats the last one when the script runs out.
type scriptedProber struct {
	mu     sync.Mutex
	script []error
	calls  atomic.Int64
}

func (p *scriptedProber) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := int(p.calls.Add(1)) - 1
	if n >= len(p.script) {
		n = len(p.script) - 1
	}
	return p.script[n]
}

type countingReconnector struct {
	calls atomic.Int64
}

func (r *countingReconnector) Reconnect(context.Context) {
	r.calls.Add(1)
}

type watcherFixture struct {
	prober    *scriptedProber
	reconnect *countingReconnector
	clock     *clock.Mock

	mu     sync.Mutex
	states []bool

	cancel context.CancelFunc
	done   chan struct{}
}

func startWatcher(t *testing.T, script ...error) *watcherFixture {
	t.Helper()
	f := &watcherFixture{
		prober:    &scriptedProber{script: script},
		reconnect: &countingReconnector{},
		clock:     clock.NewMock(),
		done:      make(chan struct{}),
	}

	bus := events.NewBus(logger.Nop())
	events.On(bus, func(e events.Connectivity) {
		f.mu.Lock()
		f.states = append(f.states, e.Online)
		f.mu.Unlock()
	})

	w := NewConnectivityWatcher(f.prober, f.reconnect, bus, f.clock, probeEvery, logger.Nop())

	var ctx context.Context
	ctx, f.cancel = context.WithCancel(context.Background())
	go func() {
		w.Run(ctx)
		close(f.done)
	}()
	t.Cleanup(f.stop)

	// the ticker exists once the first probe has happened
	f.waitProbes(t, 1)
	return f
}

func (f *watcherFixture) stop() {
	f.cancel()
	<-f.done
}

func (f *watcherFixture) waitProbes(t *testing.T, n int64) {
	t.Helper()
	require.Eventually(t, func() bool { return f.prober.calls.Load() >= n }, time.Second, time.Millisecond)
}

func (f *watcherFixture) tick(t *testing.T) {
	t.Helper()
	want := f.prober.calls.Load() + 1
	f.clock.Add(probeEvery)
	f.waitProbes(t, want)
}

func (f *watcherFixture) published() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.states...)
}

func TestConnectivityWatcher_FirstSuccessfulProbeReconnects(t *testing.T) {
	f := startWatcher(t, nil)

	assert.Eventually(t, func() bool { return f.reconnect.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []bool{true}, f.published())
}

func TestConnectivityWatcher_StaysOnline_NoExtraReconnect(t *testing.T) {
	f := startWatcher(t, nil)

	f.tick(t)
	f.tick(t)

	assert.Equal(t, int64(1), f.reconnect.calls.Load())
	assert.Equal(t, []bool{true}, f.published())
}

func TestConnectivityWatcher_ReconnectsOnTransition(t *testing.T) {
	f := startWatcher(t, nil, errOffline, errOffline, nil)

	f.tick(t) // offline
	f.tick(t) // still offline
	assert.Equal(t, int64(1), f.reconnect.calls.Load())

	f.tick(t) // back online
	assert.Eventually(t, func() bool { return f.reconnect.calls.Load() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []bool{true, false, true}, f.published())
}

func TestConnectivityWatcher_StartsOffline_NoReconnect(t *testing.T) {
	f := startWatcher(t, errOffline)

	f.tick(t)

	assert.Zero(t, f.reconnect.calls.Load())
	// the watcher starts offline, so an unreachable gateway is not a transition
	assert.Empty(t, f.published())
}

func TestConnectivityWatcher_StopsOnCancel(t *testing.T) {
	f := startWatcher(t, nil)

	f.cancel()
	select {
	case <-f.done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestConnectivityWatcher_DrivesGatewayAndCoordinator(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mock.NewMockGateway(ctrl)
	coordinator := mock.NewMockSyncCoordinator(ctrl)

	reconnected := make(chan struct{})
	gateway.EXPECT().Ping(gomock.Any()).Return(nil).MinTimes(1)
	coordinator.EXPECT().Reconnect(gomock.Any()).Do(func(context.Context) {
		close(reconnected)
	}).Times(1)

	w := NewConnectivityWatcher(gateway, coordinator, events.NewBus(logger.Nop()), clock.NewMock(), probeEvery, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-reconnected:
	case <-time.After(time.Second):
		t.Fatal("reconnect was not triggered by the first successful ping")
	}
	cancel()
	<-done
}
