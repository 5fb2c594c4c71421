package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/navdash/internal/adapter"
	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/mock"
	"github.com/MKhiriev/navdash/internal/token"
	"github.com/MKhiriev/navdash/models"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAccessTTL = 15 * time.Minute

type sessionFixture struct {
	manager *sessionManager
	gateway *mock.MockGateway
	kv      *mock.MemoryKV
	bus     *events.Bus
	clock   *clock.Mock
	codec   *token.Codec
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	clk := clock.NewMock()
	clk.Set(testEpoch)

	codec, err := token.NewCodec("session-test-secret", testAccessTTL, time.Hour, token.WithNow(clk.Now))
	require.NoError(t, err)

	gw := mock.NewMockGateway(ctrl)
	kv := mock.NewMemoryKV()
	bus := events.NewBus(logger.Nop())

	return &sessionFixture{
		manager: NewSessionManager(gw, kv, bus, clk, testAccessTTL, logger.Nop()).(*sessionManager),
		gateway: gw,
		kv:      kv,
		bus:     bus,
		clock:   clk,
		codec:   codec,
	}
}

func (f *sessionFixture) issue(t *testing.T) string {
	t.Helper()

	tok, err := f.codec.Issue(models.AccessToken)
	require.NoError(t, err)
	return tok
}

func (f *sessionFixture) login(t *testing.T) string {
	t.Helper()

	tok := f.issue(t)
	f.gateway.EXPECT().Login(gomock.Any(), "secret").Return(tok, nil)
	require.NoError(t, f.manager.Login(context.Background(), "secret"))
	return tok
}

// ── EnsureToken ──────────────────────────────────────────────────────────────

func TestSessionManager_EnsureToken_CachedTokenNoIO(t *testing.T) {
	f := newSessionFixture(t)
	tok := f.login(t)

	// no Refresh expectation: any gateway call fails the test
	got, ok := f.manager.EnsureToken(context.Background())

	assert.True(t, ok)
	assert.Equal(t, tok, got)
	assert.Equal(t, models.Authenticated, f.manager.State())
}

func TestSessionManager_EnsureToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	f := newSessionFixture(t)
	tok := f.issue(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.EXPECT().Refresh(gomock.Any()).DoAndReturn(func(context.Context) (string, error) {
		close(entered)
		<-release
		return tok, nil
	}).Times(1)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)
	oks := make([]bool, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], oks[i] = f.manager.EnsureToken(context.Background())
		}()
	}

	<-entered
	assert.Equal(t, models.Refreshing, f.manager.State())
	close(release)
	wg.Wait()

	for i := range callers {
		assert.True(t, oks[i])
		assert.Equal(t, tok, results[i])
	}
	assert.Equal(t, models.Authenticated, f.manager.State())
}

func TestSessionManager_EnsureToken_CanceledCallerDoesNotFailOthers(t *testing.T) {
	f := newSessionFixture(t)
	tok := f.issue(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.EXPECT().Refresh(gomock.Any()).DoAndReturn(func(ctx context.Context) (string, error) {
		close(entered)
		<-release
		// the shared flight must not inherit the first caller's cancellation
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return tok, nil
	}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	firstDone := make(chan bool)
	go func() {
		_, ok := f.manager.EnsureToken(ctx)
		firstDone <- ok
	}()
	<-entered

	secondDone := make(chan string)
	go func() {
		got, _ := f.manager.EnsureToken(context.Background())
		secondDone <- got
	}()

	cancel()
	assert.False(t, <-firstDone)
	close(release)
	assert.Equal(t, tok, <-secondDone)
}

func TestSessionManager_EnsureToken_RefreshRejectedClearsSession(t *testing.T) {
	f := newSessionFixture(t)
	f.login(t)
	f.clock.Add(testAccessTTL)

	f.gateway.EXPECT().Refresh(gomock.Any()).Return("", adapter.ErrUnauthorized)

	_, ok := f.manager.EnsureToken(context.Background())

	assert.False(t, ok)
	assert.Equal(t, models.Unauthenticated, f.manager.State())
	_, stored := f.kv.Raw(models.SessionStorageKey)
	assert.False(t, stored)
}

func TestSessionManager_EnsureToken_NetworkErrorKeepsUnexpiredToken(t *testing.T) {
	f := newSessionFixture(t)
	tok := f.login(t)

	// inside the skew window but before the token's own expiry
	f.clock.Add(testAccessTTL - 10*time.Second)
	assert.Equal(t, models.Expiring, f.manager.State())

	f.gateway.EXPECT().Refresh(gomock.Any()).Return("", adapter.ErrNetwork)

	got, ok := f.manager.EnsureToken(context.Background())

	assert.True(t, ok)
	assert.Equal(t, tok, got)
}

func TestSessionManager_EnsureToken_NetworkErrorAfterExpiryFails(t *testing.T) {
	f := newSessionFixture(t)
	f.login(t)
	f.clock.Add(testAccessTTL + time.Second)

	f.gateway.EXPECT().Refresh(gomock.Any()).Return("", adapter.ErrNetwork)

	_, ok := f.manager.EnsureToken(context.Background())

	assert.False(t, ok)
	assert.Equal(t, models.Unauthenticated, f.manager.State())
}

func TestSessionManager_Invalidate_ForcesRefresh(t *testing.T) {
	f := newSessionFixture(t)
	f.login(t)
	fresh := f.issue(t)

	f.gateway.EXPECT().Refresh(gomock.Any()).Return(fresh, nil).Times(1)

	f.manager.Invalidate()
	got, ok := f.manager.EnsureToken(context.Background())

	assert.True(t, ok)
	assert.Equal(t, fresh, got)
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestSessionManager_Login_PersistsSessionAndRunsHooks(t *testing.T) {
	f := newSessionFixture(t)

	var hookCalls int
	f.manager.OnLogin(func(context.Context) { hookCalls++ })

	var states []models.SessionState
	events.On(f.bus, func(e events.SessionChanged) { states = append(states, e.State) })

	tok := f.login(t)

	assert.Equal(t, 1, hookCalls)
	assert.Contains(t, states, models.Authenticated)

	raw, ok := f.kv.Raw(models.SessionStorageKey)
	require.True(t, ok)
	var session models.Session
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, tok, session.AccessToken)
	assert.True(t, testEpoch.Add(testAccessTTL-DefaultRefreshSkew).Equal(session.ExpiresAt))
}

func TestSessionManager_Login_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		gateErr error
		wantErr error
	}{
		{name: "empty code", code: "", wantErr: ErrCodeRequired},
		{name: "wrong code", code: "nope", gateErr: adapter.ErrUnauthorized, wantErr: ErrInvalidCode},
		{name: "unreachable", code: "nope", gateErr: adapter.ErrNetwork, wantErr: adapter.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			hookRan := false
			f.manager.OnLogin(func(context.Context) { hookRan = true })
			if tt.gateErr != nil {
				f.gateway.EXPECT().Login(gomock.Any(), tt.code).Return("", tt.gateErr)
			}

			err := f.manager.Login(context.Background(), tt.code)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, hookRan)
			assert.Equal(t, models.Unauthenticated, f.manager.State())
		})
	}
}

// ── Logout ───────────────────────────────────────────────────────────────────

func TestSessionManager_Logout_ClearsEvenWhenRemoteFails(t *testing.T) {
	f := newSessionFixture(t)
	f.login(t)

	f.gateway.EXPECT().Logout(gomock.Any()).Return(adapter.ErrNetwork)

	err := f.manager.Logout(context.Background())

	assert.ErrorIs(t, err, adapter.ErrNetwork)
	assert.Equal(t, models.Unauthenticated, f.manager.State())
	_, stored := f.kv.Raw(models.SessionStorageKey)
	assert.False(t, stored)

	// a stale refresh cookie must not bring the session back
	_, ok := f.manager.EnsureToken(context.Background())
	assert.False(t, ok)
}

func TestSessionManager_Logout_DuringRefreshDropsRefreshedToken(t *testing.T) {
	f := newSessionFixture(t)
	tok := f.issue(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.EXPECT().Refresh(gomock.Any()).DoAndReturn(func(context.Context) (string, error) {
		close(entered)
		<-release
		return tok, nil
	}).Times(1)
	f.gateway.EXPECT().Logout(gomock.Any()).Return(nil)

	done := make(chan bool)
	go func() {
		_, ok := f.manager.EnsureToken(context.Background())
		done <- ok
	}()

	<-entered
	require.NoError(t, f.manager.Logout(context.Background()))
	close(release)

	assert.False(t, <-done)

	got, ok := f.manager.EnsureToken(context.Background())
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, models.Unauthenticated, f.manager.State())
	_, stored := f.kv.Raw(models.SessionStorageKey)
	assert.False(t, stored)
}

func TestSessionManager_Logout_ThenLoginRefreshesAgain(t *testing.T) {
	f := newSessionFixture(t)
	f.login(t)

	f.gateway.EXPECT().Logout(gomock.Any()).Return(nil)
	require.NoError(t, f.manager.Logout(context.Background()))

	f.login(t)
	f.manager.Invalidate()

	fresh := f.issue(t)
	f.gateway.EXPECT().Refresh(gomock.Any()).Return(fresh, nil)

	got, ok := f.manager.EnsureToken(context.Background())
	assert.True(t, ok)
	assert.Equal(t, fresh, got)
}

// ── UpdateCredential ─────────────────────────────────────────────────────────

func TestSessionManager_UpdateCredential(t *testing.T) {
	tests := []struct {
		name          string
		gateErr       error
		wantErr       error
		wantCachedTok bool
	}{
		{name: "success", wantCachedTok: true},
		{name: "wrong current code", gateErr: adapter.ErrForbidden, wantErr: ErrInvalidCode, wantCachedTok: true},
		{name: "bearer rejected", gateErr: adapter.ErrUnauthorized, wantErr: ErrNotAuthenticated, wantCachedTok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			tok := f.login(t)

			f.gateway.EXPECT().ChangeCode(gomock.Any(), tok, "old", "new").Return(tt.gateErr)

			err := f.manager.UpdateCredential(context.Background(), "old", "new")

			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			_, cached := f.manager.cached()
			assert.Equal(t, tt.wantCachedTok, cached)
		})
	}
}

func TestSessionManager_UpdateCredential_NoSession(t *testing.T) {
	f := newSessionFixture(t)
	f.gateway.EXPECT().Refresh(gomock.Any()).Return("", adapter.ErrUnauthorized)

	err := f.manager.UpdateCredential(context.Background(), "old", "new")

	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionManager_UpdateCredential_EmptyCodes(t *testing.T) {
	f := newSessionFixture(t)

	assert.ErrorIs(t, f.manager.UpdateCredential(context.Background(), "", "new"), ErrCodeRequired)
	assert.ErrorIs(t, f.manager.UpdateCredential(context.Background(), "old", ""), ErrCodeRequired)
}

// ── Restore ──────────────────────────────────────────────────────────────────

func TestSessionManager_Restore_LoadsPersistedSession(t *testing.T) {
	f := newSessionFixture(t)
	tok := f.issue(t)
	raw, err := json.Marshal(models.Session{AccessToken: tok, ExpiresAt: testEpoch.Add(10 * time.Minute)})
	require.NoError(t, err)
	f.kv.Seed(models.SessionStorageKey, raw)

	require.NoError(t, f.manager.Restore(context.Background()))

	got, ok := f.manager.EnsureToken(context.Background())
	assert.True(t, ok)
	assert.Equal(t, tok, got)
}

func TestSessionManager_Restore_Missing(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.manager.Restore(context.Background()))
	assert.Equal(t, models.Unauthenticated, f.manager.State())
}

func TestSessionManager_Restore_MalformedDiscarded(t *testing.T) {
	f := newSessionFixture(t)
	f.kv.Seed(models.SessionStorageKey, []byte("{nope"))

	require.NoError(t, f.manager.Restore(context.Background()))

	_, stored := f.kv.Raw(models.SessionStorageKey)
	assert.False(t, stored)
	assert.Equal(t, models.Unauthenticated, f.manager.State())
}

func TestSessionManager_Restore_StorageError(t *testing.T) {
	f := newSessionFixture(t)
	f.kv.SetFailGet(assert.AnError)

	assert.ErrorIs(t, f.manager.Restore(context.Background()), assert.AnError)
}
