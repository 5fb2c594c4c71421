package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/navdash/internal/adapter"
	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/internal/token"
	"github.com/MKhiriev/navdash/models"
	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"
)

const (
	refreshFlightKey = "refresh"

	// DefaultRefreshSkew is how long before the token's own expiry the
	// client starts treating it as stale and refreshes.
	DefaultRefreshSkew = 30 * time.Second
)

type sessionManager struct {
	gateway   adapter.Gateway
	kv        store.KVRepository
	bus       *events.Bus
	clock     clock.Clock
	accessTTL time.Duration
	skew      time.Duration
	logger    *logger.Logger

	flight singleflight.Group

	mu         sync.RWMutex
	session    models.Session
	refreshing bool
	// signedOut blocks silent refresh after an explicit logout until the
	// next successful login.
	signedOut bool
	// epoch is bumped by Logout; a refresh started in an older epoch must not
	// store its token.
	epoch   uint64
	onLogin []func(ctx context.Context)
}

// NewSessionManager creates a SessionManager. accessTTL is the fallback
// lifetime used when the expiry cannot be read from a token.
func NewSessionManager(gateway adapter.Gateway, kv store.KVRepository, bus *events.Bus, clk clock.Clock, accessTTL time.Duration, logger *logger.Logger) SessionManager {
	if clk == nil {
		clk = clock.New()
	}
	if accessTTL <= 0 {
		accessTTL = token.DefaultAccessTTL
	}
	return &sessionManager{
		gateway:   gateway,
		kv:        kv,
		bus:       bus,
		clock:     clk,
		accessTTL: accessTTL,
		skew:      DefaultRefreshSkew,
		logger:    logger,
	}
}

func (m *sessionManager) EnsureToken(ctx context.Context) (string, bool) {
	if tok, ok := m.cached(); ok {
		return tok, true
	}

	m.mu.RLock()
	signedOut := m.signedOut
	m.mu.RUnlock()
	if signedOut {
		return "", false
	}

	// The shared refresh outlives the caller that started it, so a canceled
	// caller does not fail the others waiting on the same flight.
	flightCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan(refreshFlightKey, func() (any, error) {
		return m.refresh(flightCtx)
	})

	select {
	case <-ctx.Done():
		return "", false
	case res := <-ch:
		if res.Err != nil {
			return "", false
		}
		return res.Val.(string), true
	}
}

func (m *sessionManager) cached() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session.ValidAt(m.clock.Now()) {
		return m.session.AccessToken, true
	}
	return "", false
}

func (m *sessionManager) refresh(ctx context.Context) (any, error) {
	// Another flight may have finished between the caller's check and ours.
	if tok, ok := m.cached(); ok {
		return tok, nil
	}

	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	m.setRefreshing(true)
	tok, err := m.gateway.Refresh(ctx)
	m.setRefreshing(false)

	if !m.sameEpoch(epoch) {
		m.logger.Info().Msg("session ended during refresh, dropping refreshed token")
		return nil, ErrNotAuthenticated
	}

	if err != nil {
		if errors.Is(err, adapter.ErrNetwork) {
			if old, ok := m.stillUsable(); ok {
				m.logger.Warn().Err(err).Msg("refresh failed on network error, keeping unexpired token")
				return old, nil
			}
		}

		m.logger.Info().Err(err).Msg("silent refresh failed, session cleared")
		m.clear(ctx)
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	if !m.prime(ctx, tok, epoch, false) {
		return nil, ErrNotAuthenticated
	}
	return tok, nil
}

func (m *sessionManager) sameEpoch(epoch uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch == epoch && !m.signedOut
}

// stillUsable returns the cached token if its own expiry has not passed,
// even though it is inside the refresh skew window.
func (m *sessionManager) stillUsable() (string, bool) {
	m.mu.RLock()
	tok := m.session.AccessToken
	m.mu.RUnlock()

	if tok == "" {
		return "", false
	}
	if m.clock.Now().Before(m.hardExpiry(tok)) {
		return tok, true
	}
	return "", false
}

// hardExpiry is the exp claim of tok, or the persisted estimate if the token
// cannot be inspected.
func (m *sessionManager) hardExpiry(tok string) time.Time {
	claims, err := token.Inspect(tok)
	if err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ExpiresAt
}

// expiryEstimate is the point after which tok is refreshed: its exp claim
// minus the skew, or now + accessTTL when the claim is unreadable.
func (m *sessionManager) expiryEstimate(tok string) time.Time {
	now := m.clock.Now()

	claims, err := token.Inspect(tok)
	if err != nil || claims.ExpiresAt == nil {
		return now.Add(m.accessTTL)
	}

	exp := claims.ExpiresAt.Time
	if est := exp.Add(-m.skew); est.After(now) {
		return est
	}
	return exp
}

// prime stores tok as the current session. Only a login may lift the
// signed-out state; a refresh is stored only if no logout happened since it
// started in epoch.
func (m *sessionManager) prime(ctx context.Context, tok string, epoch uint64, login bool) bool {
	session := models.Session{AccessToken: tok, ExpiresAt: m.expiryEstimate(tok)}

	m.mu.Lock()
	if login {
		m.signedOut = false
	} else if m.signedOut || m.epoch != epoch {
		m.mu.Unlock()
		return false
	}
	m.session = session
	m.mu.Unlock()

	m.persist(ctx, session)
	m.publishState()
	return true
}

func (m *sessionManager) clear(ctx context.Context) {
	m.mu.Lock()
	m.session = models.Session{}
	m.mu.Unlock()

	if err := m.kv.Delete(ctx, models.SessionStorageKey); err != nil {
		m.logger.Err(err).Str("func", "*sessionManager.clear").Msg("error deleting persisted session")
	}
	m.publishState()
}

func (m *sessionManager) persist(ctx context.Context, session models.Session) {
	raw, err := json.Marshal(session)
	if err != nil {
		m.logger.Err(err).Str("func", "*sessionManager.persist").Msg("error encoding session")
		return
	}
	if err = m.kv.Put(ctx, models.SessionStorageKey, raw); err != nil {
		m.logger.Err(err).Str("func", "*sessionManager.persist").Msg("error persisting session")
	}
}

func (m *sessionManager) setRefreshing(v bool) {
	m.mu.Lock()
	m.refreshing = v
	m.mu.Unlock()
	m.publishState()
}

func (m *sessionManager) publishState() {
	if m.bus != nil {
		m.bus.Publish(events.SessionChanged{State: m.State()})
	}
}

func (m *sessionManager) Invalidate() {
	m.mu.Lock()
	m.session = models.Session{}
	m.mu.Unlock()
}

func (m *sessionManager) Login(ctx context.Context, code string) error {
	if code == "" {
		return ErrCodeRequired
	}

	tok, err := m.gateway.Login(ctx, code)
	if err != nil {
		return mapAuthError("login", err)
	}

	m.prime(ctx, tok, 0, true)
	m.logger.Info().Msg("logged in")

	m.mu.RLock()
	hooks := append([]func(context.Context){}, m.onLogin...)
	m.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

func (m *sessionManager) Logout(ctx context.Context) error {
	err := m.gateway.Logout(ctx)

	m.mu.Lock()
	m.signedOut = true
	m.epoch++
	m.mu.Unlock()
	m.clear(ctx)

	if err != nil {
		m.logger.Warn().Err(err).Msg("remote logout failed, local session cleared anyway")
		return fmt.Errorf("remote logout: %w", err)
	}
	m.logger.Info().Msg("logged out")
	return nil
}

func (m *sessionManager) UpdateCredential(ctx context.Context, current, next string) error {
	if current == "" || next == "" {
		return ErrCodeRequired
	}

	tok, ok := m.EnsureToken(ctx)
	if !ok {
		return ErrNotAuthenticated
	}

	if err := m.gateway.ChangeCode(ctx, tok, current, next); err != nil {
		err = mapAuthError("change code", err)
		if errors.Is(err, ErrNotAuthenticated) {
			m.Invalidate()
		}
		return err
	}

	m.logger.Info().Msg("auth code rotated")
	return nil
}

func (m *sessionManager) State() models.SessionState {
	m.mu.RLock()
	refreshing := m.refreshing
	session := m.session
	m.mu.RUnlock()

	now := m.clock.Now()
	switch {
	case refreshing:
		return models.Refreshing
	case session.ValidAt(now):
		return models.Authenticated
	case session.AccessToken != "" && now.Before(m.hardExpiry(session.AccessToken)):
		return models.Expiring
	default:
		return models.Unauthenticated
	}
}

func (m *sessionManager) Restore(ctx context.Context) error {
	raw, err := m.kv.Get(ctx, models.SessionStorageKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err = json.Unmarshal(raw, &session); err != nil || session.AccessToken == "" {
		m.logger.Warn().Err(err).Msg("discarding malformed persisted session")
		if delErr := m.kv.Delete(ctx, models.SessionStorageKey); delErr != nil {
			m.logger.Err(delErr).Str("func", "*sessionManager.Restore").Msg("error deleting persisted session")
		}
		return nil
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	m.publishState()
	return nil
}

func (m *sessionManager) OnLogin(fn func(ctx context.Context)) {
	m.mu.Lock()
	m.onLogin = append(m.onLogin, fn)
	m.mu.Unlock()
}
