package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/internal/token"
	"github.com/MKhiriev/navdash/models"
	"github.com/benbjohnson/clock"
	"golang.org/x/crypto/bcrypt"
)

// authCodeKey is the gateway KV key holding the bcrypt hash of the auth code.
// It sits outside the slice key prefix so Bootstrap never sees it.
const authCodeKey = "gateway.auth_code"

// authService is the concrete implementation of AuthService.
// It checks the auth code against a bcrypt hash kept in the KV store and
// issues stateless tokens through a token.Codec.
type authService struct {
	// kv holds the code hash.
	kv store.KVRepository

	// codec signs and verifies both token kinds.
	codec *token.Codec

	// seedCode is the configured auth code used only when no hash is stored.
	seedCode string

	clock clock.Clock

	// mu serialises ChangeCode so two rotations cannot both pass the check
	// against the same old hash.
	mu sync.Mutex

	logger *logger.Logger
}

// NewAuthService constructs an AuthService over kv with the token settings
// from cfg. It fails if cfg carries no token signing key.
func NewAuthService(kv store.KVRepository, cfg config.App, clk clock.Clock, logger *logger.Logger) (AuthService, error) {
	if clk == nil {
		clk = clock.New()
	}

	codec, err := token.NewCodec(cfg.TokenSignKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, token.WithNow(clk.Now))
	if err != nil {
		return nil, fmt.Errorf("create token codec: %w", err)
	}

	return &authService{
		kv:       kv,
		codec:    codec,
		seedCode: cfg.AuthCode,
		clock:    clk,
		logger:   logger,
	}, nil
}

// EnsureCode stores the bcrypt hash of the configured code if none exists.
//
// Returns ErrCodeNotConfigured when neither a stored hash nor a configured
// code is available, since nobody could ever log in.
func (a *authService) EnsureCode(ctx context.Context) error {
	_, err := a.kv.Get(ctx, authCodeKey)
	if err == nil {
		a.logger.Debug().Msg("auth code hash already stored")
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load auth code hash: %w", err)
	}

	if a.seedCode == "" {
		return ErrCodeNotConfigured
	}
	if err = a.storeCode(ctx, a.seedCode); err != nil {
		return err
	}

	a.logger.Info().Msg("auth code hash seeded from configuration")
	return nil
}

// Login authenticates code and issues a token pair.
//
// Returns:
//   - ErrInvalidDataProvided if code is empty.
//   - ErrCodeNotConfigured if no hash is stored.
//   - ErrWrongCode if code does not match.
func (a *authService) Login(ctx context.Context, code string) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if code == "" {
		log.Error().Msg("empty auth code provided")
		return models.TokenPair{}, ErrInvalidDataProvided
	}

	if err := a.checkCode(ctx, code); err != nil {
		log.Err(err).Msg("login rejected")
		return models.TokenPair{}, err
	}

	return a.issuePair()
}

// Refresh verifies refreshToken and issues a new pair. Any verification
// failure is normalised to ErrTokenIsExpiredOrInvalid.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	if _, err := a.codec.VerifyKind(refreshToken, models.RefreshToken); err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("refresh token rejected")
		return models.TokenPair{}, ErrTokenIsExpiredOrInvalid
	}

	return a.issuePair()
}

// ChangeCode replaces the stored hash with the hash of next.
//
// Tokens issued before the change stay valid until they expire.
func (a *authService) ChangeCode(ctx context.Context, current, next string) error {
	log := logger.FromContext(ctx)

	if current == "" || next == "" {
		log.Error().Msg("empty auth code provided for change")
		return ErrInvalidDataProvided
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkCode(ctx, current); err != nil {
		log.Err(err).Msg("auth code change rejected")
		return err
	}
	if err := a.storeCode(ctx, next); err != nil {
		return err
	}

	log.Info().Msg("auth code changed")
	return nil
}

// ParseAccessToken verifies a bearer token. Refresh tokens are not accepted
// as bearer credentials.
func (a *authService) ParseAccessToken(ctx context.Context, accessToken string) (models.TokenClaims, error) {
	claims, err := a.codec.VerifyKind(accessToken, models.AccessToken)
	if err != nil {
		return models.TokenClaims{}, ErrTokenIsExpiredOrInvalid
	}

	return claims, nil
}

func (a *authService) checkCode(ctx context.Context, code string) error {
	hash, err := a.kv.Get(ctx, authCodeKey)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCodeNotConfigured
	}
	if err != nil {
		return fmt.Errorf("load auth code hash: %w", err)
	}

	err = bcrypt.CompareHashAndPassword(hash, []byte(code))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrWrongCode
	}
	if err != nil {
		return fmt.Errorf("compare auth code: %w", err)
	}
	return nil
}

func (a *authService) storeCode(ctx context.Context, code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash auth code: %w", err)
	}
	if err = a.kv.Put(ctx, authCodeKey, hash); err != nil {
		return fmt.Errorf("store auth code hash: %w", err)
	}
	return nil
}

func (a *authService) issuePair() (models.TokenPair, error) {
	access, err := a.codec.Issue(models.AccessToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}
	refresh, err := a.codec.Issue(models.RefreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: a.clock.Now().Add(a.codec.TTL(models.RefreshToken)),
	}, nil
}
