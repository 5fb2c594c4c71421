// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package token implements compact stateless bearer tokens.
//
// A token is base64url(payload) + "." + base64url(signature) where payload is
// the JSON encoding of [models.TokenClaims] and signature is HMAC-SHA256 over
// the encoded payload half. Verification is a pure function of the token, the
// secret and the current time: there is no revocation list, so rotating the
// auth code does not invalidate tokens issued before the rotation.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/navdash/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const separator = "."

// expiryLeeway compensates for exp being truncated to whole seconds: a token
// stays valid through its exp second and is rejected only once now is past it.
const expiryLeeway = time.Second

var encoding = base64.RawURLEncoding

// Default lifetimes of the two token kinds.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Codec issues and verifies tokens with a single shared secret.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	method     *jwt.SigningMethodHMAC
}

// Option customises a [Codec].
type Option func(*Codec)

// WithNow overrides the time source used for issuing and verifying.
func WithNow(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec. Zero TTLs fall back to [DefaultAccessTTL] and
// [DefaultRefreshTTL].
func NewCodec(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		method:     jwt.SigningMethodHS256,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime of tokens of the given kind.
func (c *Codec) TTL(kind models.TokenKind) time.Duration {
	if kind == models.RefreshToken {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Sign returns the base64url signature of payload. The result is
// deterministic for a given payload and secret.
func (c *Codec) Sign(payload string) (string, error) {
	sig, err := c.method.Sign(payload, c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token payload: %w", err)
	}
	return encoding.EncodeToString(sig), nil
}

// Issue creates a token of the given kind expiring after TTL(kind).
func (c *Codec) Issue(kind models.TokenKind) (string, error) {
	if kind != models.AccessToken && kind != models.RefreshToken {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	now := c.now()
	claims := models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
		},
		Kind: kind,
	}

	raw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal token claims: %w", err)
	}

	payload := encoding.EncodeToString(raw)
	sig, err := c.Sign(payload)
	if err != nil {
		return "", err
	}
	return payload + separator + sig, nil
}

// Parse verifies the token and returns its claims.
//
// It fails closed: a token with a bad structure, a signature that does not
// match or an expiry in the past yields an error.
func (c *Codec) Parse(token string) (models.TokenClaims, error) {
	payload, sig, ok := strings.Cut(token, separator)
	if !ok || payload == "" || sig == "" || strings.Contains(sig, separator) {
		return models.TokenClaims{}, ErrMalformedToken
	}

	sigBytes, err := encoding.DecodeString(sig)
	if err != nil {
		return models.TokenClaims{}, ErrMalformedToken
	}
	// HMAC verify compares in constant time.
	if err = c.method.Verify(payload, sigBytes, c.secret); err != nil {
		return models.TokenClaims{}, ErrInvalidSignature
	}

	claims, err := decodeClaims(payload)
	if err != nil {
		return models.TokenClaims{}, err
	}

	validator := jwt.NewValidator(jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired(), jwt.WithLeeway(expiryLeeway))
	if err = validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.TokenClaims{}, ErrTokenExpired
		}
		return models.TokenClaims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// Verify reports whether the token is well-formed, correctly signed and
// unexpired.
func (c *Codec) Verify(token string) bool {
	_, err := c.Parse(token)
	return err == nil
}

// VerifyKind is like [Codec.Parse] but also requires the token kind.
func (c *Codec) VerifyKind(token string, kind models.TokenKind) (models.TokenClaims, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return models.TokenClaims{}, err
	}
	if claims.Kind != kind {
		return models.TokenClaims{}, fmt.Errorf("%w: got %q, want %q", ErrWrongKind, claims.Kind, kind)
	}
	return claims, nil
}

// Inspect decodes the payload half without checking the signature or the
// expiry. Clients use it to estimate when a token they received will expire.
func Inspect(token string) (models.TokenClaims, error) {
	payload, _, ok := strings.Cut(token, separator)
	if !ok || payload == "" {
		return models.TokenClaims{}, ErrMalformedToken
	}
	return decodeClaims(payload)
}

func decodeClaims(payload string) (models.TokenClaims, error) {
	raw, err := encoding.DecodeString(payload)
	if err != nil {
		return models.TokenClaims{}, ErrMalformedToken
	}

	var claims models.TokenClaims
	if err = json.Unmarshal(raw, &claims); err != nil {
		return models.TokenClaims{}, ErrMalformedToken
	}
	return claims, nil
}
