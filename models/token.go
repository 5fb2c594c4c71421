// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes short-lived access tokens from long-lived refresh
// tokens.
type TokenKind string

const (
	// AccessToken is presented as a bearer credential on every API call.
	AccessToken TokenKind = "access"
	// RefreshToken is only exchanged for a fresh access token and travels in
	// an HttpOnly cookie.
	RefreshToken TokenKind = "refresh"
)

// TokenClaims is the payload half of a bearer token.
//
// It embeds [jwt.RegisteredClaims] for expiry (exp), issue time (iat) and a
// unique id (jti) so the standard claim validator can check it, and adds the
// token kind.
type TokenClaims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
}

// TokenPair is what the gateway hands out on login and refresh. The access
// token goes into the response body, the refresh token into a cookie.
type TokenPair struct {
	AccessToken  string
	RefreshToken string

	// RefreshExpiresAt is when the refresh token stops being accepted; the
	// cookie expiry is set to match.
	RefreshExpiresAt time.Time
}
