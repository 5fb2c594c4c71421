// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package token

import "errors"

var (
	// ErrMalformedToken is returned when a token does not consist of two
	// base64url segments carrying a JSON payload.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidSignature is returned when the signature half does not match
	// the payload half.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned when the current time is past the payload
	// expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrWrongKind is returned by [Codec.VerifyKind] when the token kind does
	// not match the expected one.
	ErrWrongKind = errors.New("unexpected token kind")

	// ErrEmptySecret is returned by [NewCodec] when no signing secret is given.
	ErrEmptySecret = errors.New("empty token signing secret")

	// ErrUnknownKind is returned by [Codec.Issue] for an unsupported kind.
	ErrUnknownKind = errors.New("unknown token kind")
)
