// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors used when parsing the "Authorization" HTTP header and the
// refresh cookie. Callers can match against them with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned when the incoming request does
	// not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is not of the form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken is returned when the "Authorization" header contains the
	// scheme but the token value itself is an empty string.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")

	// ErrNoRefreshCookie is returned by the refresh action when the request
	// carries no refresh cookie.
	ErrNoRefreshCookie = errors.New("no refresh cookie")

	// ErrUnknownAuthAction is returned for a POST /auth body whose action is
	// not one of login, refresh, logout or update.
	ErrUnknownAuthAction = errors.New("unknown auth action")
)
