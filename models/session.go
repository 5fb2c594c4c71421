// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Session is the client-side view of authentication state. The long-lived
// refresh credential is not part of it: it lives in the transport's cookie
// jar and is used implicitly by refresh calls.
type Session struct {
	AccessToken string    `json:"accessToken,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session holds a token that is unexpired at now.
func (s Session) ValidAt(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.ExpiresAt)
}

// SessionState enumerates the session state machine.
type SessionState int

const (
	Unauthenticated SessionState = iota
	Refreshing
	Authenticated
	// Expiring means the cached token is still accepted but inside the
	// refresh skew window.
	Expiring
)

func (s SessionState) String() string {
	switch s {
	case Refreshing:
		return "refreshing"
	case Authenticated:
		return "authenticated"
	case Expiring:
		return "expiring"
	default:
		return "unauthenticated"
	}
}
