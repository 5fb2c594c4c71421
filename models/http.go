// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// AuthAction selects the operation of a POST /auth request.
type AuthAction string

const (
	AuthLogin   AuthAction = "login"
	AuthRefresh AuthAction = "refresh"
	AuthLogout  AuthAction = "logout"
	AuthUpdate  AuthAction = "update"
)

// AuthRequest is the body of POST /auth.
type AuthRequest struct {
	Action AuthAction `json:"action"`

	// Code is the auth code for the login action.
	Code string `json:"code,omitempty"`

	// CurrentCode and NewCode are used by the update action.
	CurrentCode string `json:"currentCode,omitempty"`
	NewCode     string `json:"newCode,omitempty"`
}

// AuthResponse is returned by the login and refresh actions.
type AuthResponse struct {
	AccessToken string `json:"accessToken,omitempty"`
	Success     bool   `json:"success,omitempty"`
}

// UpdateRequest is the body of POST /update.
type UpdateRequest struct {
	Type Slice           `json:"type"`
	Data json.RawMessage `json:"data"`

	// UpdatedAt carries the client's logical write time so a later bootstrap
	// does not look newer than the local copy it came from.
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

// UpdateResponse is the body of a successful POST /update.
type UpdateResponse struct {
	Success bool `json:"success"`
}

// BootstrapResponse maps slice names to raw values or snapshots.
type BootstrapResponse map[Slice]json.RawMessage

// ErrorResponse is the body of every non-2xx gateway reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// StatusResponse is the body of replies that only report success.
type StatusResponse struct {
	Success bool `json:"success"`
}
