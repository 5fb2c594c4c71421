// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client side of the remote gateway contract.
//
// [Gateway] decouples the sync engine from the transport. The package ships
// an HTTP implementation ([NewHTTPGateway]) over resty whose cookie jar holds
// the refresh cookie and is persisted in the local key-value store, so that a
// restarted client can still refresh its session.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrUnauthorized] for 401, [ErrBadRequest] for 400).
package adapter

import (
	"context"

	"github.com/MKhiriev/navdash/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/gateway_mock.go -package=mock

// Gateway is the remote collaborator of the sync engine.
type Gateway interface {
	// Login exchanges the auth code for an access token. The gateway also
	// sets the refresh cookie, which the transport keeps.
	Login(ctx context.Context, code string) (string, error)

	// Refresh trades the refresh cookie for a new access token. It fails
	// with [ErrUnauthorized] when the cookie is missing or expired.
	Refresh(ctx context.Context) (string, error)

	// Logout asks the gateway to clear the refresh cookie.
	Logout(ctx context.Context) error

	// ChangeCode rotates the shared auth code. The gateway re-validates
	// current before accepting next.
	ChangeCode(ctx context.Context, accessToken, current, next string) error

	// Bootstrap fetches the stored value of every slice in one call.
	Bootstrap(ctx context.Context) (models.BootstrapResponse, error)

	// Update stores one slice on the gateway.
	Update(ctx context.Context, accessToken string, req models.UpdateRequest) error

	// Ping checks that the gateway is reachable.
	Ping(ctx context.Context) error
}
