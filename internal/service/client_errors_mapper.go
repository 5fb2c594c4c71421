// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/navdash/internal/adapter"
	"github.com/MKhiriev/navdash/internal/events"
)

// mapPushError translates the adapter's transport error of a failed update
// into a service error, keeping the original in the chain.
func mapPushError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrAuthExpired):
		return err
	case errors.Is(err, adapter.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrAuthExpired, err)
	case errors.Is(err, adapter.ErrBadRequest):
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	return err
}

// noticeKind classifies a mapped push error for the user notification.
func noticeKind(err error) events.NoticeKind {
	switch {
	case errors.Is(err, ErrAuthExpired):
		return events.AuthExpired
	case errors.Is(err, ErrRejected):
		return events.Rejected
	default:
		return events.Recoverable
	}
}

// mapAuthError translates a gateway failure of an auth action. A 401 on
// login means the code was wrong; on any other action it means the session
// is gone.
func mapAuthError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, adapter.ErrUnauthorized):
		if op == "login" {
			return ErrInvalidCode
		}
		return ErrNotAuthenticated
	case errors.Is(err, adapter.ErrForbidden):
		return ErrInvalidCode
	case errors.Is(err, adapter.ErrBadRequest):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidDataProvided, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
