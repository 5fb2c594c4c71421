// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/navdash/internal/adapter"
	"github.com/MKhiriev/navdash/internal/service"
)

// HumanizeError turns an engine error into a one-line message for the
// terminal.
func HumanizeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrInvalidCode):
		return "Wrong auth code"
	case errors.Is(err, service.ErrCodeRequired):
		return "The auth code must not be empty"
	case errors.Is(err, service.ErrNotAuthenticated), errors.Is(err, service.ErrAuthExpired):
		return "Not logged in, run `navdash login`"
	case errors.Is(err, service.ErrSyncInProgress):
		return "A sync pass is already running"
	case errors.Is(err, adapter.ErrNetwork):
		return "No network or the gateway is unreachable"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "No network or the gateway is unreachable"
	}

	return err.Error()
}
