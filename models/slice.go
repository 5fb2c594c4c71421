// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// ErrUnknownSlice is returned when a slice name does not match any of the
// synchronized data slices.
var ErrUnknownSlice = errors.New("unknown slice")

// Slice names an independently synchronized unit of dashboard data.
// Each slice is persisted, reconciled and pushed on its own; there is no
// cross-slice transaction.
type Slice string

const (
	// LinkTreeSlice holds the category → sub-category → link hierarchy.
	LinkTreeSlice Slice = "links"
	// BackgroundSlice holds the dashboard background settings.
	BackgroundSlice Slice = "background"
	// PreferencesSlice holds user preferences (theme, layout, behaviour).
	PreferencesSlice Slice = "preferences"
)

// StorageKeyPrefix is the versioned namespace for all client-local keys.
const StorageKeyPrefix = "navdash.v1."

// SessionStorageKey is the fixed key under which the access token and its
// estimated expiry are persisted on the client.
const SessionStorageKey = StorageKeyPrefix + "session"

// TransportStorageKey is the fixed key under which the transport layer
// persists its cookie jar. The engine never reads it.
const TransportStorageKey = StorageKeyPrefix + "transport"

// AllSlices returns every slice in a stable order.
func AllSlices() []Slice {
	return []Slice{LinkTreeSlice, BackgroundSlice, PreferencesSlice}
}

// StorageKey returns the versioned client-local key of the slice snapshot.
func (s Slice) StorageKey() string {
	return StorageKeyPrefix + string(s)
}

// Valid reports whether s is one of the known slices.
func (s Slice) Valid() bool {
	switch s {
	case LinkTreeSlice, BackgroundSlice, PreferencesSlice:
		return true
	}
	return false
}

func (s Slice) String() string {
	return string(s)
}

// ParseSlice converts a wire name into a [Slice].
func ParseSlice(name string) (Slice, error) {
	s := Slice(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlice, name)
	}
	return s, nil
}
