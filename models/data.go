// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSliceData is returned when a payload cannot be decoded into the
// typed model of its slice.
var ErrInvalidSliceData = errors.New("invalid slice data")

// DefaultData returns the typed default of the slice as raw JSON.
func DefaultData(s Slice) json.RawMessage {
	var v any
	switch s {
	case LinkTreeSlice:
		v = LinkTree{}
	case BackgroundSlice:
		v = DefaultBackground()
	case PreferencesSlice:
		v = DefaultPreferences()
	default:
		return json.RawMessage("null")
	}

	b, _ := json.Marshal(v)
	return b
}

// DefaultSnapshot wraps the slice default with updatedAt=0 and dirty=false so
// that it loses against any genuine remote data.
func DefaultSnapshot(s Slice) Snapshot {
	return Snapshot{Version: SchemaVersion, Data: DefaultData(s)}
}

// ValidateData checks that raw decodes into the typed model of the slice.
func ValidateData(s Slice, raw json.RawMessage) error {
	var target any
	switch s {
	case LinkTreeSlice:
		target = &LinkTree{}
	case BackgroundSlice:
		target = &BackgroundSpec{}
	case PreferencesSlice:
		target = &Preferences{}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSlice, string(s))
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrInvalidSliceData, s, err)
	}
	return nil
}

// DecodeData unmarshals a snapshot payload into T.
func DecodeData[T any](snap Snapshot) (T, error) {
	var v T
	if err := json.Unmarshal(snap.Data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidSliceData, err)
	}
	return v, nil
}
