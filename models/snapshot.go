// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// SchemaVersion is the current version tag written into every persisted
// snapshot envelope.
const SchemaVersion = 1

// ErrMalformedSnapshot is returned when a stored value is not valid JSON.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Snapshot pairs the raw data of a slice with a logical timestamp and a dirty
// flag.
//
// Dirty set to true means this device holds changes the remote has not yet
// acknowledged. UpdatedAt is a per-slice non-decreasing clock in unix
// milliseconds; zero marks a defaulted value that was never edited here.
type Snapshot struct {
	// Version is the schema version of the envelope. Zero means the value was
	// read from a legacy, un-versioned layout.
	Version int `json:"v,omitempty"`

	// Data is the slice payload as raw JSON.
	Data json.RawMessage `json:"data"`

	// UpdatedAt is the logical write time in unix milliseconds.
	UpdatedAt int64 `json:"updatedAt"`

	// Dirty marks unacknowledged local changes.
	Dirty bool `json:"dirty"`
}

// snapshotProbe detects the snapshot shape without decoding Data twice.
type snapshotProbe struct {
	Version   *int            `json:"v"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt *int64          `json:"updatedAt"`
	Dirty     *bool           `json:"dirty"`
}

// DecodeSnapshot interprets a stored or remote value.
//
// A value that already has the snapshot shape (an object carrying both
// "data" and "updatedAt") is returned as is; legacy is false. Anything else
// that is valid JSON is treated as legacy raw slice data and wrapped with
// legacyUpdatedAt and dirty=false; legacy is true.
func DecodeSnapshot(raw []byte, legacyUpdatedAt int64) (snap Snapshot, legacy bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return Snapshot{}, false, ErrMalformedSnapshot
	}

	if raw[0] == '{' {
		var probe snapshotProbe
		if err = json.Unmarshal(raw, &probe); err == nil && probe.Data != nil && probe.UpdatedAt != nil {
			snap = Snapshot{Data: probe.Data, UpdatedAt: *probe.UpdatedAt}
			if probe.Version != nil {
				snap.Version = *probe.Version
			}
			if probe.Dirty != nil {
				snap.Dirty = *probe.Dirty
			}
			return snap, false, nil
		}
	}

	return Snapshot{
		Version:   SchemaVersion,
		Data:      json.RawMessage(append([]byte(nil), raw...)),
		UpdatedAt: legacyUpdatedAt,
	}, true, nil
}

// Encode serializes the snapshot in the current versioned envelope.
func (s Snapshot) Encode() ([]byte, error) {
	s.Version = SchemaVersion
	return json.Marshal(s)
}

// SameContent reports whether two snapshots carry the same timestamp and
// byte-identical data.
func (s Snapshot) SameContent(other Snapshot) bool {
	return s.UpdatedAt == other.UpdatedAt && bytes.Equal(s.Data, other.Data)
}
