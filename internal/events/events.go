// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package events

import "github.com/MKhiriev/navdash/models"

// Event is implemented by every value published on a [Bus].
type Event interface {
	event()
}

// SliceChanged is published when reconciliation adopts a remote value or an
// import replaces local data, so the presentation layer can repaint.
type SliceChanged struct {
	Slice    models.Slice
	Snapshot models.Snapshot
}

// SyncStatus reports whether a slice still has unacknowledged local changes.
type SyncStatus struct {
	Slice   models.Slice
	Pending bool
}

// NoticeKind classifies a user-facing notification.
type NoticeKind int

const (
	// Recoverable failures are retried on the next save, reconnect or
	// manual resync.
	Recoverable NoticeKind = iota
	// AuthExpired means the session could not be renewed and the user has to
	// log in again. Local edits are kept.
	AuthExpired
	// Rejected means the remote refused the payload; retrying the same data
	// will not help.
	Rejected
)

func (k NoticeKind) String() string {
	switch k {
	case AuthExpired:
		return "auth-expired"
	case Rejected:
		return "rejected"
	default:
		return "recoverable"
	}
}

// Notice is a best-effort user notification produced at the sync boundary.
type Notice struct {
	Kind  NoticeKind
	Slice models.Slice
	Err   error
}

// SessionChanged is published on every session state transition.
type SessionChanged struct {
	State models.SessionState
}

// Connectivity is published when the gateway becomes reachable or stops
// being reachable.
type Connectivity struct {
	Online bool
}

func (SliceChanged) event()   {}
func (SyncStatus) event()     {}
func (Notice) event()         {}
func (SessionChanged) event() {}
func (Connectivity) event()   {}
