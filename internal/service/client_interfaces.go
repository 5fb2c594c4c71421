package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/navdash/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// LocalCache persists one versioned, dirty-tagged snapshot per slice in the
// client key-value store. It is the only writer of those keys; callers never
// read-modify-write them directly.
type LocalCache interface {
	// Read returns the stored snapshot of slice. A value already in
	// snapshot shape is returned unchanged, a legacy raw value is wrapped
	// with updatedAt=0 and dirty=false, and a missing or malformed value
	// yields the typed default. Only storage failures are returned as errors.
	Read(ctx context.Context, slice models.Slice) (models.Snapshot, error)

	// ReadAll reads every slice.
	ReadAll(ctx context.Context) (map[models.Slice]models.Snapshot, error)

	// Write stores data with updatedAt = max(now, previous updatedAt) and the
	// given dirty flag. The value is durable when Write returns.
	Write(ctx context.Context, slice models.Slice, data json.RawMessage, dirty bool) (models.Snapshot, error)

	// Adopt replaces the stored value with remote data, stored as clean,
	// only if the local snapshot is clean and older than remote. It reports
	// whether the value was replaced.
	Adopt(ctx context.Context, slice models.Slice, remote models.Snapshot) (models.Snapshot, bool, error)

	// Clean clears the dirty flag without touching data or updatedAt.
	Clean(ctx context.Context, slice models.Slice) error

	// CleanIf clears the dirty flag only if the stored snapshot still has the
	// data and updatedAt of pushed. It reports whether it did.
	CleanIf(ctx context.Context, slice models.Slice, pushed models.Snapshot) (bool, error)

	// Dirty returns the slices holding unacknowledged local changes.
	Dirty(ctx context.Context) ([]models.Slice, error)

	// Migrate rewrites legacy and unversioned values into the current
	// envelope and returns how many were rewritten.
	Migrate(ctx context.Context) (int, error)
}

// SessionManager owns the access token and its silent renewal.
type SessionManager interface {
	// EnsureToken returns a valid access token. A cached unexpired token is
	// returned without I/O; otherwise all concurrent callers share a single
	// refresh call. ok is false when no session could be obtained.
	EnsureToken(ctx context.Context) (token string, ok bool)

	// Invalidate drops the cached token so the next EnsureToken refreshes.
	Invalidate()

	// Login exchanges the auth code for a session. On success it runs the
	// hooks registered with OnLogin.
	Login(ctx context.Context, code string) error

	// Logout asks the gateway to drop the refresh credential and then clears
	// the local session regardless of the outcome.
	Logout(ctx context.Context) error

	// UpdateCredential rotates the auth code. It requires a valid session.
	UpdateCredential(ctx context.Context, current, next string) error

	// State reports the current session state.
	State() models.SessionState

	// Restore loads the persisted session at startup.
	Restore(ctx context.Context) error

	// OnLogin registers fn to run after every successful login.
	OnLogin(fn func(ctx context.Context))
}

// SyncCoordinator reconciles the local cache with the gateway and pushes
// local edits. Failures never escape as errors except where noted; they are
// turned into a retained dirty flag and an events.Notice.
type SyncCoordinator interface {
	// Load returns every slice from the local cache for the first paint.
	Load(ctx context.Context) (map[models.Slice]models.Snapshot, error)

	// Save commits data locally as dirty and schedules a debounced push. It
	// fails only when the data is invalid or the local commit fails.
	Save(ctx context.Context, slice models.Slice, data json.RawMessage) (models.Snapshot, error)

	// Resync runs a full pull and push pass. It returns ErrSyncInProgress if
	// another pass is running.
	Resync(ctx context.Context) error

	// Reconnect is Resync for the connectivity watcher: a concurrent pass is
	// not an error and failures are only reported as notices.
	Reconnect(ctx context.Context)

	// Flush cancels pending debounce timers and pushes every dirty slice now.
	Flush(ctx context.Context) error

	// Pending returns the slices with unacknowledged local changes.
	Pending(ctx context.Context) ([]models.Slice, error)

	// Export wraps every slice into a versioned backup.
	Export(ctx context.Context) (models.Backup, error)

	// Import validates a backup and saves each of its slices as a local edit.
	Import(ctx context.Context, backup models.Backup) error

	// Close stops pending timers and waits for in-flight debounced pushes.
	Close()
}

// ClientSyncJob defines the contract for a background job that periodically
// calls Resync.
type ClientSyncJob interface {
	// Start launches the background goroutine. It resyncs every interval,
	// defaulting to 5 minutes if interval is zero or negative. Any previously
	// running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}
