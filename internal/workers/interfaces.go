// Package workers runs the client's background jobs: the periodic resync
// and the connectivity watcher that triggers a reconnect pass when the
// gateway comes back.
package workers

import "context"

// Worker is a background job. Run blocks until ctx is done.
type Worker interface {
	Run(ctx context.Context)
}

// Prober reports whether the gateway is reachable. adapter.Gateway satisfies
// it.
type Prober interface {
	Ping(ctx context.Context) error
}

// Reconnector runs a sync pass after connectivity returns.
// service.SyncCoordinator satisfies it.
type Reconnector interface {
	Reconnect(ctx context.Context)
}
