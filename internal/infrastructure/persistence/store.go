package persistence

import "errors"

// ErrNoSnapshot is returned by SnapshotStore.Load when no state has
// been persisted yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotStore persists the console's full state as one opaque blob
// under a single key, the way the browser console kept one
// local-storage entry.
type SnapshotStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
}
