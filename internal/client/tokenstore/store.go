// Package tokenstore persists the single opaque bearer token that proves
// the client's identity between runs.
//
// Exactly one token exists at a time; the stored value is never inspected.
// Access is synchronous by design — the session manager is the only writer.
package tokenstore

import "context"

// Store is a durable single-slot token holder.
type Store interface {
	// Get returns the persisted token, or ok=false when the slot is empty.
	Get() (token string, ok bool)

	// Set replaces the slot with token.
	Set(token string) error

	// Clear empties the slot. Clearing an already-empty slot is a no-op.
	Clear() error
}

// Watcher is implemented by stores that can report external changes to the
// slot (for example another process of the same client signing in or out).
type Watcher interface {
	// Watch returns a channel that receives a signal whenever the slot is
	// modified, including by other processes of the same client. The
	// channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
