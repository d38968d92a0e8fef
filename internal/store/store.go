// Package store owns all durable planner state. Persistence is a flat
// key-value layer where each key holds a full JSON document, rewritten in
// whole on every mutation.
package store

import "context"

// Well-known keys in the key-value layer.
const (
	keyEvents      = "events"
	keySettings    = "settings"
	keyUsers       = "users"
	keyCurrentUser = "current-user"
	keyPremium     = "premium-status"
)

// KV is the durable key-value layer the stores write through to.
type KV interface {
	// Get returns the value for key, and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
