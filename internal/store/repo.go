package store

import "context"

// Keys of the three persisted records.
const (
	KeySettings  = "settings"
	KeyHydration = "hydration-state"
	KeyReminder  = "reminder-state"
)

// Repo is a durable key/value store for serialized records.
type Repo interface {
	// Get returns the stored value and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Close() error
}
