package storage

import (
	"context"
)

//go:generate moq -out kv_mock.go . KVStorage

// KVStorage defines the durable string key/value substrate of the client.
// It plays the role the browser's localStorage played for the web client:
// tokens and UI preferences live here and survive restarts until cleared.
// Values are stored as-is; no validation or encoding is done at this layer.
type KVStorage interface {
	// Get returns the stored value.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources
	Close() error
}
