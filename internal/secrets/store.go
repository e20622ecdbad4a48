package secrets

import "errors"

// Store is the interface for secret storage backends
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error

	// Backend names the storage for user-facing messages
	Backend() string
}

// ErrNotFound is returned when a key is not found in the store
var ErrNotFound = errors.New("key not found")

// ServiceName is the service identifier for keyring storage
const ServiceName = "codex"

// APIKeyName is the store key holding the API key saved by login --keyring
const APIKeyName = "api_key"
