package kv

// KeyVal is a key-value store.
type KeyVal interface {
	// Open opens a key-value store.
	Open() error

	// Close closes a key-value store.
	Close() error

	// GetValue returns a value for a key, or nil if the key is not found.
	GetValue(key []byte) ([]byte, error)

	// SetValue saves a value for a key.
	SetValue(key, val []byte) error
}
