package storage

import "fmt"

// NewStore builds the checkpoint store for a backend kind: "memory"
// (also the empty default) or "sqlite", which persists at sqlitePath
// and is only available in builds carrying the sqlite tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes stores that hold external resources; the
// memory backend has nothing to release and is a no-op.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
