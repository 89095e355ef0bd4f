// Package cache provides translation cache backends.
//
// Every backend satisfies linetl.TranslationCache. Reads and writes never
// fail from the caller's point of view: backend faults are logged and turn
// into a miss or a no-op.
package cache

import (
	"context"
	"strings"
)

// DefaultPrefix marks translation entries. Clear and Count only touch keys
// that start with it, so a backend may be shared with other data.
const DefaultPrefix = "t_"

// Store is the interface implemented by every cache backend.
type Store interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a translation in the cache.
	Set(ctx context.Context, key, value string)

	// Delete removes a single entry.
	Delete(ctx context.Context, key string)

	// Clear removes every translation entry and returns how many were removed.
	Clear(ctx context.Context) int

	// Count returns the number of translation entries.
	Count(ctx context.Context) int

	// Close releases the backend's resources.
	Close() error
}

// Lister is implemented by backends whose entries can be enumerated for export.
type Lister interface {
	Entries(ctx context.Context) (map[string]string, error)
}

func isEntryKey(key string) bool {
	return strings.HasPrefix(key, DefaultPrefix)
}
