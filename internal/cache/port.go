package cache

import "time"

// Store is the port for rendered-page caching, keyed by URL.
// Implementations must be safe for concurrent use.
//
// Expiry is lazy: Get and GetAll treat an expired entry as absent, but only
// Clean, Delete and Reset remove entries. A ttl of 0 on Save means the entry
// never expires (not "expire immediately").
type Store interface {
	// Save stores html under key, replacing any existing entry and restarting its TTL.
	Save(key string, html string, ttl time.Duration) error

	// Get returns the entry for key if present and not expired.
	// It never removes anything.
	Get(key string) (Entry, bool)

	// Delete removes the entry for key. Absent keys are ignored.
	Delete(key string)

	// Clean removes every non-eternal entry whose expiry is at or before now
	// and returns how many were removed.
	Clean() int

	// Reset removes every entry.
	Reset()

	// GetAll returns a snapshot of live entries. It does not clean.
	GetAll() map[string]Entry

	// Len returns the number of stored entries, including expired ones not yet cleaned.
	Len() int
}
