package cache

import "time"

// Entry is an immutable snapshot of one cached render.
type Entry struct {
	key       string
	html      string
	digest    string
	storedAt  time.Time
	expiresAt time.Time // zero => eternal
}

func (e Entry) Key() string {
	return e.key
}

func (e Entry) HTML() string {
	return e.html
}

// Digest is the blake3 hex digest of HTML.
func (e Entry) Digest() string {
	return e.digest
}

func (e Entry) StoredAt() time.Time {
	return e.storedAt
}

// ExpiresAt returns the absolute expiry and false for eternal entries.
func (e Entry) ExpiresAt() (time.Time, bool) {
	if e.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return e.expiresAt, true
}

func (e Entry) IsEternal() bool {
	return e.expiresAt.IsZero()
}

// IsExpired reports whether the entry is stale at now.
// An entry is stale once now reaches its expiry instant.
func (e Entry) IsExpired(now time.Time) bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return !now.Before(e.expiresAt)
}

// TTL returns the time left before expiry at now, 0 when expired,
// and -1 for eternal entries.
func (e Entry) TTL(now time.Time) time.Duration {
	if e.expiresAt.IsZero() {
		return -1
	}
	left := e.expiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// NewEntryForTest creates an Entry for testing purposes.
// This allows test packages to construct Entry values without
// accessing unexported fields directly.
func NewEntryForTest(key, html, digest string, storedAt, expiresAt time.Time) Entry {
	return Entry{
		key:       key,
		html:      html,
		digest:    digest,
		storedAt:  storedAt,
		expiresAt: expiresAt,
	}
}
