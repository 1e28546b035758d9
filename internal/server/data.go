package server

import (
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/cache"
)

type entryDTO struct {
	URL       string     `json:"url"`
	Digest    string     `json:"digest"`
	Bytes     int        `json:"bytes"`
	StoredAt  time.Time  `json:"storedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	// TTL in milliseconds, -1 for entries that never expire
	TTL  int64  `json:"ttl"`
	HTML string `json:"html,omitempty"`
}

func newEntryDTO(e cache.Entry, now time.Time, withHTML bool) entryDTO {
	dto := entryDTO{
		URL:      e.Key(),
		Digest:   e.Digest(),
		Bytes:    len(e.HTML()),
		StoredAt: e.StoredAt(),
		TTL:      -1,
	}
	if expiresAt, ok := e.ExpiresAt(); ok {
		dto.ExpiresAt = &expiresAt
		dto.TTL = e.TTL(now).Milliseconds()
	}
	if withHTML {
		dto.HTML = e.HTML()
	}
	return dto
}

type addEntryRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
	// milliseconds, 0 = never expires
	TTL int64 `json:"ttl"`
}

type cleanResponse struct {
	Removed int `json:"removed"`
}

type healthResponse struct {
	Status       string `json:"status"`
	Browser      string `json:"browser"`
	CacheEntries int    `json:"cacheEntries"`
}

type errorResponse struct {
	Error string `json:"error"`
}
