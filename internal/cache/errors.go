package cache

import (
	"fmt"

	"github.com/rohmanhakim/ssr-renderer/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseEmptyKey    CacheErrorCause = "empty key"
	ErrCauseEmptyHTML   CacheErrorCause = "empty html"
	ErrCauseNegativeTTL CacheErrorCause = "negative ttl"
)

type CacheError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *CacheError) IsRetryable() bool {
	return e.Retryable
}
