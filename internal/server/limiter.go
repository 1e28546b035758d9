package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every request it guards.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter permits rps requests per second with the given burst size.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}

// WithRateLimit answers 429 once the bucket is empty. A nil limiter lets
// everything through.
func WithRateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				RejectedRequests.Inc()
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
