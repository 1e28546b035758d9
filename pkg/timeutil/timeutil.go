package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoffDelay computes the delay before the next attempt.
// attempt is 1-based: attempt 1 waits initialDuration, attempt 2 waits
// initialDuration*multiplier, and so on, capped at maxDuration.
// A random value in [0, jitter) is added on top of the capped delay.
func ExponentialBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(param.initialDuration) * math.Pow(param.multiplier, float64(attempt-1))
	if param.maxDuration > 0 && delay > float64(param.maxDuration) {
		delay = float64(param.maxDuration)
	}

	result := time.Duration(delay)
	if jitter > 0 && rng != nil {
		result += time.Duration(rng.Int63n(int64(jitter)))
	}
	return result
}
