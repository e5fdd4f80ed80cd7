package worker

import (
	"math"
	"math/rand"
	"time"
)

const (
	backoffBase = time.Second
	backoffCap  = 30 * time.Second
)

// backoff returns the pause before retry n after a transient queue error:
// 1s, 2s, 4s, ... capped, plus up to 250ms of jitter.
func backoff(attempt int) time.Duration {
	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(backoffBase) * multiple)

	if delay > backoffCap {
		delay = backoffCap
	}

	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
