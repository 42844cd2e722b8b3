// internal/session/throttle.go
package session

import (
	"time"

	"golang.org/x/time/rate"
)

// Throttle admits the first event and drops every event that follows within
// the interval. Dropped events do not extend the window.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle returns a leading-edge throttle; interval <= 0 admits everything.
func NewThrottle(interval time.Duration) *Throttle {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttle{limiter: rate.NewLimiter(limit, 1)}
}

// AllowAt reports whether an event arriving at t is admitted.
func (t *Throttle) AllowAt(at time.Time) bool {
	return t.limiter.AllowN(at, 1)
}
