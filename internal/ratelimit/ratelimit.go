// Package ratelimit implements per-client sliding-window admission control.
package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed   bool
	Remaining int           // admissions left in the current window
	Reset     time.Duration // when the oldest admission exits the window
}

// Limiter tracks admitted-request timestamps per client over a trailing
// window. State is per-instance and in-memory, like the caches.
type Limiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
	// sweepChance is the probability that a call triggers a full sweep of
	// idle clients, bounding map growth without a background task.
	sweepChance float64
}

// New creates a limiter admitting max requests per client per window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		clients:     make(map[string][]time.Time),
		max:         max,
		window:      window,
		now:         time.Now,
		sweepChance: 0.01,
	}
}

// Admit decides whether a request from clientID may proceed, recording it if
// so. Timestamps older than the window are pruned lazily on each check.
func (l *Limiter) Admit(clientID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	stamps := pruneBefore(l.clients[clientID], cutoff)

	if rand.Float64() < l.sweepChance {
		l.sweep(cutoff)
	}

	if len(stamps) >= l.max {
		l.clients[clientID] = stamps
		return Decision{
			Allowed:   false,
			Remaining: 0,
			Reset:     stamps[0].Add(l.window).Sub(now),
		}
	}

	stamps = append(stamps, now)
	l.clients[clientID] = stamps
	return Decision{
		Allowed:   true,
		Remaining: l.max - len(stamps),
		Reset:     stamps[0].Add(l.window).Sub(now),
	}
}

// sweep drops clients with no timestamps inside the window. Caller holds the
// lock.
func (l *Limiter) sweep(cutoff time.Time) {
	for id, stamps := range l.clients {
		if len(pruneBefore(stamps, cutoff)) == 0 {
			delete(l.clients, id)
		}
	}
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}
