package mock

import (
	"errors"
	"time"
)

// Sleeper records delays instead of waiting.
type Sleeper struct {
	Delays []time.Duration
}

// Sleep records d and returns immediately.
func (s *Sleeper) Sleep(d time.Duration) {
	s.Delays = append(s.Delays, d)
}

// Total is the sum of all recorded delays.
func (s *Sleeper) Total() (t time.Duration) {
	for _, d := range s.Delays {
		t += d
	}
	return
}

// ErrLocked is returned by a Guard set to fail.
var ErrLocked = errors.New("mock: guard failure")

// Guard records write-protect transitions.
type Guard struct {
	Events     []string
	FailLock   bool
	FailUnlock bool
}

// Unlock records "unlock" and fails if FailUnlock is set.
func (g *Guard) Unlock() error {
	g.Events = append(g.Events, "unlock")
	if g.FailUnlock {
		return ErrLocked
	}
	return nil
}

// Lock records "lock" and fails if FailLock is set.
func (g *Guard) Lock() error {
	g.Events = append(g.Events, "lock")
	if g.FailLock {
		return ErrLocked
	}
	return nil
}
