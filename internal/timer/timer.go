// Package timer drives the presentational generation countdown. It is a
// cosmetic simulation of a processing queue: a fixed per-user deadline,
// recomputed on every tick or poll so a page reload does not reset
// progress. It carries no authorization weight and the access policy
// never consults it.
package timer

import (
	"context"
	"sync"
	"time"
)

// Duration is the fixed length of one simulated generation run.
const Duration = 60 * time.Second

// Progress is a point-in-time view of a user's countdown.
type Progress struct {
	Active    bool
	Remaining time.Duration
	Deadline  time.Time
	// Completed is reported exactly once, by whichever observation
	// first sees the deadline pass. The deadline is cleared with it.
	Completed bool
}

// Store holds per-user deadlines in memory. The values are
// non-authoritative and safe to lose on restart.
type Store struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
	now       func() time.Time
}

// NewStore creates an empty deadline store.
func NewStore() *Store {
	return &Store{deadlines: make(map[string]time.Time), now: time.Now}
}

// Start sets the user's deadline to now plus the fixed duration and
// returns it. Restarting an active countdown replaces the deadline.
func (s *Store) Start(userID string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := s.now().Add(Duration)
	s.deadlines[userID] = deadline
	return deadline
}

// Progress recomputes remaining = max(0, deadline - now). When the
// deadline has passed it is cleared and completion is signalled on this
// observation only.
func (s *Store) Progress(userID string) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.deadlines[userID]
	if !ok {
		return Progress{}
	}
	remaining := deadline.Sub(s.now())
	if remaining <= 0 {
		delete(s.deadlines, userID)
		return Progress{Completed: true, Deadline: deadline}
	}
	return Progress{Active: true, Remaining: remaining, Deadline: deadline}
}

// Watch emits one Progress per second until the countdown completes or
// ctx is cancelled, then closes the channel. Callers must cancel ctx
// when the consuming view goes away.
func (s *Store) Watch(ctx context.Context, userID string) <-chan Progress {
	out := make(chan Progress, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			p := s.Progress(userID)
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
			if !p.Active {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
