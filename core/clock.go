package core

import (
	"sync"
	"time"
)

// TimestampResolution is the precision kept on CreatedAt so that values
// survive a round trip through SQL timestamp columns unchanged.
const TimestampResolution = time.Microsecond

// Stamper hands out creation timestamps that strictly increase within a
// process, even when the wall clock does not advance between two calls.
type Stamper struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewStamper returns a Stamper reading from now, or time.Now when nil.
func NewStamper(now func() time.Time) *Stamper {
	if now == nil {
		now = time.Now
	}
	return &Stamper{now: now}
}

// Next returns a UTC timestamp truncated to TimestampResolution and later than
// every value previously returned.
func (s *Stamper) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC().Truncate(TimestampResolution)
	if !t.After(s.last) {
		t = s.last.Add(TimestampResolution)
	}
	s.last = t
	return t
}

// Observe makes later stamps come after t. Stores that reload persisted
// records call it so new records never sort before old ones.
func (s *Stamper) Observe(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.last) {
		s.last = t.UTC().Truncate(TimestampResolution)
	}
}
