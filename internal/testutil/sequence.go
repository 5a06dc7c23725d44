package testutil

import "sync"

// Sequence is a resettable step counter used to number trace events.
//
// Safe for concurrent use.
type Sequence struct {
	mu  sync.Mutex
	seq int64
}

// NewSequence creates a sequence starting at 0. The first Next returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments and returns the next step number.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Current returns the last step number handed out.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset rewinds to 0.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
