package pwm

import (
	"errors"
	"sync"
	"time"
)

// Sample is one accepted write on a Sim output.
type Sample struct {
	Period time.Duration
	Pulse  time.Duration
}

// Sim is an in-memory Output. It records every accepted write and can be
// told to reject writes or report itself not ready. Used for dry runs and
// tests.
type Sim struct {
	mu       sync.Mutex
	samples  []Sample
	attempts int
	failFrom int
	failErr  error
	notReady error
	closed   bool
}

func NewSim() *Sim {
	return &Sim{}
}

// FailAfter makes every Set call after the first n accepted ones fail with err.
func (s *Sim) FailAfter(n int, err error) {
	if err == nil {
		err = errors.New("sim: write rejected")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFrom = n + 1
	s.failErr = err
}

// SetNotReady makes Ready report err. A nil err makes the output ready again.
func (s *Sim) SetNotReady(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notReady = err
}

func (s *Sim) Set(period, pulse time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.closed {
		return errors.New("sim: output closed")
	}
	if s.failFrom > 0 && s.attempts >= s.failFrom {
		return s.failErr
	}
	s.samples = append(s.samples, Sample{Period: period, Pulse: clampPulse(period, pulse)})
	return nil
}

func (s *Sim) Ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notReady != nil {
		return s.notReady
	}
	if s.closed {
		return ErrNotReady
	}
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Samples returns a copy of all accepted writes.
func (s *Sim) Samples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Attempts counts Set calls, including rejected ones.
func (s *Sim) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Last returns the most recent accepted write.
func (s *Sim) Last() (Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
