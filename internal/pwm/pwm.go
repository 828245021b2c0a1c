package pwm

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotReady is wrapped by readiness failures.
	ErrNotReady = errors.New("pwm: channel not ready")
	// ErrUnsupported is returned by backends that are not available on this platform.
	ErrUnsupported = errors.New("pwm: backend unsupported on this platform")
)

// Output drives one PWM channel.
//
// Set programs a (period, pulse width) pair. Ready reports whether the
// underlying device can currently accept writes. Close should be best-effort
// and leave the output dark.
//
// Implementations are not safe for concurrent use.
type Output interface {
	Set(period, pulse time.Duration) error
	Ready() error
	Close() error
}

// Sink is the boundary the fade logic writes through.
type Sink interface {
	Write(ch Channel, period, pulse time.Duration) error
}

// Channel is an opaque handle for one output owned by a Bank.
type Channel struct {
	index int
	name  string
}

func (c Channel) Index() int     { return c.index }
func (c Channel) Name() string   { return c.name }
func (c Channel) String() string { return c.name }

// WriteError reports a rejected (period, pulse) write on a channel.
type WriteError struct {
	Channel Channel
	Period  time.Duration
	Pulse   time.Duration
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("pwm: write %s period=%s pulse=%s: %v", e.Channel, e.Period, e.Pulse, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func clampPulse(period, pulse time.Duration) time.Duration {
	if pulse < 0 {
		return 0
	}
	if pulse > period {
		return period
	}
	return pulse
}
