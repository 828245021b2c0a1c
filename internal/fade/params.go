package fade

import (
	"fmt"
	"math"
	"time"
)

// Direction of a fade.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Params are the fixed timing parameters of every fade.
type Params struct {
	// Period is the PWM period written with every step.
	Period time.Duration
	// Steps is the number of intervals in a ramp; a fade writes Steps+1 values.
	Steps int
	// StepInterval is the wait after each write.
	StepInterval time.Duration
}

// DefaultParams is a 1 kHz carrier ramped over 100 steps of 10ms.
func DefaultParams() Params {
	return Params{
		Period:       1000 * time.Microsecond,
		Steps:        100,
		StepInterval: 10 * time.Millisecond,
	}
}

func (p Params) Validate() error {
	if p.Period <= 0 {
		return fmt.Errorf("fade: period must be > 0, got %s", p.Period)
	}
	if p.Steps <= 0 {
		return fmt.Errorf("fade: steps must be > 0, got %d", p.Steps)
	}
	if p.Period > time.Duration(math.MaxInt64)/time.Duration(p.Steps) {
		return fmt.Errorf("fade: period %s times %d steps overflows", p.Period, p.Steps)
	}
	if p.StepInterval < 0 {
		return fmt.Errorf("fade: step interval must be >= 0, got %s", p.StepInterval)
	}
	return nil
}

// Duration is the nominal wall time of one fade, ignoring write latency.
func (p Params) Duration() time.Duration {
	return time.Duration(p.Steps+1) * p.StepInterval
}

// PulseWidth returns the pulse width for step of a fade in direction dir.
//
// Fading in yields Period*step/Steps, fading out Period*(Steps-step)/Steps.
// Integer division truncates toward zero. step is clamped to [0, Steps].
// p must have passed Validate.
func PulseWidth(p Params, step int, dir Direction) time.Duration {
	if step < 0 {
		step = 0
	} else if step > p.Steps {
		step = p.Steps
	}
	n := step
	if dir == Out {
		n = p.Steps - step
	}
	return p.Period * time.Duration(n) / time.Duration(p.Steps)
}

// BrightnessPulse converts a brightness percentage into a pulse width.
// percent is clamped to [0, 100].
func BrightnessPulse(period time.Duration, percent int) time.Duration {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	return period * time.Duration(percent) / 100
}
