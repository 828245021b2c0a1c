package fade

import (
	"context"
	"fmt"
	"log"
	"time"

	"ledfade/internal/pwm"
)

// Controller computes per-step pulse widths and writes them through a Sink.
//
// Every operation is synchronous: Fade blocks for the whole ramp. Not safe
// for concurrent use.
type Controller struct {
	sink   pwm.Sink
	params Params
	logger *log.Logger
	after  func(time.Duration) <-chan time.Time
}

type Option func(*Controller)

// WithLogger routes the controller's log lines. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAfter replaces time.After, letting tests drive the clock.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(c *Controller) {
		if after != nil {
			c.after = after
		}
	}
}

func New(sink pwm.Sink, params Params, opts ...Option) (*Controller, error) {
	if sink == nil {
		return nil, fmt.Errorf("fade: sink is nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		sink:   sink,
		params: params,
		logger: log.Default(),
		after:  time.After,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) Params() Params { return c.params }

// Fade ramps ch from dark to full (In) or full to dark (Out), writing
// Steps+1 values StepInterval apart.
//
// The first failed write aborts the ramp and is returned; no further steps
// are written. A cancelled ctx ends the ramp with ctx.Err().
func (c *Controller) Fade(ctx context.Context, ch pwm.Channel, dir Direction) error {
	for step := 0; step <= c.params.Steps; step++ {
		pulse := PulseWidth(c.params, step, dir)
		if err := c.sink.Write(ch, c.params.Period, pulse); err != nil {
			c.logger.Printf("fade: %s fade %s aborted at step %d: %v", ch, dir, step, err)
			return err
		}
		if err := c.Sleep(ctx, c.params.StepInterval); err != nil {
			return err
		}
	}
	return nil
}

// SetBrightness writes a single pulse width for percent (clamped to 0..100).
func (c *Controller) SetBrightness(ch pwm.Channel, percent int) error {
	pulse := BrightnessPulse(c.params.Period, percent)
	if err := c.sink.Write(ch, c.params.Period, pulse); err != nil {
		c.logger.Printf("fade: set %s brightness %d%%: %v", ch, percent, err)
		return err
	}
	return nil
}

// TurnOffAll writes a zero pulse to every channel once. Failures are logged
// and do not stop the remaining channels.
func (c *Controller) TurnOffAll(chans []pwm.Channel) {
	for _, ch := range chans {
		if err := c.sink.Write(ch, c.params.Period, 0); err != nil {
			c.logger.Printf("fade: turn off %s: %v", ch, err)
		}
	}
}

// Sleep blocks for d or until ctx is done.
func (c *Controller) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-c.after(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
