package sequencer

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"ledfade/internal/fade"
	"ledfade/internal/pwm"
)

// State of the LED cycle. Transitions are unconditional:
// FadingIn -> Holding -> FadingOut -> Advancing -> FadingIn.
type State int

const (
	FadingIn State = iota
	Holding
	FadingOut
	Advancing
)

func (s State) String() string {
	switch s {
	case FadingIn:
		return "fading-in"
	case Holding:
		return "holding"
	case FadingOut:
		return "fading-out"
	case Advancing:
		return "advancing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fader is what the driver needs from the fade controller.
type Fader interface {
	Fade(ctx context.Context, ch pwm.Channel, dir fade.Direction) error
	Sleep(ctx context.Context, d time.Duration) error
	TurnOffAll(chans []pwm.Channel)
}

type Config struct {
	// Hold is the dwell at full brightness.
	Hold time.Duration
	// Pause is the dark gap before the next LED.
	Pause time.Duration
	// StartIndex is the first channel to fade.
	StartIndex int
}

func DefaultConfig() Config {
	return Config{
		Hold:  200 * time.Millisecond,
		Pause: 100 * time.Millisecond,
	}
}

// Driver cycles through channels one at a time, forever.
//
// Not safe for concurrent use; it is meant to own the calling goroutine.
type Driver struct {
	fader  Fader
	chans  []pwm.Channel
	cfg    Config
	logger *log.Logger

	state   State
	current int
}

func New(f Fader, chans []pwm.Channel, cfg Config, logger *log.Logger) (*Driver, error) {
	if f == nil {
		return nil, fmt.Errorf("sequencer: fader is nil")
	}
	if len(chans) == 0 {
		return nil, fmt.Errorf("sequencer: no channels")
	}
	if cfg.StartIndex < 0 || cfg.StartIndex >= len(chans) {
		return nil, fmt.Errorf("sequencer: start index %d out of range [0,%d)", cfg.StartIndex, len(chans))
	}
	if cfg.Hold < 0 || cfg.Pause < 0 {
		return nil, fmt.Errorf("sequencer: hold and pause must be >= 0")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	own := make([]pwm.Channel, len(chans))
	copy(own, chans)
	return &Driver{
		fader:   f,
		chans:   own,
		cfg:     cfg,
		logger:  logger,
		state:   FadingIn,
		current: cfg.StartIndex,
	}, nil
}

func (d *Driver) State() State { return d.state }

// Current is the channel index the driver is working on.
func (d *Driver) Current() int { return d.current }

// Step runs the action of the current state and moves to the next one.
//
// The state advances even when the action fails: a failed fade only loses
// its own remaining steps.
func (d *Driver) Step(ctx context.Context) error {
	ch := d.chans[d.current]
	var err error
	switch d.state {
	case FadingIn:
		d.logger.Printf("Fading LED %d (%s)", d.current, ch)
		err = d.fader.Fade(ctx, ch, fade.In)
		d.state = Holding
	case Holding:
		err = d.fader.Sleep(ctx, d.cfg.Hold)
		d.state = FadingOut
	case FadingOut:
		err = d.fader.Fade(ctx, ch, fade.Out)
		d.state = Advancing
	case Advancing:
		d.current = (d.current + 1) % len(d.chans)
		err = d.fader.Sleep(ctx, d.cfg.Pause)
		d.state = FadingIn
	default:
		return fmt.Errorf("sequencer: invalid state %v", d.state)
	}
	return err
}

// Run steps the cycle until ctx is done, then turns every channel off and
// returns ctx.Err(). Write failures are already logged by the fader and do
// not stop the loop.
func (d *Driver) Run(ctx context.Context) error {
	defer d.fader.TurnOffAll(d.chans)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Step(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
