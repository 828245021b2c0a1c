package pwm

import (
	"errors"
	"fmt"
	"time"
)

// Bank owns an ordered, immutable set of channels and their outputs.
// It implements Sink.
type Bank struct {
	chans []Channel
	outs  []Output
}

// NewBank builds a bank from parallel name and output slices.
func NewBank(names []string, outs []Output) (*Bank, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("pwm: bank needs at least one channel")
	}
	if len(names) != len(outs) {
		return nil, fmt.Errorf("pwm: %d names for %d outputs", len(names), len(outs))
	}
	b := &Bank{
		chans: make([]Channel, len(names)),
		outs:  make([]Output, len(outs)),
	}
	for i, name := range names {
		if outs[i] == nil {
			return nil, fmt.Errorf("pwm: output for %s is nil", name)
		}
		b.chans[i] = Channel{index: i, name: name}
		b.outs[i] = outs[i]
	}
	return b, nil
}

// Channels returns a copy of the bank's channels in configuration order.
func (b *Bank) Channels() []Channel {
	out := make([]Channel, len(b.chans))
	copy(out, b.chans)
	return out
}

func (b *Bank) Len() int { return len(b.chans) }

func (b *Bank) output(ch Channel) (Output, error) {
	if ch.index < 0 || ch.index >= len(b.chans) || b.chans[ch.index] != ch {
		return nil, fmt.Errorf("pwm: unknown channel %q", ch.name)
	}
	return b.outs[ch.index], nil
}

func (b *Bank) Write(ch Channel, period, pulse time.Duration) error {
	out, err := b.output(ch)
	if err != nil {
		return &WriteError{Channel: ch, Period: period, Pulse: pulse, Err: err}
	}
	if err := out.Set(period, pulse); err != nil {
		return &WriteError{Channel: ch, Period: period, Pulse: pulse, Err: err}
	}
	return nil
}

// CheckReady reports whether ch's output accepts writes. Failures wrap
// ErrNotReady.
func (b *Bank) CheckReady(ch Channel) error {
	out, err := b.output(ch)
	if err != nil {
		return err
	}
	if err := out.Ready(); err != nil {
		if errors.Is(err, ErrNotReady) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	return nil
}

// Close closes every output and joins the failures.
func (b *Bank) Close() error {
	var errs []error
	for i, out := range b.outs {
		if err := out.Close(); err != nil {
			errs = append(errs, fmt.Errorf("pwm: close %s: %w", b.chans[i], err))
		}
	}
	return errors.Join(errs...)
}
