//go:build linux

package pwm

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// gpioLine is an on/off Output for LEDs wired to a plain GPIO, driven via the
// Linux GPIO character device. Any pulse > 0 is ON.
type gpioLine struct {
	name string
	line *gpiocdev.Line
}

func openGPIO(name, consumer string) (Output, error) {
	if name == "" {
		return nil, fmt.Errorf("pwm: gpio line name is empty")
	}
	chip, offset, err := gpiocdev.FindLine(name)
	if err != nil {
		return nil, fmt.Errorf("pwm: gpio line %q: %w", name, err)
	}
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("pwm: request gpio line %q on %s: %w", name, chip, err)
	}
	return &gpioLine{name: name, line: line}, nil
}

func (g *gpioLine) Set(period, pulse time.Duration) error {
	if g.line == nil {
		return fmt.Errorf("pwm: gpio line %q closed", g.name)
	}
	v := 0
	if pulse > 0 {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *gpioLine) Ready() error {
	if g.line == nil {
		return ErrNotReady
	}
	if _, err := g.line.Value(); err != nil {
		return fmt.Errorf("%w: gpio line %q: %v", ErrNotReady, g.name, err)
	}
	return nil
}

func (g *gpioLine) Close() error {
	if g.line == nil {
		return nil
	}
	_ = g.line.SetValue(0)
	err := g.line.Close()
	g.line = nil
	return err
}
