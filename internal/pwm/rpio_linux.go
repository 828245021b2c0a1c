//go:build linux

package pwm

import (
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioCycleLen is the duty resolution used for every rpio channel. The PWM
// clock is shared by both hardware channels, so it must not vary per pin.
const rpioCycleLen uint32 = 1000

// rpio maps /dev/gpiomem once per process; outputs share it.
var (
	rpioMu   sync.Mutex
	rpioRefs int
)

// rpioPWM drives a Raspberry Pi hardware PWM pin through memory-mapped
// registers. Useful on boards without a pwm overlay.
type rpioPWM struct {
	pin    rpio.Pin
	period time.Duration
	open   bool
}

func hasHardwarePWM(pin int) bool {
	switch pin {
	case 12, 13, 18, 19, 40, 41, 45:
		return true
	}
	return false
}

func openRPIO(pin int) (Output, error) {
	if !hasHardwarePWM(pin) {
		return nil, fmt.Errorf("pwm: bcm pin %d has no hardware pwm", pin)
	}

	rpioMu.Lock()
	defer rpioMu.Unlock()
	if rpioRefs == 0 {
		if err := rpio.Open(); err != nil {
			return nil, fmt.Errorf("pwm: rpio open: %w", err)
		}
	}
	rpioRefs++

	p := rpio.Pin(pin)
	p.Mode(rpio.Pwm)
	return &rpioPWM{pin: p, open: true}, nil
}

func (d *rpioPWM) Set(period, pulse time.Duration) error {
	if !d.open {
		return fmt.Errorf("pwm: rpio pin %d closed", d.pin)
	}
	if period <= 0 {
		return fmt.Errorf("pwm: invalid period %s", period)
	}
	if period != d.period {
		// Output frequency = clock / cycle length.
		freq := int64(rpioCycleLen) * int64(time.Second) / int64(period)
		d.pin.Freq(int(freq))
		d.period = period
	}
	duty := uint32(int64(rpioCycleLen) * int64(clampPulse(period, pulse)) / int64(period))
	d.pin.DutyCycle(duty, rpioCycleLen)
	return nil
}

func (d *rpioPWM) Ready() error {
	if !d.open {
		return ErrNotReady
	}
	return nil
}

func (d *rpioPWM) Close() error {
	if !d.open {
		return nil
	}
	d.pin.DutyCycle(0, rpioCycleLen)
	d.open = false

	rpioMu.Lock()
	defer rpioMu.Unlock()
	rpioRefs--
	if rpioRefs == 0 {
		return rpio.Close()
	}
	return nil
}
