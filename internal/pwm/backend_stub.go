//go:build !linux

package pwm

import "fmt"

// Hardware backends need Linux; only the sim backend works elsewhere.

func openSysfs(base string, chip, channel int) (Output, error) {
	return nil, fmt.Errorf("sysfs: %w", ErrUnsupported)
}

func openRPIO(pin int) (Output, error) {
	return nil, fmt.Errorf("rpio: %w", ErrUnsupported)
}

func openGPIO(name, consumer string) (Output, error) {
	return nil, fmt.Errorf("gpio: %w", ErrUnsupported)
}
