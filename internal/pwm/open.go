package pwm

import (
	"errors"
	"fmt"
	"io"
	"log"
)

const (
	BackendAuto  = "auto"
	BackendSysfs = "sysfs"
	BackendRPIO  = "rpio"
	BackendGPIO  = "gpio"
	BackendSim   = "sim"
)

const defaultSysfsBase = "/sys/class/pwm"

// Spec describes where one channel lives. Which fields matter depends on
// the backend: Chip/Channel for sysfs, Pin for rpio, Line for gpio.
type Spec struct {
	Name    string
	Chip    int
	Channel int
	Pin     int
	Line    string
}

type Options struct {
	Backend   string
	SysfsBase string
	// Consumer labels requested GPIO lines.
	Consumer string
	Logger   *log.Logger
}

var (
	openSysfsFn = openSysfs
	openRPIOFn  = openRPIO
	openGPIOFn  = openGPIO
)

// Open resolves every spec to an Output and returns them as a Bank, in spec
// order. Outputs opened before a failure are closed again.
func Open(opts Options, specs []Spec) (*Bank, error) {
	if opts.SysfsBase == "" {
		opts.SysfsBase = defaultSysfsBase
	}
	if opts.Consumer == "" {
		opts.Consumer = "ledfade"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	names := make([]string, 0, len(specs))
	outs := make([]Output, 0, len(specs))
	for _, s := range specs {
		out, err := openOne(opts, s)
		if err != nil {
			for _, o := range outs {
				_ = o.Close()
			}
			return nil, fmt.Errorf("pwm: open %s: %w", s.Name, err)
		}
		names = append(names, s.Name)
		outs = append(outs, out)
	}
	return NewBank(names, outs)
}

func openOne(opts Options, s Spec) (Output, error) {
	switch opts.Backend {
	case BackendSysfs:
		return openSysfsFn(opts.SysfsBase, s.Chip, s.Channel)
	case BackendRPIO:
		return openRPIOFn(s.Pin)
	case BackendGPIO:
		return openGPIOFn(s.Line, opts.Consumer)
	case BackendSim:
		return NewSim(), nil
	case BackendAuto, "":
		out, err := openSysfsFn(opts.SysfsBase, s.Chip, s.Channel)
		if err == nil {
			return out, nil
		}
		if s.Line == "" {
			return nil, err
		}
		opts.Logger.Printf("pwm: %s: sysfs pwm unavailable (%v), falling back to gpio line %s", s.Name, err, s.Line)
		gout, gerr := openGPIOFn(s.Line, opts.Consumer)
		if gerr != nil {
			return nil, errors.Join(err, gerr)
		}
		return gout, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}
