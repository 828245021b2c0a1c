package pwm

import (
	"errors"
	"testing"
	"time"
)

type fakeOutput struct {
	closed bool
}

func (f *fakeOutput) Set(period, pulse time.Duration) error { return nil }
func (f *fakeOutput) Ready() error                          { return nil }
func (f *fakeOutput) Close() error                          { f.closed = true; return nil }

func stubBackends(t *testing.T, sysfs func(string, int, int) (Output, error), gpio func(string, string) (Output, error)) {
	t.Helper()
	oldSysfs, oldGPIO := openSysfsFn, openGPIOFn
	openSysfsFn = sysfs
	openGPIOFn = gpio
	t.Cleanup(func() {
		openSysfsFn = oldSysfs
		openGPIOFn = oldGPIO
	})
}

func TestOpen_SimBackend(t *testing.T) {
	b, err := Open(Options{Backend: BackendSim}, []Spec{{Name: "led0"}, {Name: "led1"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("len=%d want 2", b.Len())
	}
	for _, ch := range b.Channels() {
		if err := b.CheckReady(ch); err != nil {
			t.Fatalf("CheckReady(%s): %v", ch, err)
		}
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(Options{Backend: "bogus"}, []Spec{{Name: "led0"}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpen_AutoFallsBackToGPIO(t *testing.T) {
	var gotLine, gotConsumer string
	gpioOut := &fakeOutput{}
	stubBackends(t,
		func(string, int, int) (Output, error) { return nil, errors.New("no pwmchip") },
		func(line, consumer string) (Output, error) {
			gotLine, gotConsumer = line, consumer
			return gpioOut, nil
		},
	)

	b, err := Open(Options{Backend: BackendAuto}, []Spec{{Name: "led0", Line: "GPIO17"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gotLine != "GPIO17" || gotConsumer != "ledfade" {
		t.Fatalf("gpio line=%q consumer=%q", gotLine, gotConsumer)
	}
	if b.outs[0] != gpioOut {
		t.Fatalf("expected gpio output in bank")
	}
}

func TestOpen_AutoPrefersSysfs(t *testing.T) {
	sysfsOut := &fakeOutput{}
	var gotBase string
	stubBackends(t,
		func(base string, chip, channel int) (Output, error) {
			gotBase = base
			return sysfsOut, nil
		},
		func(string, string) (Output, error) {
			t.Fatalf("gpio should not be opened")
			return nil, nil
		},
	)

	b, err := Open(Options{}, []Spec{{Name: "led0", Line: "GPIO17"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gotBase != "/sys/class/pwm" {
		t.Fatalf("sysfs base=%q", gotBase)
	}
	if b.outs[0] != sysfsOut {
		t.Fatalf("expected sysfs output in bank")
	}
}

func TestOpen_FailureClosesOpenedOutputs(t *testing.T) {
	first := &fakeOutput{}
	calls := 0
	stubBackends(t,
		func(string, int, int) (Output, error) {
			calls++
			if calls == 1 {
				return first, nil
			}
			return nil, errors.New("no such chip")
		},
		func(string, string) (Output, error) { return nil, errors.New("unused") },
	)

	_, err := Open(Options{Backend: BackendSysfs}, []Spec{{Name: "led0"}, {Name: "led1", Chip: 7}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !first.closed {
		t.Fatalf("first output should be closed after a later failure")
	}
}
