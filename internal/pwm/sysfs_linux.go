//go:build linux

package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// sysfsPWM drives one hardware PWM channel via /sys/class/pwm.
//
// Notes:
//   - On Raspberry Pi the channels only show up once a pwm overlay
//     (e.g. `dtoverlay=pwm-2chan`) is enabled.
//   - period and duty_cycle are written in nanoseconds.
//   - The kernel rejects a period shorter than the current duty cycle, so the
//     duty cycle is zeroed before the period changes.
type sysfsPWM struct {
	chipPath string // /sys/class/pwm/pwmchipN
	pwmPath  string // /sys/class/pwm/pwmchipN/pwmM
	channel  int

	periodNS uint64
	enabled  bool
}

var (
	exportWait       = 500 * time.Millisecond
	sysfsRetryWindow = 2 * time.Second

	writeSysfsFn = writeSysfs
)

func openSysfs(base string, chip, channel int) (Output, error) {
	chipPath := filepath.Join(base, fmt.Sprintf("pwmchip%d", chip))
	n, err := readInt(filepath.Join(chipPath, "npwm"))
	if err != nil {
		return nil, fmt.Errorf("pwm: %s: %w", chipPath, err)
	}
	if channel < 0 || channel >= n {
		return nil, fmt.Errorf("pwm: %s has %d channels, want channel %d", chipPath, n, channel)
	}

	d := &sysfsPWM{
		chipPath: chipPath,
		channel:  channel,
		pwmPath:  filepath.Join(chipPath, fmt.Sprintf("pwm%d", channel)),
	}
	if err := d.ensureExported(); err != nil {
		return nil, err
	}
	// Start disabled; the first Set programs period/duty and enables.
	if err := d.writeBool("enable", false); err == nil {
		d.enabled = false
	}
	return d, nil
}

func (d *sysfsPWM) ensureExported() error {
	if _, err := os.Stat(d.pwmPath); err == nil {
		return nil
	}
	exportPath := filepath.Join(d.chipPath, "export")
	if err := writeSysfsFn(exportPath, strconv.Itoa(d.channel)); err != nil {
		// Someone else may have exported it in the meantime.
		if _, statErr := os.Stat(d.pwmPath); statErr == nil {
			return nil
		}
		return fmt.Errorf("pwm: export %s: %w", d.pwmPath, err)
	}

	deadline := time.Now().Add(exportWait)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(d.pwmPath); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Stat(d.pwmPath); err != nil {
		return fmt.Errorf("pwm: %s not created after export: %w", d.pwmPath, err)
	}
	return nil
}

func (d *sysfsPWM) Set(period, pulse time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("pwm: invalid period %s", period)
	}
	periodNS := uint64(period.Nanoseconds())
	dutyNS := uint64(clampPulse(period, pulse).Nanoseconds())

	if periodNS != d.periodNS {
		// The channel may still hold another program's (period, duty).
		if err := d.writeUint("duty_cycle", 0); err != nil {
			return err
		}
		if err := d.writeUint("period", periodNS); err != nil {
			return err
		}
		d.periodNS = periodNS
	}
	if err := d.writeUint("duty_cycle", dutyNS); err != nil {
		return err
	}
	if !d.enabled {
		if err := d.writeBool("enable", true); err != nil {
			return err
		}
		d.enabled = true
	}
	return nil
}

// Ready checks the channel's control files are present and writable.
func (d *sysfsPWM) Ready() error {
	for _, name := range []string{"period", "duty_cycle", "enable"} {
		p := filepath.Join(d.pwmPath, name)
		if err := unix.Access(p, unix.W_OK); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNotReady, p, err)
		}
	}
	return nil
}

func (d *sysfsPWM) Close() error {
	// Best-effort: dark, then disabled.
	_ = d.writeUint("duty_cycle", 0)
	err := d.writeBool("enable", false)
	d.enabled = false
	return err
}

func (d *sysfsPWM) writeUint(name string, v uint64) error {
	return writeSysfsFn(filepath.Join(d.pwmPath, name), strconv.FormatUint(v, 10))
}

func (d *sysfsPWM) writeBool(name string, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	return writeSysfsFn(filepath.Join(d.pwmPath, name), val)
}

func writeSysfs(path string, value string) error {
	// O_WRONLY without O_TRUNC/O_CREATE: some sysfs attributes reject
	// truncation flags. Right after export, udev may still be fixing
	// permissions, so EACCES/ENOENT are retried for a short window.
	deadline := time.Now().Add(sysfsRetryWindow)
	for {
		err := writeSysfsOnce(path, value)
		if err == nil {
			return nil
		}
		if time.Now().Before(deadline) && isRetryableSysfsErr(err) {
			time.Sleep(25 * time.Millisecond)
			continue
		}
		return err
	}
}

func writeSysfsOnce(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(value)
	cerr := f.Close()
	return errors.Join(werr, cerr)
}

func isRetryableSysfsErr(err error) bool {
	return errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) || errors.Is(err, unix.ENOENT)
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, fmt.Errorf("%s is empty", path)
	}
	return strconv.Atoi(s)
}
