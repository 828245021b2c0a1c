package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Fade     FadeConfig      `yaml:"fade"`
	Sequence SequenceConfig  `yaml:"sequence"`
	PWM      PWMConfig       `yaml:"pwm"`
	Channels []ChannelConfig `yaml:"channels"`
}

type FadeConfig struct {
	// Period is the PWM period (1ms => 1 kHz).
	Period       time.Duration `yaml:"period"`
	Steps        int           `yaml:"steps"`
	StepInterval time.Duration `yaml:"step_interval"`
}

type SequenceConfig struct {
	Hold       time.Duration `yaml:"hold"`
	Pause      time.Duration `yaml:"pause"`
	StartIndex int           `yaml:"start_index"`
}

type PWMConfig struct {
	// Backend is one of auto, sysfs, rpio, gpio, sim.
	Backend   string `yaml:"backend"`
	SysfsBase string `yaml:"sysfs_base"`
	// Consumer labels GPIO lines requested by the gpio backend.
	Consumer string `yaml:"consumer"`
}

type ChannelConfig struct {
	Name string `yaml:"name"`
	// Chip and Channel select /sys/class/pwm/pwmchip<Chip>/pwm<Channel>.
	Chip    int `yaml:"chip"`
	Channel int `yaml:"channel"`
	// Pin is the BCM pin for the rpio backend.
	Pin int `yaml:"pin"`
	// Line is the GPIO line name (e.g. GPIO17) for the gpio backend and the
	// auto fallback.
	Line string `yaml:"line"`
}

var backends = []string{"auto", "sysfs", "rpio", "gpio", "sim"}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills zero values with defaults and rejects invalid
// settings. It is idempotent.
func DefaultAndValidate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Fade.Period < 0 {
		return fmt.Errorf("fade.period must be > 0")
	}
	if cfg.Fade.Period == 0 {
		cfg.Fade.Period = 1000 * time.Microsecond
	}
	if cfg.Fade.Steps < 0 {
		return fmt.Errorf("fade.steps must be > 0")
	}
	if cfg.Fade.Steps == 0 {
		cfg.Fade.Steps = 100
	}
	if cfg.Fade.Period > time.Duration(math.MaxInt64)/time.Duration(cfg.Fade.Steps) {
		return fmt.Errorf("fade.period * fade.steps overflows; lower one of them")
	}
	if cfg.Fade.StepInterval < 0 {
		return fmt.Errorf("fade.step_interval must be >= 0")
	}
	if cfg.Fade.StepInterval == 0 {
		cfg.Fade.StepInterval = 10 * time.Millisecond
	}

	if cfg.Sequence.Hold < 0 {
		return fmt.Errorf("sequence.hold must be >= 0")
	}
	if cfg.Sequence.Hold == 0 {
		cfg.Sequence.Hold = 200 * time.Millisecond
	}
	if cfg.Sequence.Pause < 0 {
		return fmt.Errorf("sequence.pause must be >= 0")
	}
	if cfg.Sequence.Pause == 0 {
		cfg.Sequence.Pause = 100 * time.Millisecond
	}

	cfg.PWM.Backend = strings.ToLower(strings.TrimSpace(cfg.PWM.Backend))
	if cfg.PWM.Backend == "" {
		cfg.PWM.Backend = "auto"
	}
	if !contains(backends, cfg.PWM.Backend) {
		return fmt.Errorf("pwm.backend must be one of %s", strings.Join(backends, ", "))
	}
	if strings.TrimSpace(cfg.PWM.SysfsBase) == "" {
		cfg.PWM.SysfsBase = "/sys/class/pwm"
	}
	if strings.TrimSpace(cfg.PWM.Consumer) == "" {
		cfg.PWM.Consumer = "ledfade"
	}

	if len(cfg.Channels) == 0 {
		return fmt.Errorf("channels must list at least one channel")
	}
	seen := make(map[string]bool, len(cfg.Channels))
	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		ch.Name = strings.TrimSpace(ch.Name)
		if ch.Name == "" {
			ch.Name = fmt.Sprintf("led%d", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("channels[%d].name %q is duplicated", i, ch.Name)
		}
		seen[ch.Name] = true
		ch.Line = strings.TrimSpace(ch.Line)

		if ch.Chip < 0 || ch.Channel < 0 {
			return fmt.Errorf("channels[%d] chip and channel must be >= 0", i)
		}
		switch cfg.PWM.Backend {
		case "rpio":
			if ch.Pin <= 0 {
				return fmt.Errorf("channels[%d].pin is required when pwm.backend is 'rpio'", i)
			}
		case "gpio":
			if ch.Line == "" {
				return fmt.Errorf("channels[%d].line is required when pwm.backend is 'gpio'", i)
			}
		}
	}

	if cfg.Sequence.StartIndex < 0 || cfg.Sequence.StartIndex >= len(cfg.Channels) {
		return fmt.Errorf("sequence.start_index must be in [0,%d)", len(cfg.Channels))
	}
	return nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
