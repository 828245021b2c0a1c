package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_RequiresChannels(t *testing.T) {
	path := writeTempConfig(t, "fade: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "channels must list at least one channel")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "channels:\n  - {}\n  - {name: status}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Fade.Period != time.Millisecond {
		t.Fatalf("period=%s want 1ms", cfg.Fade.Period)
	}
	if cfg.Fade.Steps != 100 {
		t.Fatalf("steps=%d want 100", cfg.Fade.Steps)
	}
	if cfg.Fade.StepInterval != 10*time.Millisecond {
		t.Fatalf("step_interval=%s want 10ms", cfg.Fade.StepInterval)
	}
	if cfg.Sequence.Hold != 200*time.Millisecond || cfg.Sequence.Pause != 100*time.Millisecond {
		t.Fatalf("hold=%s pause=%s", cfg.Sequence.Hold, cfg.Sequence.Pause)
	}
	if cfg.PWM.Backend != "auto" || cfg.PWM.SysfsBase != "/sys/class/pwm" || cfg.PWM.Consumer != "ledfade" {
		t.Fatalf("pwm=%+v", cfg.PWM)
	}
	if cfg.Channels[0].Name != "led0" || cfg.Channels[1].Name != "status" {
		t.Fatalf("names=%q,%q", cfg.Channels[0].Name, cfg.Channels[1].Name)
	}
}

func TestLoad_ParsesDurationsAndChannels(t *testing.T) {
	path := writeTempConfig(t, `
fade:
  period: 500us
  steps: 50
  step_interval: 20ms
sequence:
  hold: 1s
  pause: 250ms
  start_index: 1
pwm:
  backend: SYSFS
channels:
  - name: red
    chip: 0
    channel: 0
  - name: green
    chip: 0
    channel: 1
    line: GPIO27
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Fade.Period != 500*time.Microsecond || cfg.Fade.Steps != 50 || cfg.Fade.StepInterval != 20*time.Millisecond {
		t.Fatalf("fade=%+v", cfg.Fade)
	}
	if cfg.Sequence.Hold != time.Second || cfg.Sequence.Pause != 250*time.Millisecond || cfg.Sequence.StartIndex != 1 {
		t.Fatalf("sequence=%+v", cfg.Sequence)
	}
	if cfg.PWM.Backend != "sysfs" {
		t.Fatalf("backend=%q want sysfs", cfg.PWM.Backend)
	}
	if cfg.Channels[1].Channel != 1 || cfg.Channels[1].Line != "GPIO27" {
		t.Fatalf("channels[1]=%+v", cfg.Channels[1])
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "NegativeSteps",
			yaml: "fade:\n  steps: -1\nchannels: [{}]\n",
			want: "fade.steps must be > 0",
		},
		{
			name: "PeriodTimesStepsOverflows",
			yaml: "fade:\n  period: 10s\n  steps: 1000000000\nchannels: [{}]\n",
			want: "fade.period * fade.steps overflows; lower one of them",
		},
		{
			name: "NegativePeriod",
			yaml: "fade:\n  period: -1ms\nchannels: [{}]\n",
			want: "fade.period must be > 0",
		},
		{
			name: "NegativeHold",
			yaml: "sequence:\n  hold: -5ms\nchannels: [{}]\n",
			want: "sequence.hold must be >= 0",
		},
		{
			name: "UnknownBackend",
			yaml: "pwm:\n  backend: spi\nchannels: [{}]\n",
			want: "pwm.backend must be one of auto, sysfs, rpio, gpio, sim",
		},
		{
			name: "DuplicateNames",
			yaml: "channels:\n  - name: a\n  - name: a\n",
			want: `channels[1].name "a" is duplicated`,
		},
		{
			name: "RPIORequiresPin",
			yaml: "pwm:\n  backend: rpio\nchannels:\n  - pin: 18\n  - name: b\n",
			want: "channels[1].pin is required when pwm.backend is 'rpio'",
		},
		{
			name: "GPIORequiresLine",
			yaml: "pwm:\n  backend: gpio\nchannels: [{}]\n",
			want: "channels[0].line is required when pwm.backend is 'gpio'",
		},
		{
			name: "StartIndexOutOfRange",
			yaml: "sequence:\n  start_index: 2\nchannels: [{}, {}]\n",
			want: "sequence.start_index must be in [0,2)",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.yaml))
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultAndValidate_Idempotent(t *testing.T) {
	cfg := Config{Channels: []ChannelConfig{{}, {}}}
	if err := DefaultAndValidate(&cfg); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	first := cfg
	first.Channels = append([]ChannelConfig(nil), cfg.Channels...)
	if err := DefaultAndValidate(&cfg); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if cfg.Fade != first.Fade || cfg.Sequence != first.Sequence || cfg.PWM != first.PWM {
		t.Fatalf("second pass changed config: %+v vs %+v", cfg, first)
	}
	for i := range cfg.Channels {
		if cfg.Channels[i] != first.Channels[i] {
			t.Fatalf("channel %d changed: %+v vs %+v", i, cfg.Channels[i], first.Channels[i])
		}
	}
}
