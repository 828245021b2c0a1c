package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ledfade/internal/board"
	"ledfade/internal/config"
	"ledfade/internal/fade"
	"ledfade/internal/pwm"
	"ledfade/internal/sequencer"
)

var openBankFn = pwm.Open

func bankSpecs(cfg config.Config) []pwm.Spec {
	specs := make([]pwm.Spec, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		specs = append(specs, pwm.Spec{
			Name:    ch.Name,
			Chip:    ch.Chip,
			Channel: ch.Channel,
			Pin:     ch.Pin,
			Line:    ch.Line,
		})
	}
	return specs
}

// run brings the bank up, refuses to start unless every channel is ready,
// and drives the fade cycle until ctx is done.
func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	model := board.Model()
	if model == "" {
		model = "unknown"
	}
	logger.Printf("ledfade starting board=%q backend=%s channels=%d", model, cfg.PWM.Backend, len(cfg.Channels))
	if cfg.PWM.Backend == pwm.BackendRPIO && !board.IsRaspberryPi(model) {
		logger.Printf("warning: rpio backend on non-Raspberry Pi board %q", model)
	}

	bank, err := openBankFn(pwm.Options{
		Backend:   cfg.PWM.Backend,
		SysfsBase: cfg.PWM.SysfsBase,
		Consumer:  cfg.PWM.Consumer,
		Logger:    logger,
	}, bankSpecs(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := bank.Close(); err != nil {
			logger.Printf("pwm close: %v", err)
		}
	}()

	chans := bank.Channels()
	for i, ch := range chans {
		if err := bank.CheckReady(ch); err != nil {
			return fmt.Errorf("PWM device %s is not ready: %w", ch, err)
		}
		logger.Printf("PWM LED %d ready", i)
	}

	ctrl, err := fade.New(bank, fade.Params{
		Period:       cfg.Fade.Period,
		Steps:        cfg.Fade.Steps,
		StepInterval: cfg.Fade.StepInterval,
	}, fade.WithLogger(logger))
	if err != nil {
		return err
	}
	p := ctrl.Params()
	logger.Printf("fade period=%s steps=%d ramp=%s hold=%s pause=%s", p.Period, p.Steps, p.Duration(), cfg.Sequence.Hold, cfg.Sequence.Pause)
	ctrl.TurnOffAll(chans)

	drv, err := sequencer.New(ctrl, chans, sequencer.Config{
		Hold:       cfg.Sequence.Hold,
		Pause:      cfg.Sequence.Pause,
		StartIndex: cfg.Sequence.StartIndex,
	}, logger)
	if err != nil {
		return err
	}

	err = drv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
