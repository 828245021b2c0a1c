package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ledfade/internal/config"
)

func main() {
	var configPath string
	var backend string
	flag.StringVar(&configPath, "config", "./ledfade.yaml", "Path to YAML config")
	flag.StringVar(&backend, "backend", "", "Override pwm.backend (auto, sysfs, rpio, gpio, sim)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if backend != "" {
		cfg.PWM.Backend = backend
		if err := config.DefaultAndValidate(&cfg); err != nil {
			log.Fatalf("config invalid: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log.Default()); err != nil {
		log.Fatalf("ledfade: %v", err)
	}
	log.Printf("ledfade stopped")
}
