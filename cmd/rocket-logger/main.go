package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rocket-logger/internal/config"
	"rocket-logger/internal/flight"
	"rocket-logger/internal/flightlog"
	"rocket-logger/internal/i2c"
	"rocket-logger/internal/led"
	"rocket-logger/internal/sensors/adxl343"
	"rocket-logger/internal/sensors/mpl3115a2"
	"rocket-logger/internal/sim"
	"rocket-logger/internal/ticks"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./rocket.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clock := ticks.NewWallClock()

	var accel *adxl343.Device
	var alti *mpl3115a2.Device
	if cfg.Sim.Enable {
		log.Printf("simulated bus enabled, motion after %s", cfg.Sim.MotionAfter)
		bus := sim.New(clock, sim.Config{MotionAfter: cfg.Sim.MotionAfter})
		accel = adxl343.New(bus.AccelDev())
		alti = mpl3115a2.New(bus.AltiDev())
	} else {
		bus, err := i2c.Open(cfg.Bus.Path)
		if err != nil {
			log.Fatalf("i2c open failed: %v", err)
		}
		defer bus.Close()
		accel = adxl343.New(bus.Dev(adxl343.DefaultAddress()))
		alti = mpl3115a2.New(bus.Dev(mpl3115a2.DefaultAddress()))
	}

	var lamp led.Output = led.Discard{}
	if cfg.LED.Enable {
		lamp, err = led.Open(cfg.LED.Pin)
		if err != nil {
			log.Fatalf("led open failed: %v", err)
		}
	}
	defer lamp.Close()

	machine := flight.NewMachine(flight.Config{
		StandbyDuration: cfg.Flight.StandbyDuration,
		LoggingDuration: cfg.Flight.LoggingDuration,
		SampleInterval:  cfg.Flight.SampleInterval,
		MotionThreshold: byte(cfg.Flight.MotionThreshold),
	}, accel, alti, clock, func() (flight.LogSink, error) {
		w, err := flightlog.Prepare(cfg.Flight.DataDir)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
	defer machine.Close()

	log.Printf("rocket-logger starting")
	log.Printf("data dir=%s sample interval=%s", cfg.Flight.DataDir, cfg.Flight.SampleInterval)

	for {
		machine.Step()
		if err := lamp.Set(machine.Lamp()); err != nil {
			log.Printf("led set failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Printf("rocket-logger stopping in [%s]", machine.State())
			return
		case <-time.After(cfg.Flight.LoopInterval):
		}
	}
}
