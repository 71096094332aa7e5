package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bus    BusConfig    `yaml:"bus"`
	LED    LEDConfig    `yaml:"led"`
	Flight FlightConfig `yaml:"flight"`
	Sim    SimConfig    `yaml:"sim"`
}

type BusConfig struct {
	// Path is the I2C character device, e.g. /dev/i2c-1.
	Path string `yaml:"path"`
}

type LEDConfig struct {
	Enable bool `yaml:"enable"`
	// Pin is BCM GPIO numbering.
	Pin int `yaml:"pin"`
}

type FlightConfig struct {
	StandbyDuration time.Duration `yaml:"standby_duration"`
	LoggingDuration time.Duration `yaml:"logging_duration"`
	SampleInterval  time.Duration `yaml:"sample_interval"`
	// MotionThreshold is in raw sensor LSB units (62.5 mg/LSB).
	MotionThreshold int           `yaml:"motion_threshold"`
	DataDir         string        `yaml:"data_dir"`
	LoopInterval    time.Duration `yaml:"loop_interval"`
}

type SimConfig struct {
	Enable bool `yaml:"enable"`
	// MotionAfter is how long after arming the simulated launch kicks.
	MotionAfter time.Duration `yaml:"motion_after"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Bus.Path == "" && !cfg.Sim.Enable {
		return Config{}, fmt.Errorf("bus.path is required unless sim.enable is true")
	}

	if cfg.LED.Enable && cfg.LED.Pin <= 0 {
		return Config{}, fmt.Errorf("led.pin is required when led.enable is true")
	}

	// Flight defaults mirror the proven bench tune: 10 s standby, 10 s of
	// logging at 100 Hz.
	if cfg.Flight.StandbyDuration <= 0 {
		cfg.Flight.StandbyDuration = 10 * time.Second
	}
	if cfg.Flight.LoggingDuration <= 0 {
		cfg.Flight.LoggingDuration = 10 * time.Second
	}
	if cfg.Flight.SampleInterval <= 0 {
		cfg.Flight.SampleInterval = 10 * time.Millisecond
	}
	if cfg.Flight.SampleInterval < time.Millisecond {
		return Config{}, fmt.Errorf("flight.sample_interval must be at least 1ms")
	}
	if cfg.Flight.MotionThreshold == 0 {
		cfg.Flight.MotionThreshold = 50
	}
	if cfg.Flight.MotionThreshold < 1 || cfg.Flight.MotionThreshold > 255 {
		return Config{}, fmt.Errorf("flight.motion_threshold must be in 1..255")
	}
	if cfg.Flight.DataDir == "" {
		cfg.Flight.DataDir = "flight_data"
	}
	if cfg.Flight.LoopInterval <= 0 {
		cfg.Flight.LoopInterval = 10 * time.Millisecond
	}

	// Simulator defaults (safe even if disabled).
	if cfg.Sim.MotionAfter <= 0 {
		cfg.Sim.MotionAfter = 2 * time.Second
	}

	return cfg, nil
}
