//go:build linux

package led

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// Open requests the given BCM GPIO as a digital output using the Linux GPIO
// character device (libgpiod).
func Open(pin int) (Output, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("led: invalid gpio pin %d", pin)
	}

	// On Pi, line names are commonly "GPIO11", etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	// Try likely chips first; Pi 5 kernel variants can expose header GPIOs on
	// more than one chip.
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("rocket-logger-led"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &gpioLED{chip: chip, line: line}, nil
	}

	return nil, fmt.Errorf("led: gpio line %q not found (or busy)", lineName)
}

type gpioLED struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (g *gpioLED) Set(on bool) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("led: gpio driver not initialized")
	}
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *gpioLED) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	// Leave the pad dark on shutdown.
	_ = g.line.SetValue(0)
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
