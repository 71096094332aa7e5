//go:build !linux

package led

import "fmt"

// Stub for non-Linux platforms; hardware LED output needs the Linux GPIO
// character device.
func Open(pin int) (Output, error) {
	return nil, fmt.Errorf("led: gpio unsupported on this platform")
}
