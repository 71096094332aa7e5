package adxl343

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Minimal ADXL343 driver.
//
// Covers what the flight computer needs: identity probe, continuous
// measurement mode, raw axis burst reads, and the on-chip activity (motion)
// interrupt. Scale factors are left raw; the log stores LSB units.

const (
	addrDefault = 0x53

	regDevID       = 0x00
	regThreshAct   = 0x24
	regActInactCtl = 0x27
	regPowerCtl    = 0x2D
	regIntEnable   = 0x2E
	regIntSource   = 0x30
	regDataX0      = 0x32

	deviceID = 0xE5

	powerCtlMeasure = 0x08

	// INT_ENABLE / INT_SOURCE activity bit.
	bitActivity = 0x10

	// AC-coupled activity detection on all three axes.
	actInactCtlAC = 0b01110000
)

// ErrDeviceMismatch means something acknowledged at the accelerometer's
// address but identified as a different chip.
var ErrDeviceMismatch = errors.New("adxl343: device id mismatch")

// Acceleration is one raw (x, y, z) sample in sensor LSB units
// (62.5 mg/LSB at the threshold register's scale).
type Acceleration struct {
	X, Y, Z int16
}

// Capability names an interrupt source this driver has armed. INT_SOURCE is
// only ever interpreted through the armed set, so a stray bit from a source
// we never enabled cannot be misreported as an event.
type Capability string

const CapMotion Capability = "motion"

// RegIO is the register transaction surface the driver needs. *i2c.Dev
// satisfies it; tests and the simulator substitute their own.
type RegIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

type Device struct {
	dev  RegIO
	caps map[Capability]bool
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev RegIO) *Device {
	return &Device{dev: dev, caps: make(map[Capability]bool)}
}

// Init probes the chip identity, enables continuous measurement, and clears
// the interrupt enables to a known all-disabled state.
func (d *Device) Init() error {
	if d == nil || d.dev == nil {
		return fmt.Errorf("adxl343: dev is nil")
	}
	id, err := d.dev.ReadRegU8(regDevID)
	if err != nil {
		return fmt.Errorf("adxl343: devid read failed: %w", err)
	}
	if id != deviceID {
		return fmt.Errorf("adxl343: devid=0x%02X want 0x%02X: %w", id, deviceID, ErrDeviceMismatch)
	}
	if err := d.dev.WriteReg(regPowerCtl, powerCtlMeasure); err != nil {
		return fmt.Errorf("adxl343: power_ctl write failed: %w", err)
	}
	if err := d.dev.WriteReg(regIntEnable, 0x00); err != nil {
		return fmt.Errorf("adxl343: int_enable clear failed: %w", err)
	}
	clear(d.caps)
	return nil
}

// ReadAcceleration burst-reads the six axis registers and decodes three
// little-endian signed 16-bit values.
//
// On a bus failure it returns the zero sample together with the error: the
// neutral value keeps a caller sampling if it chooses to ride through the
// transient, the error lets it escalate instead. By value alone a failed
// read is indistinguishable from free fall.
func (d *Device) ReadAcceleration() (Acceleration, error) {
	var buf [6]byte
	if err := d.dev.ReadReg(regDataX0, buf[:]); err != nil {
		return Acceleration{}, fmt.Errorf("adxl343: data read failed: %w", err)
	}
	return Acceleration{
		X: int16(binary.LittleEndian.Uint16(buf[0:2])),
		Y: int16(binary.LittleEndian.Uint16(buf[2:4])),
		Z: int16(binary.LittleEndian.Uint16(buf[4:6])),
	}, nil
}

// EnableMotionDetection arms AC-coupled activity sensing on all three axes.
// threshold is in the chip's 62.5 mg/LSB units, not converted here.
//
// The activity bit is set read-modify-write so other interrupt enables are
// left untouched.
func (d *Device) EnableMotionDetection(threshold byte) error {
	if err := d.dev.WriteReg(regActInactCtl, actInactCtlAC); err != nil {
		return fmt.Errorf("adxl343: act_inact_ctl write failed: %w", err)
	}
	if err := d.dev.WriteReg(regThreshAct, threshold); err != nil {
		return fmt.Errorf("adxl343: thresh_act write failed: %w", err)
	}
	cur, err := d.dev.ReadRegU8(regIntEnable)
	if err != nil {
		return fmt.Errorf("adxl343: int_enable read failed: %w", err)
	}
	if err := d.dev.WriteReg(regIntEnable, cur|bitActivity); err != nil {
		return fmt.Errorf("adxl343: int_enable write failed: %w", err)
	}
	d.caps[CapMotion] = true
	return nil
}

// DisableMotionDetection is the inverse read-modify-write; other interrupt
// enables keep their value bit-for-bit.
func (d *Device) DisableMotionDetection() error {
	cur, err := d.dev.ReadRegU8(regIntEnable)
	if err != nil {
		return fmt.Errorf("adxl343: int_enable read failed: %w", err)
	}
	if err := d.dev.WriteReg(regIntEnable, cur&^bitActivity); err != nil {
		return fmt.Errorf("adxl343: int_enable write failed: %w", err)
	}
	delete(d.caps, CapMotion)
	return nil
}

// MotionDetected reports whether the activity interrupt has latched since the
// last poll. Reading INT_SOURCE clears the latch on the chip, so polling this
// is also what services the latch; a caller that never polls never observes
// motion. Without the motion capability armed the bus is not touched at all.
//
// A failed poll is reported as "no event": detection fails open.
func (d *Device) MotionDetected() bool {
	if !d.caps[CapMotion] {
		return false
	}
	src, err := d.dev.ReadRegU8(regIntSource)
	if err != nil {
		return false
	}
	return motionFromSource(d.caps, src)
}

func motionFromSource(caps map[Capability]bool, src byte) bool {
	return caps[CapMotion] && src&bitActivity != 0
}
