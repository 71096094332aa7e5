package mpl3115a2

import (
	"errors"
	"fmt"

	"rocket-logger/internal/i2c"
)

// Minimal MPL3115A2 driver.
//
// Altimeter mode, raw outputs only. The chip is run one-shot: every read
// re-arms the next conversion, because the part does not free-run on its own.

const (
	addrDefault = 0x60

	regOutPMSB = 0x01
	regWhoAmI  = 0x0C
	regCtrl1   = 0x26

	deviceID = 0xC4

	// Altimeter mode, OSR=128, start conversion.
	ctrl1Start = 0xB9
)

var (
	// ErrDeviceAbsent means nothing acknowledged at the altimeter's address.
	ErrDeviceAbsent = errors.New("mpl3115a2: no device on bus")
	// ErrDeviceMismatch means a present-but-wrong chip answered.
	ErrDeviceMismatch = errors.New("mpl3115a2: device id mismatch")
)

// Atmosphere is one raw sample pair.
type Atmosphere struct {
	// Pressure is the raw right-justified 20-bit output.
	Pressure uint32
	// Temperature is the raw 12-bit two's-complement output, sign-extended.
	Temperature int32
}

// RegIO is the register transaction surface the driver needs.
type RegIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

type Device struct {
	dev RegIO
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev RegIO) *Device {
	return &Device{dev: dev}
}

// Init probes the chip identity and starts the first one-shot conversion in
// altimeter mode. A no-ACK probe maps to ErrDeviceAbsent, a wrong identity
// byte to ErrDeviceMismatch; both are fatal for the run.
func (d *Device) Init() error {
	if d == nil || d.dev == nil {
		return fmt.Errorf("mpl3115a2: dev is nil")
	}
	id, err := d.dev.ReadRegU8(regWhoAmI)
	if err != nil {
		if i2c.IsNoDevice(err) {
			return fmt.Errorf("mpl3115a2: whoami read: %v: %w", err, ErrDeviceAbsent)
		}
		return fmt.Errorf("mpl3115a2: whoami read failed: %w", err)
	}
	if id != deviceID {
		return fmt.Errorf("mpl3115a2: whoami=0x%02X want 0x%02X: %w", id, deviceID, ErrDeviceMismatch)
	}
	return d.trigger()
}

// ReadAtmosphere reads the five output registers and immediately re-arms the
// next conversion. Skipping the re-trigger would freeze every later read at
// this sample.
//
// On a bus failure it returns the zero pair together with the error, same
// neutral-value policy as the accelerometer.
func (d *Device) ReadAtmosphere() (Atmosphere, error) {
	var buf [5]byte
	if err := d.dev.ReadReg(regOutPMSB, buf[:]); err != nil {
		return Atmosphere{}, fmt.Errorf("mpl3115a2: data read failed: %w", err)
	}
	if err := d.trigger(); err != nil {
		return Atmosphere{}, err
	}
	return decode(buf), nil
}

func (d *Device) trigger() error {
	if err := d.dev.WriteReg(regCtrl1, ctrl1Start); err != nil {
		return fmt.Errorf("mpl3115a2: ctrl_reg1 write failed: %w", err)
	}
	return nil
}

// decode unpacks the left-justified outputs: pressure is a big-endian 24-bit
// field holding a 20-bit result, temperature a big-endian 16-bit field
// holding a 12-bit two's-complement result.
func decode(buf [5]byte) Atmosphere {
	p := (uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])) >> 4

	t := int32(buf[3])<<8 | int32(buf[4])
	t >>= 4
	if t&0x800 != 0 {
		t |= ^int32(0xFFF)
	}
	return Atmosphere{Pressure: p, Temperature: t}
}
