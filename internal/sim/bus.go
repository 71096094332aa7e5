package sim

import (
	"fmt"
	"time"

	"rocket-logger/internal/ticks"
)

// Scripted register-level model of the flight bus: an ADXL343 and an
// MPL3115A2 flying a canned boost/coast profile. Lets the full binary (or a
// test) run a complete flight with no hardware attached.
//
// The model is bit-exact where the drivers care: identity registers, the
// read-to-clear interrupt source, read-modify-write interrupt enables, and
// the altimeter's one-shot handshake — its output registers refresh only on
// a CTRL_REG1 trigger write, so a reader that forgets to re-trigger sees
// stale data, same as the real part.

// ADXL343 registers.
const (
	accelRegDevID       = 0x00
	accelRegThreshAct   = 0x24
	accelRegActInactCtl = 0x27
	accelRegPowerCtl    = 0x2D
	accelRegIntEnable   = 0x2E
	accelRegIntSource   = 0x30
	accelRegDataX0      = 0x32

	accelDevID       = 0xE5
	accelBitActivity = 0x10
)

// MPL3115A2 registers.
const (
	altiRegOutPMSB = 0x01
	altiRegWhoAmI  = 0x0C
	altiRegCtrl1   = 0x26

	altiDevID = 0xC4
)

// Sea-level standard pressure in the chip's raw units (Pa * 4) and 20 C in
// raw temperature units (C * 16).
const (
	basePressureRaw = 405300
	baseTempRaw     = 320
)

type Config struct {
	// MotionAfter is how long after arming the simulated launch kicks.
	MotionAfter time.Duration
}

type Bus struct {
	clock ticks.Clock

	motionAfterMs int32

	// Accelerometer model.
	powerCtl    byte
	intEnable   byte
	actInactCtl byte
	threshAct   byte
	armed       bool
	armedAt     ticks.T
	launched    bool
	launchAt    ticks.T

	// Altimeter model: latched one-shot output registers.
	ctrl1 byte
	out   [5]byte
}

func New(clock ticks.Clock, cfg Config) *Bus {
	motionAfter := cfg.MotionAfter
	if motionAfter <= 0 {
		motionAfter = 2 * time.Second
	}
	return &Bus{clock: clock, motionAfterMs: int32(motionAfter.Milliseconds())}
}

// AccelDev returns the register surface of the simulated accelerometer.
func (b *Bus) AccelDev() *AccelDev { return &AccelDev{bus: b} }

// AltiDev returns the register surface of the simulated altimeter.
func (b *Bus) AltiDev() *AltiDev { return &AltiDev{bus: b} }

type AccelDev struct {
	bus *Bus
}

func (d *AccelDev) ReadRegU8(reg byte) (byte, error) {
	b := d.bus
	switch reg {
	case accelRegDevID:
		return accelDevID, nil
	case accelRegIntEnable:
		return b.intEnable, nil
	case accelRegIntSource:
		var src byte
		if b.motionDue() {
			src |= accelBitActivity
			b.noteLaunch()
		}
		return src, nil
	}
	return 0, fmt.Errorf("sim: adxl343 read of unmodeled reg 0x%02X", reg)
}

func (d *AccelDev) ReadReg(reg byte, dst []byte) error {
	b := d.bus
	if reg != accelRegDataX0 || len(dst) != 6 {
		return fmt.Errorf("sim: adxl343 burst read reg=0x%02X len=%d", reg, len(dst))
	}
	x, y, z := b.accelSample()
	putLE16(dst[0:2], x)
	putLE16(dst[2:4], y)
	putLE16(dst[4:6], z)
	return nil
}

func (d *AccelDev) WriteReg(reg, value byte) error {
	b := d.bus
	switch reg {
	case accelRegPowerCtl:
		b.powerCtl = value
	case accelRegIntEnable:
		b.intEnable = value
		if value&accelBitActivity != 0 {
			if !b.armed {
				b.armed = true
				b.armedAt = b.clock.Now()
			}
		} else {
			b.armed = false
		}
	case accelRegActInactCtl:
		b.actInactCtl = value
	case accelRegThreshAct:
		b.threshAct = value
	default:
		return fmt.Errorf("sim: adxl343 write of unmodeled reg 0x%02X", reg)
	}
	return nil
}

type AltiDev struct {
	bus *Bus
}

func (d *AltiDev) ReadRegU8(reg byte) (byte, error) {
	if reg != altiRegWhoAmI {
		return 0, fmt.Errorf("sim: mpl3115a2 read of unmodeled reg 0x%02X", reg)
	}
	return altiDevID, nil
}

func (d *AltiDev) ReadReg(reg byte, dst []byte) error {
	if reg != altiRegOutPMSB || len(dst) != 5 {
		return fmt.Errorf("sim: mpl3115a2 burst read reg=0x%02X len=%d", reg, len(dst))
	}
	copy(dst, d.bus.out[:])
	return nil
}

func (d *AltiDev) WriteReg(reg, value byte) error {
	b := d.bus
	if reg != altiRegCtrl1 {
		return fmt.Errorf("sim: mpl3115a2 write of unmodeled reg 0x%02X", reg)
	}
	b.ctrl1 = value
	// Any control write restarts a conversion; the outputs latch its result
	// and hold it until the next trigger.
	b.latchAtmosphere()
	return nil
}

func (b *Bus) motionDue() bool {
	if !b.armed || b.intEnable&accelBitActivity == 0 {
		return false
	}
	return ticks.Diff(b.clock.Now(), b.armedAt) >= b.motionAfterMs
}

func (b *Bus) noteLaunch() {
	if !b.launched {
		b.launched = true
		b.launchAt = b.clock.Now()
	}
}

// accelSample is the canned flight: 1 g on the pad, a hard boost, then a
// near-zero coast. Values are raw LSB at 256 LSB/g.
func (b *Bus) accelSample() (x, y, z int16) {
	if !b.launched {
		return 0, 0, 256
	}
	dt := ticks.Diff(b.clock.Now(), b.launchAt)
	switch {
	case dt < 1500:
		return 30, -25, 2048
	case dt < 5000:
		return 4, -3, 24
	}
	return 0, 0, 256
}

// latchAtmosphere computes the profile at the current tick and loads the
// output registers in wire format (left-justified big-endian fields).
func (b *Bus) latchAtmosphere() {
	p, t := b.atmosphere()
	wireP := (p & 0xFFFFF) << 4
	b.out[0] = byte(wireP >> 16)
	b.out[1] = byte(wireP >> 8)
	b.out[2] = byte(wireP)
	wireT := uint16(t&0xFFF) << 4
	b.out[3] = byte(wireT >> 8)
	b.out[4] = byte(wireT)
}

func (b *Bus) atmosphere() (pressure uint32, temp int32) {
	if !b.launched {
		return basePressureRaw, baseTempRaw
	}
	dt := ticks.Diff(b.clock.Now(), b.launchAt)
	// Climb drops pressure roughly linearly over the short flight; cap well
	// above vacuum so the value stays a plausible 20-bit raw.
	drop := uint32(dt / 2)
	if drop > 300000 {
		drop = 300000
	}
	// Cools a little with altitude.
	cool := dt / 500
	if cool > 160 {
		cool = 160
	}
	return basePressureRaw - drop, baseTempRaw - cool
}

func putLE16(dst []byte, v int16) {
	dst[0] = byte(v)
	dst[1] = byte(uint16(v) >> 8)
}
