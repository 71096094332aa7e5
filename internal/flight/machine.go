package flight

import (
	"log"
	"time"

	"rocket-logger/internal/flightlog"
	"rocket-logger/internal/sensors/adxl343"
	"rocket-logger/internal/sensors/mpl3115a2"
	"rocket-logger/internal/ticks"
)

// Accelerometer is the slice of the ADXL343 driver the machine drives.
type Accelerometer interface {
	Init() error
	ReadAcceleration() (adxl343.Acceleration, error)
	EnableMotionDetection(threshold byte) error
	MotionDetected() bool
}

// Altimeter is the slice of the MPL3115A2 driver the machine drives.
type Altimeter interface {
	Init() error
	ReadAtmosphere() (mpl3115a2.Atmosphere, error)
}

// LogSink receives flight records; *flightlog.Writer is the real one.
type LogSink interface {
	Append(flightlog.Record) error
	Name() string
	Close() error
}

// OpenLog prepares a fresh log file. Called once, at the Armed->Logging
// transition.
type OpenLog func() (LogSink, error)

type Config struct {
	StandbyDuration time.Duration
	LoggingDuration time.Duration
	SampleInterval  time.Duration
	// MotionThreshold is in raw sensor LSB units.
	MotionThreshold byte
}

// Machine is the flight state machine. It owns all flight state and is
// driven by an external loop calling Step; everything it touches (sensors,
// clock, log) is injected, so a simulated bus or a test fake slots in
// unchanged.
//
// Single-owner, no locking: Step, Lamp and Close must be called from one
// goroutine.
type Machine struct {
	cfg   Config
	accel Accelerometer
	alti  Altimeter
	clock ticks.Clock
	open  OpenLog

	state     State
	enteredAt ticks.T
	blink     bool
	sched     *Scheduler
	sink      LogSink
}

func NewMachine(cfg Config, accel Accelerometer, alti Altimeter, clock ticks.Clock, open OpenLog) *Machine {
	return &Machine{
		cfg:       cfg,
		accel:     accel,
		alti:      alti,
		clock:     clock,
		open:      open,
		state:     StateBoot,
		enteredAt: clock.Now(),
		sched:     NewScheduler(int32(cfg.SampleInterval.Milliseconds())),
	}
}

// State returns the current flight state.
func (m *Machine) State() State { return m.state }

// Step evaluates the current state's guard exactly once and runs its
// transition action if the guard fires. Terminal states do nothing.
func (m *Machine) Step() {
	now := m.clock.Now()
	m.blink = !m.blink

	switch m.state {
	case StateBoot:
		if err := m.alti.Init(); err != nil {
			log.Printf("[%s] altimeter init failed: %v", m.state, err)
			m.setState(StateInitFail, now)
			return
		}
		if err := m.accel.Init(); err != nil {
			log.Printf("[%s] accelerometer init failed: %v", m.state, err)
			m.setState(StateInitFail, now)
			return
		}
		log.Printf("[%s] sensors initialized", m.state)
		m.setState(StateStandby, now)

	case StateStandby:
		if ticks.Diff(now, m.enteredAt) < int32(m.cfg.StandbyDuration.Milliseconds()) {
			return
		}
		if err := m.accel.EnableMotionDetection(m.cfg.MotionThreshold); err != nil {
			// Stay put and retry next iteration; arming is the one bus
			// operation with a natural retry point.
			log.Printf("[%s] arm motion detection failed: %v", m.state, err)
			return
		}
		m.setState(StateArmed, now)

	case StateArmed:
		if !m.accel.MotionDetected() {
			return
		}
		sink, err := m.open()
		if err != nil {
			log.Printf("[%s] log prepare failed: %v", m.state, err)
			m.setState(StateFault, now)
			return
		}
		m.sink = sink
		log.Printf("[%s] logging to %s", m.state, sink.Name())
		m.setState(StateLogging, now)
		m.sched.Start(now)

	case StateLogging:
		if m.sched.Due(now) {
			if err := m.logSample(now); err != nil {
				log.Printf("[%s] halting, sample failed: %v", m.state, err)
				m.closeSink()
				m.setState(StateFault, now)
				return
			}
		}
		if ticks.Diff(now, m.enteredAt) >= int32(m.cfg.LoggingDuration.Milliseconds()) {
			m.closeSink()
			m.setState(StatePostFlight, now)
		}
	}
}

// logSample reads both sensors and appends one row. Read errors are
// escalated here rather than logging a fabricated neutral row: a corrupted
// record stream is worse than stopping.
func (m *Machine) logSample(now ticks.T) error {
	atmo, err := m.alti.ReadAtmosphere()
	if err != nil {
		return err
	}
	accel, err := m.accel.ReadAcceleration()
	if err != nil {
		return err
	}
	return m.sink.Append(flightlog.Record{
		ElapsedMs:   ticks.Diff(now, m.enteredAt),
		PressureRaw: atmo.Pressure,
		TempRaw:     atmo.Temperature,
		AccelX:      accel.X,
		AccelY:      accel.Y,
		AccelZ:      accel.Z,
	})
}

// Close releases the log file if one is open, flushing buffered rows. For
// shutdown mid-Logging; harmless otherwise.
func (m *Machine) Close() {
	m.closeSink()
}

func (m *Machine) closeSink() {
	if m.sink == nil {
		return
	}
	if err := m.sink.Close(); err != nil {
		log.Printf("[%s] log close failed: %v", m.state, err)
	} else {
		log.Printf("[%s] log file closed", m.state)
	}
	m.sink = nil
}

func (m *Machine) setState(next State, now ticks.T) {
	if m.state == next {
		return
	}
	log.Printf("[%s] -> [%s]", m.state, next)
	m.state = next
	m.enteredAt = now
}
