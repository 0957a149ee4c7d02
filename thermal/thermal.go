// Package thermal drives a thermal line-printer module over a serial
// command channel, pacing commands against the module's own busy state
// instead of against a fixed delay.
//
// Busy is asserted by PrintLine after every line and, once startup
// calibration has run, by an analog watchdog on the module's supply current,
// which also re-arms a short hold timer on every trip for as long as the
// current stays above the measured threshold. Busy is released only when
// that hold timer expires; PrintLine arms no timer of its own, so after a
// line busy stays asserted until the watchdog has tripped. The threshold
// itself is the midpoint between the idle current and the feed-motor current,
// both sampled during a fixed calibration sequence run once at Init.
package thermal

import (
	"runtime"
	"sync/atomic"

	"github.com/usbarmory/zxthermal/hal"
	"github.com/usbarmory/zxthermal/serial"
)

// Command bytes and settle windows, grounded on the original firmware's
// printer_init/printer_tim_handler sequence (printer.c). Settle windows are
// expressed in tenths of a millisecond, the same unit the original timer's
// prescaler was chosen to tick in; Driver converts to microseconds for
// hal.Timer.
const (
	powerUpSettleMs10  = 30000
	initSettleMs10     = 5000
	configSettleMs10   = 28
	idleMeasureMs10    = 5000
	feedMeasureMs10    = 5000
	busyHoldUs         = 100 // one tenth of a millisecond

	lineLen = 48
)

var (
	initCmd   = []byte{0x1B, 0x40}
	configCmd = []byte{0x1B, 0x37, 0x03, 0x70, 0x0C}
	feedCmd   = []byte{0x1B, 0x4A, 0x03}
	imageCmd  = []byte{0x12, 0x2A, 0x01, byte(lineLen)}
)

type state int32

const (
	stateInitializing state = iota
	stateMeasuringCurrentIdle
	stateMeasuringCurrentFeed
	stateOperating
)

// sleeper is the cooperative wait primitive used both to pace the
// calibration sequence and, in tests, to inject synthetic ADC activity at
// each wait point without a real concurrent interrupt source.
type sleeper interface {
	Sleep(periodUs uint32)
}

// timerSleeper arms a hal.Timer and spins the calling goroutine until its
// handler clears running, the same wfi-loop shape as the original firmware's
// printer_tim_sleep.
type timerSleeper struct {
	timer   hal.Timer
	running *atomicBool
}

func (s *timerSleeper) Sleep(periodUs uint32) {
	s.running.Store(true)
	s.timer.Start(periodUs)
	for s.running.Load() {
		runtime.Gosched()
	}
}

// atomicBool is a tiny typed wrapper over a uint32 so Driver's flags read
// clearly.
type atomicBool struct{ v uint32 }

func (b *atomicBool) Store(val bool) {
	if val {
		atomic.StoreUint32(&b.v, 1)
	} else {
		atomic.StoreUint32(&b.v, 0)
	}
}

func (b *atomicBool) Load() bool { return atomic.LoadUint32(&b.v) != 0 }

// Driver sequences commands to a thermal printer module and derives its
// busy state from measured current draw. The zero value is not ready for
// use; call Init.
type Driver struct {
	port     *serial.Port
	adc      hal.ADC
	adcCh    int
	timer    hal.Timer
	busyGPIO hal.GPIOPort
	busyMask uint32

	sleep sleeper

	busy         atomicBool
	timerRunning atomicBool
	state        int32 // atomic, one of the state constants

	idlePeak  uint32
	feedPeak  uint32
	threshold uint32
}

// Init binds the peripherals, runs the fixed startup calibration sequence
// (power-up settle, reset, configure, measure idle current, feed a line and
// measure current under load), arms the current watchdog at the computed
// threshold, and leaves the driver ready to accept PrintLine calls.
//
// Init blocks for the full duration of the calibration sequence; it is
// meant to be called once from the foreground loop before interrupts are
// otherwise relied on, not from inside an interrupt handler.
func (d *Driver) Init(port *serial.Port, adc hal.ADC, adcChannel int, timer hal.Timer, busyGPIO hal.GPIOPort, busyMask uint32) {
	if port == nil || adc == nil || timer == nil {
		panic("thermal: nil peripheral reference")
	}

	d.port = port
	d.adc = adc
	d.adcCh = adcChannel
	d.timer = timer
	d.busyGPIO = busyGPIO
	d.busyMask = busyMask

	if d.sleep == nil {
		d.sleep = &timerSleeper{timer: timer, running: &d.timerRunning}
	}

	d.setBusy(true)
	d.runCalibration()
}

func (d *Driver) setState(s state) { atomic.StoreInt32(&d.state, int32(s)) }
func (d *Driver) getState() state  { return state(atomic.LoadInt32(&d.state)) }

func (d *Driver) runCalibration() {
	d.setState(stateInitializing)
	d.sleep.Sleep(powerUpSettleMs10 * 100)

	d.transmit(initCmd)
	d.sleep.Sleep(initSettleMs10 * 100)

	d.transmit(configCmd)
	d.sleep.Sleep(configSettleMs10 * 100)

	d.setState(stateMeasuringCurrentIdle)
	d.adc.StartContinuous(d.adcCh)
	d.sleep.Sleep(idleMeasureMs10 * 100)

	d.setState(stateMeasuringCurrentFeed)
	d.transmit(feedCmd)
	d.sleep.Sleep(feedMeasureMs10 * 100)

	d.adc.StopContinuous()

	d.threshold = (d.idlePeak + d.feedPeak) / 2

	d.setState(stateOperating)
	d.adc.ArmWatchdog(d.adcCh, d.threshold)
	d.setBusy(false)
}

// Threshold returns the watchdog threshold computed at calibration, exposed
// mainly for tests; callers driving real hardware never need it.
func (d *Driver) Threshold() uint32 { return d.threshold }

func (d *Driver) transmit(data []byte) {
	for len(data) > 0 {
		data = data[d.port.Write(data):]
		for d.port.Transmit() {
			runtime.Gosched()
		}
	}
}

func (d *Driver) setBusy(v bool) {
	d.busy.Store(v)

	if d.busyGPIO == nil {
		return
	}

	if v {
		d.busyGPIO.SetBits(d.busyMask)
	} else {
		d.busyGPIO.ClearBits(d.busyMask)
	}
}

// Busy reports whether the module is currently considered busy.
func (d *Driver) Busy() bool { return d.busy.Load() }

// PrintLine blocks until the module is no longer busy, then transmits the
// image command followed by exactly one line's worth of column bytes
// (panicking if row is not lineLen bytes long), and marks the module busy
// again. Busy is cleared only by TimHandler in the operating state, when the
// hold timer that ADCHandler arms on each watchdog trip expires.
func (d *Driver) PrintLine(row []byte) {
	if len(row) != lineLen {
		panic("thermal: row must be exactly 48 bytes")
	}

	for d.busy.Load() {
		runtime.Gosched()
	}

	d.transmit(imageCmd)
	d.transmit(row)
	d.setBusy(true)
}

// TimHandler is the timer interrupt entry point. It panics if called while
// the driver believes no timer is running, mirroring the original firmware's
// printer_tim_handler invariant check on printer_tim_running.
func (d *Driver) TimHandler() {
	if !d.timerRunning.Load() {
		panic("thermal: timer handler fired while no timer was running")
	}

	if d.getState() == stateOperating {
		d.setBusy(false)
	}

	d.timerRunning.Store(false)
}

// ADCHandler is the ADC interrupt entry point. It checks the watchdog flag
// first (current over threshold: assert busy and (re)arm the hold timer)
// and, only when that flag is clear, the end-of-conversion flag (record a
// calibration sample), the same two-branch dispatch as the original
// printer_adc_handler.
func (d *Driver) ADCHandler() {
	if d.adc.StatusAWD() {
		if d.getState() == stateOperating {
			d.setBusy(true)
			d.timerRunning.Store(true)
			d.timer.Start(busyHoldUs)
		}

		d.adc.ClearAWD()
		return
	}

	if d.adc.StatusEOC() {
		sample := d.adc.Sample()

		switch d.getState() {
		case stateMeasuringCurrentIdle:
			if sample > d.idlePeak {
				d.idlePeak = sample
			}
		case stateMeasuringCurrentFeed:
			if sample > d.feedPeak {
				d.feedPeak = sample
			}
		}
	}
}
