// Package zxprinter emulates the ZX Printer host interface: a
// cycle-accurate encoder/paper-sense waveform generator that captures the
// 256-dot line a ZX Spectrum writes to the shared GPIO bus one bit at a
// time, synthesizing back-pressure on the host by stalling the emulated
// motor whenever a captured line has not yet been consumed.
//
// This is a direct port of the original firmware's zxprinter_* state
// machine (zxprinter.c/zxprinter.h and the write-edge variant ts.c wires
// up), generalized from the STM32 EXTI/timer peripherals it used onto the
// hal seam.
package zxprinter

import (
	"sync/atomic"

	"github.com/usbarmory/zxthermal/hal"
)

// Pin positions on the shared host-facing GPIO port (spec §6).
const (
	PinReady     = 7
	PinWrite     = 8
	PinStylus    = 9
	PinPaper     = 12
	PinEncoder   = 13
	PinMotorSlow = 14
	PinMotorOff  = 15
)

const (
	maskReady     = uint32(1) << PinReady
	maskStylus    = uint32(1) << PinStylus
	maskPaper     = uint32(1) << PinPaper
	maskEncoder   = uint32(1) << PinEncoder
	maskMotorSlow = uint32(1) << PinMotorSlow
	maskMotorOff  = uint32(1) << PinMotorOff
)

// Cycle geometry (spec §4.4, §6): one revolution is 420 steps, split into a
// 280-step on-paper span (12 left margin + 256 printable + 12 right margin)
// and a 140-step in-air span.
const (
	marginSteps  = 12
	lineSteps    = 256
	onPaperSteps = marginSteps*2 + lineSteps // 280
	inAirSteps   = 140
	cycleSteps   = onPaperSteps + inAirSteps // 420

	lineBytes = lineSteps / 8 // 32

	cycleMs           = 48
	stepPeriodUs      = cycleMs * 1000 / cycleSteps // ~114us
	halfStepPeriodUs  = stepPeriodUs / 2            // ~57us
)

func onPaper(step uint32) bool { return step < onPaperSteps }
func onLine(step uint32) bool  { return step >= marginSteps && step < marginSteps+lineSteps }

// advance returns the next cycle step, wrapping from cycleSteps back to 1
// rather than 0, so the steps visited are 1..cycleSteps and a full
// revolution is exactly cycleSteps rising ticks starting from the Init-time
// value cycleSteps.
func advance(step uint32) uint32 {
	if step == cycleSteps {
		return 1
	}
	return step + 1
}

// Emulator is the ZX-Printer host bus state machine. The zero value is not
// ready for use; call Init.
type Emulator struct {
	gpio hal.GPIOPort
	tim  hal.Timer

	clockStep  uint32
	clockLevel uint32

	cycleStep uint32

	lineBuf [lineBytes]byte

	linesIn  uint32 // atomic; written only by falling (ISR context)
	linesOut uint32 // atomic; written only by ReleaseLine (foreground context)
}

// Init binds the host-facing GPIO port and the motor timer, places the
// emulator in its initial in-air position (cycle_step == cycleSteps, so
// PAPER reads low on boot), and asserts READY.
func (e *Emulator) Init(gpio hal.GPIOPort, tim hal.Timer) {
	if gpio == nil || tim == nil {
		panic("zxprinter: nil peripheral reference")
	}

	e.gpio = gpio
	e.tim = tim
	e.cycleStep = cycleSteps
	e.clockStep = 0
	e.clockLevel = 0
	e.linesIn = 0
	e.linesOut = 0
	e.lineBuf = [lineBytes]byte{}

	e.gpio.SetBits(maskReady)
}

// TimHandler is the motor-timer interrupt entry point. It maintains the
// half-period clock counter and dispatches to the rising or falling phase
// handler on the clock edges that counter produces; with MOTOR_SLOW
// asserted, a level change consumes two ticks instead of one, halving the
// effective encoder rate without reprogramming the timer period.
func (e *Emulator) TimHandler() {
	shift := uint32(0)
	if e.gpio.Read()&maskMotorSlow != 0 {
		shift = 1
	}

	nextStep := e.clockStep + 1
	nextLevel := (nextStep >> shift) & 1

	switch {
	case nextLevel == 1 && e.clockLevel == 0:
		e.rising()
	case nextLevel == 0 && e.clockLevel == 1:
		e.falling()
	}

	e.clockStep = nextStep
	e.clockLevel = nextLevel
}

// rising runs at the start of a step: it advances cycle_step and raises the
// PAPER/ENCODER latches on the edges that enter those spans, unless the
// motor is held off or back-pressure is stalling the line-exit transition.
// It never suspends; a stalled advance is a no-op return, not a wait.
func (e *Emulator) rising() {
	if e.gpio.Read()&maskMotorOff != 0 {
		return
	}

	next := advance(e.cycleStep)

	if next == onPaperSteps && e.LinesOut() < e.LinesIn() {
		return // back-pressure: hold at the ON_RIGHT_MARGIN/IN_AIR boundary
	}

	prevOnPaper := onPaper(e.cycleStep)
	prevOnLine := onLine(e.cycleStep)

	e.cycleStep = next

	newOnPaper := onPaper(e.cycleStep)
	newOnLine := onLine(e.cycleStep)

	var set uint32
	if newOnPaper && !prevOnPaper {
		set |= maskPaper
	}
	if newOnLine && !prevOnLine {
		set |= maskEncoder
	}
	if set != 0 {
		e.gpio.SetBits(set)
	}
}

// falling runs at mid-step: on the printable line it samples STYLUS into
// line_buf, regardless of MOTOR_OFF, so the host can write while the motor
// is electrically off.
func (e *Emulator) falling() {
	if !onLine(e.cycleStep) {
		return
	}

	dot := e.cycleStep - marginSteps
	bit := byte(7 - (dot & 7))
	idx := dot >> 3

	if e.gpio.Read()&maskStylus != 0 {
		e.lineBuf[idx] |= 1 << bit
	} else {
		e.lineBuf[idx] &^= 1 << bit
	}

	if dot+1 == lineSteps {
		atomic.AddUint32(&e.linesIn, 1)
	}
}

// WriteHandler is the WRITE-edge interrupt entry point: it clears both
// output latches in one masked write (so a latch is cleared at most once
// per host write) and, if the motor is on and not already ticking, starts
// the motor timer.
func (e *Emulator) WriteHandler() {
	e.gpio.ClearBits(maskPaper | maskEncoder)

	if e.gpio.Read()&maskMotorOff == 0 && !e.tim.Running() {
		e.tim.Start(halfStepPeriodUs)
	}
}

// LineBuf returns a copy of the captured line buffer.
func (e *Emulator) LineBuf() [lineBytes]byte { return e.lineBuf }

// LinesIn returns the count of fully captured lines.
func (e *Emulator) LinesIn() uint32 { return atomic.LoadUint32(&e.linesIn) }

// LinesOut returns the count of lines the foreground has dispatched.
func (e *Emulator) LinesOut() uint32 { return atomic.LoadUint32(&e.linesOut) }

// ReleaseLine marks one more captured line as consumed, unblocking the
// back-pressure stall in rising once the emulator's cycle reaches the
// line-exit boundary again. Called only from the foreground, after
// print_line returns.
func (e *Emulator) ReleaseLine() { atomic.AddUint32(&e.linesOut, 1) }
