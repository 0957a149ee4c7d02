// Package timer implements the one-shot interval timer peripheral used both
// as the ZX-Printer emulator's encoder clock and the thermal driver's
// cooperative sleep/busy-hold primitive.
//
// No general-purpose timer driver was available to ground this package on
// line-for-line (see DESIGN.md); it follows the same register-file shape as
// soc/mcu/gpio and soc/mcu/uart instead: a clock-gated peripheral exposing a
// control register (counter-enable bit) and an auto-reload register,
// programmed in ticks derived from a fixed input clock.
package timer

import (
	"github.com/usbarmory/zxthermal/hal"
	"github.com/usbarmory/zxthermal/internal/reg"
)

const (
	cenBit = 0

	clockGateWidth = 0b11
)

// Peripheral is a one-shot timer bound to its control/auto-reload registers
// and clock gate. The zero value is not ready for use; call Init.
type Peripheral struct {
	ctrl *reg.Register32
	arr  *reg.Register32
	ccgr *reg.Register32
	cg   int

	tickHz uint32
}

var _ hal.Timer = (*Peripheral)(nil)

// Init binds the registers and the timer's input clock frequency in Hz.
// Panics on an unconfigured instance.
func (hw *Peripheral) Init(ctrl, arr, ccgr *reg.Register32, cg int, tickHz uint32) {
	if ctrl == nil || arr == nil || ccgr == nil || tickHz == 0 {
		panic("timer: invalid controller instance")
	}

	hw.ctrl = ctrl
	hw.arr = arr
	hw.ccgr = ccgr
	hw.cg = cg
	hw.tickHz = tickHz

	hw.ccgr.SetN(hw.cg, clockGateWidth, clockGateWidth)
}

// Start (re)arms the timer for periodUs microseconds and enables it. Per
// spec §9, the counter is disabled across the reload so a timer already
// running when Start is called restarts cleanly rather than racing its own
// expiry against the new auto-reload value.
func (hw *Peripheral) Start(periodUs uint32) {
	ticks := uint32(uint64(periodUs) * uint64(hw.tickHz) / 1000000)

	hw.ctrl.Clear(cenBit)
	hw.arr.Write(ticks)
	hw.ctrl.Set(cenBit)
}

// Stop disables the timer without otherwise changing its state.
func (hw *Peripheral) Stop() { hw.ctrl.Clear(cenBit) }

// Running reports whether the timer is currently counting.
func (hw *Peripheral) Running() bool { return hw.ctrl.Get(cenBit, 1) == 1 }
