// Package adc implements the analog-to-digital converter peripheral that
// senses the thermal printer's supply current, including the analog
// watchdog used to detect "current above threshold" without foreground
// polling.
//
// No ADC driver was available in the retrieved corpus to ground this
// package on line-for-line (see DESIGN.md); it follows the same
// register-file shape as soc/mcu/gpio, soc/mcu/uart and soc/mcu/timer: a
// clock-gated peripheral with control, status, threshold and data
// registers, matching the field names a typical single-threshold watchdog
// ADC exposes (CR1.AWDEN, CR2.ADON/CONT, SR.AWD/EOC, HTR, DR).
package adc

import (
	"github.com/usbarmory/zxthermal/hal"
	"github.com/usbarmory/zxthermal/internal/reg"
)

const (
	cr1AWDEN = 23

	cr2ADON = 0
	cr2CONT = 1

	srAWD = 0
	srEOC = 1

	channelWidth = 0b11111

	clockGateWidth = 0b11
)

// Peripheral is an ADC bound to its control/status/threshold/data registers
// and clock gate. The zero value is not ready for use; call Init.
type Peripheral struct {
	sr  *reg.Register32
	cr1 *reg.Register32
	cr2 *reg.Register32
	htr *reg.Register32
	dr  *reg.Register32
	sqr *reg.Register32

	ccgr *reg.Register32
	cg   int
}

var _ hal.ADC = (*Peripheral)(nil)

// Init binds the registers this peripheral operates on. Panics on an
// unconfigured instance.
func (hw *Peripheral) Init(sr, cr1, cr2, htr, dr, sqr, ccgr *reg.Register32, cg int) {
	if sr == nil || cr1 == nil || cr2 == nil || htr == nil || dr == nil || sqr == nil || ccgr == nil {
		panic("adc: invalid controller instance")
	}

	hw.sr = sr
	hw.cr1 = cr1
	hw.cr2 = cr2
	hw.htr = htr
	hw.dr = dr
	hw.sqr = sqr
	hw.ccgr = ccgr
	hw.cg = cg

	hw.ccgr.SetN(hw.cg, clockGateWidth, clockGateWidth)
}

// StartContinuous selects channel and begins free-running conversion.
func (hw *Peripheral) StartContinuous(channel int) {
	hw.sqr.SetN(0, channelWidth, uint32(channel))
	hw.cr2.Set(cr2CONT)
	hw.cr2.Set(cr2ADON)
}

// StopContinuous halts free-running conversion.
func (hw *Peripheral) StopContinuous() {
	hw.cr2.Clear(cr2CONT)
	hw.cr2.Clear(cr2ADON)
}

// ArmWatchdog selects channel, programs the high threshold, and enables the
// analog watchdog. Only a high threshold is used: OPERATING cares about
// current rising above idle, never about it falling below some floor.
func (hw *Peripheral) ArmWatchdog(channel int, high uint32) {
	hw.sqr.SetN(0, channelWidth, uint32(channel))
	hw.htr.Write(high)
	hw.cr1.Set(cr1AWDEN)
}

// DisarmWatchdog disables the analog watchdog.
func (hw *Peripheral) DisarmWatchdog() { hw.cr1.Clear(cr1AWDEN) }

// StatusAWD reports whether the watchdog flag is set.
func (hw *Peripheral) StatusAWD() bool { return hw.sr.Get(srAWD, 1) == 1 }

// ClearAWD clears the watchdog flag.
func (hw *Peripheral) ClearAWD() { hw.sr.Clear(srAWD) }

// StatusEOC reports whether a conversion result is ready.
func (hw *Peripheral) StatusEOC() bool { return hw.sr.Get(srEOC, 1) == 1 }

// Sample returns the latest conversion result. Reading the data register
// clears EOC on real hardware; this peripheral clears it explicitly to
// match.
func (hw *Peripheral) Sample() uint32 {
	v := hw.dr.Read()
	hw.sr.Clear(srEOC)
	return v
}
