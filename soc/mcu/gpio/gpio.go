// Package gpio implements the GPIO port controller backing the ZX-Printer
// host bus and the thermal driver's optional busy-status pin.
//
// Adapted from the register-file shape of an NXP GPIO controller driver
// (base data register, clock-gate register pair, Init panicking on an
// unconfigured instance): that driver exposed one Pin per GPIO number with
// Out/In/High/Low/Value methods, because its GPIO register is a 32-line
// bank where each caller owns a single line. This controller's host bus is
// instead one shared multi-signal word that the ZX-Printer emulator reads
// and writes as a whole (see hal.GPIOPort), so Controller operates on the
// whole data register instead of handing out per-pin handles.
package gpio

import (
	"github.com/usbarmory/zxthermal/hal"
	"github.com/usbarmory/zxthermal/internal/reg"
)

// Clock-gate field width, shared by every controller in this SoC family.
const clockGateWidth = 0b11

// Controller is a GPIO port bound to a data register and a clock-gate
// field. The zero value is not ready for use; call Init.
type Controller struct {
	data *reg.Register32
	ccgr *reg.Register32
	cg   int

	clk bool
}

var _ hal.GPIOPort = (*Controller)(nil)

// Init binds the data register this controller reads and writes, and the
// clock-gate register/field pair that must be enabled before the data
// register is valid. Panics if either register reference is nil, mirroring
// the teacher driver's "invalid GPIO controller instance" check.
func (c *Controller) Init(data, ccgr *reg.Register32, cg int) {
	if data == nil || ccgr == nil {
		panic("gpio: invalid controller instance")
	}

	c.data = data
	c.ccgr = ccgr
	c.cg = cg

	if !c.clk {
		c.ccgr.SetN(c.cg, clockGateWidth, clockGateWidth)
		c.clk = true
	}
}

// Read returns the full data register.
func (c *Controller) Read() uint32 { return c.data.Read() }

// SetBits sets every bit in mask in a single read-modify-write.
func (c *Controller) SetBits(mask uint32) { c.data.SetMask(mask) }

// ClearBits clears every bit in mask in a single read-modify-write.
func (c *Controller) ClearBits(mask uint32) { c.data.ClearMask(mask) }
