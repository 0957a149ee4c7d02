// Package board is the top-level glue: it binds the ZX-Printer emulator's
// and thermal driver's interrupt handlers into the irq vector table and
// runs the foreground loop that couples a captured line to a printed one.
//
// This is a direct structural port of the original firmware's ts.c main:
// the same wfi-then-compare-counters loop, generalized from STM32 register
// names (RCC, AFIO, EXTI, NVIC) onto the hal/irq seam, since programming
// those exact peripherals is out of this firmware's scope (spec §1).
package board

import (
	"github.com/usbarmory/zxthermal/irq"
	"github.com/usbarmory/zxthermal/thermal"
	"github.com/usbarmory/zxthermal/zxprinter"
)

// IdleWaiter suspends the calling goroutine until an interrupt is pending,
// matching the teacher's arm64.CPU.WaitInterrupt (itself a wrapper around a
// "wfi" instruction); the foreground loop below has no other suspension
// point, per spec §5.
type IdleWaiter interface {
	WaitInterrupt()
}

// sourceDots and printDots are the ZX-Printer capture width and the thermal
// module's row width, in dots (spec §3, §4.3). They are not equal: the ZX
// Printer's 256-dot stylus line is narrower than the thermal head's 384-dot
// row, a mismatch present in the original sources themselves (ts.c declares
// a 48-byte line_buf it hands straight to printer_print_line, while
// zxprinter.h's own zxprinter_line_buf is 32 bytes/256 dots). Per spec §9's
// guidance not to blend incompatible variants, this repo treats the
// mismatch as the top-level glue's job to resolve, not the emulator's or
// the driver's: Board.expandLine nearest-neighbor scales the captured line
// up to the thermal row width before handing it to Driver.PrintLine.
const (
	sourceDots = 256
	printDots  = 384

	sourceBytes = sourceDots / 8 // 32
	printBytes  = printDots / 8  // 48
)

// Board wires one ZX-Printer emulator to one thermal driver and runs the
// foreground loop described in spec §4.5.
type Board struct {
	emu    *zxprinter.Emulator
	driver *thermal.Driver
	idle   IdleWaiter
}

// Init binds emu, driver and idle, and registers their interrupt handlers
// against the four vectors this board uses: the motor timer and WRITE edge
// drive the emulator, the printer timer and ADC drive the driver. Panics if
// any argument is nil.
func (b *Board) Init(emu *zxprinter.Emulator, driver *thermal.Driver, idle IdleWaiter) {
	if emu == nil || driver == nil || idle == nil {
		panic("board: nil component reference")
	}

	b.emu = emu
	b.driver = driver
	b.idle = idle

	irq.Handle(irq.MotorTimer, emu.TimHandler)
	irq.Handle(irq.WriteEdge, emu.WriteHandler)
	irq.Handle(irq.PrinterTimer, driver.TimHandler)
	irq.Handle(irq.ADC, driver.ADCHandler)
}

// Run is the foreground loop: suspend until woken, and if a line has been
// captured that has not yet been dispatched, print it and record it as
// dispatched. It never returns; callers that need to drive single
// iterations under test should use Service instead.
func (b *Board) Run() {
	for {
		b.Service()
	}
}

// Service runs exactly one foreground iteration: one suspend-then-check
// cycle. It is the unit Run loops on forever; tests drive it directly
// against a fake IdleWaiter to avoid an infinite loop.
func (b *Board) Service() {
	b.idle.WaitInterrupt()

	if b.emu.LinesIn() == b.emu.LinesOut() {
		return
	}

	line := b.emu.LineBuf()
	row := expandLine(line)
	b.driver.PrintLine(row[:])
	b.emu.ReleaseLine()
}

// expandLine nearest-neighbor scales a captured sourceDots-wide, 1-bit-per-
// dot line up to printDots wide: output dot i is sampled from source dot
// i*sourceDots/printDots, the same ratio (256:384 == 2:3) throughout the
// row so the scaling is uniform rather than concentrated at one edge.
func expandLine(src [sourceBytes]byte) [printBytes]byte {
	var dst [printBytes]byte

	for i := 0; i < printDots; i++ {
		s := i * sourceDots / printDots

		bit := src[s>>3]>>(7-uint(s&7))&1 != 0
		if bit {
			dst[i>>3] |= 1 << (7 - uint(i&7))
		}
	}

	return dst
}
