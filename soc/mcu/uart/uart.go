// Package uart implements the USART peripheral behind the thermal printer's
// serial link (8N1, see spec §6).
//
// Adapted from an NXP UART controller driver's register layout and setup
// sequence (disable both control registers, wait for software-reset
// deassertion, program the binary rate multiplier from the module clock,
// re-enable with 8-bit/no-parity framing). Hardware flow control, DMA, IR
// mode and the autobaud/escape-character fields that driver also covers are
// dropped: this link is a fixed 9600-baud, no-flow-control connection to a
// single downstream device, and none of those fields affect the bytes
// hal.USARTPeripheral moves.
package uart

import (
	"github.com/usbarmory/zxthermal/bits"
	"github.com/usbarmory/zxthermal/hal"
	"github.com/usbarmory/zxthermal/internal/reg"
)

// DefaultBaudrate is the thermal printer's fixed wire rate (spec §6).
const DefaultBaudrate = 9600

// Control/status bit positions, named after the register file this is
// adapted from.
const (
	ucr2SRST = 0
	ucr2RXEN = 1
	ucr2TXEN = 2
	ucr2WS   = 5

	ucr1UARTEN = 0

	utsTXFULL = 4
	usr2RDR   = 0

	clockGateWidth = 0b11
)

// Peripheral is a USART transceiver bound to its control/status/data
// registers. The zero value is not ready for use; call Init.
type Peripheral struct {
	URXD *reg.Register32
	UTXD *reg.Register32
	UTS  *reg.Register32
	USR2 *reg.Register32
	UCR1 *reg.Register32
	UCR2 *reg.Register32
	UBIR *reg.Register32
	UBMR *reg.Register32
	CCGR *reg.Register32
	CG   int

	// Clock returns the module's input clock in Hz.
	Clock func() uint32
	// Baudrate defaults to DefaultBaudrate when zero.
	Baudrate uint32
}

var _ hal.USARTPeripheral = (*Peripheral)(nil)

// Init validates the bound registers, enables the controller's clock gate,
// and runs the RS-232 setup sequence. Panics on an unconfigured instance.
func (hw *Peripheral) Init() {
	if hw.URXD == nil || hw.UTXD == nil || hw.UTS == nil || hw.USR2 == nil ||
		hw.UCR1 == nil || hw.UCR2 == nil || hw.UBIR == nil || hw.UBMR == nil ||
		hw.CCGR == nil || hw.Clock == nil {
		panic("uart: invalid controller instance")
	}

	if hw.Baudrate == 0 {
		hw.Baudrate = DefaultBaudrate
	}

	hw.CCGR.SetN(hw.CG, clockGateWidth, clockGateWidth)
	hw.setup()
}

func (hw *Peripheral) setup() {
	hw.UCR1.Write(0)
	hw.UCR2.Write(0)

	// The real controller this is adapted from makes the caller wait for
	// software-reset deassertion here; that is hardware reset timing out
	// of this firmware's scope (spec §1), so this pared-down setup moves
	// straight to programming the baud-rate divisor.

	// p3592-style binary rate multiplier: baudrate = clock / (16 * (UBMR+1) / (UBIR+1)).
	// UBIR is neutralized to 15 so UBMR alone selects the divisor.
	ubmr := hw.Clock() / (2 * hw.Baudrate)
	hw.UBIR.Write(15)
	hw.UBMR.Write(ubmr)

	var ucr2 uint32
	bits.Set(&ucr2, ucr2WS)
	bits.Set(&ucr2, ucr2TXEN)
	bits.Set(&ucr2, ucr2RXEN)
	bits.Set(&ucr2, ucr2SRST)
	hw.UCR2.Write(ucr2)

	hw.UCR1.Set(ucr1UARTEN)
}

// TxReady reports whether the transmit FIFO has room for another byte.
func (hw *Peripheral) TxReady() bool { return hw.UTS.Get(utsTXFULL, 1) == 0 }

// Tx writes a byte to the transmit data register.
func (hw *Peripheral) Tx(b byte) { hw.UTXD.Write(uint32(b)) }

// RxReady reports whether the receive data register holds an unread byte.
func (hw *Peripheral) RxReady() bool { return hw.USR2.Get(usr2RDR, 1) == 1 }

// Rx reads a byte from the receive data register.
func (hw *Peripheral) Rx() byte { return byte(hw.URXD.Get(0, 0xff)) }
