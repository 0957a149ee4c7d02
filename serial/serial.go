// Package serial implements the USART transport: a peripheral plus a pair
// of byte rings, with non-blocking pump routines callable from either the
// foreground or an interrupt handler.
//
// This is a direct port of the original firmware's serial device (see
// serial.c/serial.h): Port is "serial", Init is "serial_init", Write/Read
// are thin pass-throughs to the ring exactly as serial_write/serial_read
// are thin pass-throughs to circular_buf_write/circular_buf_read, and
// Transmit/Receive reproduce serial_transmit/serial_receive's return-value
// contract verbatim.
package serial

import (
	"github.com/usbarmory/zxthermal/hal"
	"github.com/usbarmory/zxthermal/ring"
)

// Port is a USART bound to a TX and an RX ring.
type Port struct {
	usart hal.USARTPeripheral
	tx    ring.Buffer
	rx    ring.Buffer
}

// Init binds usart and constructs the TX/RX rings over the supplied backing
// regions. Panics if usart is nil, mirroring serial_init's
// assert(usart != NULL).
func (p *Port) Init(usart hal.USARTPeripheral, txRegion []byte, txLen int, rxRegion []byte, rxLen int) {
	if usart == nil {
		panic("serial: nil USART peripheral")
	}

	p.usart = usart
	p.tx.Init(txRegion, txLen)
	p.rx.Init(rxRegion, rxLen)
}

// Write enqueues up to n bytes of src onto the TX ring, returning the
// number actually enqueued. A caller that gets back less than len(src) has
// overrun the ring; the lost bytes are not retried.
func (p *Port) Write(src []byte) (n int) {
	return p.tx.Write(src)
}

// Read dequeues up to len(dst) bytes from the RX ring.
func (p *Port) Read(dst []byte) (n int) {
	return p.rx.Read(dst)
}

// TxPending reports whether the TX ring currently holds unsent bytes.
func (p *Port) TxPending() bool {
	return !p.tx.IsEmpty()
}

// RxAvailable reports whether the RX ring currently holds unread bytes.
func (p *Port) RxAvailable() bool {
	return !p.rx.IsEmpty()
}

// Transmit pumps bytes from the TX ring into the USART while it reports
// ready. It returns true iff the TX ring still has bytes left to send,
// meaning the caller should leave TX-empty interrupts enabled to be called
// again; it returns false once the ring has been fully drained.
func (p *Port) Transmit() bool {
	for !p.tx.IsEmpty() {
		if !p.usart.TxReady() {
			return true
		}

		var b byte
		p.tx.ReadByte(&b)
		p.usart.Tx(b)
	}

	return false
}

// Receive pumps bytes from the USART into the RX ring while the USART
// reports data available. It returns true iff the USART still has a byte
// waiting but the RX ring is full (an overrun is imminent); it returns
// false once the USART has no more data.
func (p *Port) Receive() bool {
	for p.usart.RxReady() {
		if p.rx.IsFull() {
			return true
		}

		p.rx.WriteByte(p.usart.Rx())
	}

	return false
}
