package serial

import (
	"testing"

	"github.com/usbarmory/zxthermal/hal"
)

// fakeUSART is a minimal hal.USARTPeripheral with independently controllable
// readiness, for driving Transmit/Receive edge cases.
type fakeUSART struct {
	txReady bool
	txLog   []byte

	rxReady bool
	rxQueue []byte
}

var _ hal.USARTPeripheral = (*fakeUSART)(nil)

func (f *fakeUSART) TxReady() bool { return f.txReady }

func (f *fakeUSART) Tx(b byte) { f.txLog = append(f.txLog, b) }

func (f *fakeUSART) RxReady() bool { return f.rxReady && len(f.rxQueue) > 0 }

func (f *fakeUSART) Rx() byte {
	b := f.rxQueue[0]
	f.rxQueue = f.rxQueue[1:]
	return b
}

func newPort(t *testing.T, usart hal.USARTPeripheral) *Port {
	t.Helper()
	p := &Port{}
	p.Init(usart, make([]byte, 8), 8, make([]byte, 8), 8)
	return p
}

func TestTransmitDrainsWhenReady(t *testing.T) {
	u := &fakeUSART{txReady: true}
	p := newPort(t, u)

	p.Write([]byte{1, 2, 3})

	if more := p.Transmit(); more {
		t.Fatal("expected false: ring fully drained")
	}

	if len(u.txLog) != 3 {
		t.Fatalf("usart got %d bytes, want 3", len(u.txLog))
	}
}

func TestTransmitStopsWhenUSARTNotReady(t *testing.T) {
	u := &fakeUSART{txReady: false}
	p := newPort(t, u)

	p.Write([]byte{1, 2, 3})

	if more := p.Transmit(); !more {
		t.Fatal("expected true: bytes left, USART not ready")
	}

	if len(u.txLog) != 0 {
		t.Fatalf("usart got %d bytes, want 0", len(u.txLog))
	}
}

func TestReceiveDrainsIntoRing(t *testing.T) {
	u := &fakeUSART{rxReady: true, rxQueue: []byte{9, 8, 7}}
	p := newPort(t, u)

	if overrun := p.Receive(); overrun {
		t.Fatal("expected no overrun")
	}

	out := make([]byte, 3)
	if n := p.Read(out); n != 3 {
		t.Fatalf("read %d bytes, want 3", n)
	}
}

func TestReceiveReportsOverrunWhenRingFull(t *testing.T) {
	u := &fakeUSART{rxReady: true, rxQueue: make([]byte, 12)}
	p := &Port{}
	p.Init(u, make([]byte, 4), 4, make([]byte, 4), 4) // rx cap == 3

	if overrun := p.Receive(); !overrun {
		t.Fatal("expected overrun: USART has more data than ring capacity")
	}

	if p.RxAvailable() == false {
		t.Fatal("ring should hold the bytes it did accept")
	}
}

func TestWriteShortCountOnFullRing(t *testing.T) {
	p := &Port{}
	p.Init(&fakeUSART{}, make([]byte, 4), 4, make([]byte, 4), 4) // tx cap == 3

	if n := p.Write([]byte{1, 2, 3, 4, 5}); n != 3 {
		t.Fatalf("write returned %d, want 3 (short count on overflow)", n)
	}
}

func TestInitPanicsOnNilUSART(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil USART")
		}
	}()

	p := &Port{}
	p.Init(nil, make([]byte, 4), 4, make([]byte, 4), 4)
}
