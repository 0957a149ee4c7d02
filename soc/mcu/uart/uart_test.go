package uart

import (
	"testing"

	"github.com/usbarmory/zxthermal/internal/reg"
)

func newPeripheral(t *testing.T) *Peripheral {
	t.Helper()

	hw := &Peripheral{
		URXD: &reg.Register32{},
		UTXD: &reg.Register32{},
		UTS:  &reg.Register32{},
		USR2: &reg.Register32{},
		UCR1: &reg.Register32{},
		UCR2: &reg.Register32{},
		UBIR: &reg.Register32{},
		UBMR: &reg.Register32{},
		CCGR: &reg.Register32{},
		CG:   0,

		Clock: func() uint32 { return 24_000_000 },
	}

	hw.Init()
	return hw
}

func TestInitPanicsOnNilRegister(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil register reference")
		}
	}()

	(&Peripheral{}).Init()
}

func TestInitDefaultsBaudrateAndEnablesController(t *testing.T) {
	hw := newPeripheral(t)

	if hw.Baudrate != DefaultBaudrate {
		t.Fatalf("Baudrate = %d, want %d", hw.Baudrate, DefaultBaudrate)
	}

	if hw.UCR1.Get(ucr1UARTEN, 1) != 1 {
		t.Fatal("expected UARTEN set after Init")
	}
}

func TestTxReadyReflectsTxFull(t *testing.T) {
	hw := newPeripheral(t)

	if !hw.TxReady() {
		t.Fatal("expected TxReady with TXFULL clear")
	}

	hw.UTS.Set(utsTXFULL)
	if hw.TxReady() {
		t.Fatal("expected not ready with TXFULL set")
	}
}

func TestTxWritesDataRegister(t *testing.T) {
	hw := newPeripheral(t)

	hw.Tx(0x42)
	if hw.UTXD.Read() != 0x42 {
		t.Fatalf("UTXD = %#x, want 0x42", hw.UTXD.Read())
	}
}

func TestRxReadyAndRx(t *testing.T) {
	hw := newPeripheral(t)

	if hw.RxReady() {
		t.Fatal("expected not ready with RDR clear")
	}

	hw.USR2.Set(usr2RDR)
	hw.URXD.Write(0x37)

	if !hw.RxReady() {
		t.Fatal("expected ready with RDR set")
	}

	if got := hw.Rx(); got != 0x37 {
		t.Fatalf("Rx() = %#x, want 0x37", got)
	}
}
