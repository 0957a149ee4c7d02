package gpio

import (
	"testing"

	"github.com/usbarmory/zxthermal/internal/reg"
)

func TestInitPanicsOnNilRegister(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil register reference")
		}
	}()

	c := &Controller{}
	c.Init(nil, &reg.Register32{}, 0)
}

func TestInitEnablesClockGateOnce(t *testing.T) {
	data := &reg.Register32{}
	ccgr := &reg.Register32{}

	c := &Controller{}
	c.Init(data, ccgr, 4)

	if ccgr.Get(4, clockGateWidth) != clockGateWidth {
		t.Fatal("expected clock gate field fully set after Init")
	}
}

func TestSetClearBits(t *testing.T) {
	data := &reg.Register32{}
	ccgr := &reg.Register32{}

	c := &Controller{}
	c.Init(data, ccgr, 0)

	c.SetBits(0b1010)
	if c.Read() != 0b1010 {
		t.Fatalf("Read() = %#b, want 0b1010", c.Read())
	}

	c.SetBits(0b0001)
	c.ClearBits(0b1000)
	if c.Read() != 0b0011 {
		t.Fatalf("Read() = %#b, want 0b0011", c.Read())
	}
}
