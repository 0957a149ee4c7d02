package irq

import "testing"

func TestDispatchCallsBoundHandler(t *testing.T) {
	called := false
	Handle(WriteEdge, func() { called = true })

	Dispatch(WriteEdge)

	if !called {
		t.Fatal("expected bound handler to run")
	}
}

func TestDispatchPanicsWhenUnbound(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unbound vector")
		}
	}()

	Dispatch(ADC)
}

func TestHandlePanicsOnNilFunc(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil handler")
		}
	}()

	Handle(MotorTimer, nil)
}

func TestVectorNames(t *testing.T) {
	cases := map[Vector]string{
		MotorTimer:   "MotorTimer",
		WriteEdge:    "WriteEdge",
		PrinterTimer: "PrinterTimer",
		ADC:          "ADC",
		Vector(99):   "Unknown",
	}

	for v, want := range cases {
		if got := v.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", int(v), got, want)
		}
	}
}
