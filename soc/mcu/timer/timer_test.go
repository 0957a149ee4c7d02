package timer

import (
	"testing"

	"github.com/usbarmory/zxthermal/internal/reg"
)

func newPeripheral(t *testing.T, tickHz uint32) *Peripheral {
	t.Helper()
	hw := &Peripheral{}
	hw.Init(&reg.Register32{}, &reg.Register32{}, &reg.Register32{}, 0, tickHz)
	return hw
}

func TestInitPanicsOnInvalidInstance(t *testing.T) {
	cases := []struct {
		name   string
		ctrl   *reg.Register32
		arr    *reg.Register32
		ccgr   *reg.Register32
		tickHz uint32
	}{
		{"nil ctrl", nil, &reg.Register32{}, &reg.Register32{}, 1000},
		{"nil arr", &reg.Register32{}, nil, &reg.Register32{}, 1000},
		{"nil ccgr", &reg.Register32{}, &reg.Register32{}, nil, 1000},
		{"zero tickHz", &reg.Register32{}, &reg.Register32{}, &reg.Register32{}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			(&Peripheral{}).Init(c.ctrl, c.arr, c.ccgr, 0, c.tickHz)
		})
	}
}

func TestStartArmsAndRunningReflectsCEN(t *testing.T) {
	hw := newPeripheral(t, 1_000_000) // 1 tick per microsecond

	if hw.Running() {
		t.Fatal("expected not running before Start")
	}

	hw.Start(57)

	if !hw.Running() {
		t.Fatal("expected running after Start")
	}
}

func TestStopClearsRunning(t *testing.T) {
	hw := newPeripheral(t, 1_000_000)

	hw.Start(57)
	hw.Stop()

	if hw.Running() {
		t.Fatal("expected not running after Stop")
	}
}

func TestStartProgramsAutoReloadInTicks(t *testing.T) {
	hw := newPeripheral(t, 2_000_000) // 2 ticks per microsecond

	hw.Start(100)

	if hw.arr.Read() != 200 {
		t.Fatalf("arr = %d, want 200", hw.arr.Read())
	}
}
