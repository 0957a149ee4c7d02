// Package hal declares the hardware seam between this firmware's
// architecture-independent sequencing logic (ring, serial, thermal,
// zxprinter) and the concrete peripheral drivers in soc/mcu.
//
// Concrete drivers bind directly to real register addresses and only build
// under a bare-metal target; these interfaces let the sequencing logic
// above them be exercised with plain Go fakes in package tests.
package hal

// GPIOPort is a digital I/O port wide enough to hold every signal of one
// shared bus (the ZX-Printer host bus, or a single busy-status pin).
// Latched output bits are modeled as ordinary bits that the caller sets and
// clears explicitly, matching the set-only-latch discipline described in
// spec §4.4: nothing in this interface clears a bit except an explicit
// ClearBits call.
type GPIOPort interface {
	// Read returns the current input/output register value.
	Read() uint32
	// SetBits sets every bit in mask, leaving others untouched.
	SetBits(mask uint32)
	// ClearBits clears every bit in mask in a single read-modify-write,
	// leaving others untouched.
	ClearBits(mask uint32)
}

// Timer is a one-shot interval timer used both to drive the ZX-Printer
// encoder clock (free-running, half-step period) and as the thermal
// driver's cooperative sleep/busy-hold primitive (one-shot, rescheduled on
// every call to Start).
type Timer interface {
	// Start (re)arms the timer for the given period and enables it.
	Start(periodUs uint32)
	// Stop disables the timer without otherwise changing its state.
	Stop()
	// Running reports whether the timer is currently counting.
	Running() bool
}

// ADC is the analog-to-digital converter used by the thermal driver to
// measure printer current draw, both as discrete calibration samples and as
// a free-running watchdog once armed. Its shape mirrors the original
// firmware's printer_adc_handler, which demuxes a single status register
// read into an AWD (analog watchdog) branch and an EOC (end-of-conversion)
// branch.
type ADC interface {
	// StartContinuous begins free-running conversion on channel.
	StartContinuous(channel int)
	// StopContinuous halts free-running conversion.
	StopContinuous()
	// ArmWatchdog enables the analog watchdog on channel with the given
	// high threshold; the watchdog handler fires whenever a sample
	// exceeds it.
	ArmWatchdog(channel int, high uint32)
	// DisarmWatchdog disables the watchdog.
	DisarmWatchdog()
	// StatusAWD reports whether the watchdog flag is set.
	StatusAWD() bool
	// ClearAWD clears the watchdog flag.
	ClearAWD()
	// StatusEOC reports whether a conversion result is ready.
	StatusEOC() bool
	// Sample returns the most recent conversion result, clearing EOC as
	// a side effect (reading the data register clears EOC on real
	// hardware).
	Sample() uint32
}

// USARTPeripheral is the serial transceiver the serial package pumps bytes
// through. It never blocks: TxReady/RxReady report whether the FIFO/shift
// register can accept or already holds a byte.
type USARTPeripheral interface {
	TxReady() bool
	Tx(b byte)
	RxReady() bool
	Rx() byte
}
