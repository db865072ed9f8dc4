package beeper

import (
	"time"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/hw/gpio"
)

// Beeper drives the audible status indicator. A nil *Beeper is valid and
// silent, so callers never need to check whether a beeper is configured.
type Beeper struct {
	gpio gpio.Driver
	pin  int
}

// NewBeeper configures the beep pin as an output.
// Returns nil if pin is 0 (no beeper wired).
func NewBeeper(g gpio.Driver, pin int) *Beeper {
	if pin <= 0 {
		return nil
	}
	_ = g.SetupPin(pin, gpio.Output)
	return &Beeper{gpio: g, pin: pin}
}

// Beep pulses the beeper: each repeat is half the duration on, half off.
func (b *Beeper) Beep(duration time.Duration, repeat int) {
	if b == nil {
		return
	}
	for i := 0; i < repeat; i++ {
		_ = b.gpio.WritePin(b.pin, gpio.High)
		time.Sleep(duration / 2)
		_ = b.gpio.WritePin(b.pin, gpio.Low)
		time.Sleep(duration / 2)
	}
}

// On starts a sustained alert tone. Used for the USB reconnect window,
// where the operator needs to hear it across the room.
func (b *Beeper) On() {
	if b == nil {
		return
	}
	debug.Trace("Beeper: sustained alert on")
	_ = b.gpio.WritePin(b.pin, gpio.High)
}

// Off silences a sustained alert.
func (b *Beeper) Off() {
	if b == nil {
		return
	}
	_ = b.gpio.WritePin(b.pin, gpio.Low)
}

// Startup plays the power-on pattern: two short beeps.
func (b *Beeper) Startup() {
	if b == nil {
		return
	}
	_ = b.gpio.WritePin(b.pin, gpio.High)
	time.Sleep(100 * time.Millisecond)
	_ = b.gpio.WritePin(b.pin, gpio.Low)
	time.Sleep(200 * time.Millisecond)
	_ = b.gpio.WritePin(b.pin, gpio.High)
	time.Sleep(100 * time.Millisecond)
	_ = b.gpio.WritePin(b.pin, gpio.Low)
}

// Completion plays the scan-finished pattern: five beeps.
func (b *Beeper) Completion() {
	b.Beep(400*time.Millisecond, 5)
}
