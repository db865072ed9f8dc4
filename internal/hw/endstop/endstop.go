package endstop

import (
	"time"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/hw/gpio"
)

// Switch reads a limit switch wired active-low: the pin is pulled up and
// shorted to ground when the carriage presses the switch.
type Switch struct {
	gpio     gpio.Driver
	pin      int
	debounce time.Duration
}

// NewSwitch configures pin as a pulled-up input and returns the switch.
func NewSwitch(g gpio.Driver, pin int) *Switch {
	_ = g.SetupPin(pin, gpio.InputPullUp)
	return &Switch{
		gpio:     g,
		pin:      pin,
		debounce: 50 * time.Millisecond,
	}
}

// Pressed reports whether the switch is held down. A Low read is only
// trusted if a second read after the debounce interval agrees; mechanical
// switches bounce and the homing procedure calls this in a tight loop.
func (s *Switch) Pressed() (bool, error) {
	level, err := s.gpio.ReadPin(s.pin)
	if err != nil {
		return false, err
	}
	if level != gpio.Low {
		return false, nil
	}

	time.Sleep(s.debounce)

	level, err = s.gpio.ReadPin(s.pin)
	if err != nil {
		return false, err
	}
	pressed := level == gpio.Low
	if pressed {
		debug.Trace("Endstop: pin %d confirmed pressed", s.pin)
	}
	return pressed, nil
}
