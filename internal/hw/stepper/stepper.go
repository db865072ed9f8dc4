package stepper

import (
	"time"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/hw/gpio"
)

// Config holds the hardware configuration for a stepper motor.
type Config struct {
	StepPin   int
	DirPin    int
	EnablePin int // A4988 ENABLE pin. 0 = not used. Active LOW (LOW=enabled).
}

// Stepper issues raw STEP/DIR pulses for one motor. It has no notion of
// absolute position; that bookkeeping lives in the axis layer.
type Stepper struct {
	gpio gpio.Driver
	cfg  Config
}

// NewStepper creates a new stepper motor controller.
func NewStepper(g gpio.Driver, cfg Config) *Stepper {
	_ = g.SetupPin(cfg.StepPin, gpio.Output)
	_ = g.SetupPin(cfg.DirPin, gpio.Output)

	s := &Stepper{
		gpio: g,
		cfg:  cfg,
	}

	// A4988 ENABLE: active LOW. LOW = enabled, HIGH = disabled.
	if cfg.EnablePin > 0 {
		_ = g.SetupPin(cfg.EnablePin, gpio.Output)
		_ = g.WritePin(cfg.EnablePin, gpio.Low) // enable by default
	}

	return s
}

// Pulse moves the motor by steps discrete pulses in the given direction,
// waiting delay between each step. forward sets the DIR pin HIGH.
// Each pulse is a synchronous HIGH/delay/LOW cycle: the rig's timing model
// is a blocking timed loop, there is nothing else to yield to mid-move.
func (s *Stepper) Pulse(forward bool, steps int, delay time.Duration) error {
	if steps <= 0 {
		return nil
	}

	dirLevel := gpio.Low
	direction := "backward"
	if forward {
		dirLevel = gpio.High
		direction = "forward"
	}

	debug.Trace("Stepper: %d steps (%s) on pin %d", steps, direction, s.cfg.StepPin)

	if err := s.gpio.WritePin(s.cfg.DirPin, dirLevel); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if err := s.gpio.WritePin(s.cfg.StepPin, gpio.High); err != nil {
			return err
		}
		time.Sleep(delay)
		if err := s.gpio.WritePin(s.cfg.StepPin, gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

// Enable turns on the motor driver (A4988 ENABLE=LOW). Motors hold position.
func (s *Stepper) Enable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.Low)
}

// Disable turns off the motor driver (A4988 ENABLE=HIGH). Motors freewheel,
// no holding torque. Use during capture to reduce vibration.
func (s *Stepper) Disable() error {
	if s.cfg.EnablePin <= 0 {
		return nil
	}
	return s.gpio.WritePin(s.cfg.EnablePin, gpio.High)
}
