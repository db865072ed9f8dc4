package stepper

import (
	"testing"
	"time"

	"github.com/cjeanneret/ScanGo/internal/hw/gpio"
)

type pinWrite struct {
	pin   int
	level gpio.Level
}

// recordingDriver captures every GPIO operation for assertions.
type recordingDriver struct {
	setups map[int]gpio.PinMode
	writes []pinWrite
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{setups: make(map[int]gpio.PinMode)}
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error {
	d.setups[pin] = mode
	return nil
}

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	d.writes = append(d.writes, pinWrite{pin, level})
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) { return gpio.High, nil }
func (d *recordingDriver) Close() error                        { return nil }

func (d *recordingDriver) writesTo(pin int) []gpio.Level {
	var out []gpio.Level
	for _, w := range d.writes {
		if w.pin == pin {
			out = append(out, w.level)
		}
	}
	return out
}

func TestNewStepper_ConfiguresPins(t *testing.T) {
	d := newRecordingDriver()
	NewStepper(d, Config{StepPin: 16, DirPin: 18})

	if d.setups[16] != gpio.Output || d.setups[18] != gpio.Output {
		t.Errorf("setups = %v, want step and dir as outputs", d.setups)
	}
}

func TestNewStepper_EnablePinActiveByDefault(t *testing.T) {
	d := newRecordingDriver()
	NewStepper(d, Config{StepPin: 16, DirPin: 18, EnablePin: 22})

	if d.setups[22] != gpio.Output {
		t.Error("enable pin not configured as output")
	}
	// A4988 ENABLE is active low.
	got := d.writesTo(22)
	if len(got) != 1 || got[0] != gpio.Low {
		t.Errorf("enable pin writes = %v, want single Low", got)
	}
}

func TestPulse_ForwardSetsDirHigh(t *testing.T) {
	d := newRecordingDriver()
	s := NewStepper(d, Config{StepPin: 16, DirPin: 18})

	if err := s.Pulse(true, 3, time.Microsecond); err != nil {
		t.Fatalf("Pulse: %v", err)
	}

	dir := d.writesTo(18)
	if len(dir) != 1 || dir[0] != gpio.High {
		t.Errorf("dir writes = %v, want single High", dir)
	}
	steps := d.writesTo(16)
	want := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.High, gpio.Low}
	if len(steps) != len(want) {
		t.Fatalf("step writes = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step write %d = %v, want %v", i, steps[i], want[i])
		}
	}
}

func TestPulse_BackwardSetsDirLow(t *testing.T) {
	d := newRecordingDriver()
	s := NewStepper(d, Config{StepPin: 16, DirPin: 18})

	if err := s.Pulse(false, 1, time.Microsecond); err != nil {
		t.Fatalf("Pulse: %v", err)
	}
	dir := d.writesTo(18)
	if len(dir) != 1 || dir[0] != gpio.Low {
		t.Errorf("dir writes = %v, want single Low", dir)
	}
}

func TestPulse_ZeroSteps(t *testing.T) {
	d := newRecordingDriver()
	s := NewStepper(d, Config{StepPin: 16, DirPin: 18})

	if err := s.Pulse(true, 0, time.Microsecond); err != nil {
		t.Fatalf("Pulse: %v", err)
	}
	if len(d.writes) != 0 {
		t.Errorf("zero-step pulse wrote %v", d.writes)
	}
}

func TestEnableDisable(t *testing.T) {
	d := newRecordingDriver()
	s := NewStepper(d, Config{StepPin: 16, DirPin: 18, EnablePin: 22})

	if err := s.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if err := s.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	got := d.writesTo(22)
	want := []gpio.Level{gpio.Low, gpio.High, gpio.Low} // init, disable, enable
	if len(got) != len(want) {
		t.Fatalf("enable pin writes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("enable write %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEnableDisable_NoEnablePin(t *testing.T) {
	d := newRecordingDriver()
	s := NewStepper(d, Config{StepPin: 16, DirPin: 18})

	if err := s.Enable(); err != nil {
		t.Errorf("Enable without pin: %v", err)
	}
	if err := s.Disable(); err != nil {
		t.Errorf("Disable without pin: %v", err)
	}
	if len(d.writes) != 0 {
		t.Errorf("writes = %v, want none", d.writes)
	}
}
