package axis

import (
	"fmt"
	"time"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/hw/endstop"
	"github.com/cjeanneret/ScanGo/internal/hw/stepper"
)

// Direction of travel along an axis. Forward moves away from the home
// switch; Backward moves toward it.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// OutOfRangeError reports a destination outside an axis's valid range.
// The move is not attempted and the position is unchanged.
type OutOfRangeError struct {
	Axis string
	Dest int
	Min  int
	Max  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("axis %s: destination %d out of range [%d, %d]", e.Axis, e.Dest, e.Min, e.Max)
}

// PositionFunc receives position readout updates (e.g. for a display).
type PositionFunc func(axis string, position, max int)

// Config holds the kinematic parameters for one axis.
type Config struct {
	Name string

	// Max is the largest valid absolute position. For the rotation axis
	// this is the steps-per-revolution count.
	Max int

	TravelDelay time.Duration // inter-step delay for positioning moves
	HomeDelay   time.Duration // inter-step delay while homing

	// HomeOvershoot is the retreat distance for the debounce-confirm pass.
	HomeOvershoot int
	// HomeSafetyMargin extends the bounded seek past Max so homing always
	// terminates even if the switch never trips.
	HomeSafetyMargin int
	// HomeBackoff moves past the switch after confirming home, for axes
	// whose sensor trips away from the true mechanical end (Z).
	HomeBackoff int
}

// Axis owns the absolute step-counted position of one degree of freedom.
// Position is only meaningful after homing (or, for rotation, after the
// session start fixes a zero by convention).
type Axis struct {
	cfg      Config
	motor    *stepper.Stepper
	limit    *endstop.Switch // nil when the axis has no homing reference
	position int
	onPos    PositionFunc
}

// New creates an axis over a motor and an optional limit switch.
// onPos may be nil.
func New(motor *stepper.Stepper, limit *endstop.Switch, cfg Config, onPos PositionFunc) *Axis {
	if cfg.HomeOvershoot <= 0 {
		cfg.HomeOvershoot = 300
	}
	if cfg.HomeSafetyMargin <= 0 {
		cfg.HomeSafetyMargin = 200
	}
	return &Axis{
		cfg:   cfg,
		motor: motor,
		limit: limit,
		onPos: onPos,
	}
}

// Name returns the axis label (X, Y, Z, R).
func (a *Axis) Name() string { return a.cfg.Name }

// Max returns the largest valid absolute position.
func (a *Axis) Max() int { return a.cfg.Max }

// Position returns the current absolute position in steps.
func (a *Axis) Position() int { return a.position }

// SetPosition overwrites the tracked position without moving. The resume
// loader uses this for rotation, whose persisted position must be trusted
// verbatim because there is no sensor to verify against.
func (a *Axis) SetPosition(p int) {
	a.position = p
	a.notify()
}

// CanHome reports whether the axis has a limit switch to home against.
func (a *Axis) CanHome() bool { return a.limit != nil }

// Move issues steps discrete pulses in the given direction with the given
// inter-step delay, then updates the tracked position. A zero delay means
// the axis's configured travel delay.
func (a *Axis) Move(dir Direction, steps int, delay time.Duration) error {
	if steps <= 0 {
		return nil
	}
	if delay <= 0 {
		delay = a.cfg.TravelDelay
	}
	if err := a.motor.Pulse(dir == Forward, steps, delay); err != nil {
		return fmt.Errorf("axis %s: move: %w", a.cfg.Name, err)
	}
	if dir == Forward {
		a.position += steps
	} else {
		a.position -= steps
	}
	a.notify()
	return nil
}

// GoTo moves the axis to the absolute destination. Destinations outside
// [min, Max] fail with OutOfRangeError before any movement. Calling GoTo
// twice with the same destination issues zero steps the second time.
func (a *Axis) GoTo(dest, min int) error {
	if dest < min || dest > a.cfg.Max {
		return &OutOfRangeError{Axis: a.cfg.Name, Dest: dest, Min: min, Max: a.cfg.Max}
	}

	delta := dest - a.position
	if delta == 0 {
		return nil
	}

	dir := Forward
	if delta < 0 {
		dir = Backward
		delta = -delta
	}
	debug.Move(a.cfg.Name, delta, dir.String())
	return a.Move(dir, delta, a.cfg.TravelDelay)
}

func (a *Axis) notify() {
	if a.onPos != nil {
		a.onPos(a.cfg.Name, a.position, a.cfg.Max)
	}
}

// Set groups the four rig axes. It is passed by reference into the motion
// layer and the scan engine; there are no ambient position globals.
type Set struct {
	X *Axis
	Y *Axis
	Z *Axis
	R *Axis
}

// All returns the axes in the fixed movement order X, Y, Z, R.
func (s *Set) All() []*Axis {
	return []*Axis{s.X, s.Y, s.Z, s.R}
}

// ByName returns the named axis, or nil.
func (s *Set) ByName(name string) *Axis {
	switch name {
	case "X", "x":
		return s.X
	case "Y", "y":
		return s.Y
	case "Z", "z":
		return s.Z
	case "R", "r":
		return s.R
	}
	return nil
}
