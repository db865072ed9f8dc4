package axis

import (
	"fmt"

	"github.com/cjeanneret/ScanGo/internal/debug"
)

// HomingTimeoutError reports that the limit switch never tripped within the
// bounded seek. The axis position is unreliable afterwards; callers must not
// scan without a successful home.
type HomingTimeoutError struct {
	Axis  string
	Steps int
}

func (e *HomingTimeoutError) Error() string {
	return fmt.Sprintf("axis %s: homing gave up after %d steps without the switch tripping", e.Axis, e.Steps)
}

// Home drives the axis toward its limit switch and establishes zero.
//
// The procedure is a two-phase state machine. Seeking: step backward one
// step at a time, bounded by Max plus a safety margin so a dead switch
// cannot spin the motor forever. On a debounced trip, confirm: retreat
// HomeOvershoot steps, then creep back one step at a time re-checking the
// switch. A re-trip within the creep bound means the first trip was real;
// the position is zeroed (after the HomeBackoff offset, when configured).
// No re-trip means the first read was a bounce, and seeking resumes.
//
// Returns the number of coarse seek steps taken, which the repeatability
// diagnostics compare against the distance that should have been traveled.
func (a *Axis) Home() (int, error) {
	if a.limit == nil {
		return 0, fmt.Errorf("axis %s has no homing reference", a.cfg.Name)
	}

	seekBound := a.cfg.Max + a.cfg.HomeSafetyMargin
	creepBound := a.cfg.HomeOvershoot + 50

	for i := 0; i < seekBound; i++ {
		pressed, err := a.limit.Pressed()
		if err != nil {
			return i, fmt.Errorf("axis %s: homing: %w", a.cfg.Name, err)
		}
		if pressed {
			confirmed, err := a.confirmHome(creepBound)
			if err != nil {
				return i, err
			}
			if confirmed {
				debug.Homing(a.cfg.Name, "switch confirmed after %d coarse steps", i)
				if a.cfg.HomeBackoff > 0 {
					// Sensor trips away from the true mechanical end;
					// settle at the real minimum before zeroing.
					if err := a.Move(Backward, a.cfg.HomeBackoff, a.cfg.HomeDelay); err != nil {
						return i, err
					}
				}
				a.position = 0
				a.notify()
				return i, nil
			}
			debug.Homing(a.cfg.Name, "trip at step %d was a bounce, reseeking", i)
		}
		if err := a.Move(Backward, 1, a.cfg.HomeDelay); err != nil {
			return i, err
		}
	}

	return seekBound, &HomingTimeoutError{Axis: a.cfg.Name, Steps: seekBound}
}

// confirmHome retreats from the switch and creeps back, reporting whether
// the switch re-trips within the bound.
func (a *Axis) confirmHome(creepBound int) (bool, error) {
	if err := a.Move(Forward, a.cfg.HomeOvershoot, a.cfg.HomeDelay); err != nil {
		return false, err
	}
	for j := 0; j < creepBound; j++ {
		pressed, err := a.limit.Pressed()
		if err != nil {
			return false, fmt.Errorf("axis %s: homing confirm: %w", a.cfg.Name, err)
		}
		if pressed {
			debug.Homing(a.cfg.Name, "re-tripped after %d of %d creep steps", j, creepBound)
			return true, nil
		}
		if err := a.Move(Backward, 1, a.cfg.HomeDelay); err != nil {
			return false, err
		}
	}
	return false, nil
}
