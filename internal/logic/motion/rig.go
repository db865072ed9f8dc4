package motion

import (
	"errors"
	"fmt"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/hw/beeper"
	"github.com/cjeanneret/ScanGo/internal/logic/axis"
	"github.com/cjeanneret/ScanGo/internal/logic/geometry"
)

// Rig coordinates the four stage axes. It's the typed command surface
// between callers (scan engine, web handlers, tests) and the axis layer:
// every way of moving the stage goes through here.
type Rig struct {
	axes    *axis.Set
	beep    *beeper.Beeper
	readout *Readout
}

// NewRig creates the rig over an axis set. beep and readout may be nil.
func NewRig(axes *axis.Set, beep *beeper.Beeper, readout *Readout) *Rig {
	return &Rig{
		axes:    axes,
		beep:    beep,
		readout: readout,
	}
}

// Axes exposes the underlying axis set.
func (r *Rig) Axes() *axis.Set { return r.axes }

// Beeper returns the rig's beeper (nil-safe to use).
func (r *Rig) Beeper() *beeper.Beeper { return r.beep }

// Readout returns the position readout board, or nil.
func (r *Rig) Readout() *Readout { return r.readout }

// MoveTo drives the stage to the coordinate, one axis at a time in the
// fixed order X, Y, Z, R. An out-of-range destination on one axis is
// reported and that axis skipped; the others still move, so a scan with a
// misconfigured bound degrades instead of aborting. Any other movement
// error is fatal.
func (r *Rig) MoveTo(c geometry.Coordinate) (skipped []string, err error) {
	targets := []struct {
		ax   *axis.Axis
		dest int
	}{
		{r.axes.X, c.X},
		{r.axes.Y, c.Y},
		{r.axes.Z, c.Z},
		{r.axes.R, c.R},
	}

	for _, t := range targets {
		if err := t.ax.GoTo(t.dest, 0); err != nil {
			var oor *axis.OutOfRangeError
			if errors.As(err, &oor) {
				debug.Warn("skipping %s move: %v", t.ax.Name(), err)
				skipped = append(skipped, t.ax.Name())
				continue
			}
			return skipped, err
		}
	}
	return skipped, nil
}

// Jog moves one axis by a relative step count (sign gives direction) at its
// travel speed. Used by the operator to position the stage before setting
// scan bounds.
func (r *Rig) Jog(axisName string, steps int) error {
	ax := r.axes.ByName(axisName)
	if ax == nil {
		return fmt.Errorf("unknown axis %q", axisName)
	}
	dir := axis.Forward
	if steps < 0 {
		dir = axis.Backward
		steps = -steps
	}
	debug.Move(ax.Name(), steps, dir.String())
	return ax.Move(dir, steps, 0)
}

// HomeXYZ homes the three referenced axes in order. Rotation is never
// homed: it has no sensor, so its zero stays wherever the session fixed it.
func (r *Rig) HomeXYZ() error {
	for _, ax := range []*axis.Axis{r.axes.X, r.axes.Y, r.axes.Z} {
		debug.Live("Homing axis %s", ax.Name())
		if _, err := ax.Home(); err != nil {
			return err
		}
	}
	return nil
}
