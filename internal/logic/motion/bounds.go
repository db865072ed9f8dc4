package motion

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/logic/geometry"
)

// Bounds collects operator-set scan limits. The workflow mirrors the
// original rig's panel: jog the stage to the edge of the sample, mark that
// position as a bound, repeat for every edge, then start the scan.
type Bounds struct {
	mu     sync.Mutex
	ranges map[string]*geometry.AxisRange
}

// NewBounds starts every axis at [0, 0] with the given default step sizes.
func NewBounds(xStep, yStep, zStep, rStep int) *Bounds {
	return &Bounds{
		ranges: map[string]*geometry.AxisRange{
			"X": {Step: xStep},
			"Y": {Step: yStep},
			"Z": {Step: zStep},
			"R": {Step: rStep},
		},
	}
}

// SetMin records v as the lower scan bound for the axis.
func (b *Bounds) SetMin(axisName string, v int) error {
	r, err := b.rangeFor(axisName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	r.Min = v
	b.mu.Unlock()
	debug.Info("Lower scan bound for %s set to %d", axisName, v)
	return nil
}

// SetMax records v as the upper scan bound for the axis.
func (b *Bounds) SetMax(axisName string, v int) error {
	r, err := b.rangeFor(axisName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	r.Max = v
	b.mu.Unlock()
	debug.Info("Upper scan bound for %s set to %d", axisName, v)
	return nil
}

// SetStep records the grid spacing for the axis.
func (b *Bounds) SetStep(axisName string, v int) error {
	if v <= 0 {
		return fmt.Errorf("step for %s must be > 0, got %d", axisName, v)
	}
	r, err := b.rangeFor(axisName)
	if err != nil {
		return err
	}
	b.mu.Lock()
	r.Step = v
	b.mu.Unlock()
	debug.Info("Step size for %s set to %d", axisName, v)
	return nil
}

// Params snapshots the current bounds as scan grid parameters.
func (b *Bounds) Params() geometry.Params {
	b.mu.Lock()
	defer b.mu.Unlock()
	return geometry.Params{
		X: *b.ranges["X"],
		Y: *b.ranges["Y"],
		Z: *b.ranges["Z"],
		R: *b.ranges["R"],
	}
}

func (b *Bounds) rangeFor(axisName string) (*geometry.AxisRange, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.ranges[axisName]
	if !ok {
		return nil, fmt.Errorf("unknown axis %q", axisName)
	}
	return r, nil
}

// MarkBound records the axis's current position as a scan bound.
// upper selects which end of the range is being set.
func (r *Rig) MarkBound(b *Bounds, axisName string, upper bool) error {
	ax := r.axes.ByName(axisName)
	if ax == nil {
		return fmt.Errorf("unknown axis %q", axisName)
	}
	if upper {
		return b.SetMax(ax.Name(), ax.Position())
	}
	return b.SetMin(ax.Name(), ax.Position())
}
