package geometry

import (
	"fmt"
)

// Coordinate is one absolute (X, Y, Z, R) stage position, in steps.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
	R int `json:"r"`
}

// Plan is the ordered sequence of coordinates a scan visits. It is generated
// once per scan and immutable during execution; resume truncates it to the
// unvisited suffix, so the visiting order must stay stable forever.
type Plan []Coordinate

// AxisRange describes the sampled positions along one axis: every Step
// steps from Min through Max inclusive. Min == Max yields a single point.
type AxisRange struct {
	Min  int
	Max  int
	Step int
}

// Points expands the range into its ordered grid positions.
func (r AxisRange) Points() ([]int, error) {
	if r.Step <= 0 {
		return nil, fmt.Errorf("step must be > 0, got %d", r.Step)
	}
	if r.Max < r.Min {
		return nil, fmt.Errorf("max %d below min %d", r.Max, r.Min)
	}
	var pts []int
	for v := r.Min; v <= r.Max; v += r.Step {
		pts = append(pts, v)
	}
	return pts, nil
}

// Params bounds the scan volume.
type Params struct {
	X AxisRange
	Y AxisRange
	Z AxisRange
	R AxisRange
}

// DefineScan builds the full visiting order for a scan volume.
//
// The X-Y plane is walked as a serpentine raster: even-indexed Y rows visit
// X forward, odd-indexed rows reversed, so consecutive captures are always
// one step apart and the carriage never sweeps back across the stage. That
// raster is replicated once per Z height, and the X-Y-Z block once per
// rotation, giving the order (outermost to innermost) R, Z, Y row, X.
//
// The ordering is deliberate travel minimization, not an accident, and
// resume checkpoints index into it. Do not change it.
func DefineScan(p Params) (Plan, error) {
	xPts, err := p.X.Points()
	if err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	yPts, err := p.Y.Points()
	if err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}
	zPts, err := p.Z.Points()
	if err != nil {
		return nil, fmt.Errorf("z axis: %w", err)
	}
	rPts, err := p.R.Points()
	if err != nil {
		return nil, fmt.Errorf("r axis: %w", err)
	}

	plan := make(Plan, 0, len(xPts)*len(yPts)*len(zPts)*len(rPts))
	for _, r := range rPts {
		for _, z := range zPts {
			for yi, y := range yPts {
				if yi%2 == 0 {
					for _, x := range xPts {
						plan = append(plan, Coordinate{X: x, Y: y, Z: z, R: r})
					}
				} else {
					for xi := len(xPts) - 1; xi >= 0; xi-- {
						plan = append(plan, Coordinate{X: xPts[xi], Y: y, Z: z, R: r})
					}
				}
			}
		}
	}
	return plan, nil
}

// Rotations counts the distinct rotation positions in the plan. Image
// filenames embed it so a stack of views is self-describing.
func (p Plan) Rotations() int {
	seen := make(map[int]struct{})
	for _, c := range p {
		seen[c.R] = struct{}{}
	}
	return len(seen)
}

// Heights counts the distinct Z positions in the plan.
func (p Plan) Heights() int {
	seen := make(map[int]struct{})
	for _, c := range p {
		seen[c.Z] = struct{}{}
	}
	return len(seen)
}
