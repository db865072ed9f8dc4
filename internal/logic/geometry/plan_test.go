package geometry

import (
	"testing"
)

func TestAxisRange_Points(t *testing.T) {
	pts, err := AxisRange{Min: 0, Max: 10, Step: 5}.Points()
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	want := []int{0, 5, 10}
	if len(pts) != len(want) {
		t.Fatalf("points = %v, want %v", pts, want)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("points[%d] = %d, want %d", i, pts[i], want[i])
		}
	}
}

func TestAxisRange_SinglePoint(t *testing.T) {
	// A zero-span axis still yields exactly one grid point.
	pts, err := AxisRange{Min: 0, Max: 0, Step: 1}.Points()
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if len(pts) != 1 || pts[0] != 0 {
		t.Errorf("points = %v, want [0]", pts)
	}
}

func TestAxisRange_StepPastMax(t *testing.T) {
	// Max not on the grid is simply not visited.
	pts, err := AxisRange{Min: 0, Max: 10, Step: 4}.Points()
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	want := []int{0, 4, 8}
	if len(pts) != len(want) {
		t.Fatalf("points = %v, want %v", pts, want)
	}
}

func TestAxisRange_InvalidStep(t *testing.T) {
	if _, err := (AxisRange{Min: 0, Max: 10, Step: 0}).Points(); err == nil {
		t.Error("expected error for zero step")
	}
	if _, err := (AxisRange{Min: 0, Max: 10, Step: -1}).Points(); err == nil {
		t.Error("expected error for negative step")
	}
}

func TestAxisRange_MaxBelowMin(t *testing.T) {
	if _, err := (AxisRange{Min: 10, Max: 0, Step: 1}).Points(); err == nil {
		t.Error("expected error for max < min")
	}
}

func singleZR() Params {
	return Params{
		Z: AxisRange{Min: 0, Max: 0, Step: 1},
		R: AxisRange{Min: 0, Max: 0, Step: 1},
	}
}

func TestDefineScan_Serpentine3x2(t *testing.T) {
	p := singleZR()
	p.X = AxisRange{Min: 0, Max: 2, Step: 1}
	p.Y = AxisRange{Min: 0, Max: 1, Step: 1}

	plan, err := DefineScan(p)
	if err != nil {
		t.Fatalf("DefineScan: %v", err)
	}

	want := []Coordinate{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
	if len(plan) != len(want) {
		t.Fatalf("plan length = %d, want %d", len(plan), len(want))
	}
	for i, c := range want {
		if plan[i] != c {
			t.Errorf("plan[%d] = %+v, want %+v", i, plan[i], c)
		}
	}
}

func TestDefineScan_LengthIsProductOfPointCounts(t *testing.T) {
	plan, err := DefineScan(Params{
		X: AxisRange{Min: 0, Max: 300, Step: 150}, // 3 points
		Y: AxisRange{Min: 0, Max: 150, Step: 150}, // 2 points
		Z: AxisRange{Min: 0, Max: 4, Step: 1},     // 5 points
		R: AxisRange{Min: 0, Max: 120, Step: 40},  // 4 points
	})
	if err != nil {
		t.Fatalf("DefineScan: %v", err)
	}
	if len(plan) != 3*2*5*4 {
		t.Errorf("plan length = %d, want %d", len(plan), 3*2*5*4)
	}
	if plan.Rotations() != 4 {
		t.Errorf("rotations = %d, want 4", plan.Rotations())
	}
	if plan.Heights() != 5 {
		t.Errorf("heights = %d, want 5", plan.Heights())
	}
}

func TestDefineScan_RowsAlternateDirection(t *testing.T) {
	p := singleZR()
	p.X = AxisRange{Min: 0, Max: 40, Step: 10} // 5 points
	p.Y = AxisRange{Min: 0, Max: 30, Step: 10} // 4 rows

	plan, err := DefineScan(p)
	if err != nil {
		t.Fatalf("DefineScan: %v", err)
	}

	rowLen := 5
	for row := 0; row < 4; row++ {
		first := plan[row*rowLen]
		last := plan[row*rowLen+rowLen-1]
		if row%2 == 0 {
			if first.X != 0 || last.X != 40 {
				t.Errorf("row %d should run forward, got first=%d last=%d", row, first.X, last.X)
			}
		} else {
			if first.X != 40 || last.X != 0 {
				t.Errorf("row %d should run reversed, got first=%d last=%d", row, first.X, last.X)
			}
		}
	}
}

func TestDefineScan_ConsecutiveRowsShareEdgeX(t *testing.T) {
	// The travel-minimization property: crossing a row boundary never
	// changes X, only Y.
	p := singleZR()
	p.X = AxisRange{Min: 0, Max: 20, Step: 10}
	p.Y = AxisRange{Min: 0, Max: 20, Step: 10}

	plan, err := DefineScan(p)
	if err != nil {
		t.Fatalf("DefineScan: %v", err)
	}

	rowLen := 3
	for row := 0; row < 2; row++ {
		lastOfRow := plan[row*rowLen+rowLen-1]
		firstOfNext := plan[(row+1)*rowLen]
		if lastOfRow.X != firstOfNext.X {
			t.Errorf("row %d→%d boundary moves X from %d to %d", row, row+1, lastOfRow.X, firstOfNext.X)
		}
	}
}

func TestDefineScan_ZReplicatesRaster(t *testing.T) {
	p := Params{
		X: AxisRange{Min: 0, Max: 1, Step: 1},
		Y: AxisRange{Min: 0, Max: 1, Step: 1},
		Z: AxisRange{Min: 0, Max: 2, Step: 1},
		R: AxisRange{Min: 0, Max: 0, Step: 1},
	}
	plan, err := DefineScan(p)
	if err != nil {
		t.Fatalf("DefineScan: %v", err)
	}
	rasterLen := 4
	if len(plan) != rasterLen*3 {
		t.Fatalf("plan length = %d, want %d", len(plan), rasterLen*3)
	}
	for z := 0; z < 3; z++ {
		for i := 0; i < rasterLen; i++ {
			got := plan[z*rasterLen+i]
			base := plan[i]
			if got.X != base.X || got.Y != base.Y {
				t.Errorf("z block %d entry %d = %+v, want raster %+v", z, i, got, base)
			}
			if got.Z != z {
				t.Errorf("z block %d entry %d has Z=%d", z, i, got.Z)
			}
		}
	}
}

func TestDefineScan_ROutermost(t *testing.T) {
	p := Params{
		X: AxisRange{Min: 0, Max: 1, Step: 1},
		Y: AxisRange{Min: 0, Max: 0, Step: 1},
		Z: AxisRange{Min: 0, Max: 1, Step: 1},
		R: AxisRange{Min: 0, Max: 80, Step: 80},
	}
	plan, err := DefineScan(p)
	if err != nil {
		t.Fatalf("DefineScan: %v", err)
	}
	// 2*1*2*2 = 8; first half R=0, second half R=80
	if len(plan) != 8 {
		t.Fatalf("plan length = %d, want 8", len(plan))
	}
	for i, c := range plan {
		wantR := 0
		if i >= 4 {
			wantR = 80
		}
		if c.R != wantR {
			t.Errorf("plan[%d].R = %d, want %d", i, c.R, wantR)
		}
	}
}
