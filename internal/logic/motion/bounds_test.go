package motion

import (
	"testing"
)

func TestBounds_Defaults(t *testing.T) {
	b := NewBounds(150, 150, 1, 8)
	p := b.Params()
	if p.X.Step != 150 || p.Y.Step != 150 || p.Z.Step != 1 || p.R.Step != 8 {
		t.Errorf("default steps = %d/%d/%d/%d", p.X.Step, p.Y.Step, p.Z.Step, p.R.Step)
	}
	if p.X.Min != 0 || p.X.Max != 0 {
		t.Errorf("X starts at [%d, %d], want [0, 0]", p.X.Min, p.X.Max)
	}
}

func TestBounds_SetAndSnapshot(t *testing.T) {
	b := NewBounds(150, 150, 1, 8)
	if err := b.SetMin("X", 100); err != nil {
		t.Fatalf("SetMin: %v", err)
	}
	if err := b.SetMax("X", 700); err != nil {
		t.Fatalf("SetMax: %v", err)
	}
	if err := b.SetStep("X", 50); err != nil {
		t.Fatalf("SetStep: %v", err)
	}

	p := b.Params()
	if p.X.Min != 100 || p.X.Max != 700 || p.X.Step != 50 {
		t.Errorf("X = %+v, want [100, 700] step 50", p.X)
	}

	// The snapshot is a copy; later changes don't leak into it.
	if err := b.SetMax("X", 900); err != nil {
		t.Fatalf("SetMax: %v", err)
	}
	if p.X.Max != 700 {
		t.Errorf("snapshot mutated: X max = %d", p.X.Max)
	}
}

func TestBounds_Validation(t *testing.T) {
	b := NewBounds(1, 1, 1, 1)
	if err := b.SetMin("W", 1); err == nil {
		t.Error("expected error for unknown axis")
	}
	if err := b.SetStep("X", 0); err == nil {
		t.Error("expected error for zero step")
	}
	if err := b.SetStep("X", -5); err == nil {
		t.Error("expected error for negative step")
	}
}

func TestMarkBound(t *testing.T) {
	b := NewBounds(150, 150, 1, 8)
	r := newTestRig(100, nil)

	if err := r.Jog("Y", 12); err != nil {
		t.Fatalf("Jog: %v", err)
	}
	if err := r.MarkBound(b, "Y", false); err != nil {
		t.Fatalf("MarkBound min: %v", err)
	}
	if err := r.Jog("Y", 60); err != nil {
		t.Fatalf("Jog: %v", err)
	}
	if err := r.MarkBound(b, "y", true); err != nil {
		t.Fatalf("MarkBound max: %v", err)
	}

	p := b.Params()
	if p.Y.Min != 12 || p.Y.Max != 72 {
		t.Errorf("Y = [%d, %d], want [12, 72]", p.Y.Min, p.Y.Max)
	}

	if err := r.MarkBound(b, "W", true); err == nil {
		t.Error("expected error for unknown axis")
	}
}
