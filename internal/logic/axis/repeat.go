package axis

import (
	"fmt"
	"math/rand"

	"github.com/cjeanneret/ScanGo/internal/debug"
)

// RepeatResult summarizes one repeatability run.
type RepeatResult struct {
	TotalSteps   int   // total commanded travel across all movements
	Imperfection int   // final position minus steps actually needed to re-home
	Visited      []int // every position visited, starting at 0
}

// RepeatTest is a diagnostic for lost steps: home the axis, visit trials
// random in-range positions, then home again and compare the steps needed
// to get home with the position the axis believed it was at. A nonzero
// imperfection means the motor skipped or gained steps somewhere.
//
// The axis is homed three times up front so the run starts from a trusted
// zero rather than compounding a bad previous home.
func (a *Axis) RepeatTest(trials int) (*RepeatResult, error) {
	for i := 0; i < 3; i++ {
		if _, err := a.Home(); err != nil {
			return nil, fmt.Errorf("pre-test home %d: %w", i+1, err)
		}
	}

	// Stay 100 steps clear of both limits so the test never rams an end.
	if a.cfg.Max <= 200 {
		return nil, fmt.Errorf("axis %s: range %d too small for repeat test", a.cfg.Name, a.cfg.Max)
	}

	res := &RepeatResult{Visited: []int{0}}
	prev := 0
	last := 0
	for i := 0; i < trials; i++ {
		loc := 100 + rand.Intn(a.cfg.Max-200)
		res.TotalSteps += abs(loc - prev)
		prev = loc
		last = loc
		res.Visited = append(res.Visited, loc)
		if err := a.GoTo(loc, 0); err != nil {
			return nil, fmt.Errorf("repeat test move %d: %w", i+1, err)
		}
	}

	stepsToHome, err := a.Home()
	if err != nil {
		return nil, fmt.Errorf("post-test home: %w", err)
	}
	res.Imperfection = last - stepsToHome

	debug.Info("Axis %s repeat test: %d total steps over %d movements, homed in %d instead of %d (imperfection %d)",
		a.cfg.Name, res.TotalSteps, trials, stepsToHome, last, res.Imperfection)
	return res, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
