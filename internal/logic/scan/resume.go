package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/logic/motion"
)

// Loader re-enters an interrupted scan on process start.
type Loader struct {
	store  *Store
	rig    *motion.Rig
	engine *Engine
}

// NewLoader wires the resume path.
func NewLoader(store *Store, rig *motion.Rig, engine *Engine) *Loader {
	return &Loader{
		store:  store,
		rig:    rig,
		engine: engine,
	}
}

// Resume checks for a durable checkpoint and, if one exists, reconstructs
// the engine state and runs the remaining plan. Returns resumed=false with
// no error when there is nothing to resume (the normal idle startup).
//
// A checkpoint that exists but fails to load is fatal: resuming from a
// half-trusted record would scan the wrong suffix silently, so the operator
// must inspect or remove the file instead.
func (l *Loader) Resume(ctx context.Context) (resumed bool, sum *Summary, err error) {
	cp, err := l.store.Load()
	if errors.Is(err, fs.ErrNotExist) {
		debug.Info("No interrupted scans found. Welcome to the scanner.")
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("checkpoint at %s: %w", l.store.Path(), err)
	}

	sess := cp.Session
	debug.Summary("Resuming Interrupted Scan")
	debug.Info("Checkpoint from %s: %d of %d coordinates remaining, %d failure(s) so far",
		cp.SavedAt.Format("2006-01-02 15:04:05"), len(cp.Plan), sess.OriginalCount, sess.NumFailures)

	// No retry grace on a resumed run: a second failure restarts at once.
	sess.ReconnectTimeoutS = 0

	if err := l.rig.HomeXYZ(); err != nil {
		return true, nil, fmt.Errorf("re-home before resume: %w", err)
	}

	// Rotation has no sensor to home against. If the rig was physically
	// disturbed while the machine was down, this position is wrong and
	// nothing can detect it — tell the operator rather than trust silently.
	l.rig.Axes().R.SetPosition(sess.RotationPos)
	debug.Warn("Rotation position restored as %d from checkpoint; it cannot be verified against any reference", sess.RotationPos)

	sum, err = l.engine.Run(ctx, cp.Plan, sess)
	return true, sum, err
}
