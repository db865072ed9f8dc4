package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"context"

	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/hw/camera"
	"github.com/cjeanneret/ScanGo/internal/logic/geometry"
	"github.com/cjeanneret/ScanGo/internal/logic/motion"
)

// captureAttempts is the per-coordinate retry budget. Exhausting it means
// the camera needs the host to re-enumerate USB, which only a restart does.
const captureAttempts = 3

// progressInterval is how many coordinates pass between progress signals.
const progressInterval = 100

// ErrScanInterrupted is returned after the engine checkpoints and requests
// a restart. On real hardware the process dies shortly after; under test a
// fake restarter lets control return here.
var ErrScanInterrupted = errors.New("scan interrupted: checkpoint written, restart requested")

// Restarter requests a full host restart. Capture recovery crosses a
// restart boundary by design (a hung USB camera commonly needs the host to
// re-enumerate the bus), and injecting the capability keeps the escalation
// path testable without rebooting hardware.
type Restarter interface {
	Restart() error
}

// Params configures an Engine.
type Params struct {
	Settle time.Duration // mechanical settle pause before each capture

	// Confirm blocks until the operator acknowledges a completed scan,
	// so the rig is not torn down before images are verified present.
	// nil skips the gate (tests, web mode).
	Confirm func()
}

// Engine walks a scan plan: move, settle, capture, retry, and — when the
// capture device is beyond local recovery — checkpoint and restart.
type Engine struct {
	rig       *motion.Rig
	cam       camera.Camera
	store     *Store
	restarter Restarter
	params    Params
}

// NewEngine wires the execution engine.
func NewEngine(rig *motion.Rig, cam camera.Camera, store *Store, restarter Restarter, params Params) *Engine {
	if params.Settle <= 0 {
		params.Settle = 200 * time.Millisecond
	}
	return &Engine{
		rig:       rig,
		cam:       cam,
		store:     store,
		restarter: restarter,
		params:    params,
	}
}

// Summary reports a completed scan.
type Summary struct {
	Elapsed        time.Duration
	Images         int
	Restarts       int
	FailedCaptures []FailedCapture
}

// Run executes the plan in order with the given session state. The plan may
// be a fresh full grid or the suffix a checkpoint carried across a restart;
// the engine cannot tell the difference and must not need to.
func (e *Engine) Run(ctx context.Context, plan geometry.Plan, sess *Session) (*Summary, error) {
	if len(plan) == 0 {
		return nil, errors.New("empty scan plan")
	}

	rotations := plan.Rotations()
	debug.Plan(len(plan), rotations, plan.Heights())
	if sess.NumFailures > 0 {
		debug.Info("Scan has failed and restarted %d time(s) so far", sess.NumFailures)
	}

	for i, c := range plan {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if i%progressInterval == 0 {
			debug.Progress(len(plan)-i, sess.OriginalCount)
			e.rig.Beeper().Beep(600*time.Millisecond, 1)
		}

		folder := filepath.Join(sess.SaveDir, fmt.Sprintf("Z%04dR%03d", c.Z, c.R))
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return nil, fmt.Errorf("create output folder: %w", err)
		}

		if _, err := e.rig.MoveTo(c); err != nil {
			return nil, fmt.Errorf("move to coordinate %d: %w", i, err)
		}

		// Let mechanical vibration decay before opening the shutter.
		time.Sleep(e.params.Settle)

		name := fmt.Sprintf("X%04dY%04dZ%04dR%03dof%03d%s", c.X, c.Y, c.Z, c.R, rotations, sess.FileExt)
		if err := e.captureWithRetry(ctx, filepath.Join(folder, name), name, plan[i:], sess, c); err != nil {
			return nil, err
		}
	}

	return e.finish(sess)
}

// captureWithRetry attempts one capture up to the attempt budget. Attempts
// that fail or hang open the reconnect window (sustained alert, operator
// reseats the USB device) and retry; the final failure checkpoints the
// remaining work and escalates to a host restart.
func (e *Engine) captureWithRetry(ctx context.Context, path, name string, remaining geometry.Plan, sess *Session, c geometry.Coordinate) error {
	for attempt := 1; attempt <= captureAttempts; attempt++ {
		err := e.cam.Capture(ctx, path)
		if err == nil {
			if attempt > 1 {
				debug.Info("Capture recovered for %s on attempt %d", name, attempt)
			}
			debug.Capture(name, attempt)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt < captureAttempts {
			debug.Warn("Capture failed for %s (attempt %d of %d): %v", name, attempt, captureAttempts, err)
			debug.Warn("USB camera may be disconnected; reseat it within %v", sess.ReconnectTimeout())
			e.rig.Beeper().On()
			sleepCtx(ctx, sess.ReconnectTimeout())
			e.rig.Beeper().Off()
			continue
		}

		// Attempt budget exhausted: this run cannot recover.
		sess.NumFailures++
		sess.FailedCaptures = append(sess.FailedCaptures, FailedCapture{Name: name, Time: time.Now()})
		sess.RotationPos = c.R

		if saveErr := e.store.Save(remaining, sess); saveErr != nil {
			return fmt.Errorf("capture unrecoverable and checkpoint failed: %w", saveErr)
		}
		debug.Error(fmt.Errorf("capture unrecoverable for %s; checkpointed %d remaining coordinates, restarting", name, len(remaining)))

		if restartErr := e.restarter.Restart(); restartErr != nil {
			return fmt.Errorf("restart request failed: %w", restartErr)
		}
		return ErrScanInterrupted
	}
	return nil
}

// finish emits the completion summary, retires the checkpoint so it cannot
// re-trigger a resume, and holds for operator acknowledgment.
func (e *Engine) finish(sess *Session) (*Summary, error) {
	sum := &Summary{
		Elapsed:        time.Since(sess.OriginalStart),
		Images:         sess.OriginalCount,
		Restarts:       sess.NumFailures,
		FailedCaptures: sess.FailedCaptures,
	}

	debug.Summary("Scan Complete")
	debug.Info("Scan completed after %v: %d images, %d restart(s)", sum.Elapsed.Round(time.Second), sum.Images, sum.Restarts)
	for _, f := range sess.FailedCaptures {
		debug.Info("  failed capture: %s at %s", f.Name, f.Time.Format(time.RFC3339))
	}

	if err := e.store.Retire(); err != nil {
		return sum, fmt.Errorf("retire checkpoint: %w", err)
	}

	e.rig.Beeper().Completion()

	if e.params.Confirm != nil {
		debug.Info("Waiting for operator acknowledgment")
		e.params.Confirm()
	}
	return sum, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
