package camera

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/cjeanneret/ScanGo/internal/debug"
)

// FSWebcam captures through the fswebcam command-line tool, which talks to
// a USB video device. The device is unreliable: it can silently disconnect,
// making fswebcam either fail fast or hang. Every attempt therefore runs
// under a bounded wait, and a hang counts as a plain failed attempt.
type FSWebcam struct {
	resolution string
	timeout    time.Duration
}

// NewFSWebcam returns a capture service using the given resolution
// (e.g. "640x480") and per-attempt timeout.
func NewFSWebcam(resolution string, timeout time.Duration) *FSWebcam {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FSWebcam{
		resolution: resolution,
		timeout:    timeout,
	}
}

// Capture runs one fswebcam invocation targeting outputPath.
// The exit status is advisory only: the image file existing afterwards is
// what decides success, and its absence is ErrCaptureFailed.
func (f *FSWebcam) Capture(ctx context.Context, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "fswebcam", "-r", f.resolution, "--no-banner", "-q", outputPath)
	if err := cmd.Run(); err != nil {
		debug.Verbose("fswebcam exited with error: %v", err)
		// fall through: the file check is authoritative
	}

	if _, err := os.Stat(outputPath); err == nil {
		return nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w (attempt timed out after %v)", ErrCaptureFailed, f.timeout)
	}
	return ErrCaptureFailed
}
