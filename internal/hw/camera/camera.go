package camera

import (
	"context"
	"errors"
)

// ErrCaptureFailed indicates a single capture attempt produced no image,
// whether the capture process failed outright or exceeded its bounded wait.
// A disconnected USB camera surfaces as this error; the scan engine owns
// the retry/escalation policy.
var ErrCaptureFailed = errors.New("capture failed: no image produced")

// Camera is the high-level interface used by the rest of the application.
// It represents an abstract capture service, regardless of how it's
// controlled (USB subprocess, network protocol, etc.).
//
// Success is defined by an image file existing at outputPath after the call,
// never by the service's exit status alone.
type Camera interface {
	// Capture attempts to produce one image at outputPath.
	Capture(ctx context.Context, outputPath string) error
}
