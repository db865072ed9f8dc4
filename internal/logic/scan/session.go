package scan

import (
	"time"
)

// FailedCapture labels one unrecoverable capture: the image name that never
// materialized and when the attempt budget ran out.
type FailedCapture struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

// Session is the mutable run-time state of one scan. It lives in memory for
// the whole run and is only written to disk inside a checkpoint when a
// capture becomes unrecoverable; the resume loader then rehydrates it on the
// other side of the restart.
type Session struct {
	SaveDir           string `json:"save_location"`
	FileExt           string `json:"filetype"`
	Resolution        string `json:"resolution"`
	ReconnectTimeoutS int    `json:"reconnect_timeout_s"`

	NumFailures    int             `json:"num_failures"`
	FailedCaptures []FailedCapture `json:"failed_captures"`

	// OriginalCount and OriginalStart describe the pre-restart run, so
	// progress and the completion summary stay relative to the scan the
	// operator actually started.
	OriginalCount int       `json:"original_pics"`
	OriginalStart time.Time `json:"original_start"`

	// RotationPos is R at checkpoint time. Rotation has no sensor, so on
	// resume this value is trusted verbatim.
	RotationPos int `json:"r_location"`
}

// NewSession builds the state for a fresh scan over planLen coordinates.
func NewSession(saveDir, fileExt, resolution string, reconnect time.Duration, planLen int) *Session {
	return &Session{
		SaveDir:           saveDir,
		FileExt:           fileExt,
		Resolution:        resolution,
		ReconnectTimeoutS: int(reconnect / time.Second),
		OriginalCount:     planLen,
		OriginalStart:     time.Now(),
	}
}

// ReconnectTimeout is the operator window between failed capture attempts.
// Resumed sessions force it to zero: the first restart already spent the
// operator's patience, a second failure reboots immediately.
func (s *Session) ReconnectTimeout() time.Duration {
	return time.Duration(s.ReconnectTimeoutS) * time.Second
}
