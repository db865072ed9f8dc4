package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/cjeanneret/ScanGo/internal/logic/geometry"
)

// checkpointVersion tags the on-disk schema. Bump it when the checkpoint
// layout changes; old files then fail loudly as corrupt instead of being
// misread into the wrong fields.
const checkpointVersion = 1

// ErrCheckpointCorrupt indicates the checkpoint file exists but can't be
// trusted: unreadable JSON, an unknown schema version, or an empty plan.
// Resume treats this as fatal; the operator must remove or inspect the file.
var ErrCheckpointCorrupt = errors.New("scan checkpoint is corrupt")

// Checkpoint is the durable artifact that crosses the restart boundary:
// the unvisited plan suffix plus the full session state.
type Checkpoint struct {
	Version int           `json:"version"`
	SavedAt time.Time     `json:"saved_at"`
	Plan    geometry.Plan `json:"plan"`
	Session *Session      `json:"session"`
}

// Store reads and writes the checkpoint at a fixed well-known path. The
// file's presence at startup is the sole resume trigger.
type Store struct {
	path string
}

// NewStore creates a store for the given checkpoint path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the checkpoint location.
func (s *Store) Path() string { return s.path }

// RetiredPath is where a completed scan's checkpoint is renamed to.
func (s *Store) RetiredPath() string { return s.path + ".old" }

// Save atomically writes the checkpoint: the record is marshaled to a temp
// file and renamed into place, so a crash mid-write can never leave a
// half-written checkpoint to poison the next startup.
func (s *Store) Save(plan geometry.Plan, session *Session) error {
	cp := Checkpoint{
		Version: checkpointVersion,
		SavedAt: time.Now(),
		Plan:    plan,
		Session: session,
	}

	data, err := json.MarshalIndent(&cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

// Load reads and validates the checkpoint. A missing file returns an error
// satisfying errors.Is(err, fs.ErrNotExist); anything unparseable or
// failing validation returns ErrCheckpointCorrupt.
func (s *Store) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCheckpointCorrupt, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckpointCorrupt, err)
	}
	if cp.Version != checkpointVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCheckpointCorrupt, cp.Version)
	}
	if len(cp.Plan) == 0 || cp.Session == nil {
		return nil, fmt.Errorf("%w: missing plan or session", ErrCheckpointCorrupt)
	}
	return &cp, nil
}

// Retire renames the checkpoint aside after a completed scan. The file is
// never deleted: the rename both prevents an unwanted resume on the next
// startup and leaves the final state around for inspection. A checkpoint
// that never existed (no failures during the scan) is not an error.
func (s *Store) Retire() error {
	err := os.Rename(s.path, s.RetiredPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
