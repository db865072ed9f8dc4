package motion

import (
	"sync"
)

// Position is one axis readout entry.
type Position struct {
	Steps int `json:"steps"`
	Max   int `json:"max"`
}

// Readout is the displayed-position collaborator: axes push every position
// change into it, and the web layer reads snapshots out. It is the only
// place axis positions cross a goroutine boundary, so it takes the lock the
// single-threaded engine never needs.
type Readout struct {
	mu  sync.RWMutex
	pos map[string]Position
}

// NewReadout creates an empty readout board.
func NewReadout() *Readout {
	return &Readout{pos: make(map[string]Position)}
}

// Update records an axis position. Matches axis.PositionFunc.
func (b *Readout) Update(axisName string, position, max int) {
	b.mu.Lock()
	b.pos[axisName] = Position{Steps: position, Max: max}
	b.mu.Unlock()
}

// Snapshot returns a copy of all current readouts.
func (b *Readout) Snapshot() map[string]Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Position, len(b.pos))
	for k, v := range b.pos {
		out[k] = v
	}
	return out
}
