package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cjeanneret/ScanGo/internal/logic/geometry"
	"github.com/cjeanneret/ScanGo/internal/logic/motion"
)

// ScanRequest carries operator-chosen scan parameters. Zero-valued fields
// fall back to the bounds marked via the jog/mark workflow and the config
// file's defaults.
type ScanRequest struct {
	SaveDir string `json:"save_dir,omitempty"`

	XMin  int `json:"x_min"`
	XMax  int `json:"x_max"`
	XStep int `json:"x_step"`
	YMin  int `json:"y_min"`
	YMax  int `json:"y_max"`
	YStep int `json:"y_step"`
	ZMin  int `json:"z_min"`
	ZMax  int `json:"z_max"`
	ZStep int `json:"z_step"`
	RMin  int `json:"r_min"`
	RMax  int `json:"r_max"`
	RStep int `json:"r_step"`
}

// Params converts the request to grid parameters, falling back to the
// marked bounds when the request carries no explicit ranges.
func (r *ScanRequest) Params(marked *motion.Bounds) geometry.Params {
	p := marked.Params()
	if r.XMax != 0 || r.XMin != 0 {
		p.X.Min, p.X.Max = r.XMin, r.XMax
	}
	if r.XStep > 0 {
		p.X.Step = r.XStep
	}
	if r.YMax != 0 || r.YMin != 0 {
		p.Y.Min, p.Y.Max = r.YMin, r.YMax
	}
	if r.YStep > 0 {
		p.Y.Step = r.YStep
	}
	if r.ZMax != 0 || r.ZMin != 0 {
		p.Z.Min, p.Z.Max = r.ZMin, r.ZMax
	}
	if r.ZStep > 0 {
		p.Z.Step = r.ZStep
	}
	if r.RMax != 0 || r.RMin != 0 {
		p.R.Min, p.R.Max = r.RMin, r.RMax
	}
	if r.RStep > 0 {
		p.R.Step = r.RStep
	}
	return p
}

// RunScanFunc starts a scan with the given request.
// It is called from the POST /scan handler in a goroutine.
type RunScanFunc func(ctx context.Context, req ScanRequest) error

// jogRequest is the POST /jog payload.
type jogRequest struct {
	Axis  string `json:"axis"`
	Steps int    `json:"steps"`
}

// markRequest is the POST /bounds/mark payload: record the named axis's
// current position as a scan bound.
type markRequest struct {
	Axis  string `json:"axis"`
	Upper bool   `json:"upper"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Rig         *motion.Rig
	Bounds      *motion.Bounds
	RunScan     RunScanFunc

	busyMu   sync.Mutex
	scanning bool
	staticFS fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If runScan is nil, POST /scan will return 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, rig *motion.Rig, bounds *motion.Bounds, runScan RunScanFunc, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Rig:         rig,
		Bounds:      bounds,
		RunScan:     runScan,
		staticFS:    staticFS,
	}
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandlePositions returns the current axis position readouts.
func (h *Handlers) HandlePositions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.Rig.Readout() == nil {
		json.NewEncoder(w).Encode(map[string]motion.Position{})
		return
	}
	json.NewEncoder(w).Encode(h.Rig.Readout().Snapshot())
}

// HandleBounds returns the currently marked scan bounds.
func (h *Handlers) HandleBounds(w http.ResponseWriter, r *http.Request) {
	p := h.Bounds.Params()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]geometry.AxisRange{
		"X": p.X, "Y": p.Y, "Z": p.Z, "R": p.R,
	})
}

// HandleJog nudges one axis by a relative step count.
func (h *Handlers) HandleJog(w http.ResponseWriter, r *http.Request) {
	var req jogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Steps == 0 {
		http.Error(w, "steps must be nonzero", http.StatusBadRequest)
		return
	}

	if !h.tryAcquire() {
		http.Error(w, "scan in progress", http.StatusConflict)
		return
	}
	defer h.release()

	if err := h.Rig.Jog(req.Axis, req.Steps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkBound records the current position of an axis as a scan bound.
func (h *Handlers) HandleMarkBound(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.Rig.MarkBound(h.Bounds, req.Axis, req.Upper); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHome homes X, Y and Z (never R — it has no reference sensor).
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	if !h.tryAcquire() {
		http.Error(w, "scan in progress", http.StatusConflict)
		return
	}

	go func() {
		defer h.release()
		if err := h.Rig.HomeXYZ(); err != nil {
			h.Broadcaster.Broadcast("error", "Homing failed: "+err.Error())
			log.Printf("homing failed: %v", err)
			return
		}
		h.Broadcaster.BroadcastMsg("Homing complete")
	}()

	w.WriteHeader(http.StatusAccepted)
}

// HandleScan handles POST /scan to start a scan.
func (h *Handlers) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if h.RunScan == nil {
		http.Error(w, "scanning not configured", http.StatusServiceUnavailable)
		return
	}

	if !h.tryAcquire() {
		http.Error(w, "scan already in progress", http.StatusConflict)
		return
	}

	go func() {
		defer h.release()
		ctx := context.Background()
		if err := h.RunScan(ctx, req); err != nil {
			h.Broadcaster.Broadcast("error", "Scan failed: "+err.Error())
			log.Printf("scan failed: %v", err)
		} else {
			h.Broadcaster.BroadcastMsg("Scan complete")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// tryAcquire claims the single motion/scan slot. Jogging while the engine
// owns the motors would corrupt position tracking, so every motion entry
// point funnels through here.
func (h *Handlers) tryAcquire() bool {
	h.busyMu.Lock()
	defer h.busyMu.Unlock()
	if h.scanning {
		return false
	}
	h.scanning = true
	return true
}

func (h *Handlers) release() {
	h.busyMu.Lock()
	h.scanning = false
	h.busyMu.Unlock()
}
