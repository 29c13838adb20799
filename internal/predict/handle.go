package predict

import (
	"errors"
	"sync"
	"sync/atomic"

	"pawlift/internal/feature"
	"pawlift/internal/logging"
)

// ErrClosed is returned by a handle after teardown.
var ErrClosed = errors.New("model handle closed")

// Handle is the process-wide access point for trained parameters: lazily
// loaded on first use, read-only to concurrent scorers, replaced only by an
// explicit, serialized hot-swap after full validation. Construct one in main
// and pass it down; it is not an ambient singleton.
type Handle struct {
	path   string
	schema *feature.Schema

	mu     sync.Mutex // serializes load and swap
	ptr    atomic.Pointer[Params]
	closed atomic.Bool
}

// NewHandle registers the artifact path without touching the file yet.
func NewHandle(path string, schema *feature.Schema) *Handle {
	if schema == nil {
		schema = feature.Builtin()
	}
	return &Handle{path: path, schema: schema}
}

// Params returns the loaded parameter set, loading it on first call.
// Concurrent callers see a fully validated set or an error, never a partial.
func (h *Handle) Params() (*Params, error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}
	if p := h.ptr.Load(); p != nil {
		return p, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return nil, ErrClosed
	}
	if p := h.ptr.Load(); p != nil {
		return p, nil
	}
	p, err := LoadParams(h.path, h.schema)
	if err != nil {
		return nil, err
	}
	h.ptr.Store(p)
	logging.Info("model_loaded", map[string]any{"path": h.path, "schema": p.SchemaVersion, "kinds": len(p.Kinds)})
	return p, nil
}

// Swap validates the artifact at path against the schema and atomically
// replaces the active set. Readers in flight keep the set they resolved.
func (h *Handle) Swap(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return ErrClosed
	}
	p, err := LoadParams(path, h.schema)
	if err != nil {
		return err
	}
	h.path = path
	h.ptr.Store(p)
	logging.Info("model_swapped", map[string]any{"path": path, "schema": p.SchemaVersion})
	return nil
}

// Close tears the handle down; later calls fail with ErrClosed.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed.Store(true)
	h.ptr.Store(nil)
}
