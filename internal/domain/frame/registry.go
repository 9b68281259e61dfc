package frame

import (
	"sync"

	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// Registry tracks which frames are currently attached to a live
// session. It is the liveness capability behind capture reuse: a
// capture whose originating frame is still registered here is still
// being displayed and must not be restored elsewhere.
type Registry struct {
	mu       sync.RWMutex
	attached map[id.FrameID]struct{}
}

// NewRegistry creates an empty frame registry.
func NewRegistry() *Registry {
	return &Registry{
		attached: make(map[id.FrameID]struct{}),
	}
}

// Attach records a frame as live.
func (r *Registry) Attach(frameID id.FrameID) {
	r.mu.Lock()
	r.attached[frameID] = struct{}{}
	r.mu.Unlock()
}

// Detach removes a frame. Detaching an unknown frame is a no-op.
func (r *Registry) Detach(frameID id.FrameID) {
	r.mu.Lock()
	delete(r.attached, frameID)
	r.mu.Unlock()
}

// IsAttached reports whether the frame is currently live.
func (r *Registry) IsAttached(frameID id.FrameID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.attached[frameID]
	return ok
}

// Count returns the number of attached frames.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attached)
}

// List returns the attached frame IDs.
func (r *Registry) List() []id.FrameID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]id.FrameID, 0, len(r.attached))
	for fid := range r.attached {
		ids = append(ids, fid)
	}
	return ids
}
