package selection

import (
	"sync"

	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/lifecycle"
)

// Handle ties a session record to the owner that opened it. Releasing the
// handle removes the record; after that the handle no longer reads or
// writes, so a commit arriving from a torn-down owner cannot bring the
// record back.
type Handle struct {
	registry *Registry
	id       SessionID

	mu       sync.Mutex
	released bool
}

func (h *Handle) SessionID() SessionID {
	return h.id
}

// Bind registers Release on the owner's destroy hook. A nil owner leaves
// the record alive until Release is called directly.
func (h *Handle) Bind(owner lifecycle.Owner) *Handle {
	if owner == nil || h.registry == nil {
		return h
	}
	owner.OnDestroy(h.Release)
	return h
}

func (h *Handle) Seed() ItemSet {
	if !h.live() {
		return ItemSet{}
	}
	return h.registry.Seed(h.id)
}

func (h *Handle) Commit(items []core.ItemID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.registry == nil || h.released {
		return
	}
	h.registry.Commit(h.id, items)
}

func (h *Handle) Contains(item core.ItemID) bool {
	if !h.live() {
		return false
	}
	return h.registry.Contains(h.id, item)
}

// Release removes the session record. Only the first call has an effect.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.registry == nil || h.released {
		return
	}
	h.released = true
	h.registry.Remove(h.id)
}

func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *Handle) live() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry != nil && !h.released
}
