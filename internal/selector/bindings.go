package selector

import (
	"reflect"

	"github.com/bakkerme/photoselector/internal/lifecycle"
	"github.com/bakkerme/photoselector/internal/selection"
)

type bindingKey struct {
	owner   lifecycle.Owner
	session selection.SessionID
}

// handleFor returns the session handle for one opening. Openings that share
// an owner and a session reuse a single bound handle, so the owner collects
// one pair of destroy callbacks per session instead of one per opening.
func (s *Selector) handleFor(owner lifecycle.Owner, id selection.SessionID) *selection.Handle {
	handle := s.registry.GetOrCreate(id)
	if !id.Enabled() || owner == nil {
		return handle
	}
	if !reflect.TypeOf(owner).Comparable() {
		return handle.Bind(owner)
	}

	key := bindingKey{owner: owner, session: id}
	s.bindMu.Lock()
	if bound, ok := s.bindings[key]; ok && !bound.Released() {
		s.bindMu.Unlock()
		return bound
	}
	s.bindings[key] = handle
	s.bindMu.Unlock()

	// registered unlocked: a closed owner runs callbacks inline
	handle.Bind(owner)
	owner.OnDestroy(func() { s.forgetBinding(key, handle) })
	return handle
}

func (s *Selector) forgetBinding(key bindingKey, handle *selection.Handle) {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	if s.bindings[key] == handle {
		delete(s.bindings, key)
	}
}
