package lifecycle

import "sync"

// Owner is anything with a permanent end of life. Callbacks registered with
// OnDestroy run once, when the owner is torn down for good (not when it is
// merely paused or backgrounded).
type Owner interface {
	OnDestroy(fn func())
}

// Scope is an explicit Owner: closing it runs every registered callback
// exactly once, most recently registered first.
type Scope struct {
	name string

	mu        sync.Mutex
	callbacks []func()
	closed    bool
}

func NewScope(name string) *Scope {
	return &Scope{name: name}
}

func (s *Scope) Name() string {
	return s.name
}

// OnDestroy registers fn. If the scope is already closed fn runs immediately.
func (s *Scope) OnDestroy(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.callbacks = append(s.callbacks, fn)
	s.mu.Unlock()
}

// Close runs the registered callbacks. Later calls do nothing.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	callbacks := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	// callbacks run unlocked so they may register on or inspect the scope
	for i := len(callbacks) - 1; i >= 0; i-- {
		callbacks[i]()
	}
	return nil
}

func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
