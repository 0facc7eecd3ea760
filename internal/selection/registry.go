package selection

import (
	"log/slog"
	"sync"

	"github.com/bakkerme/photoselector/internal/core"
)

// SessionID scopes one deduplication space. Callers that want independent
// spaces pass distinct ids; callers sharing a space pass the same one.
type SessionID int

// Disabled turns deduplication off for an invocation: nothing is stored and
// nothing is looked up.
const Disabled SessionID = -1

func (s SessionID) Enabled() bool {
	return s != Disabled
}

// Registry remembers, per session, the items confirmed by the most recent
// completed selection. It is in-memory only and safe for concurrent use.
type Registry struct {
	logger *slog.Logger

	mu      sync.Mutex
	records map[SessionID]ItemSet
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		records: map[SessionID]ItemSet{},
	}
}

// GetOrCreate makes sure a record exists for id, keeping whatever is already
// stored, and returns a new handle for the caller to bind to its owner.
// The sentinel yields a handle that does nothing.
func (r *Registry) GetOrCreate(id SessionID) *Handle {
	if !id.Enabled() {
		return &Handle{id: id}
	}
	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.records[id] = ItemSet{}
		r.logger.Debug("selection record created", "session_id", int(id))
	}
	r.mu.Unlock()
	return &Handle{registry: r, id: id}
}

// Seed returns a copy of the stored selection, empty when there is none.
func (r *Registry) Seed(id SessionID) ItemSet {
	if !id.Enabled() {
		return ItemSet{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ItemSet{}
	}
	return record.clone()
}

// Commit replaces the stored selection for id with items. Items dropped from
// the new selection are forgotten.
func (r *Registry) Commit(id SessionID, items []core.ItemID) {
	if !id.Enabled() {
		return
	}
	record := NewItemSet(items...)
	r.mu.Lock()
	r.records[id] = record
	r.mu.Unlock()
	r.logger.Debug("selection committed", "session_id", int(id), "count", record.Len())
}

// Remove deletes the record for id if present.
func (r *Registry) Remove(id SessionID) {
	if !id.Enabled() {
		return
	}
	r.mu.Lock()
	_, ok := r.records[id]
	delete(r.records, id)
	r.mu.Unlock()
	if ok {
		r.logger.Debug("selection record removed", "session_id", int(id))
	}
}

// Contains reports whether item was part of the last confirmed selection
// for id.
func (r *Registry) Contains(id SessionID, item core.ItemID) bool {
	if !id.Enabled() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id].Has(item)
}

// Len is the number of live records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
