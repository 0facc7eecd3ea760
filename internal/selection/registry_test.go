package selection

import (
	"reflect"
	"sync"
	"testing"

	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/lifecycle"
)

func ids(values ...string) []core.ItemID {
	out := make([]core.ItemID, 0, len(values))
	for _, v := range values {
		out = append(out, core.ItemID(v))
	}
	return out
}

func TestRegistrySeedEmptyWithoutCommit(t *testing.T) {
	registry := NewRegistry(nil)
	for _, id := range []SessionID{0, 1, 42, Disabled} {
		if got := registry.Seed(id); got.Len() != 0 {
			t.Fatalf("expected empty seed for %d, got %v", id, got.Slice())
		}
	}
	registry.GetOrCreate(3)
	if got := registry.Seed(3); got.Len() != 0 {
		t.Fatalf("expected empty seed for freshly created record, got %v", got.Slice())
	}
}

func TestRegistryCommitReplacesSelection(t *testing.T) {
	registry := NewRegistry(nil)

	registry.Commit(7, ids("a", "b", "c"))
	if got := registry.Seed(7).Slice(); !reflect.DeepEqual(got, ids("a", "b", "c")) {
		t.Fatalf("expected [a b c], got %v", got)
	}

	registry.Commit(7, ids("b"))
	if got := registry.Seed(7).Slice(); !reflect.DeepEqual(got, ids("b")) {
		t.Fatalf("expected [b] after replacement, got %v", got)
	}

	registry.Remove(7)
	if got := registry.Seed(7); got.Len() != 0 {
		t.Fatalf("expected empty seed after remove, got %v", got.Slice())
	}
	registry.Remove(7)
}

func TestRegistryDisabledSessionNeverStores(t *testing.T) {
	registry := NewRegistry(nil)
	handle := registry.GetOrCreate(Disabled)
	registry.Commit(Disabled, ids("x"))
	handle.Commit(ids("y"))

	if registry.Len() != 0 {
		t.Fatalf("expected no records for disabled session, got %d", registry.Len())
	}
	if got := registry.Seed(Disabled); got.Len() != 0 {
		t.Fatalf("expected empty seed for disabled session, got %v", got.Slice())
	}
	if registry.Contains(Disabled, "x") {
		t.Fatalf("disabled session must not report duplicates")
	}

	scope := lifecycle.NewScope("disabled")
	handle.Bind(scope)
	_ = scope.Close()
}

func TestRegistryGetOrCreateIsIdempotent(t *testing.T) {
	registry := NewRegistry(nil)
	registry.GetOrCreate(7)
	registry.Commit(7, ids("a", "b"))
	first := registry.Seed(7).Slice()

	registry.GetOrCreate(7)
	registry.GetOrCreate(7)
	if got := registry.Seed(7).Slice(); !reflect.DeepEqual(got, first) {
		t.Fatalf("expected GetOrCreate to keep %v, got %v", first, got)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one record, got %d", registry.Len())
	}
}

func TestHandleReleasedOnOwnerDestroy(t *testing.T) {
	registry := NewRegistry(nil)
	scope := lifecycle.NewScope("screen")

	handle := registry.GetOrCreate(9).Bind(scope)
	handle.Commit(ids("x", "y"))
	if !registry.Contains(9, "x") {
		t.Fatalf("expected x to be remembered")
	}

	_ = scope.Close()

	if got := registry.Seed(9); got.Len() != 0 {
		t.Fatalf("expected empty seed after owner destroy, got %v", got.Slice())
	}
	if !handle.Released() {
		t.Fatalf("expected handle to be released")
	}

	// a late commit from the torn-down owner is dropped
	handle.Commit(ids("z"))
	if registry.Len() != 0 {
		t.Fatalf("expected commit after release to be ignored")
	}
	if handle.Seed().Len() != 0 || handle.Contains("z") {
		t.Fatalf("expected released handle to read nothing")
	}
}

func TestHandlesBoundToDifferentOwners(t *testing.T) {
	registry := NewRegistry(nil)
	first := lifecycle.NewScope("first")
	second := lifecycle.NewScope("second")

	registry.GetOrCreate(5).Bind(first)
	registry.Commit(5, ids("a"))
	h2 := registry.GetOrCreate(5).Bind(second)
	if got := h2.Seed().Slice(); !reflect.DeepEqual(got, ids("a")) {
		t.Fatalf("expected second handle to see [a], got %v", got)
	}

	_ = first.Close()
	if registry.Seed(5).Len() != 0 {
		t.Fatalf("expected record removed when the first owner is destroyed")
	}
	_ = second.Close()
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := SessionID(i % 4)
			h := registry.GetOrCreate(id)
			h.Commit(ids("a", "b"))
			_ = registry.Seed(id)
			if i%3 == 0 {
				h.Release()
			}
		}(i)
	}
	wg.Wait()
	if registry.Len() > 4 {
		t.Fatalf("expected at most 4 records, got %d", registry.Len())
	}
}

func TestItemSetSkipsEmptyIDs(t *testing.T) {
	set := NewItemSet("", "a", "a")
	if set.Len() != 1 || !set.Has("a") {
		t.Fatalf("expected single id a, got %v", set.Slice())
	}
}
