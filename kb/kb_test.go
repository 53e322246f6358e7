package kb

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/signalsfoundry/stellar-geodesy/core"
)

func TestAddAndGetPatch(t *testing.T) {
	store := NewPatchStore()
	p := &core.SurfaceSquare{ID: "p1", LatDeg: 10, LongDeg: 20}
	if err := store.Add(p); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	got := store.Get("p1")
	if got == nil || got.LatDeg != 10 {
		t.Fatalf("Get returned %#v, want the stored patch", got)
	}
}

func TestAddDuplicatePatch(t *testing.T) {
	store := NewPatchStore()
	if err := store.Add(&core.SurfaceSquare{ID: "p1"}); err != nil {
		t.Fatalf("first Add error: %v", err)
	}
	err := store.Add(&core.SurfaceSquare{ID: "p1"})
	if !errors.Is(err, ErrPatchExists) {
		t.Fatalf("duplicate Add error = %v, want ErrPatchExists", err)
	}
}

func TestAddRejectsMissingParent(t *testing.T) {
	store := NewPatchStore()
	err := store.Add(&core.SurfaceSquare{ID: "child", ParentID: "missing"})
	if !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("Add error = %v, want ErrParentNotFound", err)
	}

	if err := store.Add(&core.SurfaceSquare{ID: "parent"}); err != nil {
		t.Fatalf("Add parent error: %v", err)
	}
	if err := store.Add(&core.SurfaceSquare{ID: "child", ParentID: "parent"}); err != nil {
		t.Fatalf("Add child error: %v", err)
	}
}

func TestAddRejectsEmptyID(t *testing.T) {
	store := NewPatchStore()
	if err := store.Add(&core.SurfaceSquare{}); err == nil {
		t.Fatalf("expected error for empty ID")
	}
	if err := store.Add(nil); err == nil {
		t.Fatalf("expected error for nil patch")
	}
}

func TestListOrderedByID(t *testing.T) {
	store := NewPatchStore()
	for _, id := range []string{"c", "a", "b"} {
		if err := store.Add(&core.SurfaceSquare{ID: id}); err != nil {
			t.Fatalf("Add %s error: %v", id, err)
		}
	}
	list := store.List()
	if len(list) != 3 || list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Fatalf("List order wrong: %v", list)
	}
	if store.Len() != 3 {
		t.Fatalf("Len = %d, want 3", store.Len())
	}
}

func TestRemoveClearsChildParents(t *testing.T) {
	store := NewPatchStore()
	if err := store.Add(&core.SurfaceSquare{ID: "parent"}); err != nil {
		t.Fatalf("Add parent error: %v", err)
	}
	for i := range 2 {
		child := &core.SurfaceSquare{ID: fmt.Sprintf("child-%d", i), ParentID: "parent"}
		if err := store.Add(child); err != nil {
			t.Fatalf("Add child error: %v", err)
		}
	}

	if err := store.Remove("parent"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	for i := range 2 {
		child := store.Get(fmt.Sprintf("child-%d", i))
		if child == nil {
			t.Fatalf("child-%d was removed with its parent", i)
		}
		if child.ParentID != "" {
			t.Fatalf("child-%d ParentID = %q, want cleared", i, child.ParentID)
		}
	}
}

func TestRemoveUnknownPatch(t *testing.T) {
	store := NewPatchStore()
	if err := store.Remove("missing"); !errors.Is(err, ErrPatchNotFound) {
		t.Fatalf("Remove error = %v, want ErrPatchNotFound", err)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	store := NewPatchStore()
	var mu sync.Mutex
	var events []Event
	unsub := store.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	if err := store.Add(&core.SurfaceSquare{ID: "parent"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := store.Add(&core.SurfaceSquare{ID: "child", ParentID: "parent"}); err != nil {
		t.Fatalf("Add child error: %v", err)
	}
	if err := store.Remove("parent"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}

	mu.Lock()
	got := append([]Event{}, events...)
	mu.Unlock()

	want := []Event{
		{Type: EventPatchAdded, PatchID: "parent"},
		{Type: EventPatchAdded, PatchID: "child"},
		{Type: EventPatchRemoved, PatchID: "parent"},
		{Type: EventParentCleared, PatchID: "child"},
	}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	unsub()
	if err := store.Add(&core.SurfaceSquare{ID: "late"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	mu.Lock()
	after := len(events)
	mu.Unlock()
	if after != len(want) {
		t.Fatalf("received events after unsubscribe")
	}
}

func TestConcurrentAddAndList(t *testing.T) {
	store := NewPatchStore()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Add(&core.SurfaceSquare{ID: fmt.Sprintf("p-%d", i)})
			_ = store.List()
		}(i)
	}
	wg.Wait()
	if store.Len() != 20 {
		t.Fatalf("Len = %d, want 20", store.Len())
	}
}
