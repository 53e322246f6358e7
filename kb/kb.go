package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/stellar-geodesy/core"
)

var (
	// ErrPatchExists indicates a patch with the same ID is already stored.
	ErrPatchExists = errors.New("patch already exists")
	// ErrPatchNotFound indicates a requested patch was not found.
	ErrPatchNotFound = errors.New("patch not found")
	// ErrParentNotFound indicates a declared parent is not in the store.
	ErrParentNotFound = errors.New("parent patch not found")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventPatchAdded EventType = iota
	EventPatchRemoved
	EventParentCleared
)

// Event is emitted to subscribers when the patch collection changes.
type Event struct {
	Type    EventType
	PatchID string
}

// PatchStore is an in-memory, thread-safe flat collection of surface
// patches addressed by ID. Parent links are weak: removing a patch clears
// the ParentID of every child but leaves the children in place.
type PatchStore struct {
	mu sync.RWMutex

	patches map[string]*core.SurfaceSquare

	subs []func(Event)
}

// NewPatchStore constructs an empty store.
func NewPatchStore() *PatchStore {
	return &PatchStore{
		patches: make(map[string]*core.SurfaceSquare),
	}
}

// Add inserts a new patch. It returns an error if the ID already exists or
// if a declared parent is not present in the store.
func (s *PatchStore) Add(p *core.SurfaceSquare) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("patch must have an ID")
	}

	s.mu.Lock()
	if _, exists := s.patches[p.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("patch %q: %w", p.ID, ErrPatchExists)
	}
	if p.ParentID != "" {
		if _, ok := s.patches[p.ParentID]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("patch %q parent %q: %w", p.ID, p.ParentID, ErrParentNotFound)
		}
	}
	// store the pointer so observation maps can be filled in-place
	s.patches[p.ID] = p
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	notify(subs, Event{Type: EventPatchAdded, PatchID: p.ID})
	return nil
}

// Get returns the patch with the given ID, or nil if not found.
func (s *PatchStore) Get(id string) *core.SurfaceSquare {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patches[id]
}

// List returns a snapshot of all patches ordered by ID.
func (s *PatchStore) List() []*core.SurfaceSquare {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*core.SurfaceSquare, 0, len(s.patches))
	for _, p := range s.patches {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of stored patches.
func (s *PatchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patches)
}

// Remove deletes a patch and clears the parent reference of any child that
// pointed at it, so no patch is ever left with a dangling parent. It
// returns an error if the ID is unknown.
func (s *PatchStore) Remove(id string) error {
	s.mu.Lock()
	if _, ok := s.patches[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("patch %q: %w", id, ErrPatchNotFound)
	}
	delete(s.patches, id)

	var cleared []string
	for _, p := range s.patches {
		if p.ParentID == id {
			p.ParentID = ""
			cleared = append(cleared, p.ID)
		}
	}
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	notify(subs, Event{Type: EventPatchRemoved, PatchID: id})
	for _, childID := range cleared {
		notify(subs, Event{Type: EventParentCleared, PatchID: childID})
	}
	return nil
}

// Subscribe registers a callback for store events. It returns an
// unsubscribe function.
func (s *PatchStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < 0 || idx >= len(s.subs) {
			return
		}
		s.subs = append(s.subs[:idx], s.subs[idx+1:]...)
		idx = -1
	}
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
