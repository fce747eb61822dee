package world

import "fmt"

// Handle identifies an entry in an Arena. The generation tag makes stale
// handles detectable: once a slot is reused, handles minted for its previous
// occupant stop resolving instead of silently aliasing the new one.
//
// The zero Handle is never valid (generations start at 1).
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the invalid zero handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

// String returns a stable textual form, usable as a cooldown or log key.
func (h Handle) String() string {
	return fmt.Sprintf("h%d.%d", h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena is a generation-tagged slot map. It replaces global ID counters:
// entities live in a pool indexed by Handle, freed slots are recycled,
// and lookups through stale handles fail cleanly.
//
// Not safe for concurrent use; the simulation is single-threaded per frame.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// NewArena creates an empty arena with the given initial capacity.
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	a.count++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = value
		s.generation++
		s.occupied = true
		return Handle{index: idx, generation: s.generation}
	}

	a.slots = append(a.slots, slot[T]{value: value, generation: 1, occupied: true})
	return Handle{index: uint32(len(a.slots) - 1), generation: 1}
}

// Get resolves a handle. Returns the zero value and false for stale or
// invalid handles.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if s := a.lookup(h); s != nil {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Set overwrites the value behind a live handle.
// Returns false if the handle is stale.
func (a *Arena[T]) Set(h Handle, value T) bool {
	if s := a.lookup(h); s != nil {
		s.value = value
		return true
	}
	return false
}

// Remove frees the slot behind h. Returns false if the handle was already
// stale; removal is idempotent.
func (a *Arena[T]) Remove(h Handle) bool {
	s := a.lookup(h)
	if s == nil {
		return false
	}
	var zero T
	s.value = zero
	s.occupied = false
	a.free = append(a.free, h.index)
	a.count--
	return true
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int {
	return a.count
}

// Range calls fn for every live entry in slot order. Returning false stops
// the iteration. Entries removed by fn during iteration are skipped if not
// yet visited; insertion during iteration is not supported.
func (a *Arena[T]) Range(fn func(Handle, *T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.occupied {
			continue
		}
		if !fn(Handle{index: uint32(i), generation: s.generation}, &s.value) {
			return
		}
	}
}

func (a *Arena[T]) lookup(h Handle) *slot[T] {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return nil
	}
	return s
}
