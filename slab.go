package tick

import "sync"

// Id is the stable, opaque handle a Protocol and its ProtocolFactory use
// to refer to an endpoint across its lifetime. Ids are recycled once an
// endpoint is removed, but each recycling bumps a generation so that a
// stale Id from a prior occupant is never mistaken for the current one.
type Id struct {
	index uint32
	gen    uint32
}

// Valid reports whether id was ever issued by a slab (the zero Id never
// is, since generation 0 is never assigned).
func (id Id) Valid() bool {
	return id.gen != 0
}

// slabEntry is a single dense slot. occupied slots hold a live value of
// type T; free slots chain to the next free index via nextFree.
type slabEntry[T any] struct {
	value     T
	gen       uint32
	occupied  bool
	nextFree  uint32
}

// slab is a fixed-capacity, dense-indexed registry mapping Id to a value
// of type T, grounded on the handler's mio::util::Slab usage: O(1)
// insert/lookup/remove with a free list threaded through unoccupied
// slots, and an overflow error once Config.Capacity is reached.
type slab[T any] struct {
	mu       sync.Mutex
	entries  []slabEntry[T]
	freeHead uint32
	freeLen  int
	capacity int
}

const slabNoFree = ^uint32(0)

// newSlab creates a slab with room for at most capacity live entries.
func newSlab[T any](capacity int) *slab[T] {
	return &slab[T]{
		freeHead: slabNoFree,
		capacity: capacity,
	}
}

// Insert stores value and returns its newly assigned Id, or
// ErrTooManySockets if the slab is already at capacity.
func (s *slab[T]) Insert(value T) (Id, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.freeHead == slabNoFree {
		if len(s.entries) >= s.capacity {
			return Id{}, ErrTooManySockets
		}
		s.entries = append(s.entries, slabEntry[T]{})
		s.freeHead = uint32(len(s.entries) - 1)
		s.freeLen++
	}

	idx := s.freeHead
	entry := &s.entries[idx]
	s.freeHead = entry.nextFree
	s.freeLen--

	if entry.gen == 0 {
		entry.gen = 1
	}
	entry.value = value
	entry.occupied = true

	return Id{index: idx, gen: entry.gen}, nil
}

// Get returns the value stored for id, if id still refers to a live
// entry.
func (s *slab[T]) Get(id Id) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if int(id.index) >= len(s.entries) {
		return zero, false
	}
	entry := &s.entries[id.index]
	if !entry.occupied || entry.gen != id.gen {
		return zero, false
	}
	return entry.value, true
}

// Set overwrites the value stored for id, if it is still live. It
// reports whether id was live.
func (s *slab[T]) Set(id Id, value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(id.index) >= len(s.entries) {
		return false
	}
	entry := &s.entries[id.index]
	if !entry.occupied || entry.gen != id.gen {
		return false
	}
	entry.value = value
	return true
}

// Remove deletes the entry for id, recycling its slot with a bumped
// generation. It reports whether id was live.
func (s *slab[T]) Remove(id Id) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(id.index) >= len(s.entries) {
		return false
	}
	entry := &s.entries[id.index]
	if !entry.occupied || entry.gen != id.gen {
		return false
	}

	var zero T
	entry.value = zero
	entry.occupied = false
	entry.gen++
	entry.nextFree = s.freeHead
	s.freeHead = id.index
	s.freeLen++

	return true
}

// Len returns the number of currently live entries.
func (s *slab[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) - s.freeLen
}

// Each calls fn for every live entry, in index order. fn must not call
// back into the slab.
func (s *slab[T]) Each(fn func(id Id, value T)) {
	s.mu.Lock()
	entries := make([]slabEntry[T], len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	for i, entry := range entries {
		if entry.occupied {
			fn(Id{index: uint32(i), gen: entry.gen}, entry.value)
		}
	}
}
