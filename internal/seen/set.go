package seen

import "sync"

// DefaultCapacity is the ceiling above which the oldest half is evicted.
const DefaultCapacity = 1000

// Set is a bounded, insertion-ordered membership set of content ids.
// When an insertion pushes the size above the capacity, the oldest
// capacity/2 ids are dropped in one step.
type Set struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	index    map[string]struct{}
}

// New returns an empty set. Capacities below 2 fall back to
// DefaultCapacity.
func New(capacity int) *Set {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	return &Set{
		capacity: capacity,
		order:    make([]string, 0, capacity+1),
		index:    make(map[string]struct{}, capacity+1),
	}
}

// Contains reports whether id has been marked.
func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Mark records id as handled. Re-marking a known id does not change its
// position. It returns the number of ids evicted by this call.
func (s *Set) Mark(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; ok {
		return 0
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) <= s.capacity {
		return 0
	}
	return s.evictOldestUnlocked(s.capacity / 2)
}

func (s *Set) evictOldestUnlocked(n int) int {
	for _, id := range s.order[:n] {
		delete(s.index, id)
	}
	rest := make([]string, len(s.order)-n, s.capacity+1)
	copy(rest, s.order[n:])
	s.order = rest
	return n
}

// Len returns the number of ids currently held.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Set) Capacity() int { return s.capacity }

// IDs returns the members oldest first.
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
