package api

import "sync"

// DefaultStoreCapacity bounds the number of comparisons kept in memory.
const DefaultStoreCapacity = 256

// ComparisonStore keeps recent comparisons in memory, evicting the oldest
// once capacity is reached.
type ComparisonStore struct {
	mu       sync.Mutex
	capacity int
	order    []string
	items    map[string]Comparison
}

// NewComparisonStore returns a store holding at most capacity entries. A
// non-positive capacity selects DefaultStoreCapacity.
func NewComparisonStore(capacity int) *ComparisonStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &ComparisonStore{
		capacity: capacity,
		items:    make(map[string]Comparison),
	}
}

// Put stores c, replacing any comparison with the same ID.
func (s *ComparisonStore) Put(c Comparison) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.items[c.ID] = c
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
	}
}

// Get returns the comparison with the given ID.
func (s *ComparisonStore) Get(id string) (Comparison, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	return c, ok
}

// Delete removes id and reports whether it was present.
func (s *ComparisonStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns up to limit comparisons, newest first, without their rows.
func (s *ComparisonStore) List(limit int) []Comparison {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Comparison, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		c := s.items[s.order[i]]
		c.Rows = nil
		out = append(out, c)
	}
	return out
}
