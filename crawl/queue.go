// Package crawl: insertion-ordered deduplication.
package crawl

// orderedSet keeps the first occurrence of every key in insertion order.
type orderedSet[K comparable] struct {
	items []K
	seen  map[K]bool
}

func newOrderedSet[K comparable]() *orderedSet[K] {
	return &orderedSet[K]{seen: make(map[K]bool)}
}

// Add appends k unless it was added before and reports whether it was new.
func (s *orderedSet[K]) Add(k K) bool {
	if s.seen[k] {
		return false
	}
	s.seen[k] = true
	s.items = append(s.items, k)
	return true
}

// Len returns the number of distinct keys.
func (s *orderedSet[K]) Len() int {
	return len(s.items)
}

// All returns the keys in insertion order.
func (s *orderedSet[K]) All() []K {
	return s.items
}
