// Package dedup collapses repeated values into shared indices using exact
// equality. Vectors of floating point components compare component-wise with
// ==, so no tolerance is applied: +0 and -0 are the same vertex and NaN never
// matches anything, including itself.
package dedup

// Find returns the index of the first element of collection equal to v,
// or -1 if v is not present. It performs a linear scan.
func Find[T comparable](collection []T, v T) int {
	for i := range collection {
		if collection[i] == v {
			return i
		}
	}
	return -1
}

// Set is an insertion-ordered collection of unique values. The index of a value
// is the position it was first added at and does not change afterwards.
// Lookups are hashed, with the same equality semantics as Find.
//
// The zero value is ready to use.
type Set[T comparable] struct {
	values []T
	index  map[T]int
}

// NewSet returns a Set with room for sizeHint unique values.
func NewSet[T comparable](sizeHint int) *Set[T] {
	return &Set[T]{
		values: make([]T, 0, sizeHint),
		index:  make(map[T]int, sizeHint),
	}
}

// Add returns the index of v, appending it to the set if it was not present.
// added reports whether v was appended.
func (s *Set[T]) Add(v T) (idx int, added bool) {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	idx, ok := s.index[v]
	if ok {
		return idx, false
	}
	if v != v {
		// NaN components never compare equal. Keep them out of the map
		// so the set agrees with Find.
		s.values = append(s.values, v)
		return len(s.values) - 1, true
	}
	idx = len(s.values)
	s.index[v] = idx
	s.values = append(s.values, v)
	return idx, true
}

// Index returns the index of v or -1 if v was never added.
func (s *Set[T]) Index(v T) int {
	idx, ok := s.index[v]
	if !ok {
		return -1
	}
	return idx
}

// Len returns the number of unique values.
func (s *Set[T]) Len() int { return len(s.values) }

// Values returns the unique values in insertion order. The returned slice
// is owned by the set and must not be modified.
func (s *Set[T]) Values() []T { return s.values }
