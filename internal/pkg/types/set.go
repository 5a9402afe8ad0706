package types

// Set is a generic hash set implementation for comparable types.
//
// It uses a map[T]struct{} internally. Methods like Add modify the set in place.
type Set[T comparable] map[T]struct{}

// NewSet creates a new Set and optionally inserts the provided elements.
func NewSet[T comparable](data ...T) Set[T] {
	set := make(Set[T], len(data))
	set.Add(data...)
	return set
}

// Add inserts one or more elements into the set.
func (s Set[T]) Add(values ...T) {
	for _, val := range values {
		s[val] = struct{}{}
	}
}

// Has reports whether val is a member of the set.
func (s Set[T]) Has(val T) bool {
	_, ok := s[val]
	return ok
}
