package ordered

// Set is an ordered set. Iteration follows insertion order.
type Set[T comparable] struct {
	m *Map[T, struct{}]
}

// NewSet returns a new ordered set.
func NewSet[T comparable](elements ...T) *Set[T] {
	s := &Set[T]{m: NewMap[T, struct{}]()}
	for _, el := range elements {
		s.Add(el)
	}
	return s
}

// Add an element to the set. Adding an element already
// in the set does not change its position.
func (s *Set[T]) Add(el T) {
	s.m.Store(el, struct{}{})
}

// Has returns true if the element is in the set.
func (s *Set[T]) Has(el T) bool {
	return s.m.Has(el)
}

// Remove an element from the set.
func (s *Set[T]) Remove(el T) {
	s.m.Delete(el)
}

// Iter returns an iterator to range over the elements of the set.
func (s *Set[T]) Iter() func(func(T) bool) {
	return s.m.Keys()
}

// Elements returns the elements of the set in insertion order.
func (s *Set[T]) Elements() []T {
	els := make([]T, 0, s.m.Size())
	for el := range s.m.Keys() {
		els = append(els, el)
	}
	return els
}

// Clone creates a new set with the same elements.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{m: s.m.Clone()}
}

// Size returns the number of elements in the set.
func (s *Set[T]) Size() int {
	return s.m.Size()
}
