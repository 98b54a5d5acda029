package spatial

import (
	"fmt"
	"iter"
)

// Scan is a brute-force index: one slot per distinct position, every query
// is a linear pass. It is the reference the tree and grid are checked
// against, and is competitive for a few dozen points.
type Scan[T Point] struct {
	dims    int
	entries []Match[T]
	size    int
}

// NewScan returns an empty scan index over dims axes.
func NewScan[T Point](dims int) (*Scan[T], error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: scan needs at least 1 axis, got %d", ErrInvalidDimension, dims)
	}
	return &Scan[T]{dims: dims}, nil
}

func (s *Scan[T]) Dimensions() int { return s.dims }

func (s *Scan[T]) find(item T) int {
	for i := range s.entries {
		if SamePosition(s.entries[i].Item, item, s.dims) {
			return i
		}
	}
	return -1
}

func (s *Scan[T]) Insert(item T) {
	checkDims(item, s.dims)
	s.size++
	if i := s.find(item); i >= 0 {
		s.entries[i].Count++
		return
	}
	s.entries = append(s.entries, Match[T]{Item: item, Count: 1})
}

func (s *Scan[T]) Remove(item T) {
	checkDims(item, s.dims)
	i := s.find(item)
	if i < 0 {
		return
	}
	s.size--
	if s.entries[i].Count > 1 {
		s.entries[i].Count--
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
}

func (s *Scan[T]) Search(item T) (Match[T], bool) {
	checkDims(item, s.dims)
	if i := s.find(item); i >= 0 {
		return s.entries[i], true
	}
	return Match[T]{}, false
}

func (s *Scan[T]) SearchRadius(query T, radius float64) []Match[T] {
	checkDims(query, s.dims)
	checkRadius(radius)
	radiusSq := radius * radius
	var out []Match[T]
	for _, e := range s.entries {
		if DistanceSquared(e.Item, query, s.dims) <= radiusSq {
			out = append(out, e)
		}
	}
	return out
}

func (s *Scan[T]) Len() int { return s.size }

func (s *Scan[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range s.entries {
			for range e.Count {
				if !yield(e.Item) {
					return
				}
			}
		}
	}
}
