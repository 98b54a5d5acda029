package spatial

import (
	"fmt"
	"iter"
)

type kdNode[T Point] struct {
	item  T
	count int
	left  *kdNode[T]
	right *kdNode[T]
}

// KDTree is a point KD-tree. At depth d the split axis is d mod D; the left
// subtree holds coordinates strictly less than the node on that axis and the
// right subtree holds the rest.
//
// Equal positions share a single node carrying an occurrence count, so the
// tree does not grow on duplicate inserts. This collapses by position, not by
// identity: two distinct items at the same coordinates are counted together
// and only the first one inserted is returned by lookups.
//
// The tree is never rebalanced. Removal uses Bentley's successor replacement.
type KDTree[T Point] struct {
	dims int
	root *kdNode[T]

	size  int
	dirty bool
}

// NewKDTree returns an empty tree over dims axes.
func NewKDTree[T Point](dims int) (*KDTree[T], error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: kd-tree needs at least 1 axis, got %d", ErrInvalidDimension, dims)
	}
	return &KDTree[T]{dims: dims}, nil
}

func (t *KDTree[T]) Dimensions() int { return t.dims }

// Insert stores one occurrence of item.
func (t *KDTree[T]) Insert(item T) {
	checkDims(item, t.dims)
	t.dirty = true

	link := &t.root
	for depth := 0; *link != nil; depth++ {
		n := *link
		if SamePosition(n.item, item, t.dims) {
			n.count++
			return
		}
		axis := depth % t.dims
		if item.Coordinate(axis) < n.item.Coordinate(axis) {
			link = &n.left
		} else {
			link = &n.right
		}
	}
	*link = &kdNode[T]{item: item, count: 1}
}

// Remove drops one occurrence of the position of item. It is a no-op when
// the position is not stored.
func (t *KDTree[T]) Remove(item T) {
	checkDims(item, t.dims)
	t.dirty = true
	t.root = t.remove(t.root, item, 0, false)
}

// remove returns the subtree rooted at n with item removed. When whole is
// set the matching node is deleted regardless of its count; that is how a
// successor is moved out of its old slot.
func (t *KDTree[T]) remove(n *kdNode[T], item T, depth int, whole bool) *kdNode[T] {
	if n == nil {
		return nil
	}
	axis := depth % t.dims

	if !SamePosition(n.item, item, t.dims) {
		if item.Coordinate(axis) < n.item.Coordinate(axis) {
			n.left = t.remove(n.left, item, depth+1, whole)
		} else {
			n.right = t.remove(n.right, item, depth+1, whole)
		}
		return n
	}

	if !whole && n.count > 1 {
		n.count--
		return n
	}

	switch {
	case n.right != nil:
		succ := t.findMin(n.right, axis, depth+1)
		n.item, n.count = succ.item, succ.count
		n.right = t.remove(n.right, succ.item, depth+1, true)
	case n.left != nil:
		// The left subtree moves to the right: everything in it is >= its
		// own minimum, which becomes this node.
		succ := t.findMin(n.left, axis, depth+1)
		n.item, n.count = succ.item, succ.count
		n.right = t.remove(n.left, succ.item, depth+1, true)
		n.left = nil
	default:
		return nil
	}
	return n
}

// findMin returns the node with the smallest coordinate on axis in the
// subtree rooted at n, which sits at the given depth.
func (t *KDTree[T]) findMin(n *kdNode[T], axis, depth int) *kdNode[T] {
	if n == nil {
		return nil
	}
	if depth%t.dims == axis {
		if n.left == nil {
			return n
		}
		return t.findMin(n.left, axis, depth+1)
	}

	best := n
	for _, c := range [2]*kdNode[T]{
		t.findMin(n.left, axis, depth+1),
		t.findMin(n.right, axis, depth+1),
	} {
		if c != nil && c.item.Coordinate(axis) < best.item.Coordinate(axis) {
			best = c
		}
	}
	return best
}

// Search looks up the position of item.
func (t *KDTree[T]) Search(item T) (Match[T], bool) {
	checkDims(item, t.dims)
	n := t.root
	for depth := 0; n != nil; depth++ {
		if SamePosition(n.item, item, t.dims) {
			return Match[T]{Item: n.item, Count: n.count}, true
		}
		axis := depth % t.dims
		if item.Coordinate(axis) < n.item.Coordinate(axis) {
			n = n.left
		} else {
			n = n.right
		}
	}
	return Match[T]{}, false
}

// SearchRadius returns every stored position within radius of query.
func (t *KDTree[T]) SearchRadius(query T, radius float64) []Match[T] {
	checkDims(query, t.dims)
	checkRadius(radius)
	var out []Match[T]
	t.searchRadius(t.root, query, radius, radius*radius, 0, &out)
	return out
}

func (t *KDTree[T]) searchRadius(n *kdNode[T], query T, radius, radiusSq float64, depth int, out *[]Match[T]) {
	if n == nil {
		return
	}
	if DistanceSquared(n.item, query, t.dims) <= radiusSq {
		*out = append(*out, Match[T]{Item: n.item, Count: n.count})
	}

	axis := depth % t.dims
	delta := query.Coordinate(axis) - n.item.Coordinate(axis)
	switch {
	case delta >= -radius && delta <= radius:
		// the query ball crosses the splitting plane
		t.searchRadius(n.left, query, radius, radiusSq, depth+1, out)
		t.searchRadius(n.right, query, radius, radiusSq, depth+1, out)
	case delta < 0:
		t.searchRadius(n.left, query, radius, radiusSq, depth+1, out)
	default:
		t.searchRadius(n.right, query, radius, radiusSq, depth+1, out)
	}
}

// Len is the number of stored items including multiplicity. It is
// recomputed by a full traversal only after a mutation.
func (t *KDTree[T]) Len() int {
	if t.dirty {
		t.size = 0
		for n := range t.nodes() {
			t.size += n.count
		}
		t.dirty = false
	}
	return t.size
}

// All yields items in order, each position repeated count times.
func (t *KDTree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := range t.nodes() {
			for range n.count {
				if !yield(n.item) {
					return
				}
			}
		}
	}
}

// Depth is the height of the tree; 0 when empty.
func (t *KDTree[T]) Depth() int {
	var depth func(n *kdNode[T]) int
	depth = func(n *kdNode[T]) int {
		if n == nil {
			return 0
		}
		return 1 + max(depth(n.left), depth(n.right))
	}
	return depth(t.root)
}

// nodes walks the tree in order.
func (t *KDTree[T]) nodes() iter.Seq[*kdNode[T]] {
	return func(yield func(*kdNode[T]) bool) {
		var walk func(n *kdNode[T]) bool
		walk = func(n *kdNode[T]) bool {
			if n == nil {
				return true
			}
			return walk(n.left) && yield(n) && walk(n.right)
		}
		walk(t.root)
	}
}
