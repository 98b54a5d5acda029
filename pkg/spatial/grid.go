package spatial

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// MaxGridDimensions bounds the number of axes a Grid can index; cell keys
// are fixed-size arrays so they stay comparable map keys.
const MaxGridDimensions = 4

// CellKey identifies a grid cell by its integer coordinates. Axes past the
// grid's dimensionality are always zero.
type CellKey [MaxGridDimensions]int

type gridCell[T Point] struct {
	items []T
}

// Grid is a spatial hash grid. Each item lives in exactly one cell, keyed
// by floor(coord/cellSize) per axis, and in a flat list used for iteration.
// Both keep insertion order; Remove drops the most recent item at a position
// from both, so the first one stored stays the representative.
type Grid[T Point] struct {
	dims     int
	cellSize float64
	cells    map[CellKey]*gridCell[T]
	items    []T
}

// NewGrid returns an empty grid over dims axes with square cells of side
// cellSize.
func NewGrid[T Point](dims int, cellSize float64) (*Grid[T], error) {
	if dims < 1 || dims > MaxGridDimensions {
		return nil, fmt.Errorf("%w: grid supports 1..%d axes, got %d", ErrInvalidDimension, MaxGridDimensions, dims)
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidCellSize, cellSize)
	}
	return &Grid[T]{
		dims:     dims,
		cellSize: cellSize,
		cells:    make(map[CellKey]*gridCell[T]),
	}, nil
}

func (g *Grid[T]) Dimensions() int { return g.dims }

// CellSize is the side length of a cell.
func (g *Grid[T]) CellSize() float64 { return g.cellSize }

// KeyOf returns the key of the cell containing p.
func (g *Grid[T]) KeyOf(p T) CellKey {
	checkDims(p, g.dims)
	var key CellKey
	for axis := 0; axis < g.dims; axis++ {
		key[axis] = g.cellIndex(p.Coordinate(axis))
	}
	return key
}

func (g *Grid[T]) cellIndex(v float64) int {
	return saturate(math.Floor(v / g.cellSize))
}

// saturate converts a whole float to int, pinning values past the int range
// to its ends. Keys stay ordered, so far-away points share an edge cell and
// query bounds past the range still cover it.
func saturate(f float64) int {
	switch {
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}

// Insert stores one occurrence of item.
func (g *Grid[T]) Insert(item T) {
	key := g.KeyOf(item)
	c, ok := g.cells[key]
	if !ok {
		c = &gridCell[T]{}
		g.cells[key] = c
	}
	c.items = append(c.items, item)
	g.items = append(g.items, item)
}

// Remove drops the most recently stored item at the position of item. It is
// a no-op when the position is not stored.
func (g *Grid[T]) Remove(item T) {
	key := g.KeyOf(item)
	c, ok := g.cells[key]
	if !ok {
		return
	}
	i := g.lastIndexOf(c.items, item)
	if i < 0 {
		return
	}
	c.items = slices.Delete(c.items, i, i+1)
	if len(c.items) == 0 {
		delete(g.cells, key)
	}
	if j := g.lastIndexOf(g.items, item); j >= 0 {
		g.items = slices.Delete(g.items, j, j+1)
	}
}

func (g *Grid[T]) lastIndexOf(items []T, item T) int {
	for i := len(items) - 1; i >= 0; i-- {
		if SamePosition(items[i], item, g.dims) {
			return i
		}
	}
	return -1
}

// Search looks up the position of item within its cell.
func (g *Grid[T]) Search(item T) (Match[T], bool) {
	c, ok := g.cells[g.KeyOf(item)]
	if !ok {
		return Match[T]{}, false
	}
	m := Match[T]{}
	for _, it := range c.items {
		if SamePosition(it, item, g.dims) {
			if m.Count == 0 {
				m.Item = it
			}
			m.Count++
		}
	}
	return m, m.Count > 0
}

// SearchRadius enumerates every cell overlapping the axis-aligned box
// around query and filters candidates by exact distance.
func (g *Grid[T]) SearchRadius(query T, radius float64) []Match[T] {
	checkDims(query, g.dims)
	checkRadius(radius)

	var lo, hi CellKey
	for axis := 0; axis < g.dims; axis++ {
		q := query.Coordinate(axis)
		lo[axis] = g.cellIndex(q - radius)
		hi[axis] = g.cellIndex(q + radius)
		if math.IsNaN(q - radius) {
			lo[axis] = math.MinInt
		}
		if math.IsNaN(q + radius) {
			hi[axis] = math.MaxInt
		}
	}

	radiusSq := radius * radius
	var out []Match[T]

	// A wide query touches more cells than exist; walk the occupied ones.
	if g.rangeVolume(lo, hi) > float64(len(g.cells)) {
		for key, c := range g.cells {
			if g.keyWithin(key, lo, hi) {
				out = g.appendGrouped(out, c.items, query, radiusSq)
			}
		}
		return out
	}

	for key := range g.cellRange(lo, hi) {
		c, ok := g.cells[key]
		if !ok {
			continue
		}
		out = g.appendGrouped(out, c.items, query, radiusSq)
	}
	return out
}

func (g *Grid[T]) rangeVolume(lo, hi CellKey) float64 {
	v := 1.0
	for axis := 0; axis < g.dims; axis++ {
		v *= float64(hi[axis]) - float64(lo[axis]) + 1
	}
	return v
}

func (g *Grid[T]) keyWithin(key, lo, hi CellKey) bool {
	for axis := 0; axis < g.dims; axis++ {
		if key[axis] < lo[axis] || key[axis] > hi[axis] {
			return false
		}
	}
	return true
}

// appendGrouped appends the in-range items of one cell, folding equal
// positions into a single Match. Equal positions always share a cell.
func (g *Grid[T]) appendGrouped(out []Match[T], items []T, query T, radiusSq float64) []Match[T] {
	start := len(out)
next:
	for _, it := range items {
		if DistanceSquared(it, query, g.dims) > radiusSq {
			continue
		}
		for i := start; i < len(out); i++ {
			if SamePosition(out[i].Item, it, g.dims) {
				out[i].Count++
				continue next
			}
		}
		out = append(out, Match[T]{Item: it, Count: 1})
	}
	return out
}

// cellRange yields the Cartesian product of [lo[d], hi[d]] over all axes.
func (g *Grid[T]) cellRange(lo, hi CellKey) iter.Seq[CellKey] {
	return func(yield func(CellKey) bool) {
		cur := lo
		for {
			if !yield(cur) {
				return
			}
			axis := 0
			for ; axis < g.dims; axis++ {
				if cur[axis] < hi[axis] {
					cur[axis]++
					break
				}
				cur[axis] = lo[axis]
			}
			if axis == g.dims {
				return
			}
		}
	}
}

// Len is the number of stored items.
func (g *Grid[T]) Len() int { return len(g.items) }

// All yields the flat backing list.
func (g *Grid[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, it := range g.items {
			if !yield(it) {
				return
			}
		}
	}
}

// Cells yields the keys of occupied cells and their item counts.
func (g *Grid[T]) Cells() iter.Seq2[CellKey, int] {
	return func(yield func(CellKey, int) bool) {
		for key, c := range g.cells {
			if !yield(key, len(c.items)) {
				return
			}
		}
	}
}

// Reset empties the grid but keeps the flat list's capacity for the next
// rebuild.
func (g *Grid[T]) Reset() {
	clear(g.cells)
	clear(g.items)
	g.items = g.items[:0]
}
