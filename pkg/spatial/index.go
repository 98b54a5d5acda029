package spatial

import (
	"fmt"
	"iter"
)

// Match is one distinct stored position returned by a lookup, with the
// number of times that position is currently stored.
type Match[T Point] struct {
	Item  T
	Count int
}

// Index is the contract shared by KDTree, Grid and Scan.
//
// Equal positions are collapsed: storing two different items at the same
// coordinates yields one Match with Count 2 whose Item is the first one
// stored. Callers that need identity must keep it outside the index.
type Index[T Point] interface {
	// Insert stores one occurrence of item.
	Insert(item T)
	// Remove drops one occurrence of the position of item. Removing a
	// position that is not stored is a no-op.
	Remove(item T)
	// Search looks up the position of item.
	Search(item T) (Match[T], bool)
	// SearchRadius returns every stored position whose Euclidean distance to
	// query is <= radius. Order is unspecified.
	SearchRadius(query T, radius float64) []Match[T]
	// Len is the number of stored items including multiplicity.
	Len() int
	// All yields every stored item, each position repeated Count times.
	All() iter.Seq[T]
	// Dimensions is the dimensionality fixed at construction.
	Dimensions() int
}

// Kind selects an Index implementation.
type Kind string

const (
	KindKDTree Kind = "kdtree" // KDTree
	KindGrid   Kind = "grid"   // Grid, needs Options.CellSize
	KindScan   Kind = "scan"   // Scan
)

// Kinds lists every Kind New can build.
func Kinds() []Kind {
	return []Kind{KindKDTree, KindGrid, KindScan}
}

// Options configures New.
type Options struct {
	Kind       Kind
	Dimensions int
	// CellSize is only used by KindGrid.
	CellSize float64
}

// New builds an empty index of the requested kind.
func New[T Point](opts Options) (Index[T], error) {
	switch opts.Kind {
	case KindKDTree:
		t, err := NewKDTree[T](opts.Dimensions)
		if err != nil {
			return nil, err
		}
		return t, nil
	case KindGrid:
		g, err := NewGrid[T](opts.Dimensions, opts.CellSize)
		if err != nil {
			return nil, err
		}
		return g, nil
	case KindScan:
		s, err := NewScan[T](opts.Dimensions)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}
