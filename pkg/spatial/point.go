// Package spatial provides in-memory spatial indexes answering
// "which stored points lie within radius r of q" for a dynamic point set.
//
// Three implementations share the Index contract: a KD-tree, a spatial hash
// grid and a brute-force scan. They are not safe for concurrent use.
package spatial

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension reports a dimensionality the index cannot serve.
	ErrInvalidDimension = errors.New("spatial: invalid dimension")
	// ErrInvalidCellSize reports a grid cell size that is not strictly positive.
	ErrInvalidCellSize = errors.New("spatial: cell size must be > 0")
	// ErrNegativeRadius reports a radius query with r < 0.
	ErrNegativeRadius = errors.New("spatial: radius must be >= 0")
	// ErrUnknownKind reports an index Kind New does not know how to build.
	ErrUnknownKind = errors.New("spatial: unknown index kind")
)

// Point is the capability an item needs to be stored in an index.
// Two points are the same position when every coordinate is equal.
type Point interface {
	Dimensions() int
	Coordinate(axis int) float64
}

// DimensionError is raised (as a panic value) when an item's dimensionality
// does not match the index it is passed to.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: index has %d axes, item has %d", ErrInvalidDimension, e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrInvalidDimension }

// checkDims panics with a *DimensionError on a mismatch. Corrupting the
// structure with a short item is worse than failing at the call site.
func checkDims(p Point, dims int) {
	if got := p.Dimensions(); got != dims {
		panic(&DimensionError{Want: dims, Got: got})
	}
}

func checkRadius(radius float64) {
	if radius < 0 {
		panic(fmt.Errorf("%w: got %v", ErrNegativeRadius, radius))
	}
}

// SamePosition reports whether a and b have equal coordinates on the first
// dims axes.
func SamePosition[T Point](a, b T, dims int) bool {
	for axis := 0; axis < dims; axis++ {
		if a.Coordinate(axis) != b.Coordinate(axis) {
			return false
		}
	}
	return true
}

// DistanceSquared is the squared Euclidean distance between a and b.
func DistanceSquared[T Point](a, b T, dims int) float64 {
	sum := 0.0
	for axis := 0; axis < dims; axis++ {
		d := a.Coordinate(axis) - b.Coordinate(axis)
		sum += d * d
	}
	return sum
}

// Coords is a plain N-dimensional point.
type Coords []float64

func (c Coords) Dimensions() int { return len(c) }

func (c Coords) Coordinate(axis int) float64 { return c[axis] }
