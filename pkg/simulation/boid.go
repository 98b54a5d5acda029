package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/geometry"
)

// Boid is one member of the flock. The index stores Boid values, so whatever
// it returns is a frozen copy from the last commit.
type Boid struct {
	ID       string            `json:"id"`
	Position geometry.Vector2D `json:"position"`
	Velocity geometry.Vector2D `json:"velocity"`
}

// Dimensions and Coordinate place a boid in the index by its position.
func (b Boid) Dimensions() int { return 2 }

func (b Boid) Coordinate(axis int) float64 { return b.Position.Coordinate(axis) }

// Heading is the direction of travel in radians.
func (b Boid) Heading() float64 { return b.Velocity.Angle() }
