package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/spatial"
)

// Goal is a point the flock is pulled toward while Alive.
type Goal struct {
	Position  geometry.Vector2D
	Alive     bool
	ExpiresAt float64 // simulation seconds
}

// neighbourhood is what a boid perceives from one radius query.
type neighbourhood struct {
	others     int               // boids seen, self excluded
	center     geometry.Vector2D // mean position of others
	velocity   geometry.Vector2D // mean velocity of others
	separation geometry.Vector2D // push away from the ones too close
}

// perceive folds the matches of a radius query around me. Every match at
// me's own position includes me exactly once, since the index holds me there.
func perceive(me Boid, matches []spatial.Match[Boid], separationDistance float64) neighbourhood {
	var nb neighbourhood
	sepSq := separationDistance * separationDistance

	for _, m := range matches {
		n := m.Count
		if m.Item.Position == me.Position {
			n--
		}
		if n <= 0 {
			continue
		}
		w := float64(n)
		nb.others += n
		nb.center = nb.center.Add(m.Item.Position.Mul(w))
		nb.velocity = nb.velocity.Add(m.Item.Velocity.Mul(w))
		if me.Position.DistanceSquaredTo(m.Item.Position) < sepSq {
			nb.separation = nb.separation.Sub(m.Item.Position.Sub(me.Position).Mul(w))
		}
	}

	if nb.others > 0 {
		nb.center = nb.center.Div(float64(nb.others))
		nb.velocity = nb.velocity.Div(float64(nb.others))
	}
	return nb
}

func cohesion(me Boid, nb neighbourhood, cfg *Config) geometry.Vector2D {
	if nb.others == 0 {
		return geometry.Vector2D{}
	}
	return nb.center.Sub(me.Position).Mul(cfg.Cohesion / 100)
}

func separation(nb neighbourhood, cfg *Config) geometry.Vector2D {
	return nb.separation.Mul(cfg.SeparationStrength / 100)
}

func alignment(me Boid, nb neighbourhood, cfg *Config) geometry.Vector2D {
	if nb.others == 0 {
		return geometry.Vector2D{}
	}
	return nb.velocity.Sub(me.Velocity).Mul(cfg.Alignment / 100)
}

func wind(cfg *Config) geometry.Vector2D {
	return cfg.WindDirection.Mul(cfg.WindStrength / 100)
}

func chaseGoal(me Boid, goal Goal, cfg *Config) geometry.Vector2D {
	if !goal.Alive {
		return geometry.Vector2D{}
	}
	return goal.Position.Sub(me.Position).Mul(cfg.GoalStrength / 100)
}

// keepInBounds nudges a boid back once it leaves the bounding box.
func keepInBounds(me Boid, cfg *Config) geometry.Vector2D {
	var v geometry.Vector2D
	switch {
	case me.Position.X < cfg.BoundTopLeft.X:
		v.X = cfg.TurnFactor
	case me.Position.X > cfg.BoundBottomRight.X:
		v.X = -cfg.TurnFactor
	}
	switch {
	case me.Position.Y < cfg.BoundTopLeft.Y:
		v.Y = cfg.TurnFactor
	case me.Position.Y > cfg.BoundBottomRight.Y:
		v.Y = -cfg.TurnFactor
	}
	return v
}

// steer returns me's next velocity given what it sees, capped at MaxSpeed.
func steer(me Boid, matches []spatial.Match[Boid], goal Goal, cfg *Config) (geometry.Vector2D, int) {
	nb := perceive(me, matches, cfg.SeparationDistance)

	v := me.Velocity.
		Add(cohesion(me, nb, cfg)).
		Add(separation(nb, cfg)).
		Add(alignment(me, nb, cfg)).
		Add(wind(cfg)).
		Add(chaseGoal(me, goal, cfg)).
		Add(keepInBounds(me, cfg))

	return v.ClampLen(cfg.MaxSpeed), nb.others
}
