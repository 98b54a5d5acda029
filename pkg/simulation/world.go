package simulation

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/spatial"
	"github.com/tochemey/goakt/v3/log"
)

// StepStats describes one call to World.Step.
type StepStats struct {
	Tick      uint64
	Boids     int
	Neighbors []int // per boid, self excluded, in Boids() order
	Reindexed int   // index entries replaced by the incremental policy
	Duration  time.Duration
}

// World owns the flock and the spatial index over it. Step reads only the
// index as committed by the previous step, then commits every boid at once.
type World struct {
	cfg    *Config
	logger log.Logger

	src *rand.ChaCha8
	rng *rand.Rand

	boids []Boid
	next  []Boid
	index spatial.Index[Boid]

	goal    Goal
	tick    uint64
	elapsed float64

	// --- Benchmark Stats ---
	ticksSinceLog int
	stepTime      time.Duration
	lastLogTime   time.Time
}

// NewWorld validates cfg and spawns cfg.Count boids.
func NewWorld(cfg *Config, logger log.Logger) (*World, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	w := &World{logger: logger}
	if err := w.Reset(cfg); err != nil {
		return nil, err
	}
	return w, nil
}

// Reset discards the flock and starts over from cfg and its seed.
func (w *World) Reset(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	index, err := spatial.New[Boid](cfg.IndexOptions())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	w.src = rand.NewChaCha8(seed)
	w.rng = rand.New(w.src)

	w.cfg = cfg
	w.index = index
	w.boids = w.boids[:0]
	w.next = w.next[:0]
	w.goal = Goal{}
	w.tick = 0
	w.elapsed = 0
	w.ticksSinceLog = 0
	w.stepTime = 0
	w.lastLogTime = time.Now()

	w.Spawn(cfg.Count)
	w.logger.Infof("World reset: %d boids, index=%s, policy=%s, seed=%d",
		len(w.boids), cfg.IndexKind, cfg.UpdatePolicy, cfg.Seed)
	return nil
}

// Spawn adds n boids at random positions inside the bounds.
func (w *World) Spawn(n int) {
	tl, br := w.cfg.BoundTopLeft, w.cfg.BoundBottomRight
	for range n {
		b := Boid{
			ID: w.newID(),
			Position: geometry.NewVector(
				tl.X+w.rng.Float64()*(br.X-tl.X),
				tl.Y+w.rng.Float64()*(br.Y-tl.Y),
			),
			Velocity: geometry.NewVector((w.rng.Float64()-0.5)*2, (w.rng.Float64()-0.5)*2),
		}
		w.boids = append(w.boids, b)
		w.index.Insert(b)
	}
}

// newID draws the uuid from the seeded stream so runs are reproducible.
func (w *World) newID() string {
	id, err := uuid.NewRandomFromReader(w.src)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Step advances the flock by dt seconds.
func (w *World) Step(dt float64) StepStats {
	start := time.Now()
	w.updateGoal(dt)

	stats := StepStats{
		Tick:      w.tick + 1,
		Boids:     len(w.boids),
		Neighbors: make([]int, len(w.boids)),
	}

	// 1. Read pass: every boid sees the committed index only.
	w.next = slices.Grow(w.next[:0], len(w.boids))
	for i, me := range w.boids {
		matches := w.index.SearchRadius(me, w.cfg.LocalityRadius)
		v, seen := steer(me, matches, w.goal, w.cfg)
		stats.Neighbors[i] = seen
		w.next = append(w.next, Boid{
			ID:       me.ID,
			Position: me.Position.Add(v.Mul(w.cfg.Speed * dt)),
			Velocity: v,
		})
	}

	// 2. Commit.
	switch w.cfg.UpdatePolicy {
	case PolicyIncremental:
		for i, old := range w.boids {
			if old == w.next[i] {
				continue
			}
			w.index.Remove(old)
			w.index.Insert(w.next[i])
			stats.Reindexed++
		}
	default:
		w.rebuildIndex(w.next)
	}
	w.boids, w.next = w.next, w.boids

	w.tick++
	w.elapsed += dt
	stats.Duration = time.Since(start)
	w.logBenchmarks(stats.Duration)
	return stats
}

func (w *World) rebuildIndex(boids []Boid) {
	if g, ok := w.index.(*spatial.Grid[Boid]); ok && w.cfg.IndexKind == spatial.KindGrid && g.CellSize() == w.cfg.CellSize {
		g.Reset()
	} else {
		index, err := spatial.New[Boid](w.cfg.IndexOptions())
		if err != nil {
			// Options were validated in Reset.
			panic(err)
		}
		w.index = index
	}
	for _, b := range boids {
		w.index.Insert(b)
	}
}

// updateGoal keeps one random goal alive while enabled and moves it every
// GoalDurationSec seconds.
func (w *World) updateGoal(dt float64) {
	if !w.cfg.Goal {
		w.goal.Alive = false
		return
	}
	now := w.elapsed + dt
	if w.goal.Alive && now < w.goal.ExpiresAt {
		return
	}
	tl, br := w.cfg.BoundTopLeft, w.cfg.BoundBottomRight
	w.goal = Goal{
		Position: geometry.NewVector(
			tl.X+w.rng.Float64()*(br.X-tl.X),
			tl.Y+w.rng.Float64()*(br.Y-tl.Y),
		),
		Alive:     true,
		ExpiresAt: now + float64(w.cfg.GoalDurationSec),
	}
	w.logger.Debugf("New goal at %v until t=%.1fs", w.goal.Position, w.goal.ExpiresAt)
}

func (w *World) logBenchmarks(d time.Duration) {
	w.ticksSinceLog++
	w.stepTime += d
	if time.Since(w.lastLogTime) >= time.Second {
		w.logger.Debugf("📊 TICK RATE: %d/sec | avg step %s | boids %d | index %s",
			w.ticksSinceLog, w.stepTime/time.Duration(w.ticksSinceLog), len(w.boids), w.cfg.IndexKind)
		w.ticksSinceLog = 0
		w.stepTime = 0
		w.lastLogTime = time.Now()
	}
}

// Boids returns a copy of the committed flock.
func (w *World) Boids() []Boid { return slices.Clone(w.boids) }

// Index is the committed spatial index. Callers must not mutate it.
func (w *World) Index() spatial.Index[Boid] { return w.index }

func (w *World) Config() *Config { return w.cfg }

func (w *World) Goal() Goal { return w.goal }

func (w *World) Tick() uint64 { return w.tick }

// Elapsed is simulated time in seconds.
func (w *World) Elapsed() float64 { return w.elapsed }

// Neighbors returns the boids within the locality radius of b, which must be
// a committed boid, self excluded. Collapsed entries repeat their representative.
func (w *World) Neighbors(b Boid) []Boid {
	var out []Boid
	for _, m := range w.index.SearchRadius(b, w.cfg.LocalityRadius) {
		n := m.Count
		if m.Item.Position == b.Position {
			n--
		}
		for range n {
			out = append(out, m.Item)
		}
	}
	return out
}
