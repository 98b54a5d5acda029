package telemetry

import (
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/simulation"
)

// Collector accumulates StepStats within windows of ticks and produces
// WindowStats. Every recorded step is also forwarded to Metrics when set.
type Collector struct {
	windowTicks int
	dt          float64
	metrics     *Metrics

	// Current window
	windowStart uint64
	lastTick    uint64
	ticks       int
	boids       int
	neighbors   []float64
	isolated    int
	stepTotalMs float64
	stepMaxMs   float64
	reindexed   int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
// dt is seconds per tick, used for SimTimeSec. metrics may be nil.
func NewCollector(windowTicks int, dt float64, metrics *Metrics) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: windowTicks,
		dt:          dt,
		metrics:     metrics,
	}
}

// Record adds one step to the current window.
func (c *Collector) Record(s simulation.StepStats) {
	if c.ticks == 0 {
		c.windowStart = s.Tick - 1
	}
	c.ticks++
	c.lastTick = s.Tick
	c.boids = s.Boids
	c.reindexed += s.Reindexed

	for _, n := range s.Neighbors {
		c.neighbors = append(c.neighbors, float64(n))
		if n == 0 {
			c.isolated++
		}
	}

	ms := float64(s.Duration.Microseconds()) / 1000.0
	c.stepTotalMs += ms
	c.stepMaxMs = max(c.stepMaxMs, ms)

	if c.metrics != nil {
		c.metrics.Observe(s)
	}
}

// ShouldFlush reports whether the current window is full.
func (c *Collector) ShouldFlush() bool {
	return c.ticks >= c.windowTicks
}

// Flush produces a WindowStats and resets the window.
func (c *Collector) Flush() WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   c.lastTick,
		SimTimeSec:      float64(c.lastTick) * c.dt,
		Ticks:           c.ticks,
		Boids:           c.boids,
		StepMaxMs:       c.stepMaxMs,
		Reindexed:       c.reindexed,
	}
	if c.ticks > 0 {
		stats.StepMeanMs = c.stepTotalMs / float64(c.ticks)
	}
	if len(c.neighbors) > 0 {
		stats.IsolatedFrac = float64(c.isolated) / float64(len(c.neighbors))
	}
	stats.NeighborsMean, stats.NeighborsStdDev, stats.NeighborsP50, stats.NeighborsP90 = NeighborStats(c.neighbors)

	c.windowStart = c.lastTick
	c.ticks = 0
	c.neighbors = c.neighbors[:0]
	c.isolated = 0
	c.stepTotalMs = 0
	c.stepMaxMs = 0
	c.reindexed = 0

	return stats
}
