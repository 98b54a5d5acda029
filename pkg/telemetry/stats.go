package telemetry

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Ticks           int     `csv:"ticks"`

	// Flock at window end
	Boids int `csv:"boids"`

	// Neighbour counts over every boid and tick in the window
	NeighborsMean   float64 `csv:"neighbors_mean"`
	NeighborsStdDev float64 `csv:"neighbors_std"`
	NeighborsP50    float64 `csv:"neighbors_p50"`
	NeighborsP90    float64 `csv:"neighbors_p90"`
	IsolatedFrac    float64 `csv:"isolated_frac"` // share of samples with no neighbour

	// Step timing
	StepMeanMs float64 `csv:"step_mean_ms"`
	StepMaxMs  float64 `csv:"step_max_ms"`

	// Index maintenance
	Reindexed int `csv:"reindexed"`
}

// NeighborStats reduces raw neighbour counts. values is sorted in place.
func NeighborStats(values []float64) (mean, std, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		return values[0], 0, values[0], values[0]
	}
	slices.Sort(values)
	mean, std = stat.MeanStdDev(values, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	return mean, std, p50, p90
}

// String is the one-line summary the headless runner logs per window.
func (s WindowStats) String() string {
	return fmt.Sprintf("ticks %d-%d | boids %d | neighbours %.1f±%.1f (p50 %.0f, p90 %.0f, isolated %.0f%%) | step %.2fms (max %.2fms) | reindexed %d",
		s.WindowStartTick, s.WindowEndTick, s.Boids,
		s.NeighborsMean, s.NeighborsStdDev, s.NeighborsP50, s.NeighborsP90, s.IsolatedFrac*100,
		s.StepMeanMs, s.StepMaxMs, s.Reindexed)
}
