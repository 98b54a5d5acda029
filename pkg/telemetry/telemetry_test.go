package telemetry

import (
	"io"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/simulation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNeighborStats(t *testing.T) {
	mean, std, p50, p90 := NeighborStats([]float64{4, 0, 3, 1, 2})
	require.InDelta(t, 2, mean, 1e-9)
	require.InDelta(t, math.Sqrt(2.5), std, 1e-9)
	require.Equal(t, 2.0, p50)
	require.Equal(t, 4.0, p90)

	mean, std, p50, p90 = NeighborStats(nil)
	require.Zero(t, mean+std+p50+p90)

	mean, std, p50, p90 = NeighborStats([]float64{7})
	require.Equal(t, []float64{7, 0, 7, 7}, []float64{mean, std, p50, p90})
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(2, 0.5, nil)

	c.Record(simulation.StepStats{Tick: 1, Boids: 3, Neighbors: []int{0, 2, 2}, Duration: 2 * time.Millisecond})
	require.False(t, c.ShouldFlush())
	c.Record(simulation.StepStats{Tick: 2, Boids: 3, Neighbors: []int{1, 1, 0}, Duration: 4 * time.Millisecond, Reindexed: 3})
	require.True(t, c.ShouldFlush())

	w := c.Flush()
	require.Equal(t, uint64(0), w.WindowStartTick)
	require.Equal(t, uint64(2), w.WindowEndTick)
	require.Equal(t, 1.0, w.SimTimeSec)
	require.Equal(t, 2, w.Ticks)
	require.Equal(t, 3, w.Boids)
	require.InDelta(t, 1, w.NeighborsMean, 1e-9)
	require.InDelta(t, 2.0/6, w.IsolatedFrac, 1e-9)
	require.InDelta(t, 3, w.StepMeanMs, 1e-9)
	require.InDelta(t, 4, w.StepMaxMs, 1e-9)
	require.Equal(t, 3, w.Reindexed)
	require.False(t, c.ShouldFlush())

	c.Record(simulation.StepStats{Tick: 3, Boids: 1, Neighbors: []int{5}})
	w = c.Flush()
	require.Equal(t, uint64(2), w.WindowStartTick)
	require.Equal(t, 5.0, w.NeighborsMean)
	require.Zero(t, w.Reindexed)
}

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics("grid")
	c := NewCollector(10, 1.0/60, m)

	c.Record(simulation.StepStats{Tick: 1, Boids: 4, Neighbors: []int{1, 2, 3, 2}, Reindexed: 4, Duration: time.Millisecond})
	c.Record(simulation.StepStats{Tick: 2, Boids: 4, Neighbors: []int{0, 0, 0, 4}, Reindexed: 1, Duration: time.Millisecond})

	require.Equal(t, 2.0, testutil.ToFloat64(m.ticks))
	require.Equal(t, 4.0, testutil.ToFloat64(m.boids))
	require.Equal(t, 1.0, testutil.ToFloat64(m.neighborsMean))
	require.Equal(t, 5.0, testutil.ToFloat64(m.reindexedTotal))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `boids_ticks_total{index="grid"} 2`)
	require.Contains(t, string(body), "boids_step_seconds_bucket")
}

func TestOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	require.Nil(t, om)
	require.NoError(t, om.WriteTelemetry(WindowStats{}))
	require.NoError(t, om.Close())

	dir := filepath.Join(t.TempDir(), "run")
	om, err = NewOutputManager(dir)
	require.NoError(t, err)
	require.Equal(t, dir, om.Dir())

	rows := []WindowStats{
		{WindowEndTick: 60, Ticks: 60, Boids: 10, NeighborsMean: 2.5},
		{WindowEndTick: 120, Ticks: 60, Boids: 10, NeighborsMean: 3, Reindexed: 7},
	}
	for _, r := range rows {
		require.NoError(t, om.WriteTelemetry(r))
	}

	cfg := simulation.DefaultConfig()
	require.NoError(t, om.WriteConfig(cfg))

	w, err := simulation.NewWorld(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, om.WriteSnapshot(w.Snapshot()))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "window_end"))

	var got []WindowStats
	require.NoError(t, gocsv.UnmarshalBytes(data, &got))
	require.Equal(t, rows, got)

	saved, err := simulation.LoadConfig(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, cfg, saved)

	snap, err := os.ReadFile(filepath.Join(dir, "snapshot.json"))
	require.NoError(t, err)
	s, err := simulation.UnmarshalSnapshot(snap)
	require.NoError(t, err)
	require.Len(t, s.Boids, cfg.Count)
}
