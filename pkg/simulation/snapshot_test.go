package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := smallConfig()
	cfg.Goal = true
	w := newTestWorld(t, cfg)
	for range 7 {
		w.Step(dt)
	}

	want := w.Snapshot()
	data, err := MarshalSnapshot(want)
	require.NoError(t, err)

	got, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRestoreResumesTheRun(t *testing.T) {
	cfg := smallConfig()
	original := newTestWorld(t, cfg)
	for range 10 {
		original.Step(dt)
	}
	data, err := MarshalSnapshot(original.Snapshot())
	require.NoError(t, err)

	other := smallConfig()
	other.Seed = 1234
	restored := newTestWorld(t, other)
	s, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(s))

	require.Equal(t, original.Boids(), restored.Boids())
	require.Equal(t, original.Tick(), restored.Tick())
	require.Equal(t, original.Index().Len(), restored.Index().Len())

	for range 5 {
		original.Step(dt)
		restored.Step(dt)
	}
	require.Equal(t, original.Boids(), restored.Boids())
}

func TestRestoreResumesGoalDraws(t *testing.T) {
	cfg := smallConfig()
	cfg.Goal = true
	cfg.GoalDurationSec = 1
	original := newTestWorld(t, cfg)
	for range 10 {
		original.Step(dt)
	}
	data, err := MarshalSnapshot(original.Snapshot())
	require.NoError(t, err)

	other := smallConfig()
	other.Goal = true
	other.GoalDurationSec = 1
	other.Seed = 1234
	restored := newTestWorld(t, other)
	s, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(s))

	// 90 steps at 60 Hz cross a goal expiry, which draws a new goal.
	for range 90 {
		original.Step(dt)
		restored.Step(dt)
	}
	require.Equal(t, original.Goal(), restored.Goal())
	require.Equal(t, original.Boids(), restored.Boids())
}

func TestSnapshotTickKeepsFullPrecision(t *testing.T) {
	want := &Snapshot{Tick: 1<<53 + 1, Boids: []Boid{}}
	data, err := MarshalSnapshot(want)
	require.NoError(t, err)
	require.Contains(t, string(data), `"9007199254740993"`)

	got, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, want.Tick, got.Tick)

	got, err = UnmarshalSnapshot([]byte(`{"tick": 42, "boids": []}`))
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Tick)
}

func TestRestoreRejectsBadRNGState(t *testing.T) {
	w := newTestWorld(t, smallConfig())
	err := w.Restore(&Snapshot{RNG: []byte("nope")})
	require.ErrorIs(t, err, ErrBadSnapshot)
}

func TestUnmarshalSnapshotRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no boids", `{"tick": 3}`},
		{"boid not object", `{"boids": [1]}`},
		{"boid without id", `{"boids": [{"x": 1, "y": 2}]}`},
		{"tick not a number", `{"tick": "soon", "boids": []}`},
		{"negative tick", `{"tick": -1, "boids": []}`},
		{"rng not base64", `{"rng": "***", "boids": []}`},
		{"rng not chacha8 state", `{"rng": "bm9wZQ==", "boids": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalSnapshot([]byte(tt.data))
			require.ErrorIs(t, err, ErrBadSnapshot)
		})
	}

	_, err := UnmarshalSnapshot([]byte(`not json`))
	require.Error(t, err)
}
