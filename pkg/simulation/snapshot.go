package simulation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/lao-tseu-is-alive/go-boids-index/pkg/geometry"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrBadSnapshot is returned when a snapshot document is missing fields.
var ErrBadSnapshot = errors.New("simulation: malformed snapshot")

// Snapshot is the committed state of a World at one tick.
type Snapshot struct {
	Tick    uint64
	Elapsed float64
	Goal    Goal
	Boids   []Boid
	// RNG is the marshalled ChaCha8 state, so goals drawn after a restore
	// are the ones the snapshotted world would have drawn.
	RNG []byte
}

// Snapshot captures the committed flock.
func (w *World) Snapshot() *Snapshot {
	rng, _ := w.src.MarshalBinary() // never fails
	return &Snapshot{
		Tick:    w.tick,
		Elapsed: w.elapsed,
		Goal:    w.goal,
		Boids:   w.Boids(),
		RNG:     rng,
	}
}

// Restore replaces the flock with s and rebuilds the index around it.
// Without RNG state the current stream carries on.
func (w *World) Restore(s *Snapshot) error {
	if len(s.RNG) > 0 {
		if err := w.src.UnmarshalBinary(s.RNG); err != nil {
			return fmt.Errorf("%w: rng state: %w", ErrBadSnapshot, err)
		}
	}
	w.boids = append(w.boids[:0], s.Boids...)
	w.tick = s.Tick
	w.elapsed = s.Elapsed
	w.goal = s.Goal
	w.rebuildIndex(w.boids)
	w.logger.Infof("World restored: %d boids at tick %d", len(w.boids), w.tick)
	return nil
}

// MarshalSnapshot encodes s as protobuf JSON (a google.protobuf.Struct).
// Struct numbers are doubles, so the tick is written as a decimal string.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	boids := make([]any, 0, len(s.Boids))
	for _, b := range s.Boids {
		boids = append(boids, map[string]any{
			"id": b.ID,
			"x":  b.Position.X,
			"y":  b.Position.Y,
			"vx": b.Velocity.X,
			"vy": b.Velocity.Y,
		})
	}

	doc, err := structpb.NewStruct(map[string]any{
		"tick":    strconv.FormatUint(s.Tick, 10),
		"elapsed": s.Elapsed,
		"goal": map[string]any{
			"x":         s.Goal.Position.X,
			"y":         s.Goal.Position.Y,
			"alive":     s.Goal.Alive,
			"expiresAt": s.Goal.ExpiresAt,
		},
		"boids": boids,
		"rng":   base64.StdEncoding.EncodeToString(s.RNG),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
}

// UnmarshalSnapshot decodes what MarshalSnapshot produced.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	doc := &structpb.Struct{}
	if err := protojson.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	fields := doc.GetFields()

	boids, ok := fields["boids"]
	if !ok || boids.GetListValue() == nil {
		return nil, fmt.Errorf("%w: no boids list", ErrBadSnapshot)
	}

	tick, err := parseTick(fields["tick"])
	if err != nil {
		return nil, err
	}
	rng, err := base64.StdEncoding.DecodeString(fields["rng"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("%w: rng: %w", ErrBadSnapshot, err)
	}
	if len(rng) > 0 {
		if err := new(rand.ChaCha8).UnmarshalBinary(rng); err != nil {
			return nil, fmt.Errorf("%w: rng: %w", ErrBadSnapshot, err)
		}
	} else {
		rng = nil
	}

	s := &Snapshot{
		Tick:    tick,
		Elapsed: fields["elapsed"].GetNumberValue(),
		RNG:     rng,
	}
	if g := fields["goal"].GetStructValue().GetFields(); g != nil {
		s.Goal = Goal{
			Position:  geometry.NewVector(g["x"].GetNumberValue(), g["y"].GetNumberValue()),
			Alive:     g["alive"].GetBoolValue(),
			ExpiresAt: g["expiresAt"].GetNumberValue(),
		}
	}

	for i, v := range boids.GetListValue().GetValues() {
		b := v.GetStructValue().GetFields()
		if b == nil {
			return nil, fmt.Errorf("%w: boid %d is not an object", ErrBadSnapshot, i)
		}
		id := b["id"].GetStringValue()
		if id == "" {
			return nil, fmt.Errorf("%w: boid %d has no id", ErrBadSnapshot, i)
		}
		s.Boids = append(s.Boids, Boid{
			ID:       id,
			Position: geometry.NewVector(b["x"].GetNumberValue(), b["y"].GetNumberValue()),
			Velocity: geometry.NewVector(b["vx"].GetNumberValue(), b["vy"].GetNumberValue()),
		})
	}
	return s, nil
}

// parseTick reads the tick string; a plain number is accepted too.
func parseTick(v *structpb.Value) (uint64, error) {
	switch k := v.GetKind().(type) {
	case nil:
		return 0, nil
	case *structpb.Value_NumberValue:
		if k.NumberValue < 0 {
			return 0, fmt.Errorf("%w: negative tick", ErrBadSnapshot)
		}
		return uint64(k.NumberValue), nil
	case *structpb.Value_StringValue:
		tick, err := strconv.ParseUint(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: tick: %w", ErrBadSnapshot, err)
		}
		return tick, nil
	default:
		return 0, fmt.Errorf("%w: tick is not a number", ErrBadSnapshot)
	}
}
