package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lao-tseu-is-alive/go-boids-index/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/spatial"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", configSchema)
})

// ErrInvalidConfig is returned when settings fail schema or bounds checks.
var ErrInvalidConfig = errors.New("simulation: invalid config")

// UpdatePolicy selects how the index follows the flock after each step.
type UpdatePolicy string

const (
	// PolicyRebuild throws the index away and reinserts every boid.
	PolicyRebuild UpdatePolicy = "rebuild"
	// PolicyIncremental removes and reinserts only the boids whose state
	// changed.
	PolicyIncremental UpdatePolicy = "incremental"
)

// Config holds the world, index and flocking settings; it is what the
// settings panel edits and what settings files store.
type Config struct {
	// World
	WorldWidth  float64 `json:"worldWidth" yaml:"worldWidth"`
	WorldHeight float64 `json:"worldHeight" yaml:"worldHeight"`
	Seed        uint64  `json:"seed" yaml:"seed"`

	// Spatial index
	IndexKind    spatial.Kind `json:"indexKind" yaml:"indexKind"`
	CellSize     float64      `json:"cellSize" yaml:"cellSize"` // grid only
	UpdatePolicy UpdatePolicy `json:"updatePolicy" yaml:"updatePolicy"`

	// Boundary
	BoundTopLeft     geometry.Vector2D `json:"boundTopLeft" yaml:"boundTopLeft"`
	BoundBottomRight geometry.Vector2D `json:"boundBottomRight" yaml:"boundBottomRight"`

	// Boids. Rule strengths are percentages.
	Count              int     `json:"count" yaml:"count"`
	Speed              float64 `json:"speed" yaml:"speed"`
	MaxSpeed           float64 `json:"maxSpeed" yaml:"maxSpeed"`
	Cohesion           float64 `json:"cohesion" yaml:"cohesion"`
	Alignment          float64 `json:"alignment" yaml:"alignment"`
	SeparationDistance float64 `json:"separationDistance" yaml:"separationDistance"`
	SeparationStrength float64 `json:"separationStrength" yaml:"separationStrength"`
	TurnFactor         float64 `json:"turnFactor" yaml:"turnFactor"`
	LocalityRadius     float64 `json:"localityRadius" yaml:"localityRadius"` // neighbour search radius

	// Environment
	WindDirection   geometry.Vector2D `json:"windDirection" yaml:"windDirection"`
	WindStrength    float64           `json:"windStrength" yaml:"windStrength"`
	Goal            bool              `json:"goal" yaml:"goal"`
	GoalDurationSec int               `json:"goalDurationSec" yaml:"goalDurationSec"`
	GoalStrength    float64           `json:"goalStrength" yaml:"goalStrength"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:         1280,
		WorldHeight:        800,
		Seed:               1,
		IndexKind:          spatial.KindKDTree,
		CellSize:           100,
		UpdatePolicy:       PolicyRebuild,
		BoundTopLeft:       geometry.Vector2D{X: 0, Y: 0},
		BoundBottomRight:   geometry.Vector2D{X: 1280, Y: 800},
		Count:              300,
		Speed:              3.5,
		MaxSpeed:           100,
		Cohesion:           10,
		Alignment:          50,
		SeparationDistance: 50,
		SeparationStrength: 50,
		TurnFactor:         50,
		LocalityRadius:     100,
		WindDirection:      geometry.Vector2D{X: 1, Y: 0},
		WindStrength:       0,
		Goal:               false,
		GoalDurationSec:    5,
		GoalStrength:       1,
	}
}

// IndexOptions is the spatial index setup this config asks for.
func (c *Config) IndexOptions() spatial.Options {
	return spatial.Options{Kind: c.IndexKind, Dimensions: 2, CellSize: c.CellSize}
}

// Validate checks the config against the embedded schema and the bounds box.
func (c *Config) Validate() error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := validateDocument(b); err != nil {
		return err
	}
	if c.BoundTopLeft.X >= c.BoundBottomRight.X || c.BoundTopLeft.Y >= c.BoundBottomRight.Y {
		return fmt.Errorf("%w: bounds %v..%v are empty", ErrInvalidConfig, c.BoundTopLeft, c.BoundBottomRight)
	}
	return nil
}

// LoadConfig reads a JSON or YAML settings file, validates it against the
// schema and lays it over DefaultConfig, so a file may set only a few keys.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(configFile) {
		var doc any
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		// Round trip through JSON so both formats share the schema.
		if b, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("failed to convert config yaml: %w", err)
		}
	}

	if err := validateDocument(b); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as JSON or YAML depending on the file extension.
func SaveConfig(configFile string, cfg *Config) error {
	var (
		b   []byte
		err error
	)
	if isYAML(configFile) {
		b, err = yaml.Marshal(cfg)
	} else {
		b, err = json.MarshalIndent(cfg, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configFile, b, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func validateDocument(b []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
