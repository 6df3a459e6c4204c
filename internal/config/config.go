package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

const (
	DefaultDt       = 0.001
	DefaultDuration = 10.0
	DefaultFilename = "three_body_simulation"
)

var (
	ErrMissingKey  = errors.New("config: missing required key")
	ErrArity       = errors.New("config: expected exactly 3 bodies with 3 components each")
	ErrNonPositive = errors.New("config: value must be positive and finite")
	ErrFormat      = errors.New("config: unsupported file format (use .yaml, .yml or .json)")
)

// Config describes one three-body run. Masses, positions and velocities are
// required; everything else falls back to DefaultConfig.
type Config struct {
	Name              string      `yaml:"name,omitempty" json:"name,omitempty"`
	Masses            []float64   `yaml:"masses" json:"masses"`
	InitialPositions  [][]float64 `yaml:"initial_positions" json:"initial_positions"`
	InitialVelocities [][]float64 `yaml:"initial_velocities" json:"initial_velocities"`
	Dt                float64     `yaml:"dt" json:"dt"`
	TMax              float64     `yaml:"t_max" json:"t_max"`
	G                 float64     `yaml:"G" json:"G"`
	Integrator        string      `yaml:"integrator,omitempty" json:"integrator,omitempty"`
	Filename          string      `yaml:"filename,omitempty" json:"filename,omitempty"`
	BodyNames         []string    `yaml:"body_names,omitempty" json:"body_names,omitempty"`
}

// DefaultConfig holds the optional fields only; the bodies are left unset.
func DefaultConfig() *Config {
	return &Config{
		Dt:         DefaultDt,
		TMax:       DefaultDuration,
		G:          physics.DefaultG,
		Integrator: integrators.Default,
		Filename:   DefaultFilename,
	}
}

// Load reads a YAML or JSON config, chosen by file extension, on top of
// DefaultConfig. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks presence and arity of the body arrays, that masses, G, dt
// and t_max are positive, and that the run fits in dynamo.MaxSteps.
func (c *Config) Validate() error {
	if c.Masses == nil {
		return fmt.Errorf("%w: masses", ErrMissingKey)
	}
	if c.InitialPositions == nil {
		return fmt.Errorf("%w: initial_positions", ErrMissingKey)
	}
	if c.InitialVelocities == nil {
		return fmt.Errorf("%w: initial_velocities", ErrMissingKey)
	}

	if len(c.Masses) != physics.NumBodies {
		return fmt.Errorf("%w: masses has %d entries", ErrArity, len(c.Masses))
	}
	if err := checkVectors("initial_positions", c.InitialPositions); err != nil {
		return err
	}
	if err := checkVectors("initial_velocities", c.InitialVelocities); err != nil {
		return err
	}

	if !positive(c.Dt) {
		return fmt.Errorf("%w: dt = %g", ErrNonPositive, c.Dt)
	}
	if !positive(c.TMax) {
		return fmt.Errorf("%w: t_max = %g", ErrNonPositive, c.TMax)
	}
	if steps := math.Floor(c.TMax / c.Dt); steps > dynamo.MaxSteps {
		return fmt.Errorf("%w: t_max/dt gives %g steps, limit %d", dynamo.ErrParameterBounds, steps, dynamo.MaxSteps)
	}
	for i, m := range c.Masses {
		if !positive(m) {
			return fmt.Errorf("%w: masses[%d] = %g", ErrNonPositive, i, m)
		}
	}
	if !positive(c.G) {
		return fmt.Errorf("%w: G = %g", ErrNonPositive, c.G)
	}
	if c.BodyNames != nil && len(c.BodyNames) != physics.NumBodies {
		return fmt.Errorf("%w: body_names has %d entries", ErrArity, len(c.BodyNames))
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return err
	}
	return nil
}

func checkVectors(key string, vs [][]float64) error {
	if len(vs) != physics.NumBodies {
		return fmt.Errorf("%w: %s has %d entries", ErrArity, key, len(vs))
	}
	for i, v := range vs {
		if len(v) != 3 {
			return fmt.Errorf("%w: %s[%d] has %d components", ErrArity, key, i, len(v))
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// System builds the physical system described by c.
func (c *Config) System() (*physics.ThreeBody, error) {
	return physics.New(c.Masses, c.InitialPositions, c.InitialVelocities, c.G)
}

// RunConfig is the integration window of c.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{Dt: c.Dt, Duration: c.TMax}
}

// Names returns the body labels, defaulting to "Body 1".."Body 3".
func (c *Config) Names() []string {
	if len(c.BodyNames) == physics.NumBodies {
		return c.BodyNames
	}
	names := make([]string, physics.NumBodies)
	for i := range names {
		names[i] = fmt.Sprintf("Body %d", i+1)
	}
	return names
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Masses = append([]float64(nil), c.Masses...)
	out.InitialPositions = cloneVectors(c.InitialPositions)
	out.InitialVelocities = cloneVectors(c.InitialVelocities)
	if c.BodyNames != nil {
		out.BodyNames = append([]string(nil), c.BodyNames...)
	}
	return &out
}

func cloneVectors(vs [][]float64) [][]float64 {
	if vs == nil {
		return nil
	}
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = append([]float64(nil), v...)
	}
	return out
}
