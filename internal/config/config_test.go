package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt != 0.001 {
		t.Errorf("expected dt 0.001, got %g", cfg.Dt)
	}
	if cfg.TMax != 10 {
		t.Errorf("expected t_max 10, got %g", cfg.TMax)
	}
	if cfg.G != physics.DefaultG {
		t.Errorf("expected SI G, got %g", cfg.G)
	}
	if cfg.Filename != "three_body_simulation" {
		t.Errorf("unexpected filename %q", cfg.Filename)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingKey) {
		t.Errorf("bodies should be required, got %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
masses: [1, 2, 3]
initial_positions: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
initial_velocities: [[0, 0, 0], [0, 1, 0], [-1, 0, 0]]
t_max: 2.5
G: 1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Masses[2] != 3 || cfg.TMax != 2.5 || cfg.G != 1 {
		t.Errorf("fields not decoded: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Integrator != integrators.Default {
		t.Errorf("defaults not kept: dt=%g integrator=%q", cfg.Dt, cfg.Integrator)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	data := `{"masses": [1, 1, 1],
	"initial_positions": [[0,0,0],[1,0,0],[0,1,0]],
	"initial_velocities": [[0,0,0],[0,1,0],[-1,0,0]],
	"dt": 0.01, "filename": "json_run"}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dt != 0.01 || cfg.Filename != "json_run" || cfg.G != physics.DefaultG {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	if err := os.WriteFile(path, []byte("masses = []"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	for _, ext := range []string{".yaml", ".json"} {
		path := filepath.Join(t.TempDir(), "cfg"+ext)
		want := GetPreset("sun_earth_moon")
		if err := Save(path, want); err != nil {
			t.Fatalf("Save(%s): %v", ext, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", ext, err)
		}
		if got.Masses[0] != want.Masses[0] || got.InitialVelocities[2][1] != want.InitialVelocities[2][1] {
			t.Errorf("%s: bodies differ after reload", ext)
		}
		if got.BodyNames[1] != "Earth" {
			t.Errorf("%s: body names lost: %v", ext, got.BodyNames)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing masses", func(c *Config) { c.Masses = nil }, ErrMissingKey},
		{"missing positions", func(c *Config) { c.InitialPositions = nil }, ErrMissingKey},
		{"missing velocities", func(c *Config) { c.InitialVelocities = nil }, ErrMissingKey},
		{"two masses", func(c *Config) { c.Masses = c.Masses[:2] }, ErrArity},
		{"four positions", func(c *Config) {
			c.InitialPositions = append(c.InitialPositions, []float64{0, 0, 0})
		}, ErrArity},
		{"2-vector velocity", func(c *Config) { c.InitialVelocities[1] = []float64{0, 1} }, ErrArity},
		{"two names", func(c *Config) { c.BodyNames = []string{"a", "b"} }, ErrArity},
		{"zero dt", func(c *Config) { c.Dt = 0 }, ErrNonPositive},
		{"negative t_max", func(c *Config) { c.TMax = -1 }, ErrNonPositive},
		{"infinite dt", func(c *Config) { c.Dt = math.Inf(1) }, ErrNonPositive},
		{"NaN t_max", func(c *Config) { c.TMax = math.NaN() }, ErrNonPositive},
		{"unknown integrator", func(c *Config) { c.Integrator = "rk45" }, integrators.ErrUnknown},
		{"negative mass", func(c *Config) { c.Masses[0] = -1 }, ErrNonPositive},
		{"zero mass", func(c *Config) { c.Masses[2] = 0 }, ErrNonPositive},
		{"zero G", func(c *Config) { c.G = 0 }, ErrNonPositive},
		{"NaN G", func(c *Config) { c.G = math.NaN() }, ErrNonPositive},
		{"too many steps", func(c *Config) { c.Dt, c.TMax = 1e-3, 1e20 }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("default")
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"default", "figure8", "lagrange", "pythagorean", "sun_earth_moon"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
		}
	}

	for _, name := range names {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if _, err := cfg.System(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestGetPreset_Copy(t *testing.T) {
	cfg := GetPreset("figure8")
	cfg.Masses[0] = 42
	cfg.InitialPositions[0][0] = 42

	fresh := GetPreset("figure8")
	if fresh.Masses[0] != 1 || fresh.InitialPositions[0][0] == 42 {
		t.Error("GetPreset must not share storage with the preset table")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestNames(t *testing.T) {
	if got := GetPreset("default").Names(); got[2] != "Body 3" {
		t.Errorf("unexpected default names %v", got)
	}
	if got := GetPreset("sun_earth_moon").Names(); got[0] != "Sun" {
		t.Errorf("unexpected names %v", got)
	}
}

func TestRunConfig(t *testing.T) {
	rc := GetPreset("default").RunConfig()
	if rc.Dt != 0.001 || rc.Duration != 10 || rc.Steps() != 10000 {
		t.Errorf("unexpected run config %+v", rc)
	}
}
