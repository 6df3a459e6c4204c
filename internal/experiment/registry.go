package experiment

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/sim"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Resolve turns a scenario reference into a configuration. An existing file
// path is loaded; otherwise ref names a preset. The empty reference is the
// default configuration.
func Resolve(ref string) (*config.Config, error) {
	if ref == "" {
		return config.DefaultConfig(), nil
	}
	if _, err := os.Stat(ref); err == nil {
		return config.Load(ref)
	}
	if cfg := config.GetPreset(ref); cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("%w: %q is neither a config file nor a preset (presets: %v)", ErrUnknownScenario, ref, config.ListPresets())
}

// DefaultMetrics are attached to every experiment.
func DefaultMetrics() []sim.Metric {
	return metrics.Standard()
}
