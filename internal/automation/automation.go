package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/experiment"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/storage"
)

// Batch is a scripted list of runs executed concurrently and stored.
type Batch struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Parallel    int       `yaml:"parallel"`
	Runs        []RunSpec `yaml:"runs"`

	dir string
}

// RunSpec names a scenario and the fields to override on it. Scenario is a
// preset name or a config file, relative paths being taken from the batch
// file's directory.
type RunSpec struct {
	Scenario   string  `yaml:"scenario"`
	Name       string  `yaml:"name"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	TMax       float64 `yaml:"t_max"`
	Filename   string  `yaml:"filename"`
}

// LoadBatch loads a batch from a YAML file
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(batch.Runs) == 0 {
		return nil, fmt.Errorf("%s: batch has no runs", path)
	}
	batch.dir = filepath.Dir(path)
	return &batch, nil
}

// Config resolves the scenario of s and applies its overrides.
func (s RunSpec) Config(dir string) (*config.Config, error) {
	ref := s.Scenario
	if ref != "" && config.GetPreset(ref) == nil && !filepath.IsAbs(ref) && dir != "" {
		ref = filepath.Join(dir, ref)
	}
	cfg, err := experiment.Resolve(ref)
	if err != nil {
		return nil, err
	}

	if s.Name != "" {
		cfg.Name = s.Name
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.TMax != 0 {
		cfg.TMax = s.TMax
	}
	if s.Filename != "" {
		cfg.Filename = s.Filename
	}
	return cfg, nil
}

type BatchResult struct {
	Spec   RunSpec
	RunID  string
	Result *sim.Result
}

// RunBatch stores every run of b in st. All configs are validated before
// anything runs. When a run fails the others are canceled; every run
// directory is still closed, the unfinished ones with complete=false.
func RunBatch(ctx context.Context, b *Batch, st *storage.Store, logger *slog.Logger) ([]BatchResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	exps := make([]*experiment.Experiment, len(b.Runs))
	for i, spec := range b.Runs {
		cfg, err := spec.Config(b.dir)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("run %d (%s): %w", i+1, spec.Scenario, err)
		}
		exps[i] = exp
	}

	runs := make([]*storage.Run, 0, len(exps))
	jobs := make([]sim.Job, 0, len(exps))
	for _, exp := range exps {
		run, err := st.Create(exp.Config())
		if err != nil {
			for _, r := range runs {
				r.Close(nil)
			}
			return nil, err
		}
		runs = append(runs, run)
		jobs = append(jobs, exp.Job(run.ID, run))
	}

	logger.Info("batch started", slog.String("batch", b.Name), slog.Int("runs", len(jobs)))
	results, runErr := sim.NewEnsemble(b.Parallel).Run(ctx, jobs)

	out := make([]BatchResult, len(runs))
	var closeErr error
	for i, run := range runs {
		res := results[i]
		if err := run.Close(res); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("close run %s: %w", run.ID, err)
		}
		out[i] = BatchResult{Spec: b.Runs[i], RunID: run.ID, Result: res}
	}
	if runErr != nil {
		return out, runErr
	}
	logger.Info("batch finished", slog.String("batch", b.Name))
	return out, closeErr
}

// ParameterSweep runs a base configuration across evenly spaced values of
// one parameter: m1, m2, m3, G or dt.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Parallel  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue    float64
	EnergyDrift   float64
	MinSeparation float64
	FinalState    []float64
}

// SetParam overrides one named parameter of cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "m1", "m2", "m3":
		if len(cfg.Masses) != physics.NumBodies {
			return fmt.Errorf("%w: masses has %d entries", config.ErrArity, len(cfg.Masses))
		}
		cfg.Masses[name[1]-'1'] = v
	case "G":
		cfg.G = v
	case "dt":
		cfg.Dt = v
	case "t_max":
		cfg.TMax = v
	default:
		return fmt.Errorf("unknown parameter %q (use m1, m2, m3, G, dt or t_max)", name)
	}
	return nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *slog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one point")
	}
	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	values := make([]float64, sweep.NumSteps)
	jobs := make([]sim.Job, sweep.NumSteps)
	for i := range jobs {
		values[i] = sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		if err := SetParam(cfg, sweep.ParamName, values[i]); err != nil {
			return nil, err
		}
		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, values[i], err)
		}
		jobs[i] = exp.Job(fmt.Sprintf("%s=%g", sweep.ParamName, values[i]), nil)
	}

	results, err := sim.NewEnsemble(sweep.Parallel).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, res := range results {
		out[i] = SweepResult{
			ParamValue:    values[i],
			EnergyDrift:   res.Metrics["energy_drift"],
			MinSeparation: res.Metrics["min_separation"],
			FinalState:    res.FinalState,
		}
	}
	return out, nil
}

// MonteCarloConfig perturbs the initial positions and velocities of Base
// uniformly within ±Perturbation and counts how many trials stay bounded.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Radius       float64 // escape radius; 0 uses ten times the initial extent
	Seed         int64
	Parallel     int
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID     int
	Config      *config.Config
	Stability   float64
	EnergyDrift float64
	Stable      bool // finite and within Radius for the whole run
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	radius := cfg.Radius
	if radius <= 0 {
		radius = 10 * extent(cfg.Base)
	}

	trials := make([]*config.Config, cfg.NumTrials)
	jobs := make([]sim.Job, cfg.NumTrials)
	for trial := range jobs {
		c := cfg.Base.Clone()
		for _, vs := range [][][]float64{c.InitialPositions, c.InitialVelocities} {
			for _, v := range vs {
				for k := range v {
					v[k] += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
				}
			}
		}
		exp, err := experiment.New(c, logger)
		if err != nil {
			return nil, err
		}
		exp.Simulator().AddMetric(metrics.NewStability(radius))
		trials[trial] = c
		jobs[trial] = exp.Job(fmt.Sprintf("trial %d", trial), nil)
	}

	results, err := sim.NewEnsemble(cfg.Parallel).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(results))
	for i, res := range results {
		stability := res.Metrics["stability"]
		out[i] = MonteCarloResult{
			TrialID:     i,
			Config:      trials[i],
			Stability:   stability,
			EnergyDrift: res.EnergyDrift,
			Stable:      stability == 1,
		}
	}
	return out, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

func extent(cfg *config.Config) float64 {
	e := 0.0
	for _, p := range cfg.InitialPositions {
		n := 0.0
		for _, v := range p {
			n += v * v
		}
		e = math.Max(e, math.Sqrt(n))
	}
	if e == 0 {
		return 1
	}
	return e
}
