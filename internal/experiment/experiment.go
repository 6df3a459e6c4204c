package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/record"
	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/storage"
)

// Experiment is a validated configuration bound to its own system,
// integrator and metrics. It is not safe for concurrent runs; build one
// experiment per run.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

// New validates cfg and assembles the simulator for it. A nil logger uses
// slog.Default.
func New(cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sys, err := cfg.System()
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	s := sim.New(sys, integ).WithLogger(logger)
	for _, m := range DefaultMetrics() {
		s.AddMetric(m)
	}
	return &Experiment{cfg: cfg.Clone(), simulator: s}, nil
}

// Config returns the configuration the experiment was built from.
func (e *Experiment) Config() *config.Config { return e.cfg }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// RunConfig is the integration window, with non-finite states reported.
func (e *Experiment) RunConfig() dynamo.Config {
	c := e.cfg.RunConfig()
	c.ValidateState = true
	return c
}

func (e *Experiment) Run(ctx context.Context, sink record.Sink) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.RunConfig(), sink)
}

// Job wraps the experiment for sim.Ensemble.
func (e *Experiment) Job(name string, sink record.Sink) sim.Job {
	return sim.Job{Name: name, Simulator: e.simulator, Config: e.RunConfig(), Sink: sink}
}

// RunStored runs the experiment into a new run of st. Records also go to
// extra when it is non-nil. The run is closed even when the simulation
// fails, so a canceled run leaves a readable prefix with complete=false.
func (e *Experiment) RunStored(ctx context.Context, st *storage.Store, extra record.Sink) (*storage.Run, *sim.Result, error) {
	run, err := st.Create(e.cfg)
	if err != nil {
		return nil, nil, err
	}

	var sink record.Sink = run
	if extra != nil {
		sink = record.MultiSink(run, extra)
	}

	result, runErr := e.Run(ctx, sink)
	if err := run.Close(result); err != nil {
		if runErr != nil {
			return run, result, fmt.Errorf("%w (closing run %s: %v)", runErr, run.ID, err)
		}
		return run, result, fmt.Errorf("close run %s: %w", run.ID, err)
	}
	return run, result, runErr
}
