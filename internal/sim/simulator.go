package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
)

// Metric accumulates a scalar summary over the records of a run.
type Metric interface {
	Name() string
	Observe(r record.Record)
	Value() float64
	Reset()
}

// Observer is notified after each record has been emitted.
type Observer interface {
	OnStep(step int, r record.Record)
}

// Result summarizes a run. The records themselves go to the sink.
type Result struct {
	Steps       int
	FinalTime   float64
	FinalState  dynamo.State
	Metrics     map[string]float64
	EnergyDrift float64

	// Invalid is the first step whose record held NaN or Inf. It is only
	// tracked when the run was configured with ValidateState.
	Invalid *dynamo.SimulationError
}

// Simulator drives a ThreeBody through fixed steps and emits one record per
// visited time point. The record for time t is computed from the state
// installed at t, before the step that leaves it.
type Simulator struct {
	sys        *physics.ThreeBody
	integrator dynamo.Integrator
	metrics    []Metric
	observers  []Observer
	logger     *slog.Logger
}

func New(sys *physics.ThreeBody, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// WithLogger replaces the default logger.
func (s *Simulator) WithLogger(l *slog.Logger) *Simulator {
	if l != nil {
		s.logger = l
	}
	return s
}

// System returns the simulated system.
func (s *Simulator) System() *physics.ThreeBody { return s.sys }

// Run performs floor(Duration/Dt) steps, writing a record for times
// 0, dt, ..., (steps-1)*dt to sink. No record is written for the final
// state. Cancellation is honored between steps; records already written
// remain a valid prefix. A nil sink discards records.
func (s *Simulator) Run(ctx context.Context, cfg dynamo.Config, sink record.Sink) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{Metrics: make(map[string]float64)}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.sys.State()
	t := 0.0
	dt := cfg.Dt

	s.logger.Debug("run started", slog.Int("steps", steps), slog.Float64("dt", dt), slog.Float64("duration", cfg.Duration))

	var first, last record.Record
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.logger.Info("run canceled", slog.Int("step", i), slog.Float64("t", t))
			s.finish(result, first, last, x, t)
			return result, fmt.Errorf("%w at step %d: %w", dynamo.ErrContextCanceled, i, ctx.Err())
		default:
		}

		rec := Diagnostics(s.sys, t)
		if i == 0 {
			first = rec
		}
		last = rec

		if cfg.ValidateState && result.Invalid == nil && !rec.Finite() {
			result.Invalid = &dynamo.SimulationError{Step: i, Time: t, State: rec.State, Wrapped: dynamo.ErrInvalidState}
			s.logger.Warn("non-finite state", slog.Int("step", i), slog.Float64("t", t))
		}

		for _, m := range s.metrics {
			m.Observe(rec)
		}
		if sink != nil {
			if err := sink.Write(rec); err != nil {
				s.finish(result, first, last, x, t)
				return result, fmt.Errorf("write record %d: %w", i, err)
			}
		}
		for _, obs := range s.observers {
			obs.OnStep(i, rec)
		}

		x = s.integrator.Step(s.sys, x, dt)
		t += dt
		if err := s.sys.SetState(x); err != nil {
			return result, err
		}
		result.Steps++
	}

	s.finish(result, first, last, x, t)
	s.logger.Debug("run finished", slog.Int("steps", result.Steps), slog.Float64("energy_drift", result.EnergyDrift))
	return result, nil
}

func (s *Simulator) finish(result *Result, first, last record.Record, x dynamo.State, t float64) {
	result.FinalTime = t
	result.FinalState = x.Clone()
	if result.Steps > 0 && first.Total != 0 {
		result.EnergyDrift = math.Abs(last.Total-first.Total) / math.Abs(first.Total)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Diagnostics computes the record for the state currently installed in sys.
func Diagnostics(sys *physics.ThreeBody, t float64) record.Record {
	x := sys.State()
	ke := sys.KineticEnergy(x)
	pe := sys.PotentialEnergy(x)
	return record.Record{
		Time:            t,
		State:           x,
		Kinetic:         ke,
		Potential:       pe,
		Total:           ke + pe,
		AngularMomentum: sys.AngularMomentum(x),
	}
}

func validateConfig(cfg dynamo.Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, cfg.Duration)
	}
	if steps := math.Floor(cfg.Duration / cfg.Dt); steps > dynamo.MaxSteps {
		return fmt.Errorf("%w: %g steps exceeds %d", dynamo.ErrParameterBounds, steps, dynamo.MaxSteps)
	}
	return nil
}
