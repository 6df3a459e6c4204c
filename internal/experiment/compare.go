package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/sim"
)

// Variant overrides the integrator and step size of a base configuration.
type Variant struct {
	Name       string
	Integrator string
	Dt         float64
}

// Comparison pairs a variant with the summary of its run.
type Comparison struct {
	Variant
	Result *sim.Result
}

// Metric returns the named metric of the run, zero when it was not
// collected.
func (c Comparison) Metric(name string) float64 {
	if c.Result == nil {
		return 0
	}
	return c.Result.Metrics[name]
}

// IntegratorVariants runs cfg unchanged except for the integrator.
func IntegratorVariants(cfg *config.Config, names []string) []Variant {
	out := make([]Variant, len(names))
	for i, name := range names {
		out[i] = Variant{Name: name, Integrator: name, Dt: cfg.Dt}
	}
	return out
}

// RefinementVariants halves dt levels-1 times, starting from cfg.Dt.
func RefinementVariants(cfg *config.Config, levels int) []Variant {
	out := make([]Variant, 0, levels)
	dt := cfg.Dt
	for i := 0; i < levels; i++ {
		out = append(out, Variant{
			Name:       fmt.Sprintf("%s dt=%g", cfg.Integrator, dt),
			Integrator: cfg.Integrator,
			Dt:         dt,
		})
		dt /= 2
	}
	return out
}

// Compare runs every variant of cfg concurrently, at most parallel at a time
// (parallel <= 0 uses GOMAXPROCS), and returns the comparisons in variant
// order. No records are kept.
func Compare(ctx context.Context, cfg *config.Config, variants []Variant, parallel int, logger *slog.Logger) ([]Comparison, error) {
	jobs := make([]sim.Job, len(variants))
	for i, v := range variants {
		c := cfg.Clone()
		c.Integrator = v.Integrator
		c.Dt = v.Dt
		exp, err := New(c, logger)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.Name, err)
		}
		jobs[i] = exp.Job(v.Name, nil)
	}

	results, err := sim.NewEnsemble(parallel).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	out := make([]Comparison, len(variants))
	for i, v := range variants {
		out[i] = Comparison{Variant: v, Result: results[i]}
	}
	return out, nil
}
