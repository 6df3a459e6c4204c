package experiment

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/threebody/internal/config"
)

type BenchResult struct {
	Dt             float64
	Steps          int
	Elapsed        time.Duration
	StepsPerSecond float64
	EnergyDrift    float64
}

// Bench times cfg once per step size. Runs are sequential so the timings
// do not compete for CPU.
func Bench(ctx context.Context, cfg *config.Config, dts []float64, logger *slog.Logger) ([]BenchResult, error) {
	out := make([]BenchResult, 0, len(dts))
	for _, dt := range dts {
		c := cfg.Clone()
		c.Dt = dt
		exp, err := New(c, logger)
		if err != nil {
			return out, err
		}

		start := time.Now()
		res, err := exp.Run(ctx, nil)
		elapsed := time.Since(start)
		if err != nil {
			return out, err
		}

		br := BenchResult{
			Dt:          dt,
			Steps:       res.Steps,
			Elapsed:     elapsed,
			EnergyDrift: res.EnergyDrift,
		}
		if elapsed > 0 {
			br.StepsPerSecond = float64(res.Steps) / elapsed.Seconds()
		}
		out = append(out, br)
	}
	return out, nil
}
