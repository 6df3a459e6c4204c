package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/record"
)

// Job is one independent run. Each job must own its simulator (and thus its
// system, integrator and metrics); nothing is shared between jobs.
type Job struct {
	Name      string
	Simulator *Simulator
	Config    dynamo.Config
	Sink      record.Sink
}

// Ensemble runs independent jobs concurrently. Steps within a single run
// stay sequential.
type Ensemble struct {
	limit int
}

// NewEnsemble bounds concurrency to limit jobs; limit <= 0 uses GOMAXPROCS.
func NewEnsemble(limit int) *Ensemble {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{limit: limit}
}

// Run executes all jobs and returns their results in job order. The first
// failing job cancels the others. The results slice is returned even on
// error: finished jobs keep their result, interrupted ones their partial
// result, and jobs that never reached the simulator stay nil.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := job.Simulator.Run(ctx, job.Config, job.Sink)
			results[i] = res
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
