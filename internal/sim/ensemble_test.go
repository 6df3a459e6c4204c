package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
	"github.com/san-kum/threebody/internal/sim"
)

// cancelAt cancels the run's context once the given step has been observed.
type cancelAt struct {
	step   int
	cancel context.CancelFunc
}

func (c cancelAt) OnStep(step int, _ record.Record) {
	if step == c.step {
		c.cancel()
	}
}

func newSimulator(integrator string) *sim.Simulator {
	sys, err := physics.New(
		[]float64{1, 1, 1},
		[][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[][]float64{{0, 0, 0}, {0, 1, 0}, {-1, 0, 0}},
		1.0,
	)
	Expect(err).NotTo(HaveOccurred())
	integ, err := integrators.New(integrator)
	Expect(err).NotTo(HaveOccurred())
	return sim.New(sys, integ)
}

var _ = Describe("Simulator", func() {
	It("emits the reference scenario with energy conserved to 1e-6", func() {
		var out record.Collector
		_, err := newSimulator("rk4").Run(context.Background(), dynamo.Config{Dt: 0.001, Duration: 0.01}, &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Records).NotTo(BeEmpty())

		first, last := out.Records[0], out.Records[len(out.Records)-1]
		Expect(math.Abs(last.Total-first.Total) / math.Abs(first.Total)).To(BeNumerically("<", 1e-6))

		before, after := physics.Positions(first.State), physics.Positions(last.State)
		for i := range before {
			Expect(after[i]).NotTo(Equal(before[i]))
		}
	})

	It("keeps the angular momentum free of secular drift", func() {
		var out record.Collector
		_, err := newSimulator("rk4").Run(context.Background(), dynamo.Config{Dt: 0.0005, Duration: 0.5}, &out)
		Expect(err).NotTo(HaveOccurred())

		l0 := out.Records[0].AngularMomentum
		for _, r := range out.Records {
			Expect(r.AngularMomentum.Z).To(BeNumerically("~", l0.Z, 1e-8))
		}
	})
})

var _ = Describe("Ensemble", func() {
	It("returns results in job order", func() {
		jobs := []sim.Job{
			{Name: "coarse", Simulator: newSimulator("rk4"), Config: dynamo.Config{Dt: 0.01, Duration: 0.1}},
			{Name: "fine", Simulator: newSimulator("rk4"), Config: dynamo.Config{Dt: 0.005, Duration: 0.1}},
			{Name: "euler", Simulator: newSimulator("euler"), Config: dynamo.Config{Dt: 0.01, Duration: 0.1}},
		}

		results, err := sim.NewEnsemble(2).Run(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].Steps).To(Equal(10))
		Expect(results[1].Steps).To(Equal(20))
		Expect(results[2].EnergyDrift).To(BeNumerically(">", results[0].EnergyDrift))
	})

	It("matches a sequential run exactly", func() {
		var parallel, sequential record.Collector
		cfg := dynamo.Config{Dt: 0.001, Duration: 0.05}

		_, err := sim.NewEnsemble(0).Run(context.Background(), []sim.Job{
			{Name: "a", Simulator: newSimulator("rk4"), Config: cfg, Sink: &parallel},
			{Name: "b", Simulator: newSimulator("rk4"), Config: cfg},
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = newSimulator("rk4").Run(context.Background(), cfg, &sequential)
		Expect(err).NotTo(HaveOccurred())
		Expect(parallel.Records).To(Equal(sequential.Records))
	})

	It("fails when any job fails", func() {
		_, err := sim.NewEnsemble(2).Run(context.Background(), []sim.Job{
			{Name: "ok", Simulator: newSimulator("rk4"), Config: dynamo.Config{Dt: 0.01, Duration: 0.1}},
			{Name: "bad", Simulator: newSimulator("rk4"), Config: dynamo.Config{Dt: 0, Duration: 0.1}},
		})
		Expect(err).To(MatchError(ContainSubstring("job bad")))
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("keeps finished and partial results when a job fails", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		interrupted := newSimulator("rk4")
		interrupted.AddObserver(cancelAt{step: 5, cancel: cancel})

		results, err := sim.NewEnsemble(1).Run(ctx, []sim.Job{
			{Name: "done", Simulator: newSimulator("rk4"), Config: dynamo.Config{Dt: 0.01, Duration: 0.1}},
			{Name: "interrupted", Simulator: interrupted, Config: dynamo.Config{Dt: 0.01, Duration: 0.1}},
			{Name: "bad", Simulator: newSimulator("rk4"), Config: dynamo.Config{Dt: 0, Duration: 0.1}},
		})
		Expect(err).To(MatchError(dynamo.ErrContextCanceled))
		Expect(results).To(HaveLen(3))
		Expect(results[0].Steps).To(Equal(10))
		Expect(results[1]).NotTo(BeNil())
		Expect(results[1].Steps).To(Equal(6))
		Expect(results[1].FinalState).To(HaveLen(physics.StateDim))
		Expect(results[2]).To(BeNil())
	})
})
