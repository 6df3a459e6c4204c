package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// figureEight returns the Chenciner-Montgomery periodic orbit with G = 1.
func figureEight() *physics.ThreeBody {
	sys, err := physics.New(
		[]float64{1, 1, 1},
		[][]float64{{-0.97000436, 0.24308753, 0}, {0.97000436, -0.24308753, 0}, {0, 0, 0}},
		[][]float64{{0.4662036850, 0.4323657300, 0}, {0.4662036850, 0.4323657300, 0}, {-0.93240737, -0.86473146, 0}},
		1.0,
	)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func propagate(sys *physics.ThreeBody, dt, duration float64) (dynamo.State, float64, float64) {
	rk4 := integrators.NewRK4()
	x := sys.State()
	e0 := sys.TotalEnergy(x)
	l0 := sys.AngularMomentum(x)

	maxEnergyDrift, maxMomentumDrift := 0.0, 0.0
	steps := int(duration / dt)
	for i := 0; i < steps; i++ {
		x = rk4.Step(sys, x, dt)
		maxEnergyDrift = math.Max(maxEnergyDrift, math.Abs(sys.TotalEnergy(x)-e0)/math.Abs(e0))
		maxMomentumDrift = math.Max(maxMomentumDrift, r3.Norm(r3.Sub(sys.AngularMomentum(x), l0)))
	}
	return x, maxEnergyDrift, maxMomentumDrift
}

var _ = Describe("ThreeBody conserved quantities under RK4", func() {
	Context("on the figure-eight orbit", func() {
		It("keeps the relative energy drift small", func() {
			_, drift, _ := propagate(figureEight(), 0.001, 2.0)
			Expect(drift).To(BeNumerically("<", 1e-9))
		})

		It("keeps angular momentum near its initial value", func() {
			_, _, drift := propagate(figureEight(), 0.001, 2.0)
			Expect(drift).To(BeNumerically("<", 1e-9))
		})

		It("reduces energy drift when dt is halved", func() {
			_, coarse, _ := propagate(figureEight(), 0.02, 2.0)
			_, fine, _ := propagate(figureEight(), 0.01, 2.0)
			Expect(fine).To(BeNumerically("<", coarse))
			Expect(coarse / fine).To(BeNumerically(">", 8))
		})

		It("conserves total linear momentum exactly enough", func() {
			sys := figureEight()
			x, _, _ := propagate(sys, 0.001, 1.0)
			m := sys.Masses()
			var p r3.Vec
			for i, v := range physics.Velocities(x) {
				p = r3.Add(p, r3.Scale(m[i], v))
			}
			Expect(r3.Norm(p)).To(BeNumerically("<", 1e-10))
		})
	})

	Context("on the reference scenario", func() {
		var sys *physics.ThreeBody

		BeforeEach(func() {
			var err error
			sys, err = physics.New(
				[]float64{1, 1, 1},
				[][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
				[][]float64{{0, 0, 0}, {0, 1, 0}, {-1, 0, 0}},
				1.0,
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("moves every body and conserves energy over ten steps", func() {
			x0 := sys.State()
			x, drift, _ := propagate(sys, 0.001, 0.01)

			for i, p := range physics.Positions(x) {
				moved := r3.Norm(r3.Sub(p, physics.Positions(x0)[i]))
				Expect(moved).To(BeNumerically(">", 0), "body %d did not move", i+1)
			}
			Expect(drift).To(BeNumerically("<", 1e-6))
		})
	})

	Context("with coincident bodies", func() {
		It("produces a non-finite derivative on the first evaluation", func() {
			sys, err := physics.New(
				[]float64{1, 1, 1},
				[][]float64{{0, 0, 0}, {0, 0, 0}, {0, 1, 0}},
				[][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
				1.0,
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Derive(sys.State()).IsValid()).To(BeFalse())
		})
	})
})
