package compare_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odelab/internal/compare"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/ode"
	"github.com/san-kum/odelab/internal/runner"
)

var _ = Describe("Service", func() {
	var (
		svc *compare.Service
		ctx context.Context
	)

	BeforeEach(func() {
		svc = compare.New(models.DefaultRegistry(), compare.WithWorkers(2))
		ctx = context.Background()
	})

	Describe("validation", func() {
		It("rejects an unknown model before any computation", func() {
			cmp, err := svc.Compare(ctx, "lorenz", []compare.RunRequest{
				{Method: "rk4", Policy: runner.FixedStep(0.1)},
			})
			Expect(err).To(MatchError(ode.ErrUnknownModel))
			Expect(cmp).To(BeNil())
		})

		It("rejects an unknown method", func() {
			_, err := svc.Compare(ctx, "logistic", []compare.RunRequest{
				{Method: "verlet", Policy: runner.FixedStep(0.1)},
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a malformed step policy", func() {
			_, err := svc.Compare(ctx, "logistic", []compare.RunRequest{
				{Method: "rk45", Policy: runner.StepPolicy{Atol: -1, Rtol: 1e-6}},
			})
			Expect(err).To(MatchError(ode.ErrInvalidStepPolicy))
		})

		It("rejects a sweep on an adaptive policy", func() {
			_, err := svc.Compare(ctx, "logistic", []compare.RunRequest{
				{Method: "rk45", Policy: runner.AdaptiveStep(1e-8, 1e-8), Halvings: 3},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("comparing methods on logistic growth", func() {
		It("reports rk4 as more accurate than euler at the same step", func() {
			cmp, err := svc.Compare(ctx, "logistic", []compare.RunRequest{
				{Method: "euler", Policy: runner.FixedStep(1.0)},
				{Method: "rk4", Policy: runner.FixedStep(1.0)},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Results).To(HaveLen(2))

			euler, rk4 := cmp.Results[0], cmp.Results[1]
			Expect(euler.OK()).To(BeTrue())
			Expect(rk4.OK()).To(BeTrue())
			Expect(euler.GlobalError).NotTo(BeNil())
			Expect(rk4.GlobalError).NotTo(BeNil())
			Expect(*rk4.GlobalError).To(BeNumerically("<", *euler.GlobalError))
			Expect(cmp.Best).To(Equal("rk4"))
			Expect(cmp.BestReason).NotTo(BeEmpty())
		})

		It("lands every trajectory exactly on t_end", func() {
			cmp, err := svc.Compare(ctx, "logistic", []compare.RunRequest{
				{Method: "euler", Policy: runner.FixedStep(0.3)},
				{Method: "rk45", Policy: runner.AdaptiveStep(1e-8, 1e-8)},
			})
			Expect(err).NotTo(HaveOccurred())
			for _, r := range cmp.Results {
				Expect(r.OK()).To(BeTrue())
				last := r.Points[len(r.Points)-1]
				Expect(last.T).To(Equal(20.0))
			}
		})

		It("is idempotent: identical inputs yield bit-identical trajectories", func() {
			req := []compare.RunRequest{
				{Method: "rk4", Policy: runner.FixedStep(0.25)},
				{Method: "rk45", Policy: runner.AdaptiveStep(1e-9, 1e-9)},
			}
			first, err := svc.Compare(ctx, "logistic", req)
			Expect(err).NotTo(HaveOccurred())
			second, err := svc.Compare(ctx, "logistic", req)
			Expect(err).NotTo(HaveOccurred())

			for i := range first.Results {
				a, b := first.Results[i], second.Results[i]
				Expect(b.Points).To(HaveLen(len(a.Points)))
				for j := range a.Points {
					Expect(b.Points[j].T).To(Equal(a.Points[j].T))
					Expect(b.Points[j].Y).To(Equal(a.Points[j].Y))
				}
			}
		})

		It("estimates convergence orders when a sweep is requested", func() {
			cmp, err := svc.Compare(ctx, "logistic", []compare.RunRequest{
				{Method: "euler", Policy: runner.FixedStep(0.5), Halvings: 4},
				{Method: "rk4", Policy: runner.FixedStep(0.5), Halvings: 4},
			})
			Expect(err).NotTo(HaveOccurred())

			euler, rk4 := cmp.Results[0], cmp.Results[1]
			Expect(euler.Convergence).NotTo(BeNil())
			Expect(rk4.Convergence).NotTo(BeNil())
			Expect(euler.Convergence.ObservedOrder).To(BeNumerically("~", 1.0, 0.2))
			Expect(rk4.Convergence.ObservedOrder).To(BeNumerically("~", 4.0, 0.2))
		})
	})

	Describe("per-pair failure isolation", func() {
		It("keeps healthy pairs when one pair diverges", func() {
			// Stiff decay: explicit Euler at h=0.5 is violently unstable,
			// the adaptive method handles it fine.
			reg := models.NewRegistry()
			Expect(reg.Register(&models.Model{
				ID:   "stiff_decay",
				Name: "stiff exponential decay",
				TEnd: 300,
				Y0:   ode.State{1},
				System: ode.Func{
					N: 1,
					F: func(t float64, y ode.State) ode.State {
						return ode.State{-50 * y[0]}
					},
				},
			})).To(Succeed())

			svc := compare.New(reg)
			cmp, err := svc.Compare(ctx, "stiff_decay", []compare.RunRequest{
				{Method: "euler", Policy: runner.FixedStep(0.5)},
				{Method: "rk45", Policy: runner.AdaptiveStep(1e-6, 1e-6)},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Results).To(HaveLen(2))

			Expect(cmp.Results[0].OK()).To(BeFalse())
			Expect(cmp.Results[0].Error).To(ContainSubstring("diverged"))
			Expect(cmp.Results[0].Points).To(BeEmpty())

			Expect(cmp.Results[1].OK()).To(BeTrue())
			Expect(cmp.Results[1].Points).NotTo(BeEmpty())
		})
	})

	Describe("models without a closed-form solution", func() {
		It("falls back to a tight-tolerance reference run", func() {
			cmp, err := svc.Compare(ctx, "sir", []compare.RunRequest{
				{Method: "euler", Policy: runner.FixedStep(1.0)},
				{Method: "rk4", Policy: runner.FixedStep(1.0)},
			})
			Expect(err).NotTo(HaveOccurred())

			for _, r := range cmp.Results {
				Expect(r.OK()).To(BeTrue())
				Expect(r.GlobalError).NotTo(BeNil())
			}
			Expect(*cmp.Results[1].GlobalError).To(
				BeNumerically("<", *cmp.Results[0].GlobalError))
		})
	})
})
