package analysis

import (
	"context"
	"math"

	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/runner"
)

// Below this error the sweep has hit the double-precision round-off
// floor and order estimates become meaningless.
const roundoffFloor = 1e-13

// ConvergenceStudy records a step-size sweep h, h/2, h/4, ... and the
// empirical order log2(e(h)/e(h/2)) between consecutive halvings.
type ConvergenceStudy struct {
	Steps  []float64 `json:"steps"`
	Errors []float64 `json:"errors"`
	Orders []float64 `json:"orders"`

	// ObservedOrder is the last computed order, the best estimate of
	// the asymptotic rate.
	ObservedOrder float64 `json:"observed_order"`
}

// Converge runs the model at h0, h0/2, ... over `halvings` halvings and
// estimates the method's empirical convergence order. The reference is
// the model's analytic solution when present, otherwise a tight-
// tolerance adaptive run.
func Converge(ctx context.Context, m *models.Model, st integrators.Stepper, h0 float64, halvings int, norm Norm) (*ConvergenceStudy, error) {
	ref, err := ReferenceFor(ctx, m)
	if err != nil {
		return nil, err
	}

	study := &ConvergenceStudy{}
	h := h0
	for i := 0; i <= halvings; i++ {
		tr, err := runner.Run(ctx, m, st, runner.FixedStep(h))
		if err != nil {
			return nil, err
		}
		e := GlobalError(tr, ref, norm)

		study.Steps = append(study.Steps, h)
		study.Errors = append(study.Errors, e)

		// Stop once errors sink into round-off noise.
		if e < roundoffFloor {
			break
		}
		h /= 2
	}

	for i := 1; i < len(study.Errors); i++ {
		prev, cur := study.Errors[i-1], study.Errors[i]
		if cur <= 0 || prev <= 0 {
			break
		}
		order := math.Log2(prev / cur)
		study.Orders = append(study.Orders, order)
		study.ObservedOrder = order
	}

	return study, nil
}

// ReferenceFor picks the error reference for a model: its closed-form
// solution, or an RK45 run at very tight tolerance when none exists.
func ReferenceFor(ctx context.Context, m *models.Model) (Reference, error) {
	if m.Analytic != nil {
		return AnalyticRef(m.Analytic), nil
	}
	tr, err := runner.Run(ctx, m, integrators.NewRK45(), runner.AdaptiveStep(1e-12, 1e-12))
	if err != nil {
		return nil, err
	}
	return NewTrajectoryRef(tr, m.System), nil
}
