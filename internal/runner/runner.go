package runner

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/ode"
)

// Trajectory is the ordered (t, y) samples of one integration run.
// Times are strictly increasing, start at t0 and end exactly at t_end.
// Immutable once returned.
type Trajectory struct {
	Times    []float64
	States   []ode.State
	Accepted int
	Rejected int
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Last returns the final sample.
func (tr *Trajectory) Last() (float64, ode.State) {
	n := len(tr.Times)
	return tr.Times[n-1], tr.States[n-1]
}

// Run integrates the model from t0 to t_end with the given method and
// step policy. Cancellation is checked cooperatively between steps.
func Run(ctx context.Context, m *models.Model, st integrators.Stepper, pol StepPolicy) (*Trajectory, error) {
	if err := pol.Validate(); err != nil {
		return nil, err
	}
	pol = pol.withDefaults()

	// One rhs probe before stepping catches rhs/state dimension bugs.
	probe := m.System.Derive(m.T0, m.Y0)
	if len(probe) != len(m.Y0) {
		return nil, &ode.RunError{
			Model: m.ID, Method: st.Name(), Step: 0, Time: m.T0,
			Wrapped: fmt.Errorf("%w: state dim %d, derivative dim %d",
				ode.ErrDimensionMismatch, len(m.Y0), len(probe)),
		}
	}

	if m.TEnd == m.T0 {
		return &Trajectory{
			Times:  []float64{m.T0},
			States: []ode.State{m.Y0.Clone()},
		}, nil
	}

	if pol.Adaptive() {
		emb, ok := st.(integrators.Embedded)
		if !ok {
			return nil, fmt.Errorf("%w: method %s has no embedded error estimate",
				ode.ErrInvalidStepPolicy, st.Name())
		}
		return runAdaptive(ctx, m, emb, pol)
	}
	return runFixed(ctx, m, st, pol)
}

func runFixed(ctx context.Context, m *models.Model, st integrators.Stepper, pol StepPolicy) (*Trajectory, error) {
	span := m.TEnd - m.T0
	n := int(math.Ceil(span/pol.H - 1e-12))
	if n+1 > pol.MaxPoints {
		return nil, fmt.Errorf("%w: step %g would produce %d points (max %d)",
			ode.ErrInvalidStepPolicy, pol.H, n+1, pol.MaxPoints)
	}

	tr := &Trajectory{
		Times:  make([]float64, 0, n+1),
		States: make([]ode.State, 0, n+1),
	}
	y := m.Y0.Clone()
	t := m.T0
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, y.Clone())

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tNext := m.T0 + float64(i+1)*pol.H
		if tNext > m.TEnd || i == n-1 {
			tNext = m.TEnd
		}

		y = st.Step(m.System, t, y, tNext-t)
		if !y.IsValid() {
			return nil, &ode.RunError{
				Model: m.ID, Method: st.Name(), Step: i, Time: t,
				Wrapped: ode.ErrDiverged,
			}
		}

		t = tNext
		tr.Accepted++
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, y.Clone())
	}

	return tr, nil
}

func runAdaptive(ctx context.Context, m *models.Model, st integrators.Embedded, pol StepPolicy) (*Trajectory, error) {
	span := m.TEnd - m.T0

	tr := &Trajectory{
		Times:  []float64{m.T0},
		States: []ode.State{m.Y0.Clone()},
	}
	y := m.Y0.Clone()
	t := m.T0

	h := math.Min(pol.HMax, span/100)
	if h < pol.HMin {
		h = pol.HMin
	}

	step := 0
	for t < m.TEnd {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		final := t+h >= m.TEnd
		if final {
			h = m.TEnd - t
		}

		yNew, errEst := st.StepErr(m.System, t, y, h)
		if !yNew.IsValid() {
			return nil, &ode.RunError{
				Model: m.ID, Method: st.Name(), Step: step, Time: t,
				Wrapped: ode.ErrDiverged,
			}
		}

		errRatio := 0.0
		for i := range y {
			tol := pol.Atol + pol.Rtol*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
			errRatio = math.Max(errRatio, math.Abs(errEst[i])/tol)
		}

		if errRatio <= 1 {
			t += h
			if final {
				t = m.TEnd
			}
			y = yNew
			tr.Accepted++
			tr.Times = append(tr.Times, t)
			tr.States = append(tr.States, y.Clone())

			scale := maxScale
			if errRatio > 0 {
				scale = math.Min(maxScale, pol.Safety*math.Pow(errRatio, -0.2))
			}
			h = clamp(h*scale, pol.HMin, pol.HMax)
		} else {
			tr.Rejected++
			scale := math.Max(minScale, pol.Safety*math.Pow(errRatio, -0.25))
			h = h * scale
			if h < pol.HMin {
				return nil, &ode.RunError{
					Model: m.ID, Method: st.Name(), Step: step, Time: t,
					Wrapped: fmt.Errorf("%w: needed h=%g below h_min=%g",
						ode.ErrStepUnderflow, h, pol.HMin),
				}
			}
		}

		// A step too small to advance t means the tolerance is
		// unreachable in double precision.
		if t < m.TEnd && t+h == t {
			return nil, &ode.RunError{
				Model: m.ID, Method: st.Name(), Step: step, Time: t,
				Wrapped: ode.ErrStepUnderflow,
			}
		}
		step++
	}

	return tr, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
