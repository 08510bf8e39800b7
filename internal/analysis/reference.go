package analysis

import (
	"sort"

	"github.com/san-kum/odelab/internal/ode"
	"github.com/san-kum/odelab/internal/runner"
)

// Reference evaluates the "true" solution at arbitrary times inside
// the integration domain.
type Reference interface {
	At(t float64) ode.State
}

// AnalyticRef wraps a closed-form solution.
type AnalyticRef func(t float64) ode.State

func (f AnalyticRef) At(t float64) ode.State { return f(t) }

// TrajectoryRef treats a high-accuracy trajectory as the reference,
// sampling it at arbitrary times by cubic Hermite interpolation. The
// interval endpoints and their derivatives (recomputed from the
// system's rhs) pin the interpolant, so the interpolation error is
// O(h_ref^4), negligible next to the trajectories under study.
type TrajectoryRef struct {
	traj   *runner.Trajectory
	sys    ode.System
	derivs []ode.State
}

func NewTrajectoryRef(tr *runner.Trajectory, sys ode.System) *TrajectoryRef {
	return &TrajectoryRef{
		traj:   tr,
		sys:    sys,
		derivs: make([]ode.State, tr.Len()),
	}
}

func (r *TrajectoryRef) deriv(i int) ode.State {
	if r.derivs[i] == nil {
		r.derivs[i] = r.sys.Derive(r.traj.Times[i], r.traj.States[i])
	}
	return r.derivs[i]
}

func (r *TrajectoryRef) At(t float64) ode.State {
	times := r.traj.Times
	n := len(times)

	if t <= times[0] {
		return r.traj.States[0].Clone()
	}
	if t >= times[n-1] {
		return r.traj.States[n-1].Clone()
	}

	// First index with times[j] > t; the bracketing interval is j-1..j.
	j := sort.SearchFloat64s(times, t)
	if times[j] == t {
		return r.traj.States[j].Clone()
	}

	i0, i1 := j-1, j
	t0, t1 := times[i0], times[i1]
	h := t1 - t0
	s := (t - t0) / h

	y0, y1 := r.traj.States[i0], r.traj.States[i1]
	d0, d1 := r.deriv(i0), r.deriv(i1)

	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	out := make(ode.State, len(y0))
	for i := range out {
		out[i] = h00*y0[i] + h10*h*d0[i] + h01*y1[i] + h11*h*d1[i]
	}
	return out
}
