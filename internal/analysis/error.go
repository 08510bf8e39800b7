package analysis

import (
	"math"

	"github.com/san-kum/odelab/internal/runner"
)

// GlobalError measures the discrepancy between a trajectory and a
// reference, evaluated at the trajectory's own sample times. The
// per-sample error is the largest component deviation; norm reduces
// the samples to one number.
func GlobalError(tr *runner.Trajectory, ref Reference, norm Norm) float64 {
	errs := make([]float64, tr.Len())
	for i, t := range tr.Times {
		exact := ref.At(t)
		e := 0.0
		for c := range tr.States[i] {
			if c < len(exact) {
				e = math.Max(e, math.Abs(tr.States[i][c]-exact[c]))
			}
		}
		errs[i] = e
	}
	return norm.Apply(errs)
}
