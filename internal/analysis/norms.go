package analysis

import (
	"fmt"
	"math"
)

// Norm selects how pointwise errors are aggregated over a trajectory.
type Norm string

const (
	// MaxAbs is the maximum absolute error over all samples. Default.
	MaxAbs Norm = "max"
	// RMS is the root-mean-square error over all samples.
	RMS Norm = "rms"
)

func (n Norm) Validate() error {
	switch n {
	case MaxAbs, RMS:
		return nil
	}
	return fmt.Errorf("unknown error norm: %q", n)
}

// Apply reduces per-sample errors to a single value.
func (n Norm) Apply(errs []float64) float64 {
	if len(errs) == 0 {
		return 0
	}
	switch n {
	case RMS:
		sum := 0.0
		for _, e := range errs {
			sum += e * e
		}
		return math.Sqrt(sum / float64(len(errs)))
	default:
		m := 0.0
		for _, e := range errs {
			m = math.Max(m, math.Abs(e))
		}
		return m
	}
}
