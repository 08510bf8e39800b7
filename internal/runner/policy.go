// Package runner drives repeated integrator steps across a model's
// domain, producing discretized trajectories under a fixed or adaptive
// step policy.
package runner

import (
	"fmt"

	"github.com/san-kum/odelab/internal/ode"
)

// Controller defaults, shared with the Dormand-Prince step controller.
const (
	DefaultSafety    = 0.9
	DefaultHMin      = 1e-12
	DefaultHMax      = 1.0
	DefaultMaxPoints = 1_000_000

	minScale = 0.2
	maxScale = 10.0
)

// StepPolicy selects either a fixed step size H, or (H == 0) an
// adaptive policy driven by Atol/Rtol within [HMin, HMax].
type StepPolicy struct {
	H      float64 `json:"h,omitempty" yaml:"h,omitempty"`
	Atol   float64 `json:"atol,omitempty" yaml:"atol,omitempty"`
	Rtol   float64 `json:"rtol,omitempty" yaml:"rtol,omitempty"`
	HMin   float64 `json:"h_min,omitempty" yaml:"h_min,omitempty"`
	HMax   float64 `json:"h_max,omitempty" yaml:"h_max,omitempty"`
	Safety float64 `json:"safety,omitempty" yaml:"safety,omitempty"`

	// MaxPoints bounds the number of samples a fixed-step run may
	// produce, rejecting absurd h up-front.
	MaxPoints int `json:"max_points,omitempty" yaml:"max_points,omitempty"`
}

// FixedStep returns a policy stepping at exactly h (final step clamped
// to land on t_end).
func FixedStep(h float64) StepPolicy {
	return StepPolicy{H: h, MaxPoints: DefaultMaxPoints}
}

// AdaptiveStep returns an adaptive policy with the given tolerances and
// default bounds.
func AdaptiveStep(atol, rtol float64) StepPolicy {
	return StepPolicy{
		Atol:      atol,
		Rtol:      rtol,
		HMin:      DefaultHMin,
		HMax:      DefaultHMax,
		Safety:    DefaultSafety,
		MaxPoints: DefaultMaxPoints,
	}
}

// Adaptive reports whether the policy uses error-controlled stepping.
func (p StepPolicy) Adaptive() bool { return p.H == 0 }

func (p StepPolicy) Validate() error {
	if p.H < 0 {
		return fmt.Errorf("%w: negative step %g", ode.ErrInvalidStepPolicy, p.H)
	}
	if !p.Adaptive() {
		return nil
	}
	if p.Atol <= 0 || p.Rtol < 0 {
		return fmt.Errorf("%w: tolerances must be positive (atol=%g rtol=%g)",
			ode.ErrInvalidStepPolicy, p.Atol, p.Rtol)
	}
	if p.HMin < 0 || p.HMax < 0 || (p.HMax > 0 && p.HMin > p.HMax) {
		return fmt.Errorf("%w: inverted step bounds [%g, %g]",
			ode.ErrInvalidStepPolicy, p.HMin, p.HMax)
	}
	return nil
}

// withDefaults fills zero-valued knobs of an adaptive policy.
func (p StepPolicy) withDefaults() StepPolicy {
	if p.HMin == 0 {
		p.HMin = DefaultHMin
	}
	if p.HMax == 0 {
		p.HMax = DefaultHMax
	}
	if p.Safety == 0 {
		p.Safety = DefaultSafety
	}
	if p.MaxPoints == 0 {
		p.MaxPoints = DefaultMaxPoints
	}
	return p
}

// String renders the policy for diagnostics and run metadata.
func (p StepPolicy) String() string {
	if p.Adaptive() {
		return fmt.Sprintf("adaptive(atol=%g, rtol=%g)", p.Atol, p.Rtol)
	}
	return fmt.Sprintf("fixed(h=%g)", p.H)
}
