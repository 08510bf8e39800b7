package models

import (
	"math"

	"github.com/san-kum/odelab/internal/ode"
)

// Default model parameters.
const (
	DefaultLogisticRate     = 0.5
	DefaultLogisticCapacity = 100.0
	DefaultGrowthLambda     = -1.0
	DefaultOscFreq          = 2.0
	DefaultOscDamping       = 0.15
	DefaultSIRBeta          = 0.3
	DefaultSIRGamma         = 0.1
	DefaultVanDerPolMu      = 5.0
)

// DefaultRegistry builds the built-in model catalog. Called once at
// startup; the returned registry is treated as immutable.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, m := range Catalog() {
		// Catalog entries are fixed at compile time; a failure here is
		// a programming error.
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

// Catalog returns fresh definitions of every built-in model.
func Catalog() []*Model {
	return []*Model{
		Logistic(DefaultLogisticRate, DefaultLogisticCapacity),
		ExpGrowth(DefaultGrowthLambda),
		DampedOscillator(DefaultOscFreq, DefaultOscDamping),
		SIR(DefaultSIRBeta, DefaultSIRGamma),
		VanDerPol(DefaultVanDerPolMu),
	}
}

// Logistic is the logistic growth equation dy/dt = r*y*(1 - y/K) with
// closed-form solution K*y0*e^(r*t) / (K + y0*(e^(r*t) - 1)).
func Logistic(r, k float64) *Model {
	y0 := 1.0
	return &Model{
		ID:       "logistic",
		Name:     "Logistic growth",
		Equation: "dy/dt = r*y*(1 - y/K)",
		Params:   map[string]float64{"r": r, "K": k},
		T0:       0,
		TEnd:     20,
		Y0:       ode.State{y0},
		System: ode.Func{
			N: 1,
			F: func(t float64, y ode.State) ode.State {
				return ode.State{r * y[0] * (1 - y[0]/k)}
			},
		},
		Analytic: func(t float64) ode.State {
			e := math.Exp(r * t)
			return ode.State{k * y0 * e / (k + y0*(e-1))}
		},
	}
}

// ExpGrowth is dy/dt = lambda*y with solution y0*e^(lambda*(t - t0)).
func ExpGrowth(lambda float64) *Model {
	y0 := 1.0
	return &Model{
		ID:       "exp_growth",
		Name:     "Exponential growth/decay",
		Equation: "dy/dt = lambda*y",
		Params:   map[string]float64{"lambda": lambda},
		T0:       0,
		TEnd:     5,
		Y0:       ode.State{y0},
		System: ode.Func{
			N: 1,
			F: func(t float64, y ode.State) ode.State {
				return ode.State{lambda * y[0]}
			},
		},
		Analytic: func(t float64) ode.State {
			return ode.State{y0 * math.Exp(lambda*t)}
		},
	}
}

// DampedOscillator is x'' + 2*zeta*omega*x' + omega^2*x = 0 written as
// a first-order system in (x, v). Underdamped (zeta < 1), so the
// closed-form solution applies.
func DampedOscillator(omega, zeta float64) *Model {
	lam := zeta * omega
	omegaD := omega * math.Sqrt(1-zeta*zeta)
	return &Model{
		ID:       "damped_oscillator",
		Name:     "Damped harmonic oscillator",
		Equation: "x'' + 2*zeta*omega*x' + omega^2*x = 0",
		Params:   map[string]float64{"omega": omega, "zeta": zeta},
		T0:       0,
		TEnd:     10,
		Y0:       ode.State{1, 0},
		System: ode.Func{
			N: 2,
			F: func(t float64, y ode.State) ode.State {
				return ode.State{y[1], -2*lam*y[1] - omega*omega*y[0]}
			},
		},
		Analytic: func(t float64) ode.State {
			decay := math.Exp(-lam * t)
			x := decay * (math.Cos(omegaD*t) + lam/omegaD*math.Sin(omegaD*t))
			v := -omega * omega / omegaD * decay * math.Sin(omegaD*t)
			return ode.State{x, v}
		},
	}
}

// SIR is the classic epidemic model over normalized populations. No
// closed-form solution; comparisons fall back to a fine reference run.
func SIR(beta, gamma float64) *Model {
	return &Model{
		ID:       "sir",
		Name:     "SIR epidemic",
		Equation: "dS/dt = -beta*S*I; dI/dt = beta*S*I - gamma*I; dR/dt = gamma*I",
		Params:   map[string]float64{"beta": beta, "gamma": gamma},
		T0:       0,
		TEnd:     160,
		Y0:       ode.State{0.99, 0.01, 0},
		System: ode.Func{
			N: 3,
			F: func(t float64, y ode.State) ode.State {
				s, i := y[0], y[1]
				return ode.State{-beta * s * i, beta*s*i - gamma*i, gamma * i}
			},
		},
	}
}

// VanDerPol is the Van der Pol oscillator, moderately stiff for large
// mu. Useful for exercising the adaptive controller.
func VanDerPol(mu float64) *Model {
	return &Model{
		ID:       "vanderpol",
		Name:     "Van der Pol oscillator",
		Equation: "x'' - mu*(1 - x^2)*x' + x = 0",
		Params:   map[string]float64{"mu": mu},
		T0:       0,
		TEnd:     20,
		Y0:       ode.State{2, 0},
		System: ode.Func{
			N: 2,
			F: func(t float64, y ode.State) ode.State {
				return ode.State{y[1], mu*(1-y[0]*y[0])*y[1] - y[0]}
			},
		},
	}
}
